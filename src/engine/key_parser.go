package engine

import (
	"fmt"
	"strings"
)

// ValidateKey checks that key is a non-empty dotted path with no empty
// segment: no leading dot, no trailing dot, no "..".
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: key is empty", ErrInvalidKey)
	}

	for _, segment := range strings.Split(key, ".") {
		if segment == "" {
			return fmt.Errorf("%w: key %q contains an empty segment", ErrInvalidKey, key)
		}
	}

	return nil
}

// KeySegments splits a dotted key into its path segments. The result is
// non-empty for any key that passes ValidateKey.
func KeySegments(key string) []string {
	return strings.Split(key, ".")
}

// ValidateCollectionName checks that name is a single valid key segment.
// Collection names double as file names, so dots and path separators are
// rejected to keep the backing file inside the collections directory.
func ValidateCollectionName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: collection name is empty", ErrInvalidName)
	}
	if strings.ContainsAny(name, `./\`) {
		return fmt.Errorf("%w: collection name %q may not contain dots or path separators", ErrInvalidName, name)
	}

	return nil
}
