package engine

import (
	"errors"
	"reflect"
	"testing"
)

func TestValidateKey(t *testing.T) {
	valid := []string{"a", "person.name", "a.b.c", "list", "0.1"}
	for _, key := range valid {
		if err := ValidateKey(key); err != nil {
			t.Errorf("ValidateKey(%q) = %v, want nil", key, err)
		}
	}

	invalid := []string{"", ".", ".a", "a.", "a..b", "..", "a.b."}
	for _, key := range invalid {
		err := ValidateKey(key)
		if err == nil {
			t.Errorf("ValidateKey(%q) = nil, want error", key)
			continue
		}
		if !errors.Is(err, ErrInvalidKey) {
			t.Errorf("ValidateKey(%q) = %v, want ErrInvalidKey", key, err)
		}
	}
}

func TestKeySegments(t *testing.T) {
	cases := []struct {
		key  string
		want []string
	}{
		{"a", []string{"a"}},
		{"person.name", []string{"person", "name"}},
		{"a.b.c", []string{"a", "b", "c"}},
	}

	for _, tc := range cases {
		if got := KeySegments(tc.key); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("KeySegments(%q) = %v, want %v", tc.key, got, tc.want)
		}
	}
}

func TestValidateCollectionName(t *testing.T) {
	if err := ValidateCollectionName("posts"); err != nil {
		t.Errorf("ValidateCollectionName(posts) = %v, want nil", err)
	}

	for _, name := range []string{"", "a.b", "a/b", `a\b`, "../escape", "/etc/passwd"} {
		if err := ValidateCollectionName(name); !errors.Is(err, ErrInvalidName) {
			t.Errorf("ValidateCollectionName(%q) = %v, want ErrInvalidName", name, err)
		}
	}
}
