package helpers

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID returns a fresh random identifier string.
func GenerateUUID() string {
	return uuid.New().String()
}

// StripQuotes removes a single pair of surrounding quotes from a string.
func StripQuotes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
