package helpers

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStripQuotes(t *testing.T) {
	cases := map[string]string{
		`"quoted"`:   "quoted",
		`'quoted'`:   "quoted",
		` "padded" `: "padded",
		`bare`:       "bare",
		`"`:          `"`,
		``:           ``,
	}

	for input, want := range cases {
		if got := StripQuotes(input); got != want {
			t.Errorf("StripQuotes(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestGenerateUUID(t *testing.T) {
	first := GenerateUUID()
	second := GenerateUUID()
	if first == second {
		t.Error("two generated ids are identical")
	}
	if len(first) != 36 {
		t.Errorf("id %q has length %d, want 36", first, len(first))
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()

	if FileExists(filepath.Join(dir, "nope"), nil) {
		t.Error("FileExists = true for a missing file")
	}
	if FileExists(dir, nil) {
		t.Error("FileExists = true for a directory")
	}

	path := filepath.Join(dir, "file")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if !FileExists(path, nil) {
		t.Error("FileExists = false for an existing file")
	}
}

func TestBSONRoundTrip(t *testing.T) {
	original := map[string]interface{}{
		"name":  "Peter",
		"count": int64(3),
	}

	encoded, err := EncodeBSON(original)
	if err != nil {
		t.Fatalf("EncodeBSON failed: %v", err)
	}
	decoded, err := DecodeBSON(encoded)
	if err != nil {
		t.Fatalf("DecodeBSON failed: %v", err)
	}

	if decoded["name"] != "Peter" {
		t.Errorf("name = %v", decoded["name"])
	}
}
