package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultArguments(t *testing.T) {
	args := DefaultArguments()

	if args.DataFile == "" || args.CollectionsDir == "" {
		t.Error("defaults are missing file locations")
	}
	if !args.AutoSave {
		t.Error("autosave should default to on")
	}
	if args.EncryptionMode != "ctr" {
		t.Errorf("encryption mode defaults to %q, want ctr", args.EncryptionMode)
	}
	if args.TabSize != 2 {
		t.Errorf("tab size defaults to %d, want 2", args.TabSize)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nestdb.yaml")
	config := `
dataFile: /var/lib/nestdb/main.json
collectionsDir: /var/lib/nestdb/collections
autoSave: false
tabSize: 4
timestamps: true
strictPaths: true
`
	if err := os.WriteFile(path, []byte(config), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	args := DefaultArguments()
	if err := LoadFromFile(path, args); err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if args.DataFile != "/var/lib/nestdb/main.json" {
		t.Errorf("dataFile = %q", args.DataFile)
	}
	if args.CollectionsDir != "/var/lib/nestdb/collections" {
		t.Errorf("collectionsDir = %q", args.CollectionsDir)
	}
	if args.AutoSave {
		t.Error("autoSave not overridden")
	}
	if args.TabSize != 4 {
		t.Errorf("tabSize = %d, want 4", args.TabSize)
	}
	if !args.Timestamps || !args.StrictPaths {
		t.Error("boolean options not overridden")
	}

	// Fields absent from the file keep their previous values.
	if args.EncryptionMode != "ctr" {
		t.Errorf("encryptionMode = %q, want the untouched default", args.EncryptionMode)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	args := DefaultArguments()
	if err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"), args); err == nil {
		t.Error("LoadFromFile(missing) = nil, want error")
	}
}
