package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"nestdb/src/helpers"

	"go.uber.org/zap"
)

// FileStore is the persistence surface the engine needs: whole-file loads and
// whole-file overwrites of JSON trees, plus directory and file management.
type FileStore interface {
	LoadDataFile(path string) (map[string]interface{}, error)
	LoadCollectionFile(path string) ([]map[string]interface{}, error)
	SaveDataFile(path string, tree map[string]interface{}, tabSize int) error
	SaveCollectionFile(path string, entries []map[string]interface{}, tabSize int) error
	EnsureDirectory(path string) error
	RemoveFile(path string) error
}

// FileStorageEngine persists JSON documents as plain files. Every save is a
// complete overwrite, staged through a temp file in the same directory.
type FileStorageEngine struct {
	logger *zap.SugaredLogger
}

// NewFileStore creates a new file-backed storage engine.
func NewFileStore(logger *zap.SugaredLogger) *FileStorageEngine {
	return &FileStorageEngine{logger: logger}
}

// LoadDataFile reads a JSON object file. A missing file is reported as
// ErrFileNotFound so callers can start empty; a file whose root is not an
// object is treated as empty.
func (f *FileStorageEngine) LoadDataFile(path string) (map[string]interface{}, error) {
	data, err := f.readFile(path)
	if err != nil {
		return nil, err
	}

	var tree interface{}
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("%w: error parsing data file %s: %v", ErrPersistence, path, err)
	}

	root, ok := tree.(map[string]interface{})
	if !ok {
		if f.logger != nil {
			f.logger.Infow("Data file root is not an object, starting empty", "path", path)
		}
		return map[string]interface{}{}, nil
	}

	return root, nil
}

// LoadCollectionFile reads a JSON array-of-objects file. Missing files are
// reported as ErrFileNotFound; any element that is not an object is dropped.
func (f *FileStorageEngine) LoadCollectionFile(path string) ([]map[string]interface{}, error) {
	data, err := f.readFile(path)
	if err != nil {
		return nil, err
	}

	var raw []interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: error parsing collection file %s: %v", ErrPersistence, path, err)
	}

	entries := make([]map[string]interface{}, 0, len(raw))
	for _, item := range raw {
		if entry, ok := item.(map[string]interface{}); ok {
			entries = append(entries, entry)
		}
	}

	return entries, nil
}

// SaveDataFile overwrites path with the JSON serialization of tree.
func (f *FileStorageEngine) SaveDataFile(path string, tree map[string]interface{}, tabSize int) error {
	if tree == nil {
		tree = map[string]interface{}{}
	}
	return f.writeJSON(path, tree, tabSize)
}

// SaveCollectionFile overwrites path with the JSON serialization of entries.
func (f *FileStorageEngine) SaveCollectionFile(path string, entries []map[string]interface{}, tabSize int) error {
	if entries == nil {
		entries = []map[string]interface{}{}
	}
	return f.writeJSON(path, entries, tabSize)
}

// EnsureDirectory creates the directory if it is absent.
func (f *FileStorageEngine) EnsureDirectory(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("%w: failed to create directory %s: %v", ErrPersistence, path, err)
	}
	return nil
}

// RemoveFile deletes a data file.
func (f *FileStorageEngine) RemoveFile(path string) error {
	if err := helpers.DeleteDataFile(path); err != nil {
		return fmt.Errorf("%w: error removing data file %s: %v", ErrPersistence, path, err)
	}
	return nil
}

func (f *FileStorageEngine) readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("%w: error reading data file %s: %v", ErrPersistence, path, err)
	}
	return data, nil
}

func (f *FileStorageEngine) writeJSON(path string, value interface{}, tabSize int) error {
	var (
		data []byte
		err  error
	)
	if tabSize > 0 {
		data, err = json.MarshalIndent(value, "", strings.Repeat(" ", tabSize))
	} else {
		data, err = json.Marshal(value)
	}
	if err != nil {
		return fmt.Errorf("%w: error encoding data for %s: %v", ErrPersistence, path, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("%w: failed to create directory %s: %v", ErrPersistence, dir, err)
		}
	}

	// Stage the write next to the target so the rename stays on one filesystem.
	tempPath := fmt.Sprintf("%s.tmp-%s", path, helpers.GenerateUUID())
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("%w: error writing data file %s: %v", ErrPersistence, path, err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("%w: error replacing data file %s: %v", ErrPersistence, path, err)
	}

	return nil
}
