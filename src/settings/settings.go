package settings

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

type Arguments struct {
	// The file path to the primary database file
	DataFile string `yaml:"dataFile"`

	// The directory that holds one JSON file per collection
	CollectionsDir string `yaml:"collectionsDir"`

	// Write the in-memory data back to disk after every mutating operation
	AutoSave bool `yaml:"autoSave"`

	// 32-character key enabling the value encryption helpers; empty disables them
	EncryptionKey string `yaml:"encryptionKey"`

	// Envelope mode: "ctr" (default) or "aead"
	EncryptionMode string `yaml:"encryptionMode"`

	// Number of spaces used to indent persisted JSON; 0 writes compact files
	TabSize int `yaml:"tabSize"`

	// Stamp createdAt/updatedAt on collection entries
	Timestamps bool `yaml:"timestamps"`

	// Fail instead of overwriting a non-object value found mid-path during Set
	StrictPaths bool `yaml:"strictPaths"`

	ConfigFile string `yaml:"-"`

	// Strongly verbose logging
	Verbose bool `yaml:"verbose"`

	Debug bool `yaml:"debug"`
}

var (
	instance *Arguments
	once     sync.Once
)

// GetSettings returns the global settings instance, created with defaults on
// first use.
func GetSettings() *Arguments {
	once.Do(func() {
		instance = DefaultArguments()
	})
	return instance
}

// DefaultArguments returns a fresh Arguments populated with the stock defaults.
func DefaultArguments() *Arguments {
	return &Arguments{
		DataFile:       "data/nest.json",
		CollectionsDir: "data/collections",
		AutoSave:       true,
		EncryptionMode: "ctr",
		TabSize:        2,
	}
}

// LoadFromFile overlays the YAML config file at path onto args.
func LoadFromFile(path string, args *Arguments) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, args); err != nil {
		return fmt.Errorf("error parsing config file %s: %w", path, err)
	}

	return nil
}
