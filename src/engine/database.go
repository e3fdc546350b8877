package engine

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"nestdb/src/crypt"
	"nestdb/src/settings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Database owns the root document tree of one database file and the registry
// of its collections. All access goes through dotted keys; see ValidateKey
// for the key grammar.
type Database struct {
	root        map[string]interface{}
	collections map[string]*Collection

	store    FileStore
	args     *settings.Arguments
	envelope *crypt.Envelope
	logger   *zap.SugaredLogger
}

// NewDatabase loads the database file named by args.DataFile into memory. A
// missing file starts the database empty. When args.EncryptionKey is set the
// value encryption helpers become available.
func NewDatabase(store FileStore, args *settings.Arguments, logger *zap.SugaredLogger) (*Database, error) {
	db := &Database{
		root:        make(map[string]interface{}),
		collections: make(map[string]*Collection),
		store:       store,
		args:        args,
		logger:      logger,
	}

	if args.EncryptionKey != "" {
		envelope, err := crypt.NewEnvelope(args.EncryptionKey, args.EncryptionMode)
		if err != nil {
			return nil, err
		}
		db.envelope = envelope
	}

	if err := store.EnsureDirectory(args.CollectionsDir); err != nil {
		return nil, err
	}

	root, err := store.LoadDataFile(args.DataFile)
	if err != nil && !errors.Is(err, ErrFileNotFound) {
		return nil, err
	}
	if root != nil {
		db.root = root
	}

	if logger != nil {
		logger.Infow("Database loaded",
			"dataFile", args.DataFile,
			"keys", len(db.root))
	}

	return db, nil
}

// Get resolves a dotted key against the root tree. The second return value
// reports whether the key resolved to a value; a stored JSON null resolves
// with a nil value and found true.
func (db *Database) Get(key string) (interface{}, bool, error) {
	if err := ValidateKey(key); err != nil {
		return nil, false, err
	}

	value, found := db.lookup(key)
	return value, found, nil
}

// GetDecrypted resolves a dotted key and opens the envelope stored there.
func (db *Database) GetDecrypted(key string) (string, bool, error) {
	if db.envelope == nil {
		return "", false, ErrMissingEncryptionKey
	}

	value, found, err := db.Get(key)
	if err != nil || !found {
		return "", found, err
	}

	envelope, ok := value.(string)
	if !ok {
		return "", true, fmt.Errorf("%w: value at %q is not a string", crypt.ErrDecryptionFailure, key)
	}

	plain, err := db.envelope.Decrypt(envelope)
	if err != nil {
		return "", true, err
	}

	return plain, true, nil
}

// Has reports whether a dotted key resolves to a value.
func (db *Database) Has(key string) (bool, error) {
	_, found, err := db.Get(key)
	return found, err
}

// Set writes a value at a dotted key, creating intermediate objects along the
// path. Writing a value deep-equal to the existing one is a no-op that skips
// persistence. It returns the value of the key's top-level segment.
func (db *Database) Set(key string, value interface{}) (interface{}, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	if existing, found := db.lookup(key); found && deepEqual(existing, value) {
		return db.root[KeySegments(key)[0]], nil
	}

	segments := KeySegments(key)
	parent, err := db.materializePath(segments[:len(segments)-1])
	if err != nil {
		return nil, err
	}
	parent[segments[len(segments)-1]] = value

	if err := db.autosave(); err != nil {
		return nil, err
	}

	return db.root[segments[0]], nil
}

// SetEncrypted seals value into an envelope and stores it at key.
func (db *Database) SetEncrypted(key string, value string) (interface{}, error) {
	if db.envelope == nil {
		return nil, ErrMissingEncryptionKey
	}

	sealed, err := db.envelope.Encrypt(value)
	if err != nil {
		return nil, err
	}

	return db.Set(key, sealed)
}

// Delete removes the value at a dotted key. It reports whether the key
// existed before the call.
func (db *Database) Delete(key string) (bool, error) {
	if err := ValidateKey(key); err != nil {
		return false, err
	}

	segments := KeySegments(key)
	parent, ok := db.parentOf(segments)
	if !ok {
		return false, nil
	}

	last := segments[len(segments)-1]
	if _, exists := parent[last]; !exists {
		return false, nil
	}
	delete(parent, last)

	if err := db.autosave(); err != nil {
		return false, err
	}

	return true, nil
}

// Add treats the value at key as a number (missing counts as zero) and adds
// value to it. It returns the value of the key's top-level segment.
func (db *Database) Add(key string, value float64) (interface{}, error) {
	return db.applyArithmetic(key, value, false)
}

// Subtract is the inverse of Add.
func (db *Database) Subtract(key string, value float64) (interface{}, error) {
	return db.applyArithmetic(key, value, true)
}

func (db *Database) applyArithmetic(key string, value float64, negate bool) (interface{}, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidValue, value)
	}

	current := 0.0
	if existing, found := db.lookup(key); found {
		n, ok := asNumber(existing)
		if !ok {
			return nil, fmt.Errorf("%w: existing value at %q is not a number", ErrInvalidValue, key)
		}
		current = n
	}

	if negate {
		value = -value
	}

	return db.Set(key, current+value)
}

// Push appends value to the array at key, creating the array when the key is
// unset. It returns the value of the key's top-level segment.
func (db *Database) Push(key string, value interface{}) (interface{}, error) {
	arr, err := db.arrayAt(key, value)
	if err != nil {
		return nil, err
	}

	updated := make([]interface{}, len(arr), len(arr)+1)
	copy(updated, arr)
	updated = append(updated, value)

	return db.Set(key, updated)
}

// Pull removes every element of the array at key that is deep-equal to value.
func (db *Database) Pull(key string, value interface{}) (interface{}, error) {
	arr, err := db.arrayAt(key, value)
	if err != nil {
		return nil, err
	}

	remaining := make([]interface{}, 0, len(arr))
	for _, item := range arr {
		if !deepEqual(item, value) {
			remaining = append(remaining, item)
		}
	}

	return db.Set(key, remaining)
}

func (db *Database) arrayAt(key string, value interface{}) ([]interface{}, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	if value == nil {
		return nil, ErrMissingValue
	}

	existing, found := db.lookup(key)
	if !found {
		return []interface{}{}, nil
	}

	arr, ok := existing.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: value at %q", ErrNotAnArray, key)
	}

	return arr, nil
}

// Rename moves the value at key to newKey and deletes the original. newKey
// may itself be a dotted path.
func (db *Database) Rename(key, newKey string) (interface{}, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	if err := ValidateKey(newKey); err != nil {
		return nil, fmt.Errorf("%w: %q is not a valid target", ErrInvalidName, newKey)
	}

	value, found := db.lookup(key)
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}

	result, err := db.Set(newKey, value)
	if err != nil {
		return nil, err
	}
	if _, err := db.Delete(key); err != nil {
		return nil, err
	}

	return result, nil
}

// Update applies fn to the value at key. Document values are handed to fn for
// in-place mutation; for any other value the callback's return value replaces
// the stored one. An error from fn comes back wrapped in ErrUpdateCallback.
func (db *Database) Update(key string, fn func(interface{}) (interface{}, error)) (interface{}, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, ErrInvalidUpdater
	}

	value, found := db.lookup(key)
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}

	if doc, ok := value.(map[string]interface{}); ok {
		if _, err := fn(doc); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUpdateCallback, err)
		}
		if err := db.autosave(); err != nil {
			return nil, err
		}
		return db.root[KeySegments(key)[0]], nil
	}

	replacement, err := fn(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpdateCallback, err)
	}

	return db.Set(key, replacement)
}

// Clear resets the root tree to an empty document.
func (db *Database) Clear() error {
	db.root = make(map[string]interface{})

	if db.logger != nil {
		db.logger.Infow("Database cleared", "dataFile", db.args.DataFile)
	}

	return db.autosave()
}

// ToMap returns a deep copy of the root tree. Encrypted values stay sealed.
func (db *Database) ToMap() map[string]interface{} {
	return deepCopyDocument(db.root)
}

// Save writes the root tree to the database file.
func (db *Database) Save() error {
	return db.store.SaveDataFile(db.args.DataFile, db.root, db.args.TabSize)
}

// Close persists the root tree and every registered collection, combining
// any failures into one error.
func (db *Database) Close() error {
	err := db.Save()
	for _, name := range db.Collections() {
		err = multierr.Append(err, db.collections[name].Save())
	}
	return err
}

// CreateCollection registers a new collection with the given default-value
// template and loads any entries already present in its backing file.
func (db *Database) CreateCollection(name string, defaults ...FieldDefault) (*Collection, error) {
	if err := ValidateCollectionName(name); err != nil {
		return nil, err
	}
	if _, exists := db.collections[name]; exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateCollection, name)
	}

	collection, err := newCollection(name, defaults, db.store, db.args, db.logger)
	if err != nil {
		return nil, err
	}
	db.collections[name] = collection

	if db.logger != nil {
		db.logger.Infow("Collection created",
			"collection", name,
			"entries", collection.Len())
	}

	return collection, nil
}

// GetCollection returns the registered collection or nil.
func (db *Database) GetCollection(name string) *Collection {
	return db.collections[name]
}

// DeleteCollection removes a collection from the registry and deletes its
// backing file. File removal is best-effort. It reports whether the
// collection existed.
func (db *Database) DeleteCollection(name string) bool {
	collection, exists := db.collections[name]
	if !exists {
		return false
	}
	delete(db.collections, name)

	if err := db.store.RemoveFile(collection.path); err != nil && db.logger != nil {
		db.logger.Infow("Could not remove collection file",
			"collection", name,
			"error", err)
	}

	return true
}

// Collections returns the registered collection names in sorted order.
func (db *Database) Collections() []string {
	names := make([]string, 0, len(db.collections))
	for name := range db.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// lookup resolves a valid dotted key, short-circuiting at the first missing
// or non-document intermediate.
func (db *Database) lookup(key string) (interface{}, bool) {
	segments := KeySegments(key)

	var current interface{} = db.root
	for _, segment := range segments {
		doc, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = doc[segment]
		if !ok {
			return nil, false
		}
	}

	return current, true
}

// parentOf walks to the document holding the final segment without creating
// anything along the way.
func (db *Database) parentOf(segments []string) (map[string]interface{}, bool) {
	current := db.root
	for _, segment := range segments[:len(segments)-1] {
		next, ok := current[segment].(map[string]interface{})
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// materializePath walks the intermediate segments, creating documents as
// needed. A non-document value found mid-path is overwritten with a fresh
// document unless strict paths are enabled.
func (db *Database) materializePath(segments []string) (map[string]interface{}, error) {
	current := db.root
	for i, segment := range segments {
		existing, ok := current[segment]
		if !ok {
			next := make(map[string]interface{})
			current[segment] = next
			current = next
			continue
		}

		next, ok := existing.(map[string]interface{})
		if !ok {
			if db.args.StrictPaths {
				return nil, fmt.Errorf("%w: segment %q of path %q",
					ErrPathConflict, segment, strings.Join(segments[:i+1], "."))
			}
			next = make(map[string]interface{})
			current[segment] = next
		}
		current = next
	}

	return current, nil
}

func (db *Database) autosave() error {
	if !db.args.AutoSave {
		return nil
	}
	return db.Save()
}

// collectionFilePath resolves the backing file of a named collection.
func collectionFilePath(dir, name string) string {
	return filepath.Join(dir, name+".json")
}
