package engine

import (
	"fmt"
	"os"

	"nestdb/src/helpers"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Snapshot writes the root tree and every registered collection into a single
// BSON file. The snapshot sits next to the regular JSON files as a compact
// backup format; it never replaces them.
func (db *Database) Snapshot(path string) error {
	collections := make(map[string]interface{}, len(db.collections))
	for name, collection := range db.collections {
		entries := make([]interface{}, len(collection.entries))
		for i, entry := range collection.entries {
			entries[i] = entry
		}
		collections[name] = entries
	}

	encoded, err := helpers.EncodeBSON(map[string]interface{}{
		"root":        db.root,
		"collections": collections,
	})
	if err != nil {
		return fmt.Errorf("%w: error encoding snapshot: %v", ErrPersistence, err)
	}

	if err := os.WriteFile(path, encoded, 0644); err != nil {
		return fmt.Errorf("%w: error writing snapshot %s: %v", ErrPersistence, path, err)
	}

	if db.logger != nil {
		db.logger.Infow("Snapshot written",
			"path", path,
			"collections", len(collections))
	}

	return nil
}

// RestoreSnapshot replaces the root tree and the entries of every registered
// collection found in the snapshot, then persists everything. Collections in
// the snapshot that are not registered are skipped.
func (db *Database) RestoreSnapshot(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: error reading snapshot %s: %v", ErrPersistence, path, err)
	}

	decoded, err := helpers.DecodeBSON(data)
	if err != nil {
		return fmt.Errorf("%w: error decoding snapshot %s: %v", ErrPersistence, path, err)
	}
	snapshot, ok := fromBSONValue(decoded).(map[string]interface{})
	if !ok {
		return fmt.Errorf("%w: snapshot %s has no document root", ErrPersistence, path)
	}

	if root, ok := snapshot["root"].(map[string]interface{}); ok {
		db.root = root
	} else {
		db.root = make(map[string]interface{})
	}
	if err := db.Save(); err != nil {
		return err
	}

	collections, _ := snapshot["collections"].(map[string]interface{})
	for name, collection := range db.collections {
		raw, ok := collections[name].([]interface{})
		if !ok {
			continue
		}
		entries := make([]map[string]interface{}, 0, len(raw))
		for _, item := range raw {
			if entry, ok := item.(map[string]interface{}); ok {
				entries = append(entries, entry)
			}
		}
		collection.entries = entries
		if err := collection.Save(); err != nil {
			return err
		}
	}

	return nil
}

// fromBSONValue rewrites the primitive container and numeric types the BSON
// decoder produces into the plain JSON value shapes the engine stores.
func fromBSONValue(value interface{}) interface{} {
	switch v := value.(type) {
	case primitive.M:
		doc := make(map[string]interface{}, len(v))
		for key, item := range v {
			doc[key] = fromBSONValue(item)
		}
		return doc
	case map[string]interface{}:
		doc := make(map[string]interface{}, len(v))
		for key, item := range v {
			doc[key] = fromBSONValue(item)
		}
		return doc
	case primitive.D:
		doc := make(map[string]interface{}, len(v))
		for _, elem := range v {
			doc[elem.Key] = fromBSONValue(elem.Value)
		}
		return doc
	case primitive.A:
		arr := make([]interface{}, len(v))
		for i, item := range v {
			arr[i] = fromBSONValue(item)
		}
		return arr
	case []interface{}:
		arr := make([]interface{}, len(v))
		for i, item := range v {
			arr[i] = fromBSONValue(item)
		}
		return arr
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case primitive.DateTime:
		return float64(v)
	default:
		return value
	}
}
