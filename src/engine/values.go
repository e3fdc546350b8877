package engine

import (
	"encoding/json"
	"reflect"
)

// deepCopyValue clones a JSON value. Scalars are returned as-is, maps and
// slices are copied recursively. Encrypted strings pass through untouched.
func deepCopyValue(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		return deepCopyDocument(v)
	case []interface{}:
		clone := make([]interface{}, len(v))
		for i, item := range v {
			clone[i] = deepCopyValue(item)
		}
		return clone
	default:
		return value
	}
}

func deepCopyDocument(doc map[string]interface{}) map[string]interface{} {
	clone := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		clone[k] = deepCopyValue(v)
	}
	return clone
}

// deepEqual reports whether two JSON values are structurally equal. Numbers
// only compare equal when they share a representation, which matches how
// values round-trip through the JSON files.
func deepEqual(a, b interface{}) bool {
	return reflect.DeepEqual(a, b)
}

// asNumber coerces the numeric types a value can hold, whether it was set in
// memory or reloaded from a JSON file.
func asNumber(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
