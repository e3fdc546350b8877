package engine

// FieldDefault is one field of a collection's default-value template. A
// literal default is filled verbatim into new entries; an auto-increment
// default materializes as one more than the field's current maximum across
// the collection, falling back to the seed when no numeric value exists yet.
type FieldDefault struct {
	Name          string
	Value         interface{}
	autoIncrement bool
}

// Literal declares a template field with a fixed default value.
func Literal(name string, value interface{}) FieldDefault {
	return FieldDefault{Name: name, Value: value}
}

// AutoIncrement declares a template field whose value is derived from the
// collection's existing entries. seed is used while no entry carries a
// numeric value for the field.
func AutoIncrement(name string, seed interface{}) FieldDefault {
	return FieldDefault{Name: name, Value: seed, autoIncrement: true}
}

// IsAutoIncrement reports whether the field derives its value from existing
// entries rather than holding a fixed default.
func (f FieldDefault) IsAutoIncrement() bool {
	return f.autoIncrement
}

// nextValue computes the materialized value of the field for a new entry
// given the current entry list.
func (f FieldDefault) nextValue(entries []map[string]interface{}) interface{} {
	if !f.autoIncrement {
		return deepCopyValue(f.Value)
	}

	max, found := 0.0, false
	for _, entry := range entries {
		existing, ok := entry[f.Name]
		if !ok {
			continue
		}
		n, ok := asNumber(existing)
		if !ok {
			continue
		}
		if !found || n > max {
			max, found = n, true
		}
	}

	if !found {
		return deepCopyValue(f.Value)
	}
	return max + 1
}
