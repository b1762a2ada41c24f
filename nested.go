// FILE: lixenwraith/envchain/nested.go
package envchain

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"time"
)

// nestedSource stores values decoded from a structured document (TOML, YAML, JSON).
// Keys are resolved by walking the nested tables one segment at a time.
type nestedSource struct {
	name   string
	values map[string]any
	parent Source
}

// NewNested creates a structured-document layer over values, falling back to parent.
// The input is copied and normalized: integers become int64, floats become their
// decimal string form, tables become map[string]any and arrays become []any.
// Values of any other type are rejected.
func NewNested(name string, values map[string]any, parent Source) (Source, error) {
	normalized, err := normalizeTable(values, "")
	if err != nil {
		return nil, fmt.Errorf("failed to normalize %s: %w", name, err)
	}
	return &nestedSource{
		name:   name,
		values: normalized,
		parent: orEmpty(parent),
	}, nil
}

// Lookup implements the Source interface.
func (s *nestedSource) Lookup(key string) (any, bool, error) {
	value, err := navigateToPath(s.values, key)
	if err != nil {
		return nil, false, err
	}
	if value == nil {
		return nil, false, nil
	}
	return value, true, nil
}

// Parent implements the Source interface.
func (s *nestedSource) Parent() Source {
	return s.parent
}

// Name implements the Named interface.
func (s *nestedSource) Name() string {
	return s.name
}

// navigateToPath walks nested tables along the dot-separated key.
// A missing segment yields nil; a segment that lands on a non-table value
// before the key is exhausted is a structural error.
func navigateToPath(nested map[string]any, key string) (any, error) {
	current := any(nested)

	for _, segment := range splitKey(key) {
		switch v := current.(type) {
		case map[string]any:
			current = v[segment]
		case nil:
			return nil, nil
		default:
			return nil, newError(ErrStructure, key, "tried to get nested key %q from %s value", segment, typeName(v))
		}
	}

	return current, nil
}

// normalizeTable copies a decoded table into the canonical representation.
func normalizeTable(table map[string]any, path string) (map[string]any, error) {
	out := make(map[string]any, len(table))
	for key, value := range table {
		childPath := key
		if path != "" {
			childPath = path + "." + key
		}
		normalized, err := normalizeValue(value, childPath)
		if err != nil {
			return nil, err
		}
		out[key] = normalized
	}
	return out, nil
}

// normalizeValue maps decoder-specific types onto string, int64, bool, time.Time,
// []any and map[string]any.
func normalizeValue(value any, path string) (any, error) {
	switch v := value.(type) {
	case nil, string, bool, int64, time.Time:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}
		return v.String(), nil
	case map[string]any:
		return normalizeTable(v, path)
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > uint64(int64(^uint64(0)>>1)) {
			return nil, fmt.Errorf("value at %q overflows int64: %d", path, u)
		}
		return int64(u), nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Slice, reflect.Array:
		items := make([]any, rv.Len())
		for i := range items {
			item, err := normalizeValue(rv.Index(i).Interface(), fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			items[i] = item
		}
		return items, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("table at %q has non-string keys (%s)", path, rv.Type().Key())
		}
		table := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			table[iter.Key().String()] = iter.Value().Interface()
		}
		return normalizeTable(table, path)
	}

	return nil, fmt.Errorf("unsupported value type %T at %q", value, path)
}

// typeName names a normalized value's type for error messages.
func typeName(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "bool"
	case int64:
		return "int"
	case time.Time:
		return "datetime"
	case []any:
		return "array"
	case map[string]any:
		return "table"
	default:
		return fmt.Sprintf("%T", v)
	}
}
