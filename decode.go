// FILE: lixenwraith/envchain/decode.go
package envchain

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/mitchellh/mapstructure"
)

// scanTag is the struct tag read by Scan.
const scanTag = "env"

var (
	durationType = reflect.TypeOf(time.Duration(0))
	timeType     = reflect.TypeOf(time.Time{})
	dateType     = reflect.TypeOf(civil.Date{})
	clockType    = reflect.TypeOf(civil.Time{})
)

// fieldTag holds the parsed `env:"name,required,naive"` tag of a field.
type fieldTag struct {
	name     string
	required bool
	naive    bool
	skip     bool
}

// Scan populates the struct pointed to by target from the chain.
//
// Each exported field is resolved through the getter matching its type:
// string, bool, signed and unsigned integers, []string, integer slices,
// time.Duration, civil.Date, civil.Time and time.Time. Nested structs are
// resolved in a scope named after the field. The key defaults to the
// kebab-cased field name and can be set with the env tag:
//
//	type Server struct {
//		Host    string        `env:"host,required"`
//		Timeout time.Duration // "timeout.seconds", "timeout.minutes", ...
//		Started time.Time     `env:"started-at,naive"`
//		TLS     struct{ Cert string } `env:"tls"`
//	}
//
// Fields whose key is configured nowhere keep their current value, so a
// pre-filled struct acts as the defaults. A required field fails with
// ErrMissing only when it is unconfigured and still holds its zero value.
// Embedded structs are flattened into the parent scope. A field tagged
// env:"-" is ignored.
func (e *Env) Scan(target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("scan target must be non-nil pointer to struct, got %T", target)
	}

	values := make(map[string]any)
	if err := scanStruct(e, rv.Elem(), "", values); err != nil {
		return err
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     target,
		TagName:    scanTag,
		Squash:     true,
		ZeroFields: true,
		MatchName: func(mapKey, fieldName string) bool {
			return mapKey == fieldName || mapKey == kebabCase(fieldName)
		},
	})
	if err != nil {
		return fmt.Errorf("decoder creation failed: %w", err)
	}

	if err := decoder.Decode(values); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	return nil
}

// scanStruct resolves the fields of v through e and records every configured
// value in out under its dot-separated path.
func scanStruct(e *Env, v reflect.Value, path string, out map[string]any) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		field := v.Field(i)

		if !sf.IsExported() {
			continue
		}
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct && !isLeafType(sf.Type) {
			if err := scanStruct(e, field, path, out); err != nil {
				return err
			}
			continue
		}

		tag, err := parseFieldTag(sf)
		if err != nil {
			return err
		}
		if tag.skip {
			continue
		}

		fieldPath := tag.name
		if path != "" {
			fieldPath = joinKey(path, tag.name)
		}

		if field.Kind() == reflect.Struct && !isLeafType(field.Type()) {
			scope, err := e.Scope(tag.name)
			if err != nil {
				return err
			}
			if err := scanStruct(scope, field, fieldPath, out); err != nil {
				return err
			}
			continue
		}

		value, ok, err := scanField(e, tag, field)
		if err != nil {
			return err
		}
		if !ok {
			if tag.required && field.IsZero() {
				return newError(ErrMissing, qualifiedKey(e.src, tag.name), "")
			}
			continue
		}
		setNestedValue(out, fieldPath, value)
	}
	return nil
}

// scanField resolves a single leaf field with the getter for its type.
func scanField(e *Env, tag fieldTag, field reflect.Value) (any, bool, error) {
	key := tag.name
	fullKey := qualifiedKey(e.src, key)

	switch field.Type() {
	case durationType:
		return lookupField(e.Duration, key)
	case timeType:
		return lookupField(func(k string, opts ...Option[time.Time]) (time.Time, bool, error) {
			return e.DateTime(k, tag.naive, opts...)
		}, key)
	case dateType:
		return lookupField(e.Date, key)
	case clockType:
		return lookupField(e.Time, key)
	}

	switch field.Kind() {
	case reflect.String:
		return lookupField(e.String, key)
	case reflect.Bool:
		return lookupField(e.Bool, key)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, ok, err := e.Int(key)
		if err != nil || !ok {
			return nil, ok, err
		}
		if err := checkIntRange(fullKey, field.Type(), n); err != nil {
			return nil, false, err
		}
		return n, true, nil
	case reflect.Slice:
		elem := field.Type().Elem()
		switch elem.Kind() {
		case reflect.String:
			return lookupField(e.StringList, key)
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			list, ok, err := e.IntList(key)
			if err != nil || !ok {
				return nil, ok, err
			}
			for _, n := range list {
				if err := checkIntRange(fullKey, elem, n); err != nil {
					return nil, false, err
				}
			}
			return list, true, nil
		}
	}

	return nil, false, newError(ErrStructure, fullKey, "unsupported field type %s", field.Type())
}

// lookupField adapts a typed getter to the untyped result collected by scanStruct.
func lookupField[T any](get func(string, ...Option[T]) (T, bool, error), key string) (any, bool, error) {
	v, ok, err := get(key)
	if err != nil || !ok {
		return nil, ok, err
	}
	return v, true, nil
}

// checkIntRange rejects values that do not fit the destination integer type.
func checkIntRange(key string, t reflect.Type, n int) error {
	v := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if n < 0 || v.OverflowUint(uint64(n)) {
			return newError(ErrMalformed, key, "%d overflows %s", n, t)
		}
	default:
		if v.OverflowInt(int64(n)) {
			return newError(ErrMalformed, key, "%d overflows %s", n, t)
		}
	}
	return nil
}

// parseFieldTag reads the env tag of sf, falling back to the kebab-cased field name.
func parseFieldTag(sf reflect.StructField) (fieldTag, error) {
	raw, hasTag := sf.Tag.Lookup(scanTag)
	if raw == "-" {
		return fieldTag{skip: true}, nil
	}

	parts := strings.Split(raw, ",")
	tag := fieldTag{name: strings.TrimSpace(parts[0])}
	for _, opt := range parts[1:] {
		switch strings.TrimSpace(opt) {
		case "required":
			tag.required = true
		case "naive":
			tag.naive = true
		case "":
		default:
			return fieldTag{}, fmt.Errorf("field %s: unknown %s tag option %q", sf.Name, scanTag, opt)
		}
	}

	if tag.name == "" {
		tag.name = kebabCase(sf.Name)
	}
	if hasTag && !isValidKeySegment(tag.name) {
		return fieldTag{}, newError(ErrInvalidKey, tag.name, "field %s: tag name must be a single key segment", sf.Name)
	}
	return tag, nil
}

// isLeafType reports whether a struct type is resolved as a single value.
func isLeafType(t reflect.Type) bool {
	return t == timeType || t == dateType || t == clockType
}
