// FILE: lixenwraith/envchain/coerce.go
package envchain

import (
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// coerceFunc converts a present raw value into T. String input arrives stripped
// and non-blank; native input arrives exactly as the source normalized it.
type coerceFunc[T any] func(key string, raw any) (T, error)

// truthy is the complete set of strings read as true. Comparison is case-sensitive.
var truthy = map[string]bool{
	"true": true,
	"True": true,
	"yes":  true,
}

// stripRaw strips string input and reports whether anything is left.
// Native values are always present.
func stripRaw(raw any) (any, bool) {
	s, ok := raw.(string)
	if !ok {
		return raw, true
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	return s, true
}

func mismatch(key, want string, raw any) *Error {
	return newError(ErrStructure, key, "expected %s value, got %s", want, typeName(raw))
}

func coerceString(key string, raw any) (string, error) {
	if s, ok := raw.(string); ok {
		return s, nil
	}
	return "", mismatch(key, "string", raw)
}

func coerceBool(key string, raw any) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		return truthy[v], nil
	}
	return false, mismatch(key, "bool", raw)
}

func coerceInt(key string, raw any) (int, error) {
	switch v := raw.(type) {
	case int64:
		return int(v), nil
	case string:
		return parseInt(key, v)
	}
	return 0, mismatch(key, "int", raw)
}

func parseInt(key, s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, newError(ErrMalformed, key, "invalid integer %q", s)
	}
	return i, nil
}

// coerceStrings yields the retained fragments of a list value: a comma-separated
// string is split and stripped with empty fragments dropped; a native array must
// contain only strings, blank ones dropped.
func coerceStrings(key string, raw any) ([]string, error) {
	switch v := raw.(type) {
	case string:
		return splitList(v), nil
	case []any:
		result := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, newError(ErrStructure, key, "got %s element instead of string in list", typeName(item))
			}
			if s = strings.TrimSpace(s); s != "" {
				result = append(result, s)
			}
		}
		return result, nil
	}
	return nil, mismatch(key, "list", raw)
}

// coerceInts parses a list of integers atomically: the first bad element fails
// the whole lookup. Native arrays may hold integers and integer strings, the
// latter read with the same grammar as a scalar; booleans are rejected.
func coerceInts(key string, raw any) ([]int, error) {
	switch v := raw.(type) {
	case string:
		fragments := splitList(v)
		result := make([]int, 0, len(fragments))
		for _, fragment := range fragments {
			i, err := strconv.Atoi(fragment)
			if err != nil {
				return nil, newError(ErrMalformed, key, "invalid integer %q in list", fragment)
			}
			result = append(result, i)
		}
		return result, nil
	case []any:
		result := make([]int, 0, len(v))
		for _, item := range v {
			switch item := item.(type) {
			case int64:
				result = append(result, int(item))
			case string:
				s := strings.TrimSpace(item)
				if s == "" {
					continue
				}
				i, err := strconv.Atoi(s)
				if err != nil {
					return nil, newError(ErrMalformed, key, "invalid integer %q in list", s)
				}
				result = append(result, i)
			default:
				return nil, newError(ErrStructure, key, "got %s element instead of int in list", typeName(item))
			}
		}
		return result, nil
	}
	return nil, mismatch(key, "list", raw)
}

// splitList splits on commas, strips each fragment and drops empty ones.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if stripped := strings.TrimSpace(part); stripped != "" {
			result = append(result, stripped)
		}
	}
	return result
}

func coerceDate(key string, raw any) (civil.Date, error) {
	switch v := raw.(type) {
	case string:
		d, err := parseDate(v)
		if err != nil {
			return civil.Date{}, wrapError(ErrMalformed, key, err, "invalid date %q", v)
		}
		return d, nil
	case time.Time:
		if v.Location().String() == localDateZone {
			return civil.DateOf(v), nil
		}
	}
	return civil.Date{}, mismatch(key, "date", raw)
}

func coerceTime(key string, raw any) (civil.Time, error) {
	switch v := raw.(type) {
	case string:
		t, err := parseTime(v)
		if err != nil {
			return civil.Time{}, wrapError(ErrMalformed, key, err, "invalid time %q", v)
		}
		return t, nil
	case time.Time:
		if v.Location().String() == localTimeZone {
			return civil.TimeOf(v), nil
		}
		if !isLocalZone(v) {
			return civil.Time{}, newError(ErrAwareness, key, "received timezone-aware time")
		}
	}
	return civil.Time{}, mismatch(key, "time", raw)
}

// coerceDateTime returns a coercer that enforces the requested awareness.
func coerceDateTime(naive bool) coerceFunc[time.Time] {
	return func(key string, raw any) (time.Time, error) {
		var t time.Time
		switch v := raw.(type) {
		case string:
			parsed, err := parseDateTime(v)
			if err != nil {
				return time.Time{}, wrapError(ErrMalformed, key, err, "invalid datetime %q", v)
			}
			t = parsed
		case time.Time:
			switch v.Location().String() {
			case localDateZone, localTimeZone:
				return time.Time{}, mismatch(key, "datetime", raw)
			case naiveZone:
				t = NaiveDate(v.Year(), v.Month(), v.Day(), v.Hour(), v.Minute(), v.Second(), v.Nanosecond())
			default:
				t = v
			}
		default:
			return time.Time{}, mismatch(key, "datetime", raw)
		}

		if err := checkAwareness(key, t, naive); err != nil {
			return time.Time{}, err
		}
		return t, nil
	}
}

// checkAwareness fails when t's awareness differs from the requested one.
func checkAwareness(key string, t time.Time, naive bool) error {
	switch {
	case naive && !IsNaive(t):
		return newError(ErrAwareness, key, "received timezone-aware datetime, but a naive datetime was expected")
	case !naive && IsNaive(t):
		return newError(ErrAwareness, key, "received naive datetime, but a timezone-aware datetime was expected")
	}
	return nil
}

// isLocalZone reports whether t uses one of the decoder's offset-free zones.
func isLocalZone(t time.Time) bool {
	switch t.Location().String() {
	case naiveZone, localDateZone, localTimeZone:
		return true
	}
	return false
}

// transformed adapts a string coercer with a caller-supplied transform.
func transformed[T any](fn func(string) (T, error)) coerceFunc[T] {
	return func(key string, raw any) (T, error) {
		var zero T
		s, err := coerceString(key, raw)
		if err != nil {
			return zero, err
		}
		v, err := fn(s)
		if err != nil {
			return zero, wrapError(ErrMalformed, key, err, "transform failed for %q", s)
		}
		return v, nil
	}
}

// transformedList applies fn to every retained list fragment.
func transformedList[T any](fn func(string) (T, error)) coerceFunc[[]T] {
	return func(key string, raw any) ([]T, error) {
		fragments, err := coerceStrings(key, raw)
		if err != nil {
			return nil, err
		}
		result := make([]T, 0, len(fragments))
		for _, fragment := range fragments {
			v, err := fn(fragment)
			if err != nil {
				return nil, wrapError(ErrMalformed, key, err, "transform failed for list element %q", fragment)
			}
			result = append(result, v)
		}
		return result, nil
	}
}
