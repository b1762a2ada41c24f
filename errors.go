// FILE: lixenwraith/envchain/errors.go
package envchain

import (
	"errors"
	"fmt"
)

// Error categories. Every lookup failure is an *Error whose Kind is one of these,
// so callers can match with errors.Is.
var (
	// ErrMissing indicates a required value was absent from every layer of the chain
	ErrMissing = errors.New("missing config value")
	// ErrMalformed indicates a raw value could not be coerced to the requested type
	ErrMalformed = errors.New("malformed config value")
	// ErrAwareness indicates a timezone-awareness mismatch for a datetime or time value
	ErrAwareness = errors.New("timezone awareness mismatch")
	// ErrStructure indicates the stored value has the wrong shape for the lookup
	ErrStructure = errors.New("config structure mismatch")
	// ErrInvalidKey indicates an empty key, or a scope segment that is empty or dotted
	ErrInvalidKey = errors.New("invalid config key")
)

// ErrConfigNotFound is returned by the loader when a file marked as required does not exist.
var ErrConfigNotFound = errors.New("config file not found")

// Error describes a failed lookup for a single key.
type Error struct {
	Key  string // logical key as seen by the chain (scope prefixes included)
	Kind error  // one of the Err* categories
	Msg  string
	Err  error // underlying cause, if any
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s for key %q", e.Kind, e.Key)
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports whether target is the error's category.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind error, key, format string, args ...any) *Error {
	return &Error{Key: key, Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func wrapError(kind error, key string, err error, format string, args ...any) *Error {
	return &Error{Key: key, Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}
