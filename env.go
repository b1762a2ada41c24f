// FILE: lixenwraith/envchain/env.go
package envchain

import (
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/civil"
)

// Env resolves typed configuration values through a chain of sources.
//
// Every getter follows the same contract: the chain is walked from the highest
// precedence layer down, and the first layer holding a non-blank value for the
// key wins. When no layer holds it, Default supplies the result, Required turns
// the absence into an ErrMissing error, and otherwise the getter reports ok=false.
//
// An Env is immutable; Scope returns a new view and leaves the receiver untouched.
// It is safe for concurrent use.
type Env struct {
	src    Source
	logger *slog.Logger
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithLogger sets the logger receiving non-fatal diagnostics such as keys that
// are not written in kebab-case.
func WithLogger(logger *slog.Logger) EnvOption {
	return func(e *Env) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New wraps the head of a source chain.
func New(src Source, opts ...EnvOption) *Env {
	e := &Env{
		src:    orEmpty(src),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Source returns the head of the chain backing e.
func (e *Env) Source() Source {
	return e.src
}

// Layers names the sources consulted by e, highest precedence first.
func (e *Env) Layers() []string {
	return Describe(e.src)
}

// Scope returns a view in which key "k" resolves as "segment.k".
// Scopes nest one segment at a time:
//
//	beta, _ := env.MustScope("alpha").Scope("beta")
//	beta.String("gamma") // same as env.String("alpha.beta.gamma")
func (e *Env) Scope(segment string) (*Env, error) {
	src, err := Scoped(e.src, segment)
	if err != nil {
		return nil, err
	}
	return &Env{src: src, logger: e.logger}, nil
}

// MustScope is like Scope but panics on an empty segment.
func (e *Env) MustScope(segment string) *Env {
	scoped, err := e.Scope(segment)
	if err != nil {
		panic(fmt.Sprintf("envchain: %v", err))
	}
	return scoped
}

// String returns the stripped value of key.
func (e *Env) String(key string, opts ...Option[string]) (string, bool, error) {
	return resolve(e, key, coerceString, opts)
}

// Bool returns true for "true", "True" and "yes"; every other non-blank value is false.
func (e *Env) Bool(key string, opts ...Option[bool]) (bool, bool, error) {
	return resolve(e, key, coerceBool, opts)
}

// Int returns the base-10 integer value of key.
func (e *Env) Int(key string, opts ...Option[int]) (int, bool, error) {
	return resolve(e, key, coerceInt, opts)
}

// StringList splits the value of key on commas. Fragments are stripped and
// empty fragments dropped, so "," yields an empty list while a blank value is
// treated as missing.
func (e *Env) StringList(key string, opts ...Option[[]string]) ([]string, bool, error) {
	return resolve(e, key, coerceStrings, opts)
}

// IntList is like StringList but parses every fragment as an integer.
// One malformed fragment fails the whole lookup.
func (e *Env) IntList(key string, opts ...Option[[]int]) ([]int, bool, error) {
	return resolve(e, key, coerceInts, opts)
}

// Date returns the YYYY-MM-DD calendar date stored under key.
func (e *Env) Date(key string, opts ...Option[civil.Date]) (civil.Date, bool, error) {
	return resolve(e, key, coerceDate, opts)
}

// Time returns the time of day stored under key. Values carrying a UTC offset
// are rejected.
func (e *Env) Time(key string, opts ...Option[civil.Time]) (civil.Time, bool, error) {
	return resolve(e, key, coerceTime, opts)
}

// DateTime returns the datetime stored under key. With naive set the value must
// not carry a UTC offset and is returned in the Naive location; otherwise it
// must carry one. A default must match the requested awareness as well; this
// is checked before the chain is consulted.
func (e *Env) DateTime(key string, naive bool, opts ...Option[time.Time]) (time.Time, bool, error) {
	fb := newFallback(opts)
	if fb.hasDefault {
		if err := checkAwareness(qualifiedKey(e.src, key), fb.value, naive); err != nil {
			return time.Time{}, false, err
		}
	}
	return resolveWith(e, key, coerceDateTime(naive), fb)
}

// StringAs resolves key like String and passes the stripped value through fn.
// fn is never called for a missing value or for a default.
func StringAs[T any](e *Env, key string, fn func(string) (T, error), opts ...Option[T]) (T, bool, error) {
	return resolve(e, key, transformed(fn), opts)
}

// StringListAs resolves key like StringList and passes every retained fragment through fn.
func StringListAs[T any](e *Env, key string, fn func(string) (T, error), opts ...Option[[]T]) ([]T, bool, error) {
	return resolve(e, key, transformedList(fn), opts)
}

func resolve[T any](e *Env, key string, coerce coerceFunc[T], opts []Option[T]) (T, bool, error) {
	return resolveWith(e, key, coerce, newFallback(opts))
}

// resolveWith walks the chain from e's head to the terminal layer. Missing and
// blank values fall through; the first present value is coerced and returned.
func resolveWith[T any](e *Env, key string, coerce coerceFunc[T], fb fallback[T]) (T, bool, error) {
	var zero T
	fullKey := qualifiedKey(e.src, key)

	if key == "" {
		return zero, false, newError(ErrInvalidKey, fullKey, "key cannot be empty")
	}
	if !isKebabCase(fullKey) {
		e.logger.Warn("keys should use kebab-case", "key", fullKey)
	}

	for src := e.src; src != nil; src = src.Parent() {
		raw, ok, err := src.Lookup(key)
		if err != nil {
			return zero, false, err
		}
		if !ok {
			continue
		}
		raw, ok = stripRaw(raw)
		if !ok {
			continue
		}
		value, err := coerce(fullKey, raw)
		if err != nil {
			return zero, false, err
		}
		return value, true, nil
	}

	return fb.settle(fullKey)
}
