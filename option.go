// FILE: lixenwraith/envchain/option.go
package envchain

// Option configures the fallback contract of a single getter call.
type Option[T any] func(*fallback[T])

// fallback holds what a getter returns when no layer of the chain holds the key.
type fallback[T any] struct {
	value      T
	hasDefault bool
	required   bool
}

// Default supplies the value returned when no layer holds the key.
// A default always satisfies Required. Defaults are returned untouched:
// they are never stripped, parsed or passed through a transform.
func Default[T any](v T) Option[T] {
	return func(f *fallback[T]) {
		f.value = v
		f.hasDefault = true
	}
}

// Required makes a lookup fail with ErrMissing when no layer holds the key
// and no default was supplied.
func Required[T any]() Option[T] {
	return func(f *fallback[T]) {
		f.required = true
	}
}

func newFallback[T any](opts []Option[T]) fallback[T] {
	var f fallback[T]
	for _, opt := range opts {
		if opt != nil {
			opt(&f)
		}
	}
	return f
}

// settle applies the contract once the chain is exhausted.
func (f fallback[T]) settle(key string) (T, bool, error) {
	var zero T
	switch {
	case f.hasDefault:
		return f.value, true, nil
	case f.required:
		return zero, false, newError(ErrMissing, key, "")
	default:
		return zero, false, nil
	}
}
