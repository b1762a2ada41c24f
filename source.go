// FILE: lixenwraith/envchain/source.go
package envchain

import (
	"fmt"
	"strings"
)

// Source is one layer of a configuration chain.
//
// Lookup resolves a logical key against the layer's own storage only. It reports
// ok=false when the layer does not hold the key; it never consults the parent.
// The returned raw value is either a string (to be stripped and coerced) or a
// native value decoded from a structured document (int64, bool, time.Time, []any).
//
// Parent returns the next lower-precedence layer, or nil for the terminal layer.
type Source interface {
	Lookup(key string) (raw any, ok bool, err error)
	Parent() Source
}

// Named is implemented by sources that can describe themselves for debugging.
type Named interface {
	Name() string
}

// emptySource is the terminal layer of every chain. It never holds a value;
// reaching it means the default/required contract decides the result.
type emptySource struct{}

// Empty returns the terminal source.
func Empty() Source {
	return emptySource{}
}

// Lookup implements the Source interface.
func (emptySource) Lookup(string) (any, bool, error) {
	return nil, false, nil
}

// Parent implements the Source interface.
func (emptySource) Parent() Source {
	return nil
}

// Name implements the Named interface.
func (emptySource) Name() string {
	return "empty"
}

// orEmpty substitutes the terminal source for a nil parent.
func orEmpty(parent Source) Source {
	if parent == nil {
		return Empty()
	}
	return parent
}

// qualifiedKey returns the key as the underlying storage sees it, with every
// scope prefix of src applied. Used for error messages.
func qualifiedKey(src Source, key string) string {
	for {
		s, ok := src.(*scopedSource)
		if !ok {
			return key
		}
		key = joinKey(s.prefix, key)
		src = s.src
	}
}

// Describe lists the layers of a chain, highest precedence first.
func Describe(src Source) []string {
	var layers []string
	for s := src; s != nil; s = s.Parent() {
		layers = append(layers, sourceName(s))
	}
	return layers
}

func sourceName(s Source) string {
	if n, ok := s.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", s)
}

// chainString renders a chain as "env > file:.env > empty".
func chainString(src Source) string {
	return strings.Join(Describe(src), " > ")
}
