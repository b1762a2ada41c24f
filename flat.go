// FILE: lixenwraith/envchain/flat.go
package envchain

// flatSource stores environment-style values: a flat map from physical
// SCREAMING__SNAKE names to raw strings.
type flatSource struct {
	name   string
	values map[string]string
	parent Source
}

// NewFlat creates an environment-style layer over values, falling back to parent.
// The map is copied; later changes to values do not affect the source.
// A nil parent is replaced by the terminal source.
func NewFlat(name string, values map[string]string, parent Source) Source {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &flatSource{
		name:   name,
		values: copied,
		parent: orEmpty(parent),
	}
}

// FromMap creates a chain holding a single environment-style layer.
func FromMap(values map[string]string, opts ...EnvOption) *Env {
	return New(NewFlat("map", values, nil), opts...)
}

// Lookup implements the Source interface.
func (s *flatSource) Lookup(key string) (any, bool, error) {
	value, ok := s.values[EnvKey(key)]
	if !ok {
		return nil, false, nil
	}
	return value, true, nil
}

// Parent implements the Source interface.
func (s *flatSource) Parent() Source {
	return s.parent
}

// Name implements the Named interface.
func (s *flatSource) Name() string {
	return s.name
}
