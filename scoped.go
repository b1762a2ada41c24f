// FILE: lixenwraith/envchain/scoped.go
package envchain

import "strings"

// scopedSource is a key-rewriting view: every lookup is forwarded to src with
// prefix prepended as a new leading segment. It owns no storage.
type scopedSource struct {
	src    Source
	prefix string
}

// Scoped returns a view of src in which key "k" resolves as "segment.k".
// The segment must be a single non-empty key segment; src is not modified.
func Scoped(src Source, segment string) (Source, error) {
	if segment == "" {
		return nil, newError(ErrInvalidKey, segment, "scope segment cannot be empty")
	}
	if strings.Contains(segment, ".") {
		return nil, newError(ErrInvalidKey, segment, "scope segment cannot contain '.', scope one segment at a time")
	}
	return &scopedSource{src: orEmpty(src), prefix: segment}, nil
}

// Lookup implements the Source interface.
func (s *scopedSource) Lookup(key string) (any, bool, error) {
	return s.src.Lookup(joinKey(s.prefix, key))
}

// Parent implements the Source interface.
// The parent of a scoped view is the same scope applied to the wrapped source's
// parent, so walking a scoped chain visits every layer under the same prefix.
func (s *scopedSource) Parent() Source {
	parent := s.src.Parent()
	if parent == nil {
		return nil
	}
	return &scopedSource{src: parent, prefix: s.prefix}
}

// Name implements the Named interface.
func (s *scopedSource) Name() string {
	return sourceName(s.src) + "/" + s.prefix
}
