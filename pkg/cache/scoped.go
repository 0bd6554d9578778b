package cache

// ScopedKeyer wraps a Keyer with a prefix.
// The proxy uses one scope per upstream index so that several upstreams can
// share a Redis or MongoDB backend:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "upstream:pypi.org:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// DocumentKey generates a prefixed key for a negotiated document.
func (k *ScopedKeyer) DocumentKey(url, accept string) string {
	return k.prefix + k.inner.DocumentKey(url, accept)
}
