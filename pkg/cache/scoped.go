package cache

// ScopedKeyer wraps a Keyer with a prefix so that several users of one
// backend get separate namespaces.
//
//	staging := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "staging:")
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

// IndexKey generates a prefixed index key.
func (k *ScopedKeyer) IndexKey(mapHash string) string {
	return k.prefix + k.inner.IndexKey(mapHash)
}

// LayoutKey generates a prefixed layout key.
func (k *ScopedKeyer) LayoutKey(mapHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(mapHash, opts)
}
