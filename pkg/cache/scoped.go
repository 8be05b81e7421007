package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation. This is
// useful when several sites share one Redis instance and need separate
// cache namespaces.
//
// Example usage:
//
//	siteKeyer := NewScopedKeyer(NewDefaultKeyer(), "site:acme:")
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

// RenderKey generates a prefixed key for a rendered page artifact.
func (k *ScopedKeyer) RenderKey(pageID string, rev int64, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(pageID, rev, opts)
}

// PageKey generates a prefixed key for a cached page document snapshot.
func (k *ScopedKeyer) PageKey(pageID string) string {
	return k.prefix + k.inner.PageKey(pageID)
}
