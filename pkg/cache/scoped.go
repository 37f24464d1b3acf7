package cache

// ScopedKeyer wraps a Keyer with a prefix so that several key spaces can
// share one backend.
//
// Example usage:
//
//	// Entries written by one release are never read by another
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "v"+buildinfo.Version+":")
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

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(contentHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(contentHash, opts)
}

// TreeKey generates a prefixed key for tree caching.
func (k *ScopedKeyer) TreeKey(contentHash string, strict bool) string {
	return k.prefix + k.inner.TreeKey(contentHash, strict)
}
