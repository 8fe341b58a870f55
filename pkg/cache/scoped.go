package cache

// ScopedKeyer prefixes every key of an inner [Keyer], giving each
// deployment or tenant its own namespace in a shared Redis or MongoDB.
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer returns a keyer that prepends prefix. A nil inner keyer
// defaults to [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// LibraryKey returns the prefixed library key.
func (k *ScopedKeyer) LibraryKey(archHash string, opts LibraryKeyOpts) string {
	return k.prefix + k.inner.LibraryKey(archHash, opts)
}

// ArtifactKey returns the prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(libraryHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(libraryHash, opts)
}
