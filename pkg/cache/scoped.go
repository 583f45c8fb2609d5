package cache

// ScopedKeyer prefixes every key of an inner [Keyer]. API instances use it
// to keep one deployment's entries apart from another's in a shared Redis.
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer selects
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) MatchesKey(source string, championshipID int) string {
	return k.prefix + k.inner.MatchesKey(source, championshipID)
}

func (k *ScopedKeyer) LayoutKey(matchesHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(matchesHash, opts)
}

func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
