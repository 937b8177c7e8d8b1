package cache

// ScopedKeyer wraps a Keyer with a prefix, isolating tenants or
// environments that share one backend.
//
//	k := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer uses
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(graphHash, opts)
}

func (k *ScopedKeyer) FrameKey(layoutHash string, opts FrameKeyOpts) string {
	return k.prefix + k.inner.FrameKey(layoutHash, opts)
}

func (k *ScopedKeyer) SessionKey(layoutHash string) string {
	return k.prefix + k.inner.SessionKey(layoutHash)
}
