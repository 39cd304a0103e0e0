package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments can share
// one Redis instance without seeing each other's entries.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "gifshuffle:")
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

// TransformKey generates a prefixed transform key.
func (k *ScopedKeyer) TransformKey(inputHash string, opts TransformKeyOpts) string {
	return k.prefix + k.inner.TransformKey(inputHash, opts)
}

// InspectKey generates a prefixed inspect key.
func (k *ScopedKeyer) InspectKey(inputHash string) string {
	return k.prefix + k.inner.InspectKey(inputHash)
}
