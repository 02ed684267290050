package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// This is useful when several servers or engine versions share one Redis
// instance and must not read each other's results.
//
// Example usage:
//
//	// Results of this build only
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "stackgrid:v1:")
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

// OpKey generates a prefixed key for an engine operation.
func (k *ScopedKeyer) OpKey(op, inputHash string, opts OpKeyOpts) string {
	return k.prefix + k.inner.OpKey(op, inputHash, opts)
}
