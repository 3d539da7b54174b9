package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation. Useful
// when one cache directory or redis keyspace is shared by several callers
// that must not see each other's entries.
//
// Example usage:
//
//	// Per-client keys behind the serve command
//	clientKeyer := NewScopedKeyer(NewDefaultKeyer(), "client:abc123:")
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

// RepairKey generates a prefixed key for a repair result.
func (k *ScopedKeyer) RepairKey(input []byte, events bool) string {
	return k.prefix + k.inner.RepairKey(input, events)
}
