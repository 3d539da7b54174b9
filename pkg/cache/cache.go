// Package cache stores repaired documents so identical inputs are served
// without re-running the automaton. Backends: file (CLI default), redis
// (shared between processes), null (caching disabled).
package cache

import (
	"context"
	"time"
)

// Cache is the interface all backends implement. Data is opaque bytes; a
// zero ttl means the entry never expires.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given time-to-live.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer derives cache keys from repair inputs.
type Keyer interface {
	// RepairKey returns the key for a repair result. Inputs that differ in
	// content or in the events flag never share a key.
	RepairKey(input []byte, events bool) string
}

// DefaultKeyer hashes the input document into the key, so arbitrarily large
// inputs map to fixed-size keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// RepairKey generates a key of the form repair:<sha256>.
func (DefaultKeyer) RepairKey(input []byte, events bool) string {
	return hashKey("repair", Hash(input), events)
}
