// Package cache provides the memoisation layer for engine operations.
//
// Layout operations are pure, so a result can be reused whenever the input
// layout and the options that influence it are unchanged. The [Cache]
// interface abstracts the storage backend:
//
//   - [NullCache]: caching disabled
//   - [FileCache]: one JSON file per entry, used by the CLI
//   - [RedisCache]: shared cache for several API servers
//
// Keys are built by a [Keyer] from the operation name, a content hash of the
// input and the option values ([OpKeyOpts]). [ScopedKeyer] adds a prefix so
// several tenants or versions can share one backend.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values by key.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// TTLResult is how long an engine result stays cached.
const TTLResult = 24 * time.Hour

// OpKeyOpts are the option values that change the result of an operation.
type OpKeyOpts struct {
	Cols             int        `json:"cols"`
	CompactType      string     `json:"compact_type"`
	AllowOverlap     bool       `json:"allow_overlap"`
	PreventCollision bool       `json:"prevent_collision"`
	MaxRows          int        `json:"max_rows,omitempty"`
	RowHeight        float64    `json:"row_height,omitempty"`
	ContainerWidth   float64    `json:"container_width,omitempty"`
	Margin           [2]float64 `json:"margin"`
	Padding          [2]float64 `json:"padding"`
}

// Keyer builds cache keys for engine operations.
type Keyer interface {
	// OpKey returns the key for running op on the input with the given
	// content hash.
	OpKey(op, inputHash string, opts OpKeyOpts) string
}

// DefaultKeyer hashes the operation inputs into "op:<name>:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// OpKey implements Keyer.
func (DefaultKeyer) OpKey(op, inputHash string, opts OpKeyOpts) string {
	return opKey(op, inputHash, opts)
}
