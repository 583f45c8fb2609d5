// Package cache provides the caching layer shared by the CLI, the API server
// and the live poller.
//
// # Backends
//
//   - [NullCache]: stores nothing; caching disabled
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: a Redis server, for API instances sharing a cache
//
// # Keys
//
// A [Keyer] derives keys for the three cached stages: fetched match lists
// (short-lived, brackets change while a championship runs), computed layouts,
// and rendered artifacts. Layout and artifact keys hash their inputs, so a
// changed match list or option never hits a stale entry.
package cache

import (
	"context"
	"time"
)

// TTLs per cached stage.
const (
	TTLMatches  = time.Minute
	TTLLayout   = 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// Cache stores opaque byte values by key.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}
