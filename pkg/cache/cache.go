// Package cache provides byte-level caching for index responses.
//
// # Overview
//
// All backends implement [Cache]: opaque byte values with an optional TTL.
// Values are raw HTTP response bodies together with their content type, so
// a cached page goes through the same decoder as a fresh one.
//
// Backends:
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [MemoryCache]: bounded in-process LRU
//   - [RedisCache]: shared cache for several proxy instances
//   - [MongoCache]: shared cache with server-side expiry
//   - [NullCache]: caching disabled
//
// # Keys
//
// Keys are produced by a [Keyer] so that every backend sees the same key
// layout. [ScopedKeyer] prefixes keys to separate upstream indexes that
// share one backend.
package cache

import (
	"context"
	"time"
)

// Cache stores byte values under string keys.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key. A miss is reported as ok=false with a
	// nil error; expired entries are misses.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Set stores data under key. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer generates cache keys.
type Keyer interface {
	// DocumentKey returns the key for the response to a GET of url with the
	// given Accept header. Different Accept values may yield different
	// representations and never share a key.
	DocumentKey(url, accept string) string
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns a [DefaultKeyer].
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// DocumentKey returns "doc:<sha256>" of the url and accept pair.
func (DefaultKeyer) DocumentKey(url, accept string) string {
	return hashKey("doc", url, accept)
}
