// Package cache stores computed label layouts between runs.
//
// # Backends
//
//   - [NullCache] never stores anything (--no-cache).
//   - [FileCache] keeps one JSON entry per key under a directory, sharded by
//     the first two characters of the key hash. Used by the CLI.
//   - [RedisCache] stores entries in redis with native expiry. Used by the
//     server when several instances share results.
//
// # Keys
//
// A [Keyer] derives keys from the hash of the input map and the options
// that affect the output, so any change to either produces a new key:
//
//	key := keyer.LayoutKey(cache.Hash(mapJSON), opts)
//
// [ScopedKeyer] prefixes every key, which keeps tenants or environments apart
// when they share a redis instance.
//
// Cached data is an optimisation only. A miss, an expired entry or an
// unreadable entry all lead to recomputing the same result.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the data stored under key. The boolean is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases any resources held by the cache.
	Close() error
}

// TTLLayout is how long a computed layout stays cached.
const TTLLayout = 24 * time.Hour
