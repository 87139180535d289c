// Package kv defines the key/value store abstraction shared by the cache
// client, the distributed lock and the id generator.
//
// Implementations MUST be safe for concurrent use and byte-for-byte
// transparent: Get must return exactly the []byte previously passed to Set
// for the same key (no prepended/appended metadata, no re-encoding).
//
// SetNX, CompareDelete and Incr are the three atomicity anchors of this
// module: SetNX backs mutex acquisition, CompareDelete backs safe mutex
// release, Incr backs id sequencing. An implementation that cannot provide
// them as single atomic operations is not a valid Store.
package kv

import (
	"context"
	"time"
)

// Store is a minimal byte store with TTLs and three atomic primitives.
// A ttl <= 0 means "no expiry".
type Store interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set stores value with the given TTL, overwriting any previous value.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// SetNX stores value with the given TTL only if the key does not exist.
	// Returns true when this call created the key. Atomic.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// CompareDelete deletes the key only if its current value equals expect,
	// as one atomic read-compare-delete. Returns true when the key was
	// deleted by this call.
	CompareDelete(ctx context.Context, key string, expect []byte) (bool, error)

	// Incr atomically increments the integer value at key by one, creating
	// it at 0 first when absent, and returns the new value.
	Incr(ctx context.Context, key string) (int64, error)

	// Del removes a key (best-effort).
	Del(ctx context.Context, key string) error

	// Close releases resources.
	Close(ctx context.Context) error
}
