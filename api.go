package dealcore

import (
	"context"
	"time"

	c "github.com/dealhub/dealcore/codec"
	"github.com/dealhub/dealcore/kv"
)

// LoaderFunc loads an entity from the system of record. found=false means
// "confirmed absent" and is cached with a negative marker; err is reserved
// for transient source failures and is never cached.
type LoaderFunc[K comparable, V any] func(ctx context.Context, id K) (v V, found bool, err error)

// Client is the generic read-through cache for one entity type under one key
// prefix. K is the entity id type, V the entity type. Serialization is
// handled by a pluggable Codec[V].
//
// A key must stick to one strategy: entries written by the mutex path carry
// a physical TTL, entries written by the logical-expire path carry a stale
// timestamp and no TTL. Mixing strategies on the same key makes each path
// treat the other's bytes as malformed.
type Client[K comparable, V any] interface {
	// GetWithMutex is the blocking strategy: penetration protection via
	// negative markers, breakdown protection via the per-key rebuild mutex.
	// Returns ErrNotFound for confirmed-absent ids and ErrLockUnavailable
	// when the mutex stayed busy for the whole retry budget.
	GetWithMutex(ctx context.Context, id K, loader LoaderFunc[K, V]) (V, error)

	// GetWithLogicalExpire is the non-blocking strategy: stale entries are
	// served immediately while at most one background rebuild per key runs
	// on the worker pool. Only a first-touch miss blocks (bootstrapped
	// through the mutex path).
	GetWithLogicalExpire(ctx context.Context, id K, loader LoaderFunc[K, V]) (V, error)

	// Write-side helpers for code that updates the system of record.
	SetWithTTL(ctx context.Context, id K, v V) error
	SetWithLogicalExpire(ctx context.Context, id K, v V) error
	Delete(ctx context.Context, id K) error

	// Close stops the owned rebuild pool (injected pools are left alone).
	// The Store is caller-owned and never closed here.
	Close(ctx context.Context) error
}

// Options tune the behavior of the cache client.
// Only KeyPrefix, Store and Codec are required; others have sensible defaults.
type Options[K comparable, V any] struct {
	// Required
	KeyPrefix string // entity key prefix, e.g. "cache:shop:"
	Store     kv.Store
	Codec     c.Codec[V]

	TTL            time.Duration // physical TTL for mutex-strategy entries; 0 => 30m
	MutexTTL       time.Duration // rebuild mutex TTL; 0 => 10s
	LogicalTTL     time.Duration // staleness horizon for logical entries; 0 => 30m
	NegativeTTL    time.Duration // negative marker TTL; 0 => 2m
	LockRetries    int           // bounded retries when the mutex is busy; 0 => 10
	LockRetryDelay time.Duration // pause between retries; 0 => 50ms
	Logger         Logger        // if nil, NopLogger is used
	Hooks          Hooks         // if nil, NopHooks is used
	Rebuilders     *Pool         // if nil, an owned NewPool(4, 64) is used
}

func New[K comparable, V any](opts Options[K, V]) (Client[K, V], error) {
	return newClient[K, V](opts)
}
