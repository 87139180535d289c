package dealcore

import (
	"context"
	"errors"
	"fmt"
	"time"

	c "github.com/dealhub/dealcore/codec"
	"github.com/dealhub/dealcore/internal/wire"
	"github.com/dealhub/dealcore/kv"
	"github.com/dealhub/dealcore/lock"
)

const mutexSuffix = ":mutex"

type client[K comparable, V any] struct {
	prefix string
	store  kv.Store
	codec  c.Codec[V]
	log    Logger
	hooks  Hooks

	ttl         time.Duration
	mutexTTL    time.Duration
	logicalTTL  time.Duration
	negativeTTL time.Duration

	lockRetries    int
	lockRetryDelay time.Duration

	pool     *Pool
	ownsPool bool

	now func() time.Time
}

func newClient[K comparable, V any](opts Options[K, V]) (*client[K, V], error) {
	if opts.KeyPrefix == "" {
		return nil, fmt.Errorf("dealcore: key prefix is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("dealcore: store is required")
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("dealcore: codec is required")
	}

	cl := &client[K, V]{
		prefix: opts.KeyPrefix,
		store:  opts.Store,
		codec:  opts.Codec,
		now:    time.Now,
	}

	// defaults
	cl.log = coalesce[Logger](opts.Logger, NopLogger{})
	cl.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	cl.ttl = coalesce[time.Duration](opts.TTL, 30*time.Minute)
	cl.mutexTTL = coalesce[time.Duration](opts.MutexTTL, 10*time.Second)
	cl.logicalTTL = coalesce[time.Duration](opts.LogicalTTL, 30*time.Minute)
	cl.negativeTTL = coalesce[time.Duration](opts.NegativeTTL, 2*time.Minute)
	cl.lockRetries = coalesce[int](opts.LockRetries, 10)
	cl.lockRetryDelay = coalesce[time.Duration](opts.LockRetryDelay, 50*time.Millisecond)

	if opts.Rebuilders != nil {
		cl.pool = opts.Rebuilders
	} else {
		cl.pool = NewPool(4, 64)
		cl.ownsPool = true
	}
	return cl, nil
}

func (c *client[K, V]) Close(context.Context) error {
	if c.ownsPool {
		c.pool.Close()
	}
	return nil
}

func (c *client[K, V]) entryKey(id K) string {
	return c.prefix + fmt.Sprint(id)
}

func (c *client[K, V]) GetWithMutex(ctx context.Context, id K, loader LoaderFunc[K, V]) (V, error) {
	return c.loadLocked(ctx, c.entryKey(id), id, loader, c.decodePlain, c.writePhysical)
}

func (c *client[K, V]) GetWithLogicalExpire(ctx context.Context, id K, loader LoaderFunc[K, V]) (V, error) {
	var zero V
	key := c.entryKey(id)

	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		return zero, fmt.Errorf("dealcore: read %q: %w", key, err)
	}
	if ok {
		if len(raw) == 0 {
			cacheNegativeHits.Inc()
			return zero, ErrNotFound
		}
		env, derr := wire.Decode(raw)
		if derr == nil {
			v, verr := c.codec.Decode(env.Payload)
			if verr == nil {
				if !env.Expired(c.now()) {
					cacheHits.Inc()
					return v, nil
				}
				// logically stale: serve it, rebuild in the background
				cacheStaleServed.Inc()
				c.hooks.StaleServed(key)
				c.maybeRebuild(ctx, key, id, loader)
				return v, nil
			}
			c.selfHeal(ctx, key, "value_decode")
		} else {
			c.selfHeal(ctx, key, "corrupt")
		}
	}

	// first touch: nothing usable cached, so block under the mutex once
	return c.loadLocked(ctx, key, id, loader, c.decodeLogical, c.writeLogical)
}

// SetWithTTL caches v under id in the mutex-strategy form (physical TTL).
func (c *client[K, V]) SetWithTTL(ctx context.Context, id K, v V) error {
	return c.writePhysical(ctx, c.entryKey(id), v)
}

// SetWithLogicalExpire caches v under id in the logical-expiration form:
// no physical TTL, stale after now+LogicalTTL.
func (c *client[K, V]) SetWithLogicalExpire(ctx context.Context, id K, v V) error {
	return c.writeLogical(ctx, c.entryKey(id), v)
}

// Delete drops the cached entry. Call after mutating the system of record.
func (c *client[K, V]) Delete(ctx context.Context, id K) error {
	return c.store.Del(ctx, c.entryKey(id))
}

// loadLocked is the shared miss path: re-read the cache, and on a true miss
// serialize the rebuild behind the key's mutex. The loop re-reads before
// every lock attempt so contenders pick up the winner's write instead of
// hitting the loader themselves. Retries are bounded; exhausting them yields
// ErrLockUnavailable rather than recursing forever.
func (c *client[K, V]) loadLocked(
	ctx context.Context,
	key string,
	id K,
	loader LoaderFunc[K, V],
	decode func([]byte) (V, error),
	write func(context.Context, string, V) error,
) (V, error) {
	var zero V
	for attempt := 0; ; attempt++ {
		raw, ok, err := c.store.Get(ctx, key)
		if err != nil {
			return zero, fmt.Errorf("dealcore: read %q: %w", key, err)
		}
		if ok {
			if len(raw) == 0 {
				cacheNegativeHits.Inc()
				return zero, ErrNotFound
			}
			v, derr := decode(raw)
			if derr == nil {
				cacheHits.Inc()
				return v, nil
			}
			c.selfHeal(ctx, key, "value_decode")
		}
		if attempt == 0 {
			cacheMisses.Inc()
		}

		mu := lock.New(c.store, key+mutexSuffix)
		held, err := mu.TryLock(ctx, c.mutexTTL)
		if err != nil {
			return zero, fmt.Errorf("dealcore: acquire mutex for %q: %w", key, err)
		}
		if held {
			return c.fill(ctx, mu, key, id, loader, write)
		}

		c.hooks.LockContended(key)
		if attempt >= c.lockRetries {
			return zero, ErrLockUnavailable
		}
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(c.lockRetryDelay):
		}
	}
}

// fill runs the loader while the mutex is held and repopulates the cache.
// The mutex is always released, whatever the loader does.
func (c *client[K, V]) fill(
	ctx context.Context,
	mu *lock.Mutex,
	key string,
	id K,
	loader LoaderFunc[K, V],
	write func(context.Context, string, V) error,
) (V, error) {
	var zero V
	defer c.release(ctx, mu)

	v, found, err := loader(ctx, id)
	if err != nil {
		return zero, fmt.Errorf("dealcore: load %q: %w", key, err)
	}
	if !found {
		if serr := c.store.Set(ctx, key, nil, c.negativeTTL); serr != nil {
			c.log.Warn("negative marker write failed", Fields{"key": key, "err": serr})
		}
		c.hooks.NegativeCached(key)
		cacheNegativeMarks.Inc()
		return zero, ErrNotFound
	}
	if werr := write(ctx, key, v); werr != nil {
		// the value is good; serve it even if the cache write failed
		c.log.Warn("cache write failed", Fields{"key": key, "err": werr})
	}
	return v, nil
}

// maybeRebuild schedules at most one background rebuild for the key. Losing
// the mutex means a rebuild is already in flight somewhere in the system;
// losing a pool slot releases the mutex so the next stale read re-triggers.
func (c *client[K, V]) maybeRebuild(ctx context.Context, key string, id K, loader LoaderFunc[K, V]) {
	mu := lock.New(c.store, key+mutexSuffix)
	held, err := mu.TryLock(ctx, c.mutexTTL)
	if err != nil {
		c.log.Warn("rebuild mutex acquire failed", Fields{"key": key, "err": err})
		return
	}
	if !held {
		return
	}

	task := func() {
		// detached from the request: the caller already got its stale answer
		ctx := context.Background()
		defer c.release(ctx, mu)
		defer func() {
			if r := recover(); r != nil {
				c.log.Error("rebuild panic", Fields{"key": key, "panic": r})
			}
		}()

		cacheRebuilds.Inc()
		v, found, lerr := loader(ctx, id)
		if lerr != nil {
			// the stale value stays the system's answer until the next rebuild
			c.hooks.RebuildError(key, lerr)
			c.log.Error("rebuild load failed", Fields{"key": key, "err": lerr})
			return
		}
		if !found {
			if serr := c.store.Set(ctx, key, nil, c.negativeTTL); serr != nil {
				c.log.Warn("negative marker write failed", Fields{"key": key, "err": serr})
			}
			c.hooks.NegativeCached(key)
			cacheNegativeMarks.Inc()
			return
		}
		if werr := c.writeLogical(ctx, key, v); werr != nil {
			c.log.Warn("cache write failed", Fields{"key": key, "err": werr})
		}
	}

	if !c.pool.TrySubmit(task) {
		c.release(ctx, mu)
		c.hooks.RebuildDropped(key)
		cacheRebuildsDropped.Inc()
	}
}

func (c *client[K, V]) writePhysical(ctx context.Context, key string, v V) error {
	payload, err := c.codec.Encode(v)
	if err != nil {
		return fmt.Errorf("dealcore: encode for %q: %w", key, err)
	}
	return c.store.Set(ctx, key, payload, c.ttl)
}

func (c *client[K, V]) writeLogical(ctx context.Context, key string, v V) error {
	payload, err := c.codec.Encode(v)
	if err != nil {
		return fmt.Errorf("dealcore: encode for %q: %w", key, err)
	}
	env := wire.Envelope{ExpireAt: c.now().Add(c.logicalTTL), Payload: payload}
	return c.store.Set(ctx, key, wire.Encode(env), 0) // kept until rebuilt, never evicted
}

func (c *client[K, V]) decodePlain(raw []byte) (V, error) {
	return c.codec.Decode(raw)
}

func (c *client[K, V]) decodeLogical(raw []byte) (V, error) {
	env, err := wire.Decode(raw)
	if err != nil {
		var zero V
		return zero, err
	}
	return c.codec.Decode(env.Payload)
}

func (c *client[K, V]) selfHeal(ctx context.Context, key, reason string) {
	_ = c.store.Del(ctx, key)
	c.hooks.SelfHeal(key, reason)
	c.log.Debug("dropped malformed entry", Fields{"key": key, "reason": reason})
}

func (c *client[K, V]) release(ctx context.Context, mu *lock.Mutex) {
	if err := mu.Unlock(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, lock.ErrNotHeld) {
		c.log.Warn("mutex release failed", Fields{"key": mu.Key(), "err": err})
	}
}
