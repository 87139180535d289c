package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/dealhub/dealcore/kv/memory"
	"github.com/dealhub/dealcore/kv/redis"
)

func TestTryLockExcludesSecondHolder(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	m1 := New(store, "lock:order:7")
	held, err := m1.TryLock(ctx, time.Minute)
	require.NoError(t, err)
	require.True(t, held)

	m2 := New(store, "lock:order:7")
	held, err = m2.TryLock(ctx, time.Minute)
	require.NoError(t, err)
	require.False(t, held, "second holder must fail fast")

	require.NoError(t, m1.Unlock(ctx))

	held, err = m2.TryLock(ctx, time.Minute)
	require.NoError(t, err)
	require.True(t, held, "key is free after unlock")
}

func TestUnlockOnlyByHolder(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	m1 := New(store, "lock:x")
	held, _ := m1.TryLock(ctx, time.Minute)
	require.True(t, held)

	// a different mutex on the same key carries a different token
	m2 := New(store, "lock:x")
	require.ErrorIs(t, m2.Unlock(ctx), ErrNotHeld)

	// the record is untouched
	held, _ = m2.TryLock(ctx, time.Minute)
	require.False(t, held)

	require.NoError(t, m1.Unlock(ctx))
}

func TestUnlockWithoutAcquire(t *testing.T) {
	ctx := context.Background()
	m := New(memory.New(), "lock:x")
	require.ErrorIs(t, m.Unlock(ctx), ErrNotHeld)
}

// TestExpiredLockNotReleasedByOriginalHolder covers the lost-ownership race:
// the first holder's TTL fires, a second holder acquires, and only then does
// the first holder's release run. The compare-and-delete must leave the new
// record in place.
func TestExpiredLockNotReleasedByOriginalHolder(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	store, err := redis.New(redis.Config{Client: client, CloseClient: true})
	require.NoError(t, err)
	defer store.Close(ctx)

	m1 := New(store, "lock:order:9")
	held, err := m1.TryLock(ctx, time.Second)
	require.NoError(t, err)
	require.True(t, held)

	mr.FastForward(2 * time.Second) // m1's record expires

	m2 := New(store, "lock:order:9")
	held, err = m2.TryLock(ctx, time.Minute)
	require.NoError(t, err)
	require.True(t, held, "expired key is acquirable")

	// the late release by the original holder must be a no-op
	require.ErrorIs(t, m1.Unlock(ctx), ErrNotHeld)

	// m2 still owns the record and can release it
	require.NoError(t, m2.Unlock(ctx))
}
