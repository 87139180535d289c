package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestSetGetDel(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set(ctx, "k", []byte("v"), 0))
	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v"), got)

	// returned slice is a copy; mutating it must not poison the store
	got[0] = 'x'
	got2, _, _ := s.Get(ctx, "k")
	require.Equal(t, []byte("v"), got2)

	require.NoError(t, s.Del(ctx, "k"))
	_, ok, _ = s.Get(ctx, "k")
	require.False(t, ok)
}

func TestEmptyValueIsAHit(t *testing.T) {
	// negative markers are empty values, distinct from a genuine miss
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Set(ctx, "k", nil, 0))
	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Empty(t, got)
}

func TestTTLExpiry(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Set(ctx, "k", []byte("v"), 30*time.Millisecond))
	_, ok, _ := s.Get(ctx, "k")
	require.True(t, ok)

	time.Sleep(50 * time.Millisecond)
	_, ok, _ = s.Get(ctx, "k")
	require.False(t, ok, "entry should expire")
}

func TestSetNX(t *testing.T) {
	ctx := context.Background()
	s := New()

	created, err := s.SetNX(ctx, "k", []byte("a"), 0)
	require.NoError(t, err)
	require.True(t, created)

	created, err = s.SetNX(ctx, "k", []byte("b"), 0)
	require.NoError(t, err)
	require.False(t, created, "second SetNX must lose")

	got, _, _ := s.Get(ctx, "k")
	require.Equal(t, []byte("a"), got)
}

func TestSetNXAfterExpiry(t *testing.T) {
	ctx := context.Background()
	s := New()

	created, _ := s.SetNX(ctx, "k", []byte("a"), 20*time.Millisecond)
	require.True(t, created)

	time.Sleep(40 * time.Millisecond)
	created, _ = s.SetNX(ctx, "k", []byte("b"), 0)
	require.True(t, created, "SetNX should win over an expired record")
}

func TestCompareDelete(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Set(ctx, "k", []byte("token-1"), 0))

	ok, err := s.CompareDelete(ctx, "k", []byte("token-2"))
	require.NoError(t, err)
	require.False(t, ok, "mismatched value must not delete")
	_, present, _ := s.Get(ctx, "k")
	require.True(t, present)

	ok, err = s.CompareDelete(ctx, "k", []byte("token-1"))
	require.NoError(t, err)
	require.True(t, ok)
	_, present, _ = s.Get(ctx, "k")
	require.False(t, present)

	ok, err = s.CompareDelete(ctx, "k", []byte("token-1"))
	require.NoError(t, err)
	require.False(t, ok, "missing key is not a delete")
}

func TestIncrSequence(t *testing.T) {
	ctx := context.Background()
	s := New()

	for want := int64(1); want <= 5; want++ {
		got, err := s.Incr(ctx, "ctr")
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestIncrConcurrent(t *testing.T) {
	ctx := context.Background()
	s := New()

	const workers, perWorker = 8, 250
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for j := 0; j < perWorker; j++ {
				if _, err := s.Incr(ctx, "ctr"); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	final, err := s.Incr(ctx, "ctr")
	require.NoError(t, err)
	require.Equal(t, int64(workers*perWorker+1), final)
}

func TestIncrNonInteger(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Set(ctx, "k", []byte("oops"), 0))
	_, err := s.Incr(ctx, "k")
	require.Error(t, err)
}
