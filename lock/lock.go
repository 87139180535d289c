// Package lock provides a named, TTL-bounded distributed mutex on kv.Store.
//
// The lock record self-expires after its TTL, so a crashed holder cannot
// wedge the key forever. There is no lease renewal: callers must pick a TTL
// that safely upper-bounds the protected critical section.
package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dealhub/dealcore/kv"
)

// ErrNotHeld reports that Unlock found no record owned by this mutex: either
// it was never acquired, it already expired, or it expired and the key was
// re-acquired by another holder. In all three cases nothing was deleted.
var ErrNotHeld = errors.New("lock: not held")

// Mutex is a single acquisition context for one lock key. Each Mutex carries
// its own holder token, so construct a fresh one per attempt; a Mutex must
// not be shared across goroutines.
type Mutex struct {
	store kv.Store
	key   string
	token string
}

// New creates a mutex for the given key. The key is used verbatim; callers
// own the naming scheme (e.g. "<prefix><id>:mutex", "lock:order:<userId>").
func New(store kv.Store, key string) *Mutex {
	return &Mutex{
		store: store,
		key:   key,
		token: uuid.NewString(),
	}
}

// TryLock attempts to create the lock record atomically. It fails fast:
// false means another holder owns the key right now, which is not an error.
func (m *Mutex) TryLock(ctx context.Context, ttl time.Duration) (bool, error) {
	return m.store.SetNX(ctx, m.key, []byte(m.token), ttl)
}

// Unlock removes the lock record only if it still carries this mutex's
// token, as one atomic read-compare-delete. Returns ErrNotHeld when the
// record is gone or owned by someone else.
func (m *Mutex) Unlock(ctx context.Context) error {
	ok, err := m.store.CompareDelete(ctx, m.key, []byte(m.token))
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotHeld
	}
	return nil
}

// Key returns the store key guarding this mutex.
func (m *Mutex) Key() string { return m.key }
