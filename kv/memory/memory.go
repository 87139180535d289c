// Package memory implements kv.Store in-process on a concurrent map.
// Suitable for tests and single-node deployments; atomicity of SetNX,
// CompareDelete and Incr comes from xsync's per-key Compute.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/dealhub/dealcore/kv"
)

type entry struct {
	val []byte
	exp time.Time // zero => no expiry
}

func (e entry) expired(now time.Time) bool {
	return !e.exp.IsZero() && now.After(e.exp)
}

type Store struct {
	m *xsync.MapOf[string, entry]
}

var _ kv.Store = (*Store)(nil)

func New() *Store {
	return &Store{m: xsync.NewMapOf[string, entry]()}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	e, ok := s.m.Load(key)
	if !ok {
		return nil, false, nil
	}
	if e.expired(time.Now()) {
		// lazy eviction; re-check under Compute so a racing fresh write survives
		s.m.Compute(key, func(old entry, loaded bool) (entry, bool) {
			return old, loaded && old.expired(time.Now())
		})
		return nil, false, nil
	}
	return bytes.Clone(e.val), true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.m.Store(key, entry{val: bytes.Clone(value), exp: expiry(ttl)})
	return nil
}

func (s *Store) SetNX(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	created := false
	s.m.Compute(key, func(old entry, loaded bool) (entry, bool) {
		if loaded && !old.expired(time.Now()) {
			return old, false
		}
		created = true
		return entry{val: bytes.Clone(value), exp: expiry(ttl)}, false
	})
	return created, nil
}

func (s *Store) CompareDelete(_ context.Context, key string, expect []byte) (bool, error) {
	deleted := false
	s.m.Compute(key, func(old entry, loaded bool) (entry, bool) {
		if !loaded {
			return old, false
		}
		if old.expired(time.Now()) {
			return entry{}, true // stale record, but not "deleted by this call"
		}
		if bytes.Equal(old.val, expect) {
			deleted = true
			return entry{}, true
		}
		return old, false
	})
	return deleted, nil
}

func (s *Store) Incr(_ context.Context, key string) (int64, error) {
	var (
		next     int64
		parseErr error
	)
	s.m.Compute(key, func(old entry, loaded bool) (entry, bool) {
		var cur int64
		exp := time.Time{}
		if loaded && !old.expired(time.Now()) {
			v, err := strconv.ParseInt(string(old.val), 10, 64)
			if err != nil {
				parseErr = err
				return old, false
			}
			cur = v
			exp = old.exp
		}
		next = cur + 1
		return entry{val: []byte(strconv.FormatInt(next, 10)), exp: exp}, false
	})
	if parseErr != nil {
		return 0, fmt.Errorf("memory store: non-integer value at %q: %w", key, parseErr)
	}
	return next, nil
}

func (s *Store) Del(_ context.Context, key string) error {
	s.m.Delete(key)
	return nil
}

func (s *Store) Close(context.Context) error { return nil }

func expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(ttl)
}
