// Package asynchook wraps a dealcore.Hooks so that hook work runs off the
// cache hot path, on a small worker queue that drops events under pressure.
//
// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{SelfHealEvery: 10})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	cache, _ := dealcore.New[uint64, Shop](dealcore.Options[uint64, Shop]{
//	    KeyPrefix: "cache:shop:",
//	    Store:     store,
//	    Codec:     codec.JSON[Shop]{},
//	    Hooks:     hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"

	"github.com/dealhub/dealcore"
)

type Hooks struct {
	inner dealcore.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ dealcore.Hooks = (*Hooks)(nil)

func New(inner dealcore.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) NegativeCached(k string) { h.try(func() { h.inner.NegativeCached(k) }) }
func (h *Hooks) StaleServed(k string)    { h.try(func() { h.inner.StaleServed(k) }) }
func (h *Hooks) RebuildDropped(k string) { h.try(func() { h.inner.RebuildDropped(k) }) }
func (h *Hooks) RebuildError(k string, err error) {
	h.try(func() { h.inner.RebuildError(k, err) })
}
func (h *Hooks) SelfHeal(k, reason string) { h.try(func() { h.inner.SelfHeal(k, reason) }) }
func (h *Hooks) LockContended(k string)    { h.try(func() { h.inner.LockContended(k) }) }
