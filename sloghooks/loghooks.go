// Package sloghooks implements dealcore.Hooks on log/slog, with per-event
// sampling so hot keys cannot flood the log.
package sloghooks

import (
	"log/slog"
	"sync/atomic"

	"github.com/dealhub/dealcore"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	SelfHealEvery  uint64
	StaleEvery     uint64
	ContendedEvery uint64
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	selfHealCtr  atomic.Uint64
	staleCtr     atomic.Uint64
	contendedCtr atomic.Uint64
}

var _ dealcore.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) NegativeCached(key string) {
	if h.l == nil {
		return
	}
	h.l.Debug("dealcore.negative_cached", "key", key)
}

func (h *Hooks) StaleServed(key string) {
	if h.l == nil || !sample(h.opts.StaleEvery, &h.staleCtr) {
		return
	}
	h.l.Debug("dealcore.stale_served", "key", key)
}

func (h *Hooks) RebuildDropped(key string) {
	if h.l == nil {
		return
	}
	h.l.Warn("dealcore.rebuild_dropped", "key", key)
}

func (h *Hooks) RebuildError(key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("dealcore.rebuild_error", "key", key, "err", err)
}

func (h *Hooks) SelfHeal(key, reason string) {
	if h.l == nil || !sample(h.opts.SelfHealEvery, &h.selfHealCtr) {
		return
	}
	h.l.Debug("dealcore.self_heal", "key", key, "reason", reason)
}

func (h *Hooks) LockContended(key string) {
	if h.l == nil || !sample(h.opts.ContendedEvery, &h.contendedCtr) {
		return
	}
	h.l.Debug("dealcore.lock_contended", "key", key)
}
