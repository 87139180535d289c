// Package idgen mints compact, roughly time-ordered 64-bit identifiers from
// a shared counter: (seconds since a fixed epoch) << 32 | daily sequence.
//
// Ids are time-sortable at second granularity. For a fixed prefix they are
// strictly increasing within a calendar day and non-decreasing across days.
// Correctness rests entirely on the store's atomic increment; the generator
// holds no local state and is callable from any number of producers.
package idgen

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/dealhub/dealcore/kv"
)

const (
	// epoch is 2022-01-01T00:00:00Z. Timestamps are seconds since then.
	epoch = 1640995200

	// sequenceBits bounds the per-(prefix, day) sequence to 32 bits,
	// a ceiling of ~4.29e9 ids per prefix per day.
	sequenceBits = 32

	dayFormat = "2006:01:02"
)

// ErrSequenceExhausted reports that the per-day sequence budget for the
// prefix ran out. Overflowing would corrupt the timestamp bits, so the
// generator refuses instead.
var ErrSequenceExhausted = errors.New("idgen: daily sequence exhausted")

type Generator struct {
	store kv.Store
	now   func() time.Time
}

func New(store kv.Store) *Generator {
	return &Generator{store: store, now: time.Now}
}

// NextID returns the next identifier for the prefix. The counter key is
// "icr:<prefix>:<yyyy:MM:dd>" in UTC, so each prefix restarts its sequence
// every calendar day while the timestamp half keeps ids sortable.
func (g *Generator) NextID(ctx context.Context, prefix string) (uint64, error) {
	now := g.now().UTC()
	key := "icr:" + prefix + ":" + now.Format(dayFormat)

	seq, err := g.store.Incr(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("idgen: increment %q: %w", key, err)
	}
	if seq > math.MaxUint32 {
		return 0, ErrSequenceExhausted
	}

	ts := uint64(now.Unix() - epoch)
	return ts<<sequenceBits | uint64(seq), nil
}
