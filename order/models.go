package order

import "time"

// Voucher is a flash-sale promotion with a fixed stock ceiling and a time
// window. Stock is mutated only through the coordinator's conditional
// decrement.
type Voucher struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement:false"`
	Stock     int       `gorm:"not null"`
	BeginTime time.Time `gorm:"not null"`
	EndTime   time.Time `gorm:"not null"`
}

// Order records one admitted purchase. The (user_id, voucher_id) pair is
// unique across all orders; the index is the durable backstop behind the
// coordinator's duplicate check.
type Order struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement:false"`
	UserID    uint64    `gorm:"not null;uniqueIndex:ux_orders_user_voucher,priority:1"`
	VoucherID uint64    `gorm:"not null;uniqueIndex:ux_orders_user_voucher,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// State is the derived lifecycle of a promotion. It is never persisted.
type State int

const (
	StateNotStarted State = iota
	StateActive
	StateSoldOut
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateActive:
		return "active"
	case StateSoldOut:
		return "sold_out"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// State derives the promotion state at the given instant. The stock reading
// is advisory; the authoritative oversell guard is the conditional decrement.
func (v *Voucher) State(now time.Time) State {
	switch {
	case now.Before(v.BeginTime):
		return StateNotStarted
	case now.After(v.EndTime):
		return StateEnded
	case v.Stock < 1:
		return StateSoldOut
	default:
		return StateActive
	}
}
