// Package order admits flash-sale purchase attempts under a fixed stock
// ceiling: one order per user per voucher, never oversell.
//
// Admission is serialized per user by a distributed lock, and the
// duplicate-check + conditional decrement + insert run as one relational
// transaction inside that lock. The lock is released only after the
// transaction has committed, so a second request from the same user can
// never be admitted off a not-yet-durable duplicate check.
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"gorm.io/gorm"

	"github.com/dealhub/dealcore"
	"github.com/dealhub/dealcore/idgen"
	"github.com/dealhub/dealcore/kv"
	"github.com/dealhub/dealcore/lock"
)

var (
	// ErrUnknownVoucher reports that the voucher does not exist.
	ErrUnknownVoucher = errors.New("order: unknown voucher")
	// ErrNotStarted reports an attempt before the promotion window opened.
	ErrNotStarted = errors.New("order: sale not started")
	// ErrEnded reports an attempt after the promotion window closed.
	ErrEnded = errors.New("order: sale ended")
	// ErrExhausted reports that stock ran out, either at the advisory
	// pre-check or at the authoritative conditional decrement.
	ErrExhausted = errors.New("order: stock exhausted")
	// ErrDuplicate reports that the user already holds an order for this
	// voucher.
	ErrDuplicate = errors.New("order: duplicate purchase")
	// ErrLockBusy reports another in-flight request by the same user. It is
	// surfaced to the caller as a rejection, never retried here.
	ErrLockBusy = errors.New("order: concurrent request by this user")
)

var (
	ordersAdmitted = metrics.NewCounter(`dealcore_orders_admitted_total`)
	ordersRejected = metrics.NewCounter(`dealcore_orders_rejected_total`)
)

// Coordinator owns the admission path for flash-sale orders.
type Coordinator struct {
	db      *gorm.DB
	store   kv.Store
	ids     *idgen.Generator
	log     dealcore.Logger
	lockTTL time.Duration
	now     func() time.Time
}

type Config struct {
	// Required
	DB    *gorm.DB
	Store kv.Store
	IDs   *idgen.Generator

	Logger dealcore.Logger // if nil, NopLogger is used

	// LockTTL bounds the per-user admission lock. There is no lease
	// renewal, so it must comfortably exceed the transaction's worst case.
	// 0 => 20m (matches the conservative upstream sizing).
	LockTTL time.Duration
}

func NewCoordinator(cfg Config) (*Coordinator, error) {
	if cfg.DB == nil {
		return nil, fmt.Errorf("order: db is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("order: store is required")
	}
	if cfg.IDs == nil {
		return nil, fmt.Errorf("order: id generator is required")
	}

	c := &Coordinator{
		db:    cfg.DB,
		store: cfg.Store,
		ids:   cfg.IDs,
		now:   time.Now,
	}
	if c.log = cfg.Logger; c.log == nil {
		c.log = dealcore.NopLogger{}
	}
	if c.lockTTL = cfg.LockTTL; c.lockTTL <= 0 {
		c.lockTTL = 20 * time.Minute
	}
	return c, nil
}

// PlaceOrder admits or rejects one purchase attempt and returns the minted
// order id on success. All rejections are explicit errors from this
// package's taxonomy; none are silent.
//
// The lock is keyed by user only, so a user buying two different vouchers at
// once is serialized too. Conservative, but it is the simplest condition
// that makes "one order per user per voucher" hold.
func (c *Coordinator) PlaceOrder(ctx context.Context, voucherID, userID uint64) (uint64, error) {
	var v Voucher
	if err := c.db.WithContext(ctx).First(&v, voucherID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrUnknownVoucher
		}
		return 0, fmt.Errorf("order: load voucher %d: %w", voucherID, err)
	}

	// advisory pre-filters; the decrement below is the authoritative guard
	switch v.State(c.now()) {
	case StateNotStarted:
		ordersRejected.Inc()
		return 0, ErrNotStarted
	case StateEnded:
		ordersRejected.Inc()
		return 0, ErrEnded
	case StateSoldOut:
		ordersRejected.Inc()
		return 0, ErrExhausted
	}

	mu := lock.New(c.store, fmt.Sprintf("lock:order:%d", userID))
	held, err := mu.TryLock(ctx, c.lockTTL)
	if err != nil {
		return 0, fmt.Errorf("order: acquire user lock: %w", err)
	}
	if !held {
		ordersRejected.Inc()
		return 0, ErrLockBusy
	}

	// Two phases on purpose: createOrder returns only after its transaction
	// has committed, and the unlock must come strictly after that.
	orderID, err := c.createOrder(ctx, voucherID, userID)
	if uerr := mu.Unlock(context.WithoutCancel(ctx)); uerr != nil && !errors.Is(uerr, lock.ErrNotHeld) {
		c.log.Warn("user lock release failed", dealcore.Fields{"user": userID, "err": uerr})
	}
	if err != nil {
		ordersRejected.Inc()
		return 0, err
	}

	ordersAdmitted.Inc()
	c.log.Info("order admitted", dealcore.Fields{"user": userID, "voucher": voucherID, "order": orderID})
	return orderID, nil
}

// createOrder is the transactional unit: duplicate check, conditional
// decrement and insert commit or roll back together.
func (c *Coordinator) createOrder(ctx context.Context, voucherID, userID uint64) (uint64, error) {
	var orderID uint64
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Order{}).
			Where("user_id = ? AND voucher_id = ?", userID, voucherID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("order: duplicate check: %w", err)
		}
		if count > 0 {
			return ErrDuplicate
		}

		res := tx.Model(&Voucher{}).
			Where("id = ? AND stock > ?", voucherID, 0).
			UpdateColumn("stock", gorm.Expr("stock - ?", 1))
		if res.Error != nil {
			return fmt.Errorf("order: decrement stock: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// someone else took the last unit between pre-check and here
			return ErrExhausted
		}

		id, err := c.ids.NextID(ctx, "order")
		if err != nil {
			return err
		}
		orderID = id

		if err := tx.Create(&Order{ID: orderID, UserID: userID, VoucherID: voucherID}).Error; err != nil {
			return fmt.Errorf("order: insert order: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return orderID, nil
}
