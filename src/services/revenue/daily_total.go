// Package revenue tracks the total value of orders confirmed today.
//
// The accumulator is process-wide state shared by every in-flight
// confirmation and cancellation, so updates are commutative additions under
// a mutex rather than read-modify-write. It is an explicit, injectable
// component: tests construct isolated instances and assert exact values.
package revenue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go-order-ms/src/infrastructure/log"
)

type DailyTotal struct {
	mu    sync.Mutex
	total float64
}

func NewDailyTotal() *DailyTotal {
	return &DailyTotal{}
}

// Add records revenue recognized by an order confirmation.
func (d *DailyTotal) Add(amount float64) {
	d.mu.Lock()
	d.total += amount
	d.mu.Unlock()
}

// Subtract reverses previously recognized revenue (same-day cancellation).
func (d *DailyTotal) Subtract(amount float64) {
	d.Add(-amount)
}

// Reset zeroes the accumulator. In-flight updates racing with the reset
// boundary are last-writer-wins, which is acceptable at midnight.
func (d *DailyTotal) Reset() {
	d.mu.Lock()
	d.total = 0
	d.mu.Unlock()
}

func (d *DailyTotal) Snapshot() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.total
}

// Source provides the persisted revenue for a calendar day.
type Source interface {
	SumRevenueForDay(ctx context.Context, day time.Time) (float64, error)
}

// Rebuild replaces the accumulator with the persisted total of orders whose
// order date is today. Read-only reconciliation, run once at startup.
func (d *DailyTotal) Rebuild(ctx context.Context, source Source) error {
	total, err := source.SumRevenueForDay(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("failed to rebuild daily revenue: %w", err)
	}
	d.mu.Lock()
	d.total = total
	d.mu.Unlock()
	return nil
}

// RunMidnightReset resets the accumulator at each local midnight until the
// context is cancelled. Run it in its own goroutine from main.
func (d *DailyTotal) RunMidnightReset(ctx context.Context, logger log.Logger) {
	for {
		timer := time.NewTimer(time.Until(nextMidnight(time.Now())))
		select {
		case <-ctx.Done():
			timer.Stop()
			logger.Info(ctx, "Daily revenue reset task stopped")
			return
		case <-timer.C:
			d.Reset()
			logger.Info(ctx, "Daily revenue total reset for the new day")
		}
	}
}

func nextMidnight(now time.Time) time.Time {
	year, month, day := now.Date()
	return time.Date(year, month, day+1, 0, 0, 0, 0, now.Location())
}
