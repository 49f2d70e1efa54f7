package syncer

import (
	"context"
	"time"
)

// Limiter paces sequential calls to the external tool.
type Limiter interface {
	Wait(ctx context.Context) error
}

type fixedDelay struct {
	delay time.Duration
}

// FixedDelay returns a Limiter that sleeps a constant duration per call,
// honoring context cancellation.
func FixedDelay(d time.Duration) Limiter {
	return &fixedDelay{delay: d}
}

func (f *fixedDelay) Wait(ctx context.Context) error {
	if f.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(f.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type nopLimiter struct{}

// NopLimiter returns a Limiter that never waits.
func NopLimiter() Limiter {
	return nopLimiter{}
}

func (nopLimiter) Wait(ctx context.Context) error {
	return ctx.Err()
}
