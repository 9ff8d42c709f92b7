package util

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter caps operations at a per-minute rate with a burst of one, so
// a request fires immediately when idle and queues behind the refill
// otherwise.
type RateLimiter struct {
	lim *rate.Limiter
}

// NewRateLimiter creates a RateLimiter allowing perMinute operations per
// minute.
func NewRateLimiter(perMinute int) *RateLimiter {
	return &RateLimiter{
		lim: rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), 1),
	}
}

// Wait blocks until a token is available or ctx is done, in which case the
// context error is returned and the token goes back to the bucket.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	r := rl.lim.Reserve()
	if !r.OK() {
		return errors.New("rate limiter cannot satisfy request")
	}

	delay := r.Delay()
	if delay == 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
