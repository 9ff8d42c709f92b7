package util

import (
	"context"
	"time"
)

// Retry runs fn up to maxAttempts times, doubling the pause between attempts
// starting from baseDelay. The context is consulted while backing off, never
// mid-attempt, so fn always observes a complete call. Returns nil after the
// first success, the context error when cancelled during backoff, and the
// last attempt's error otherwise.
func Retry(ctx context.Context, maxAttempts int, baseDelay time.Duration, fn func() error) error {
	var last error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if last = fn(); last == nil {
			return nil
		}
		if attempt == maxAttempts {
			break
		}

		timer := time.NewTimer(baseDelay << (attempt - 1))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return last
}
