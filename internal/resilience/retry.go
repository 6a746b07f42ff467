package resilience

import (
	"context"
	"time"
)

// Retry runs fn up to attempts times, sleeping between tries with exponential
// backoff starting at baseDelay. It returns nil on the first success, the last
// error once attempts are exhausted, or the context error if ctx is cancelled
// while waiting. Callers decide which errors are transient; a fn that returns
// a permanent error should not be wrapped in Retry at all.
func Retry(ctx context.Context, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	delay := baseDelay
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}
