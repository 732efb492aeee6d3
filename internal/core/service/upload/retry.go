package upload

import (
	"context"
	"time"
)

// withRetry runs fn up to attempts times with exponential backoff between
// tries (base, 2*base, ...). It stops early when the context is cancelled.
func withRetry(ctx context.Context, attempts int, base time.Duration, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			backoff := base << (attempt - 1)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if lastErr = fn(); lastErr == nil {
			return nil
		}
	}

	return lastErr
}
