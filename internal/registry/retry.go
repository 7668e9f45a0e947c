package registry

import (
	"context"
	"errors"
	"time"
)

// RetryableError wraps an error to indicate a retry may help. Transient
// failures (network errors, 5xx responses) are wrapped with this type so
// that retry knows to attempt the operation again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// retry executes fn up to attempts times with exponential backoff. Only
// errors wrapped in RetryableError are retried; anything else is returned
// immediately. The delay doubles after each failed attempt.
func retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := 0; i < attempts; i++ {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !isRetryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

func isRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}
