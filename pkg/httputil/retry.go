package httputil

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/matzehuels/simpleindex/pkg/errors"
)

// RetryableError marks a failed index request as worth repeating: network
// failures, 5xx responses and short rate limits.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry executes fn up to attempts times. Only errors wrapped with
// [RetryableError] are retried; anything else is returned at once.
//
// The wait before the next attempt is the Retry-After of a wrapped
// [errors.RateLimitedError] when the index sent one, otherwise delay, which
// doubles after each failure. Returns the last error once attempts run out,
// or ctx.Err() if ctx is cancelled while waiting.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !isRetryable(err) {
			return err
		}

		if i < attempts-1 {
			wait := delay
			if after, ok := RetryAfter(lastErr); ok {
				wait = after
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
				delay *= 2
			}
		}
	}
	return lastErr
}

// RetryWithBackoff retries fn 3 times starting at a 1 second delay.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, 3, time.Second, fn)
}

// RetryAfter returns the wait requested by a rate-limited index, if err
// carries one.
func RetryAfter(err error) (time.Duration, bool) {
	var rl *errors.RateLimitedError
	if stderrors.As(err, &rl) && rl.RetryAfter > 0 {
		return time.Duration(rl.RetryAfter) * time.Second, true
	}
	return 0, false
}

func isRetryable(err error) bool {
	return stderrors.As(err, new(*RetryableError))
}
