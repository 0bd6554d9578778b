// Package httputil provides retry helpers for index clients.
//
// [Retry] runs an operation again when it fails with a [RetryableError].
// Index clients wrap transient failures in it:
//
//   - connection errors and timeouts
//   - 5xx responses
//   - 429 responses asking for a short wait
//
// Other errors, such as 404 or a malformed document, are returned at once.
// The delay doubles after every attempt unless the index named a
// Retry-After; cancelling the context stops the loop with ctx.Err().
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    return fetch(ctx)
//	})
//
// Defaults: 3 attempts, 1 second initial delay.
package httputil
