package integrations

import (
	"net/http"
	"time"

	"github.com/matzehuels/simpleindex/pkg/errors"
)

// DefaultTimeout bounds a single HTTP request.
const DefaultTimeout = 10 * time.Second

// MaxRetryAfter is the longest Retry-After, in seconds, that a request waits
// out. Longer rate limits fail with [errors.RateLimitedError].
const MaxRetryAfter = 5

// maxBodySize caps response bodies. The largest PyPI project pages are a few
// tens of megabytes.
const maxBodySize = 256 << 20

var (
	// ErrNotFound is returned when the index has no such resource (404, 410).
	ErrNotFound = errors.New(errors.ErrCodeNotFound, "resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New(errors.ErrCodeNetwork, "network error")
)

// NewHTTPClient creates an HTTP client with the given timeout.
// A timeout <= 0 means [DefaultTimeout].
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}
