// Package integrations provides the shared HTTP client used by index clients.
//
// # Overview
//
// [Client] performs GET requests with default headers, maps HTTP status codes
// to errors, retries transient failures and caches raw responses. It knows
// nothing about the documents it fetches; the [pypi] subpackage decodes them.
//
// Status mapping:
//
//   - 2xx: success
//   - 404, 410: [ErrNotFound]
//   - 429: [errors.RateLimitedError]
//   - 5xx and connection failures: [ErrNetwork], retried
//   - anything else: [ErrNetwork], not retried
//
// # Caching
//
// A [Response] (final URL, content type and body) is cached per URL and
// Accept header through a [cache.Cache]. Cached responses are decoded again
// on every use, so decoder fixes apply to cached data as well.
//
// [pypi]: github.com/matzehuels/simpleindex/pkg/integrations/pypi
// [errors.RateLimitedError]: github.com/matzehuels/simpleindex/pkg/errors.RateLimitedError
// [cache.Cache]: github.com/matzehuels/simpleindex/pkg/cache.Cache
package integrations
