// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup to
// receive events about document decoding, cache operations, and index requests.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, never by libraries, so library packages stay
// free of observability backends.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetDecodeHooks(observability.NewLogHooks(logger))
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Decode().OnDecodeStart(ctx, "json", "details")
//	// ... decode ...
//	observability.Decode().OnDecodeComplete(ctx, "json", "details", len(d.Files), duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Decode Hooks
// =============================================================================

// DecodeHooks receives events from Simple API document decoding.
// format is "json" or "html"; kind is "index" or "details".
type DecodeHooks interface {
	OnDecodeStart(ctx context.Context, format, kind string)
	OnDecodeComplete(ctx context.Context, format, kind string, items int, duration time.Duration, err error)

	// OnVersionWarning records a document from a newer minor API version.
	OnVersionWarning(ctx context.Context, url, declared, known string)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopDecodeHooks is a no-op implementation of DecodeHooks.
type NoopDecodeHooks struct{}

func (NoopDecodeHooks) OnDecodeStart(context.Context, string, string) {}
func (NoopDecodeHooks) OnDecodeComplete(context.Context, string, string, int, time.Duration, error) {
}
func (NoopDecodeHooks) OnVersionWarning(context.Context, string, string, string) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	decodeHooks DecodeHooks = NoopDecodeHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	httpHooks   HTTPHooks   = NoopHTTPHooks{}
	hooksMu     sync.RWMutex
)

// SetDecodeHooks registers custom decode hooks.
// This should be called once at application startup before any requests.
func SetDecodeHooks(h DecodeHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		decodeHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before any HTTP operations.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Decode returns the registered decode hooks.
func Decode() DecodeHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return decodeHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	decodeHooks = NoopDecodeHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
