package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/matzehuels/simpleindex/pkg/cache"
	"github.com/matzehuels/simpleindex/pkg/errors"
	"github.com/matzehuels/simpleindex/pkg/httputil"
	"github.com/matzehuels/simpleindex/pkg/observability"
)

// Response is a fetched document. It is also the unit stored in the cache,
// so a cached response is indistinguishable from a fresh one.
type Response struct {
	URL         string `json:"url"` // final URL after redirects
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// Client provides shared HTTP functionality for index clients.
// It handles caching, retry logic, and common request headers.
//
// All methods are safe for concurrent use.
type Client struct {
	http    *http.Client
	cache   cache.Cache
	keyer   cache.Keyer
	ttl     time.Duration
	headers map[string]string
	check   func(*Response) error
}

// NewClient creates a Client that caches responses in c under keys scoped by
// namespace. Headers are applied to all requests made through this client.
// Pass nil for headers if no default headers are needed and a nil cache to
// disable caching.
func NewClient(c cache.Cache, namespace string, ttl time.Duration, headers map[string]string) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		http:    NewHTTPClient(DefaultTimeout),
		cache:   c,
		keyer:   cache.NewScopedKeyer(cache.NewDefaultKeyer(), namespace),
		ttl:     ttl,
		headers: headers,
	}
}

// SetHTTPClient replaces the underlying HTTP client.
func (c *Client) SetHTTPClient(h *http.Client) {
	if h != nil {
		c.http = h
	}
}

// SetResponseCheck installs a check that every response must pass before it
// is returned or cached. Cached entries that fail it are refetched.
func (c *Client) SetResponseCheck(check func(*Response) error) {
	c.check = check
}

// Fetch performs a GET of rawURL with the client's default headers merged
// with headers, and returns the response body and content type.
//
// Responses are cached per URL and Accept header. If refresh is true the
// cache is bypassed (and then updated). Transient failures are retried with
// backoff.
func (c *Client) Fetch(ctx context.Context, rawURL string, headers map[string]string, refresh bool) (*Response, error) {
	key := c.keyer.DocumentKey(rawURL, c.header("Accept", headers))

	if !refresh {
		if resp, ok := c.lookup(ctx, key); ok {
			return resp, nil
		}
	}

	var resp *Response
	err := httputil.RetryWithBackoff(ctx, func() error {
		r, err := c.doRequest(ctx, rawURL, headers)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := c.validate(resp); err != nil {
		return nil, err
	}

	c.store(ctx, key, resp)
	return resp, nil
}

func (c *Client) validate(resp *Response) error {
	if c.check == nil {
		return nil
	}
	return c.check(resp)
}

func (c *Client) lookup(ctx context.Context, key string) (*Response, bool) {
	data, ok, err := c.cache.Get(ctx, key)
	if err != nil || !ok {
		observability.Cache().OnCacheMiss(ctx, "document")
		return nil, false
	}
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil || c.validate(&resp) != nil {
		observability.Cache().OnCacheMiss(ctx, "document")
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "document")
	return &resp, true
}

func (c *Client) store(ctx context.Context, key string, resp *Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if c.cache.Set(ctx, key, data, c.ttl) == nil {
		observability.Cache().OnCacheSet(ctx, "document", len(data))
	}
}

func (c *Client) header(name string, headers map[string]string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	return c.headers[name]
}

func (c *Client) doRequest(ctx context.Context, rawURL string, headers map[string]string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidURL, err, "build request for %s", rawURL)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, req.URL.Host, req.URL.Path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, req.URL.Host, req.URL.Path, err)
		return nil, &httputil.RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("GET %s: %w", rawURL, err)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &httputil.RetryableError{Err: fmt.Errorf("%w: read body: %v", ErrNetwork, err)}
	}
	return &Response{
		URL:         finalURL(resp, rawURL),
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// finalURL is the URL the body was served from, after redirects. Relative
// links in HTML pages resolve against it.
func finalURL(resp *http.Response, fallback string) string {
	if resp.Request != nil && resp.Request.URL != nil {
		return resp.Request.URL.String()
	}
	return fallback
}

func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound, code == http.StatusGone:
		return ErrNotFound
	case code == http.StatusTooManyRequests:
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		rl := &errors.RateLimitedError{RetryAfter: retryAfter, Message: resp.Status}
		if retryAfter > 0 && retryAfter <= MaxRetryAfter {
			return &httputil.RetryableError{Err: rl}
		}
		return rl
	case code >= 500:
		return &httputil.RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}

// HostOf returns the host of rawURL, or rawURL itself when it has none.
func HostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}
