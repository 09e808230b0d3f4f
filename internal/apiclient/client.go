// Package apiclient provides a resilient HTTP client used for calls to
// external services (traffic authority API, notification webhooks). It layers
// bounded concurrency, retry with exponential backoff, rate-limit awareness,
// optional response caching and timing telemetry over net/http.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// MonitorSample is delivered to the monitor hook after every completed
// network call. Cache hits are not reported.
type MonitorSample struct {
	URL          string
	Method       string
	Duration     time.Duration
	PayloadSize  int
	ResponseSize int
}

// MonitorFunc receives timing telemetry. Fire-and-forget.
type MonitorFunc func(MonitorSample)

// RateLimitFunc is invoked with the computed delay before sleeping on a 429.
type RateLimitFunc func(delay time.Duration)

// TokenProvider returns a bearer token for outgoing requests, or an empty
// string when no token should be attached.
type TokenProvider func() string

// Client performs HTTP calls with authentication, bounded concurrency,
// retry-with-backoff, optional response caching and timing telemetry.
// It is safe for concurrent use. Each Client owns its cache and throttle
// unless a shared cache is injected at construction.
type Client struct {
	httpClient    *http.Client
	maxRetries    int
	baseDelay     time.Duration
	throttle      *throttle
	cache         ResponseCache
	cacheTTL      time.Duration
	tokenProvider TokenProvider
	monitor       MonitorFunc
	onRateLimit   RateLimitFunc
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMaxRetries bounds retry attempts; total attempts = maxRetries + 1.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithBaseDelay sets the backoff base; delay = 2^attempt * baseDelay.
// No jitter is applied.
func WithBaseDelay(d time.Duration) Option {
	return func(c *Client) { c.baseDelay = d }
}

// WithMaxConcurrent bounds the number of simultaneous in-flight requests.
func WithMaxConcurrent(n int) Option {
	return func(c *Client) { c.throttle = newThrottle(n) }
}

// WithCache injects a shared response cache.
func WithCache(cache ResponseCache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithCacheTTL sets the lifetime of cached responses.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) { c.cacheTTL = ttl }
}

// WithTokenProvider sets the bearer token source, invoked once per request.
func WithTokenProvider(p TokenProvider) Option {
	return func(c *Client) { c.tokenProvider = p }
}

// WithMonitor sets the telemetry hook.
func WithMonitor(m MonitorFunc) Option {
	return func(c *Client) { c.monitor = m }
}

// WithRateLimitCallback sets the hook invoked before sleeping on a 429.
func WithRateLimitCallback(f RateLimitFunc) Option {
	return func(c *Client) { c.onRateLimit = f }
}

// New constructs a Client with sensible defaults.
func New(options ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxRetries: 3,
		baseDelay:  500 * time.Millisecond,
		throttle:   newThrottle(10),
		cacheTTL:   5 * time.Minute,
	}
	for _, option := range options {
		option(c)
	}
	if c.cache == nil {
		c.cache = NewMemoryCache()
	}
	return c
}

type requestConfig struct {
	method string
	url    string
	params url.Values
	body   []byte
}

// Get performs a GET request, optionally serving/storing the response cache.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values, useCache bool) ([]byte, error) {
	return c.do(ctx, requestConfig{method: http.MethodGet, url: rawURL, params: params}, useCache)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, rawURL string, data interface{}) ([]byte, error) {
	body, err := marshalBody(data)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, requestConfig{method: http.MethodPost, url: rawURL, body: body}, false)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, rawURL string, data interface{}) ([]byte, error) {
	body, err := marshalBody(data)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, requestConfig{method: http.MethodPut, url: rawURL, body: body}, false)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, rawURL string, params url.Values) ([]byte, error) {
	return c.do(ctx, requestConfig{method: http.MethodDelete, url: rawURL, params: params}, false)
}

func marshalBody(data interface{}) ([]byte, error) {
	if data == nil {
		return nil, nil
	}
	body, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}
	return body, nil
}

// do is the single request primitive all verbs funnel into.
func (c *Client) do(ctx context.Context, cfg requestConfig, useCache bool) ([]byte, error) {
	key := cacheKey(cfg.method, cfg.url, cfg.params, cfg.body)
	if useCache {
		if entry, ok := c.cache.Get(key); ok {
			return entry.Body, nil
		}
	}

	if err := c.throttle.acquire(ctx); err != nil {
		return nil, &ClientError{
			Type:    ErrorTypeCanceled,
			Message: "canceled while waiting for a request slot",
			Method:  cfg.method,
			URL:     cfg.url,
			Cause:   err,
		}
	}
	// The slot is released exactly once per request, whichever exit path
	// (success, retry exhaustion, immediate failure) is taken.
	defer c.throttle.release()

	var lastErr *ClientError
	for attempt := 0; ; attempt++ {
		body, cerr := c.execute(ctx, cfg, attempt)
		if cerr == nil {
			if useCache {
				c.cache.Set(key, &CacheEntry{Body: body, StatusCode: http.StatusOK}, c.cacheTTL)
			}
			return body, nil
		}

		if !retryable(cerr.Type) {
			return nil, cerr
		}
		lastErr = cerr

		if attempt >= c.maxRetries {
			lastErr.Message = fmt.Sprintf("request failed after %d retries", c.maxRetries)
			return nil, lastErr
		}

		delay := cerr.retryDelay
		if delay <= 0 {
			delay = c.backoff(attempt)
		}
		if cerr.Type == ErrorTypeRateLimited && c.onRateLimit != nil {
			c.onRateLimit(delay)
		}

		if err := sleep(ctx, delay); err != nil {
			return nil, &ClientError{
				Type:       ErrorTypeCanceled,
				Message:    "canceled during retry backoff",
				Method:     cfg.method,
				URL:        cfg.url,
				Attempt:    attempt + 1,
				MaxRetries: c.maxRetries,
				Cause:      err,
			}
		}
	}
}

// execute performs one network attempt and classifies the outcome.
func (c *Client) execute(ctx context.Context, cfg requestConfig, attempt int) ([]byte, *ClientError) {
	reqURL := cfg.url
	if len(cfg.params) > 0 {
		reqURL += "?" + cfg.params.Encode()
	}

	var bodyReader io.Reader
	if len(cfg.body) > 0 {
		bodyReader = bytes.NewReader(cfg.body)
	}

	req, err := http.NewRequestWithContext(ctx, cfg.method, reqURL, bodyReader)
	if err != nil {
		return nil, &ClientError{
			Type:    ErrorTypeClient,
			Message: "invalid request",
			Method:  cfg.method,
			URL:     cfg.url,
			Cause:   err,
		}
	}
	if len(cfg.body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokenProvider != nil {
		if token := c.tokenProvider(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		cerr := &ClientError{
			Method:     cfg.method,
			URL:        cfg.url,
			Attempt:    attempt + 1,
			MaxRetries: c.maxRetries,
			Cause:      err,
		}
		switch {
		case ctx.Err() != nil:
			cerr.Type = ErrorTypeCanceled
			cerr.Message = "request canceled"
		case isCORSMessage(err):
			cerr.Type = ErrorTypeCORS
			cerr.Message = "request blocked by cross-origin policy"
		default:
			cerr.Type = ErrorTypeNetwork
			cerr.Message = "network request failed"
		}
		return nil, cerr
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ClientError{
			Type:       ErrorTypeNetwork,
			Message:    "failed to read response body",
			Method:     cfg.method,
			URL:        cfg.url,
			Attempt:    attempt + 1,
			MaxRetries: c.maxRetries,
			Cause:      err,
		}
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &ClientError{
			Type:       ErrorTypeRateLimited,
			Message:    "rate limited",
			StatusCode: resp.StatusCode,
			Method:     cfg.method,
			URL:        cfg.url,
			Attempt:    attempt + 1,
			MaxRetries: c.maxRetries,
			retryDelay: parseRetryAfter(resp),
		}
	case resp.StatusCode >= 500:
		return nil, &ClientError{
			Type:       ErrorTypeServer,
			Message:    "server error",
			StatusCode: resp.StatusCode,
			Method:     cfg.method,
			URL:        cfg.url,
			Attempt:    attempt + 1,
			MaxRetries: c.maxRetries,
		}
	case resp.StatusCode >= 400:
		return nil, &ClientError{
			Type:       ErrorTypeClient,
			Message:    "request rejected",
			StatusCode: resp.StatusCode,
			Method:     cfg.method,
			URL:        cfg.url,
			Attempt:    attempt + 1,
			MaxRetries: c.maxRetries,
		}
	}

	if c.monitor != nil {
		c.monitor(MonitorSample{
			URL:          cfg.url,
			Method:       cfg.method,
			Duration:     duration,
			PayloadSize:  len(cfg.body),
			ResponseSize: len(respBody),
		})
	}
	return respBody, nil
}

// backoff computes 2^attempt * baseDelay. No jitter: operational tooling
// watching the authority API relies on the deterministic retry schedule.
func (c *Client) backoff(attempt int) time.Duration {
	return c.baseDelay << uint(attempt)
}

// parseRetryAfter reads a Retry-After header as either delta-seconds or an
// HTTP date. Returns 0 when absent or unparseable.
func parseRetryAfter(resp *http.Response) time.Duration {
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(header); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
