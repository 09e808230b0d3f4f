package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestGetSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := New()
	body, err := client.Get(context.Background(), server.URL, nil, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestThrottleLimitNeverExceeded(t *testing.T) {
	const limit = 3
	var active, peak int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cur := atomic.AddInt64(&active, 1)
		for {
			old := atomic.LoadInt64(&peak)
			if cur <= old || atomic.CompareAndSwapInt64(&peak, old, cur) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt64(&active, -1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(WithMaxConcurrent(limit))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := client.Get(context.Background(), server.URL, nil, false); err != nil {
				t.Errorf("request failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if p := atomic.LoadInt64(&peak); p > limit {
		t.Errorf("throttle violated: %d concurrent requests, limit %d", p, limit)
	}
}

func TestThrottleReleasedOnFailure(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(WithMaxConcurrent(1), WithMaxRetries(0))

	// If a failed request leaked its slot, the second call would hang.
	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		_, err := client.Get(ctx, server.URL, nil, false)
		cancel()
		if err == nil {
			t.Fatal("expected server error")
		}
		var cerr *ClientError
		if !errors.As(err, &cerr) || cerr.Type == ErrorTypeCanceled {
			t.Fatalf("slot leaked, request timed out: %v", err)
		}
	}
	if got := atomic.LoadInt64(&calls); got != 3 {
		t.Errorf("expected 3 calls, got %d", got)
	}
}

func TestRetryExhaustionAttemptCount(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	const maxRetries = 2
	client := New(WithMaxRetries(maxRetries), WithBaseDelay(time.Millisecond))

	_, err := client.Get(context.Background(), server.URL, nil, false)
	if err == nil {
		t.Fatal("expected error after retry exhaustion")
	}
	if got := atomic.LoadInt64(&calls); got != maxRetries+1 {
		t.Errorf("expected %d attempts (initial + retries), got %d", maxRetries+1, got)
	}

	var cerr *ClientError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *ClientError, got %T", err)
	}
	if cerr.Type != ErrorTypeServer {
		t.Errorf("expected Server error type, got %s", cerr.Type)
	}
}

func TestRateLimitHonorsRetryAfter(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	var observed time.Duration
	client := New(
		WithMaxRetries(2),
		WithBaseDelay(time.Millisecond),
		WithRateLimitCallback(func(delay time.Duration) { observed = delay }),
	)

	start := time.Now()
	_, err := client.Get(context.Background(), server.URL, nil, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if observed != time.Second {
		t.Errorf("expected Retry-After delay of 1s, callback saw %v", observed)
	}
	if elapsed := time.Since(start); elapsed < time.Second {
		t.Errorf("expected at least 1s sleep before retry, elapsed %v", elapsed)
	}
}

func TestRateLimitExponentialFallback(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&calls, 1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	base := 10 * time.Millisecond
	var delays []time.Duration
	client := New(
		WithMaxRetries(3),
		WithBaseDelay(base),
		WithRateLimitCallback(func(delay time.Duration) { delays = append(delays, delay) }),
	)

	if _, err := client.Get(context.Background(), server.URL, nil, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []time.Duration{base, 2 * base} // 2^0*base, 2^1*base
	if len(delays) != len(want) {
		t.Fatalf("expected %d rate-limit callbacks, got %d", len(want), len(delays))
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Errorf("attempt %d: expected delay %v, got %v", i, want[i], delays[i])
		}
	}
}

func TestBackoffDoubles(t *testing.T) {
	client := New(WithBaseDelay(100 * time.Millisecond))
	for attempt, want := range []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
	} {
		if got := client.backoff(attempt); got != want {
			t.Errorf("attempt %d: expected %v, got %v", attempt, want, got)
		}
	}
}

func TestClientErrorNotRetried(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := New(WithMaxRetries(3), WithBaseDelay(time.Millisecond))
	_, err := client.Get(context.Background(), server.URL, nil, false)
	if err == nil {
		t.Fatal("expected error")
	}
	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Errorf("4xx must not be retried, got %d calls", got)
	}
	var cerr *ClientError
	if !errors.As(err, &cerr) || cerr.Type != ErrorTypeClient {
		t.Errorf("expected Client error type, got %v", err)
	}
}

type failingTransport struct {
	calls int64
	err   error
}

func (t *failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	atomic.AddInt64(&t.calls, 1)
	return nil, t.err
}

func TestCORSErrorNotRetried(t *testing.T) {
	transport := &failingTransport{err: fmt.Errorf("request blocked by CORS policy")}
	client := New(
		WithHTTPClient(&http.Client{Transport: transport}),
		WithMaxRetries(3),
		WithBaseDelay(time.Millisecond),
	)

	_, err := client.Get(context.Background(), "http://example.invalid/fines", nil, false)
	if err == nil {
		t.Fatal("expected error")
	}
	var cerr *ClientError
	if !errors.As(err, &cerr) || cerr.Type != ErrorTypeCORS {
		t.Fatalf("expected CORS error type, got %v", err)
	}
	if got := atomic.LoadInt64(&transport.calls); got != 1 {
		t.Errorf("CORS failures must not be retried, got %d calls", got)
	}
}

func TestNetworkErrorRetried(t *testing.T) {
	transport := &failingTransport{err: fmt.Errorf("connection refused")}
	client := New(
		WithHTTPClient(&http.Client{Transport: transport}),
		WithMaxRetries(2),
		WithBaseDelay(time.Millisecond),
	)

	_, err := client.Get(context.Background(), "http://example.invalid/fines", nil, false)
	if err == nil {
		t.Fatal("expected error")
	}
	var cerr *ClientError
	if !errors.As(err, &cerr) || cerr.Type != ErrorTypeNetwork {
		t.Fatalf("expected Network error type, got %v", err)
	}
	if got := atomic.LoadInt64(&transport.calls); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestCacheIdempotence(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.Write([]byte("cached"))
	}))
	defer server.Close()

	client := New()
	params := url.Values{"plate": {"B-1234"}}

	for i := 0; i < 2; i++ {
		body, err := client.Get(context.Background(), server.URL, params, true)
		if err != nil {
			t.Fatalf("call %d failed: %v", i, err)
		}
		if string(body) != "cached" {
			t.Errorf("call %d: unexpected body %q", i, body)
		}
	}
	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Errorf("expected exactly one network call, got %d", got)
	}
}

func TestSharedCacheAcrossClients(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.Write([]byte("shared"))
	}))
	defer server.Close()

	shared := NewMemoryCache()
	a := New(WithCache(shared))
	b := New(WithCache(shared))

	if _, err := a.Get(context.Background(), server.URL, nil, true); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Get(context.Background(), server.URL, nil, true); err != nil {
		t.Fatal(err)
	}
	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Errorf("shared cache: expected one network call, got %d", got)
	}
}

func TestBearerTokenAttached(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(WithTokenProvider(func() string { return "tok-123" }))
	if _, err := client.Get(context.Background(), server.URL, nil, false); err != nil {
		t.Fatal(err)
	}
	if got != "Bearer tok-123" {
		t.Errorf("expected bearer header, got %q", got)
	}
}

func TestMonitorSampleOnSuccessOnly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("0123456789"))
	}))
	defer server.Close()

	var samples []MonitorSample
	client := New(WithMonitor(func(s MonitorSample) { samples = append(samples, s) }))

	if _, err := client.Get(context.Background(), server.URL, nil, true); err != nil {
		t.Fatal(err)
	}
	// Second call is a cache hit: no telemetry.
	if _, err := client.Get(context.Background(), server.URL, nil, true); err != nil {
		t.Fatal(err)
	}

	if len(samples) != 1 {
		t.Fatalf("expected 1 monitor sample, got %d", len(samples))
	}
	s := samples[0]
	if s.Method != http.MethodGet || s.URL != server.URL {
		t.Errorf("unexpected sample identity: %+v", s)
	}
	if s.ResponseSize != 10 {
		t.Errorf("expected response size 10, got %d", s.ResponseSize)
	}
	if s.Duration <= 0 {
		t.Errorf("expected positive duration, got %v", s.Duration)
	}
}

func TestContextCancellationDuringBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(WithMaxRetries(5), WithBaseDelay(time.Second))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Get(ctx, server.URL, nil, false)
	var cerr *ClientError
	if !errors.As(err, &cerr) || cerr.Type != ErrorTypeCanceled {
		t.Fatalf("expected Canceled error type, got %v", err)
	}
}
