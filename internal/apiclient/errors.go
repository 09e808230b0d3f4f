package apiclient

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrorType tags a failure so retry decisions are made on structured data
// instead of sniffing error strings at every call site.
type ErrorType string

const (
	// ErrorTypeNetwork covers transport failures with no HTTP response.
	ErrorTypeNetwork ErrorType = "Network"
	// ErrorTypeServer covers HTTP 5xx responses.
	ErrorTypeServer ErrorType = "Server"
	// ErrorTypeRateLimited covers HTTP 429 responses.
	ErrorTypeRateLimited ErrorType = "RateLimited"
	// ErrorTypeClient covers HTTP 4xx responses other than 429. Never retried.
	ErrorTypeClient ErrorType = "Client"
	// ErrorTypeCORS is a network failure whose message indicates a
	// cross-origin rejection. Never retried.
	ErrorTypeCORS ErrorType = "CORS"
	// ErrorTypeCanceled means the caller's context expired.
	ErrorTypeCanceled ErrorType = "Canceled"
)

// ClientError is the error returned by Client for any failed request.
type ClientError struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Method     string
	URL        string
	Attempt    int
	MaxRetries int
	Cause      error

	// retryDelay carries a server-provided Retry-After value to the retry
	// loop. Zero means compute the exponential backoff instead.
	retryDelay time.Duration
}

func (e *ClientError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Type, e.Message)
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Attempt > 0 {
		msg = fmt.Sprintf("%s (attempt %d/%d)", msg, e.Attempt, e.MaxRetries)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is compares error types so callers can use errors.Is against a prototype.
func (e *ClientError) Is(target error) bool {
	var t *ClientError
	if errors.As(target, &t) {
		return e.Type == t.Type
	}
	return false
}

// retryable reports whether an error type may succeed on a later attempt.
func retryable(t ErrorType) bool {
	switch t {
	case ErrorTypeNetwork, ErrorTypeServer, ErrorTypeRateLimited:
		return true
	default:
		return false
	}
}

// isCORSMessage detects cross-origin rejections surfaced by proxies and
// browser-facing gateways. Those never succeed on retry.
func isCORSMessage(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "cors") || strings.Contains(msg, "cross-origin")
}
