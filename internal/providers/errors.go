package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	openai "github.com/openai/openai-go/v3"
)

// ErrAssistantUnavailable reports that the assistant service could not be
// reached at the transport level. The agent runtime treats it as a routing
// signal (fall through to the chat backend), not a stage failure.
var ErrAssistantUnavailable = errors.New("assistant service unavailable")

// StatusError is a non-2xx HTTP response from a provider.
type StatusError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s error (status %d)", e.Provider, e.StatusCode)
}

// RateLimitError is an HTTP 429 with an optional Retry-After hint.
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
	StatusCode int
}

func (e *RateLimitError) Error() string {
	return e.Message
}

// IsRateLimitError unwraps a RateLimitError if err carries one.
func IsRateLimitError(err error) (*RateLimitError, bool) {
	var rle *RateLimitError
	if errors.As(err, &rle) {
		return rle, true
	}
	return nil, false
}

// StatusCodeOf extracts the HTTP status from a provider error, or 0 when
// the error carries no status.
func StatusCodeOf(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	var rateErr *RateLimitError
	if errors.As(err, &rateErr) {
		return rateErr.StatusCode
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsNonRetryable reports whether err is a request-shape or credential
// failure that further attempts cannot fix.
func IsNonRetryable(err error) bool {
	switch StatusCodeOf(err) {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		return true
	}
	return false
}

// ErrorClass buckets a provider error for metrics rollups. Returns ""
// for nil.
func ErrorClass(err error) string {
	if err == nil {
		return ""
	}
	if _, ok := IsRateLimitError(err); ok {
		return "rate_limit"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if errors.Is(err, ErrAssistantUnavailable) {
		return "unavailable"
	}
	if code := StatusCodeOf(err); code != 0 {
		return fmt.Sprintf("http_%d", code)
	}
	return "error"
}

// mapOpenAIError converts SDK errors into this package's error types so
// callers can classify without importing the SDK.
func mapOpenAIError(provider string, err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	if apiErr.StatusCode == http.StatusTooManyRequests {
		retryAfter := time.Duration(0)
		if apiErr.Response != nil {
			retryAfter = parseRetryAfter(apiErr.Response.Header.Get("Retry-After"))
		}
		return &RateLimitError{
			Message:    fmt.Sprintf("%s rate limited: %s", provider, apiErr.Message),
			RetryAfter: retryAfter,
			StatusCode: apiErr.StatusCode,
		}
	}
	return &StatusError{
		Provider:   provider,
		StatusCode: apiErr.StatusCode,
		Message:    apiErr.Message,
	}
}

// parseRetryAfter parses a Retry-After header given in seconds.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
