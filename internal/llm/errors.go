package llm

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// The generation pipeline distinguishes four failure classes. Rate
// limits and outages are transient and worth retrying; truncation is a
// token-budget misconfiguration; invalid output means the model spoke
// but what it said cannot become a trivia question.

// RateLimitError reports a 429 from the backend. RetryAfter carries the
// server's requested pause when the response included one.
type RateLimitError struct {
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s: %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("rate limited: %v", e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// InvalidOutputError reports model output that failed schema validation
// or otherwise cannot be used. Raw keeps the offending output for
// diagnosis.
type InvalidOutputError struct {
	Raw json.RawMessage
	Err error
}

func (e *InvalidOutputError) Error() string {
	return fmt.Sprintf("unusable model output: %v", e.Err)
}

func (e *InvalidOutputError) Unwrap() error { return e.Err }

// UnavailableError reports that the backend is down or unreachable.
// Plain network failures classify here too.
type UnavailableError struct {
	Err error
}

func (e *UnavailableError) Error() string {
	if e.Err == nil {
		return "model backend unavailable"
	}
	return fmt.Sprintf("model backend unavailable: %v", e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// TruncatedError reports output cut off at the MaxTokens limit. Raising
// the request's token budget is the fix, so retrying the same request
// is pointless.
type TruncatedError struct {
	Raw json.RawMessage
}

func (e *TruncatedError) Error() string {
	return "model output truncated at the token limit"
}

// classifyHTTPStatus maps a backend HTTP status onto the error classes
// above. Every provider adapter funnels its SDK errors through here so
// the retry layer sees one vocabulary.
func classifyHTTPStatus(status int, err error) error {
	if status == http.StatusTooManyRequests {
		return &RateLimitError{Err: err}
	}
	return &UnavailableError{Err: err}
}
