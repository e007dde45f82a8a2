package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// StatusError is a non-2xx, non-429 upstream answer. It is never retried.
type StatusError struct {
	StatusCode int
	Body       string
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream error: status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

// RateLimitError is returned once the 429 retry ceiling is hit.
type RateLimitError struct {
	Attempts   int
	RetryAfter time.Duration
	URL        string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded after %d attempts on %s (retry after %s)", e.Attempts, e.URL, e.RetryAfter)
}

// TransportError wraps a network failure that survived the transient retries.
type TransportError struct {
	Attempts int
	URL      string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func IsNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}
