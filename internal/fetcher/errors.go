package fetcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// maxErrorBodyRunes bounds the response text carried by HTTPStatusError.
const maxErrorBodyRunes = 500

// HTTPStatusError is returned when the backend answers with a non-2xx status.
// It is never retried.
type HTTPStatusError struct {
	StatusCode int
	Status     string
	Body       string
	Payload    Payload
}

func (e *HTTPStatusError) Error() string {
	msg := fmt.Sprintf("HTTP %d %s", e.StatusCode, e.Status)
	if e.Body != "" {
		msg += " " + e.Body
	}
	return msg
}

func newHTTPStatusError(code int, statusText string, body []byte) *HTTPStatusError {
	return &HTTPStatusError{
		StatusCode: code,
		Status:     statusText,
		Body:       truncateRunes(strings.TrimSpace(string(body)), maxErrorBodyRunes),
		Payload:    ParsePayload(body),
	}
}

// CancelledError marks an attempt aborted because its session was superseded
// or unmounted. It is neither retried nor reported as a failure.
type CancelledError struct {
	Cause error
}

func (e *CancelledError) Error() string {
	if e.Cause == nil {
		return "request cancelled"
	}
	return "request cancelled: " + e.Cause.Error()
}

func (e *CancelledError) Unwrap() error {
	return e.Cause
}

// IsCancelled reports whether err stems from a cancelled request.
func IsCancelled(err error) bool {
	var ce *CancelledError
	return errors.As(err, &ce)
}

// AsHTTPStatus extracts an HTTPStatusError from err's chain.
func AsHTTPStatus(err error) (*HTTPStatusError, bool) {
	var he *HTTPStatusError
	if errors.As(err, &he) {
		return he, true
	}
	return nil, false
}

func cancelled(ctx context.Context) *CancelledError {
	return &CancelledError{Cause: context.Cause(ctx)}
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
