// Package fetcher issues JSON requests to the advisory backend with bounded
// retry of transient network failures.
package fetcher

import (
	"context"
)

// DefaultMaxAttempts is used when a caller passes a non-positive attempt count.
const DefaultMaxAttempts = 2

// Request describes one logical backend call. Every retried attempt of the
// same Request carries identical headers, including any idempotency key.
type Request struct {
	Method  string
	URL     string
	Body    any
	Headers map[string]string
}

// Fetcher performs a logical request and returns the decoded payload.
type Fetcher interface {
	// Fetch issues req up to maxAttempts times. A non-positive maxAttempts
	// means DefaultMaxAttempts.
	Fetch(ctx context.Context, req Request, maxAttempts int) (*Response, error)
}

// Response is a completed 2xx exchange.
type Response struct {
	StatusCode int
	Payload    Payload
}
