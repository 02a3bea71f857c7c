package resilience

import (
	"errors"
	"io"
	"net"
	"strings"
	"syscall"
)

// TransientError wraps an error that is safe to retry.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// NewTransientError marks err as transient.
func NewTransientError(err error) *TransientError {
	return &TransientError{Err: err}
}

// transientPatterns are lower-cased substrings of network-layer failures that
// are likely to succeed on an immediate re-issue: an empty response, a
// generic fetch failure, or a network error.
var transientPatterns = []string{
	// empty response
	"err_empty_response",
	"empty response",
	"empty reply",
	"server closed idle connection",
	"unexpected eof",
	// generic fetch failure
	"failed to fetch",
	"connection refused",
	"connection reset by peer",
	"broken pipe",
	"transport connection broken",
	// network error
	"networkerror",
	"network error",
	"network is unreachable",
	"i/o timeout",
	"tls handshake timeout",
	"temporary failure in name resolution",
}

// IsTransient returns true if the error (or any error in its chain) is a
// TransientError, or if it matches one of the known transient network
// failure patterns.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	// Check for explicit TransientError in chain.
	var te *TransientError
	if errors.As(err, &te) {
		return true
	}

	// A response that ended before any byte arrived.
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	// Check for network-level timeouts.
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	// Connection reset / refused / aborted.
	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	// String-based heuristics for wrapped errors from HTTP clients.
	msg := strings.ToLower(err.Error())
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}

// ClassifyError categorizes an error as "transient" or "permanent".
func ClassifyError(err error) string {
	if IsTransient(err) {
		return "transient"
	}
	return "permanent"
}
