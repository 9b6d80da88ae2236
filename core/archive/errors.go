package archive

import (
	"errors"
	"fmt"
)

var (
	// ErrUpstreamUnavailable covers transport failures, timeouts, an open
	// circuit breaker and rate-limit waits that could not complete.
	ErrUpstreamUnavailable = errors.New("browse service unavailable")
	// ErrUpstreamTimeout is the timeout flavour of ErrUpstreamUnavailable.
	ErrUpstreamTimeout = fmt.Errorf("%w: request timed out", ErrUpstreamUnavailable)
	// ErrUpstreamRejected covers non-2xx responses and undecodable bodies.
	ErrUpstreamRejected = errors.New("browse service rejected request")
)

// StatusError is returned for a non-2xx upstream response.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("browse service returned status %d", e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return ErrUpstreamRejected
}
