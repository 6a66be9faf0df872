package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent error conditions in the postsync domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrTransport is returned when the request could not be completed at the network level.
	ErrTransport = errors.New("postsync: transport failure")

	// ErrDecode is returned when a response body is missing or does not match the expected shape.
	ErrDecode = errors.New("postsync: decode failure")

	// ErrInvalidEndpoint is returned when the base URL cannot be turned into a request URL.
	ErrInvalidEndpoint = errors.New("postsync: invalid endpoint")

	// ErrUnexpectedStatus is returned when the remote answers with a non-2xx status.
	ErrUnexpectedStatus = errors.New("postsync: unexpected status")

	// ErrAlreadyRunning is returned when Start() is called on a running store.
	ErrAlreadyRunning = errors.New("postsync: already running")

	// ErrNotRunning is returned when Close() is called on a stopped store.
	ErrNotRunning = errors.New("postsync: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("postsync: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("postsync: invalid configuration")

	// ErrStoreClosed is recorded when an operation is issued on a closed store.
	ErrStoreClosed = errors.New("postsync: store closed")
)

// StatusError carries the status code and a body excerpt of a non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("server returned %d", e.Code)
	}
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Body)
}

// Unwrap lets errors.Is match ErrUnexpectedStatus.
func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}
