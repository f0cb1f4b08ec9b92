package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for watchlist operations.
// Use errors.Is(err, domain.ErrNotFound) to check.
var (
	// ErrUnauthorized indicates a missing or rejected credential on an authenticated call
	ErrUnauthorized = errors.New("credential is missing or invalid")

	// ErrNotFound indicates the title is absent from the provider or the store
	ErrNotFound = errors.New("title not found")

	// ErrServerError indicates the remote was reachable but rejected the request
	ErrServerError = errors.New("remote rejected the request")

	// ErrUnreachable indicates a transport-level failure or timeout
	ErrUnreachable = errors.New("remote is unreachable")

	// ErrValidation indicates missing required input
	ErrValidation = errors.New("invalid input")

	// ErrProvider indicates the metadata provider failed for reasons other than not-found
	ErrProvider = errors.New("metadata provider error")

	// ErrAlreadyExists indicates the store already holds the title (recoverable)
	ErrAlreadyExists = errors.New("title already exists")

	// ErrBusy indicates an operation on the same title is still outstanding
	ErrBusy = errors.New("operation already in flight for title")
)

// RemoteError wraps a sentinel with the HTTP status and message returned by
// a remote collaborator.
type RemoteError struct {
	StatusCode int
	Endpoint   string
	Message    string
	Err        error // sentinel, for errors.Is()
}

func (e *RemoteError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s: %s", e.Endpoint, e.Err, e.Message)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.Endpoint, e.StatusCode, e.Message)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Validationf returns an ErrValidation carrying a description of the bad input
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// IsTransient reports whether err is a remote failure the user cannot fix
// (server rejection or unreachable remote).
func IsTransient(err error) bool {
	return errors.Is(err, ErrServerError) || errors.Is(err, ErrUnreachable)
}
