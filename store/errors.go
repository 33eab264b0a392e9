package store

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for store operations.
var (
	// ErrMissingIdentifier is returned when a reference carries no identifier.
	ErrMissingIdentifier = errors.New("store: cannot fetch undefined entity id")

	// ErrNilListener is returned when registering a nil listener.
	ErrNilListener = errors.New("store: listener is nil")

	// ErrNilTransport is returned by New when Config.Transport is nil.
	ErrNilTransport = errors.New("store: transport is nil")

	// ErrInvalidConfig is returned by New for an out-of-range setting.
	ErrInvalidConfig = errors.New("store: invalid config")
)

// HTTPError records a non-2xx response.
type HTTPError struct {
	Code int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("store: unexpected status %d %s", e.Code, http.StatusText(e.Code))
}

// StatusCode extracts the HTTP status from err.
func StatusCode(err error) (int, bool) {
	var se *HTTPError
	if errors.As(err, &se) {
		return se.Code, true
	}
	return 0, false
}
