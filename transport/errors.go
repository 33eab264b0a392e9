package transport

import "errors"

// Sentinel errors for transport operations.
var (
	// ErrBusy is returned when no request slot frees up within MaxWait.
	ErrBusy = errors.New("transport: too many concurrent requests")

	// ErrTimeout is returned when a request exceeds the configured Timeout.
	ErrTimeout = errors.New("transport: request timed out")

	// ErrInvalidBaseURL is returned by NewHTTP for an unparsable BaseURL.
	ErrInvalidBaseURL = errors.New("transport: invalid base URL")
)
