package action

import "errors"

// Sentinel errors for action execution.
var (
	// ErrInvalidAction is returned for an action without a name or href.
	ErrInvalidAction = errors.New("action: action is missing name or href")

	// ErrActionNotFound is returned by PerformByName when the entity offers
	// no action with the requested name.
	ErrActionNotFound = errors.New("action: entity has no such action")

	// ErrNilStore is returned by New when Config.Store is nil.
	ErrNilStore = errors.New("action: store is nil")

	// ErrNilTransport is returned by New when Config.Transport is nil.
	ErrNilTransport = errors.New("action: transport is nil")
)
