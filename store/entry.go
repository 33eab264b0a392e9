package store

import "github.com/jonwraymond/sirenstore/siren"

// Status is the lifecycle state of an Entry.
type Status int

const (
	// StatusFetching means a request for the entry is in flight.
	StatusFetching Status = iota
	// StatusReady means the entry holds an entity.
	StatusReady
	// StatusError means the last request failed or an error was recorded.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusFetching:
		return "fetching"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Entry is a snapshot of one cached slot.
type Entry struct {
	Status Status
	Entity *siren.Entity
	Err    error
}

// entry is the stored form. gen identifies the flight that owns a fetching
// entry; it is zero for entries written directly.
type entry struct {
	Entry
	gen uint64
}
