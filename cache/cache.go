package cache

import (
	"errors"
	"strings"
)

// MaxKeyLength is the maximum allowed length for an identifier.
const MaxKeyLength = 4096

// Sentinel errors for cache operations.
var (
	ErrInvalidKey = errors.New("cache: key is invalid")
	ErrKeyTooLong = errors.New("cache: key exceeds max length")
)

// Key addresses one slot of a Table: the credential partition and the
// resource identifier within it.
//
// Both parts are compared case-insensitively. Build keys with NewKey so the
// normalization happens in one place.
type Key struct {
	Partition string
	ID        string
}

// NewKey returns the normalized key for partition and id.
func NewKey(partition, id string) Key {
	return Key{
		Partition: strings.ToLower(partition),
		ID:        strings.ToLower(id),
	}
}

// String renders the key as "<partition>|<id>". The anonymous partition
// renders with an empty prefix.
func (k Key) String() string {
	return k.Partition + "|" + k.ID
}

// ValidateKey checks if an identifier is usable as the ID part of a key.
func ValidateKey(id string) error {
	if id == "" || strings.TrimSpace(id) == "" {
		return ErrInvalidKey
	}
	if len(id) > MaxKeyLength {
		return ErrKeyTooLong
	}
	// Reject keys with newlines or carriage returns
	if strings.ContainsAny(id, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}
