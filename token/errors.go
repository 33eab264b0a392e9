package token

import "errors"

// Sentinel errors for credential resolution.
var (
	// ErrMalformedClaims indicates the claims segment of a three-part token
	// is not base64-encoded JSON.
	ErrMalformedClaims = errors.New("token: claims segment is malformed")

	// ErrSupplier indicates a credential supplier failed.
	ErrSupplier = errors.New("token: credential supplier failed")

	// ErrNestedSupplier indicates a supplier returned another supplier.
	ErrNestedSupplier = errors.New("token: supplier returned a supplier")
)
