// Package token turns caller credentials into cache partitions.
//
// A Credential is a literal token, a lazy supplier, or a precomputed
// Resolved pair. The Resolver derives a cache key from the stable claims of
// a JWT-shaped token so that refreshed tokens for the same identity share a
// partition. Opaque tokens are used verbatim.
package token
