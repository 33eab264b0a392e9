// Package cache provides the keyed storage underneath the entity store.
//
// It provides a case-insensitive two-part Key (credential partition plus
// resource identifier) and a generic two-level Table with no eviction.
package cache
