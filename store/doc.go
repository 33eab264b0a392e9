// Package store is a client-side cache of Siren entities.
//
// A Store holds one Entry per (credential partition, identifier) pair and
// keeps observers informed as entries change. Fetch de-duplicates concurrent
// requests for the same pair, populates every identifier reachable through
// the embedded sub-entity graph of a response, and warms the cache from
// cache-primer links advertised in the response's Link header.
//
// # Partitions
//
// Each operation takes a token.Credential. The credential resolves to a
// cache key derived from the token's stable claims, so a refreshed token for
// the same identity addresses the same partition. References whose links
// carry the nofollow relation always use the anonymous partition and never
// invoke the credential.
//
// # Listeners
//
// Listeners registered for a pair are called in registration order after
// every change to that pair, outside the store lock:
//
//	unsubscribe, err := s.AddListener(ctx, ref.Href(href), cred,
//		store.NewListener(func(e *siren.Entity, err error) {
//			// e is nil on removal and on error
//		}))
//	defer unsubscribe()
//
// # Concurrency
//
// All methods are safe for concurrent use. A network request, once started,
// runs to completion even if the caller that started it stops waiting.
// Writes issued while a request is pending (Update, SetError, Remove, Clear,
// or a bypassing Refresh) supersede it; its late result is discarded.
package store
