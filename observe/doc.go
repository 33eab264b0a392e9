// Package observe provides observability primitives for entity store
// operations.
//
// It is a pure instrumentation library: no fetching, no caching, no I/O
// beyond exporter setup. The store wraps each network flight with a
// Middleware so fetches produce a span, a set of counters, and a log line.
package observe
