package cache

import "sync"

// Table is a two-level in-memory store: partition first, identifier second.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Keys: callers pass keys built by NewKey; Table does not re-normalize.
// - Lifetime: entries are never evicted; they leave only via Delete or Reset.
type Table[V any] struct {
	mu         sync.RWMutex
	partitions map[string]map[string]V
}

// NewTable creates an empty table.
func NewTable[V any]() *Table[V] {
	return &Table[V]{
		partitions: make(map[string]map[string]V),
	}
}

// Get returns the value stored under key.
func (t *Table[V]) Get(key Key) (V, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var zero V
	entries, ok := t.partitions[key.Partition]
	if !ok {
		return zero, false
	}
	v, ok := entries[key.ID]
	return v, ok
}

// Set stores value under key, replacing any previous value.
func (t *Table[V]) Set(key Key, value V) {
	t.mu.Lock()
	entries, ok := t.partitions[key.Partition]
	if !ok {
		entries = make(map[string]V)
		t.partitions[key.Partition] = entries
	}
	entries[key.ID] = value
	t.mu.Unlock()
}

// Delete removes the value under key. Idempotent - no error on miss.
// It reports whether a value was present.
func (t *Table[V]) Delete(key Key) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	entries, ok := t.partitions[key.Partition]
	if !ok {
		return false
	}
	if _, ok := entries[key.ID]; !ok {
		return false
	}
	delete(entries, key.ID)
	if len(entries) == 0 {
		delete(t.partitions, key.Partition)
	}
	return true
}

// Len returns the number of stored values across all partitions.
func (t *Table[V]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n := 0
	for _, entries := range t.partitions {
		n += len(entries)
	}
	return n
}

// Partitions returns the number of non-empty partitions.
func (t *Table[V]) Partitions() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.partitions)
}

// Range calls fn for every stored value until fn returns false.
// fn must not call back into the table.
func (t *Table[V]) Range(fn func(key Key, value V) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for partition, entries := range t.partitions {
		for id, v := range entries {
			if !fn(Key{Partition: partition, ID: id}, v) {
				return
			}
		}
	}
}

// Reset drops every value.
func (t *Table[V]) Reset() {
	t.mu.Lock()
	t.partitions = make(map[string]map[string]V)
	t.mu.Unlock()
}
