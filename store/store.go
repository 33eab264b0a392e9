package store

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/sirenstore/cache"
	"github.com/jonwraymond/sirenstore/observe"
	"github.com/jonwraymond/sirenstore/ref"
	"github.com/jonwraymond/sirenstore/siren"
	"github.com/jonwraymond/sirenstore/token"
)

// Store caches Siren entities per credential partition.
//
// Contract:
// - Concurrency: safe for concurrent use. Listeners are called without
// the store lock held and may call back into the Store.
// - Context: ctx bounds credential resolution and the wait for a result,
// never the network request itself.
// - Errors: precondition and credential failures are returned; request
// failures are recorded as error entries.
type Store struct {
	config Config
	logger observe.Logger

	mu        sync.Mutex
	entries   *cache.Table[entry]
	listeners *registry
	flights   *singleflight.Group
	gen       uint64
}

// New creates a Store.
func New(config Config) (*Store, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config.applyDefaults()

	return &Store{
		config:    config,
		logger:    config.Logger,
		entries:   cache.NewTable[entry](),
		listeners: newRegistry(),
		flights:   &singleflight.Group{},
	}, nil
}

// target is a reference resolved against a credential.
type target struct {
	ref      ref.Ref
	id       string
	resolved token.Resolved
	key      cache.Key
}

func (s *Store) resolve(ctx context.Context, r ref.Ref, cred token.Credential) (target, error) {
	id, ok := r.ID()
	if !ok {
		return target{}, ErrMissingIdentifier
	}
	if err := cache.ValidateKey(id); err != nil {
		return target{}, fmt.Errorf("store: identifier %q: %w", id, err)
	}

	resolved := token.Anonymous
	if r.AttachToken() {
		var err error
		resolved, err = s.config.Resolver.Resolve(ctx, cred)
		if err != nil {
			return target{}, err
		}
	}

	return target{
		ref:      r,
		id:       id,
		resolved: resolved,
		key:      cache.NewKey(resolved.CacheKey, id),
	}, nil
}

// Get returns the cached entity for r, or nil when the entry is missing,
// fetching, or failed. It never fetches. Use Lookup to read a failed entry
// and its error.
func (s *Store) Get(ctx context.Context, r ref.Ref, cred token.Credential) (*siren.Entity, error) {
	e, ok, err := s.Lookup(ctx, r, cred)
	if err != nil || !ok || e.Status != StatusReady {
		return nil, err
	}
	return e.Entity, nil
}

// Lookup returns the entry for r in any state.
func (s *Store) Lookup(ctx context.Context, r ref.Ref, cred token.Credential) (Entry, bool, error) {
	t, err := s.resolve(ctx, r, cred)
	if err != nil {
		return Entry{}, false, err
	}

	s.mu.Lock()
	e, ok := s.entries.Get(t.key)
	s.mu.Unlock()

	return e.Entry, ok, nil
}

// Update stores entity under r and under every identifier in its embedded
// graph, then notifies each pair's listeners in that order. It returns
// entity.
func (s *Store) Update(ctx context.Context, r ref.Ref, cred token.Credential, entity *siren.Entity) (*siren.Entity, error) {
	t, err := s.resolve(ctx, r, cred)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	pairs, notify := s.populateLocked(t, entity)
	s.mu.Unlock()

	s.notifyPairs(pairs, notify)
	return entity, nil
}

// populateLocked writes the expansion of entity as ready entries and
// snapshots the listeners to notify.
func (s *Store) populateLocked(t target, entity *siren.Entity) ([]Pair, [][]Listener) {
	pairs := Expand(t.id, entity)
	notify := make([][]Listener, len(pairs))
	for i, p := range pairs {
		key := cache.NewKey(t.resolved.CacheKey, p.ID)
		s.entries.Set(key, entry{Entry: Entry{Status: StatusReady, Entity: p.Entity}})
		notify[i] = s.listeners.snapshot(key)
	}
	return pairs, notify
}

func (s *Store) notifyPairs(pairs []Pair, notify [][]Listener) {
	for i, p := range pairs {
		for _, l := range notify[i] {
			l.EntityChanged(p.Entity, nil)
		}
	}
}

// Remove deletes the entry for r and notifies its listeners with nil.
func (s *Store) Remove(ctx context.Context, r ref.Ref, cred token.Credential) error {
	t, err := s.resolve(ctx, r, cred)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.entries.Delete(t.key)
	listeners := s.listeners.snapshot(t.key)
	s.mu.Unlock()

	for _, l := range listeners {
		l.EntityChanged(nil, nil)
	}
	return nil
}

// SetError records cause as the entry for r and notifies its listeners.
func (s *Store) SetError(ctx context.Context, r ref.Ref, cred token.Credential, cause error) error {
	t, err := s.resolve(ctx, r, cred)
	if err != nil {
		return err
	}

	s.mu.Lock()
	listeners := s.setErrorLocked(t.key, cause)
	s.mu.Unlock()

	for _, l := range listeners {
		l.EntityChanged(nil, cause)
	}
	return nil
}

func (s *Store) setErrorLocked(key cache.Key, cause error) []Listener {
	s.entries.Set(key, entry{Entry: Entry{Status: StatusError, Err: cause}})
	return s.listeners.snapshot(key)
}

// AddListener registers l for r under the token value cred resolves to.
// The returned Unsubscribe removes exactly that registration.
func (s *Store) AddListener(ctx context.Context, r ref.Ref, cred token.Credential, l Listener) (Unsubscribe, error) {
	if l == nil {
		return nil, ErrNilListener
	}
	t, err := s.resolve(ctx, r, cred)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.listeners.add(t.key, l, t.resolved.TokenValue)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		s.listeners.remove(t.key, l, t.resolved.TokenValue)
		s.mu.Unlock()
	}, nil
}

// RemoveListener removes the registration of l under the token value cred
// resolves to. If l was never registered with that value, every
// registration of l for r is removed.
func (s *Store) RemoveListener(ctx context.Context, r ref.Ref, cred token.Credential, l Listener) error {
	if l == nil {
		return ErrNilListener
	}
	t, err := s.resolve(ctx, r, cred)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.listeners.remove(t.key, l, t.resolved.TokenValue)
	s.mu.Unlock()
	return nil
}

// AddInvalidationListener registers l. Adding a listener twice is a no-op.
func (s *Store) AddInvalidationListener(l InvalidationListener) error {
	if l == nil {
		return ErrNilListener
	}
	s.mu.Lock()
	s.listeners.addInvalidation(l)
	s.mu.Unlock()
	return nil
}

// RemoveInvalidationListener unregisters l.
func (s *Store) RemoveInvalidationListener(l InvalidationListener) {
	s.mu.Lock()
	s.listeners.removeInvalidation(l)
	s.mu.Unlock()
}

// Clear drops every entry and listener. Requests still in flight complete
// without writing.
func (s *Store) Clear() {
	s.mu.Lock()
	s.entries.Reset()
	s.listeners.reset()
	s.flights = &singleflight.Group{}
	s.mu.Unlock()
}

// Stats is a snapshot of store occupancy.
type Stats struct {
	Entries               int
	Fetching              int
	Ready                 int
	Errors                int
	Partitions            int
	Listeners             int
	InvalidationListeners int
}

// Stats returns current occupancy counts.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{
		Partitions:            s.entries.Partitions(),
		Listeners:             s.listeners.count(),
		InvalidationListeners: len(s.listeners.invalidation),
	}
	s.entries.Range(func(_ cache.Key, e entry) bool {
		st.Entries++
		switch e.Status {
		case StatusFetching:
			st.Fetching++
		case StatusReady:
			st.Ready++
		case StatusError:
			st.Errors++
		}
		return true
	})
	return st
}
