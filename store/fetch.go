package store

import (
	"context"
	"io"
	"net/http"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/sirenstore/observe"
	"github.com/jonwraymond/sirenstore/ref"
	"github.com/jonwraymond/sirenstore/siren"
	"github.com/jonwraymond/sirenstore/token"
	"github.com/jonwraymond/sirenstore/transport"
)

// Fetch returns the entry for r, requesting it when the pair has no entry.
//
// A pair with a request in flight joins that request and shares its
// outcome. A pair that is already ready or failed is returned as is, after
// its listeners are notified again with the cached state. Request failures
// are recorded in the entry and returned with a nil error; the error is
// non-nil only for a missing identifier, a credential failure, or ctx
// ending while waiting.
func (s *Store) Fetch(ctx context.Context, r ref.Ref, cred token.Credential) (Entry, error) {
	return s.fetch(ctx, r, cred, false)
}

// Refresh always issues a new request for r, bypassing the cache and any
// request in flight, and replaces the entry with the outcome. A successful
// refresh notifies every invalidation listener.
func (s *Store) Refresh(ctx context.Context, r ref.Ref, cred token.Credential) (Entry, error) {
	return s.fetch(ctx, r, cred, true)
}

func (s *Store) fetch(ctx context.Context, r ref.Ref, cred token.Credential, bypass bool) (Entry, error) {
	t, err := s.resolve(ctx, r, cred)
	if err != nil {
		return Entry{}, err
	}

	op := observe.Op{
		Name:      observe.OpFetch,
		Href:      t.id,
		Bypass:    bypass,
		Anonymous: t.resolved.IsAnonymous(),
	}
	if bypass {
		op.Name = observe.OpRefresh
	}
	if _, priming := ctx.Value(primeChainKey{}).(primeChain); priming && bypass {
		op.Name = observe.OpPrime
	}

	s.mu.Lock()
	cur, ok := s.entries.Get(t.key)

	if ok && !bypass && cur.Status != StatusFetching {
		listeners := s.listeners.snapshot(t.key)
		s.mu.Unlock()

		for _, l := range listeners {
			l.EntityChanged(cur.Entity, cur.Err)
		}
		return cur.Entry, nil
	}

	var ch <-chan singleflight.Result
	if ok && !bypass {
		// Joining: the flight that owns the entry is still registered
		// because it writes the entry before it leaves the group.
		ch = s.flights.DoChan(t.key.String(), func() (any, error) {
			return s.currentEntry(t), nil
		})
		s.mu.Unlock()
		s.config.Middleware.Joined(ctx, op)
	} else {
		s.flights.Forget(t.key.String())
		s.gen++
		gen := s.gen
		s.entries.Set(t.key, entry{Entry: Entry{Status: StatusFetching}, gen: gen})

		flightCtx := context.WithoutCancel(ctx)
		ch = s.flights.DoChan(t.key.String(), func() (any, error) {
			return s.runFlight(flightCtx, t, op, gen), nil
		})
		s.mu.Unlock()
	}

	select {
	case res := <-ch:
		return res.Val.(Entry), nil
	case <-ctx.Done():
		return Entry{}, ctx.Err()
	}
}

func (s *Store) currentEntry(t target) Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, _ := s.entries.Get(t.key)
	return e.Entry
}

// runFlight performs the request and settles the entry it was started for.
func (s *Store) runFlight(ctx context.Context, t target, op observe.Op, gen uint64) Entry {
	var result Entry
	_ = s.config.Middleware.Wrap(func(ctx context.Context, op observe.Op) error {
		entity, err := s.load(ctx, t, op.Bypass)
		if err != nil {
			result = s.settleError(t, gen, err)
			return err
		}
		result = s.settleReady(t, gen, entity, op.Bypass)
		return nil
	})(ctx, op)
	return result
}

// ownsLocked reports whether the flight gen still owns the entry at key.
func (s *Store) ownsLocked(t target, gen uint64) bool {
	cur, ok := s.entries.Get(t.key)
	return ok && cur.Status == StatusFetching && cur.gen == gen
}

func (s *Store) settleReady(t target, gen uint64, entity *siren.Entity, bypass bool) Entry {
	result := Entry{Status: StatusReady, Entity: entity}

	s.mu.Lock()
	if !s.ownsLocked(t, gen) {
		s.mu.Unlock()
		s.logger.Debug(context.Background(), "discarding superseded response",
			observe.Field{Key: "href", Value: t.id})
		return result
	}
	pairs, notify := s.populateLocked(t, entity)
	var invalidation []InvalidationListener
	if bypass {
		invalidation = s.listeners.invalidationSnapshot()
	}
	s.mu.Unlock()

	s.notifyPairs(pairs, notify)
	for _, l := range invalidation {
		l.Invalidated(t.id, t.resolved.CacheKey, entity)
	}
	return result
}

func (s *Store) settleError(t target, gen uint64, cause error) Entry {
	result := Entry{Status: StatusError, Err: cause}

	s.mu.Lock()
	if !s.ownsLocked(t, gen) {
		s.mu.Unlock()
		return result
	}
	listeners := s.setErrorLocked(t.key, cause)
	s.mu.Unlock()

	for _, l := range listeners {
		l.EntityChanged(nil, cause)
	}
	return result
}

// load requests t, primes the cache from the response's Link header, and
// parses the body.
func (s *Store) load(ctx context.Context, t target, bypass bool) (*siren.Entity, error) {
	header := http.Header{}
	header.Set("Accept", "application/vnd.siren+json, application/json")
	if t.ref.AttachToken() && t.resolved.TokenValue != "" {
		header.Set("Authorization", "Bearer "+t.resolved.TokenValue)
	}
	if bypass {
		header.Set("Pragma", "no-cache")
		header.Set("Cache-Control", "no-cache")
	}

	resp, err := s.config.Transport.Do(ctx, &transport.Request{
		Method: http.MethodGet,
		Href:   t.id,
		Header: header,
	})
	if err != nil {
		return nil, err
	}

	if !resp.OK() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
		return nil, &HTTPError{Code: resp.StatusCode}
	}

	// The body is read and closed before priming so primers do not wait
	// on a request slot this response still holds.
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, err
	}

	s.prime(ctx, t, resp.Header)

	return s.config.Parser(body)
}
