package store

import (
	"github.com/jonwraymond/sirenstore/cache"
	"github.com/jonwraymond/sirenstore/siren"
)

// Listener observes one cached pair.
//
// EntityChanged receives the new entity after an update, (nil, nil) after a
// removal, and (nil, err) after an error is recorded. Listener values are
// compared with ==, so they must be comparable; wrap functions with
// NewListener.
type Listener interface {
	EntityChanged(entity *siren.Entity, err error)
}

// InvalidationListener observes every successful bypassing fetch.
type InvalidationListener interface {
	Invalidated(id, cacheKey string, entity *siren.Entity)
}

// Unsubscribe removes the registration it was returned for.
type Unsubscribe func()

type funcListener struct {
	fn func(entity *siren.Entity, err error)
}

func (l *funcListener) EntityChanged(entity *siren.Entity, err error) { l.fn(entity, err) }

// NewListener wraps fn. Each call returns a distinct listener.
func NewListener(fn func(entity *siren.Entity, err error)) Listener {
	return &funcListener{fn: fn}
}

type funcInvalidationListener struct {
	fn func(id, cacheKey string, entity *siren.Entity)
}

func (l *funcInvalidationListener) Invalidated(id, cacheKey string, entity *siren.Entity) {
	l.fn(id, cacheKey, entity)
}

// NewInvalidationListener wraps fn. Each call returns a distinct listener.
func NewInvalidationListener(fn func(id, cacheKey string, entity *siren.Entity)) InvalidationListener {
	return &funcInvalidationListener{fn: fn}
}

// registration is one listener and the token values it registered with.
type registration struct {
	listener Listener
	tokens   map[string]struct{}
}

// registry tracks listeners per pair in registration order. Callers hold
// the store lock.
type registry struct {
	pairs        *cache.Table[[]*registration]
	invalidation []InvalidationListener
}

func newRegistry() *registry {
	return &registry{pairs: cache.NewTable[[]*registration]()}
}

func (r *registry) add(key cache.Key, l Listener, tokenValue string) {
	regs, _ := r.pairs.Get(key)
	for _, reg := range regs {
		if reg.listener == l {
			reg.tokens[tokenValue] = struct{}{}
			return
		}
	}
	r.pairs.Set(key, append(regs, &registration{
		listener: l,
		tokens:   map[string]struct{}{tokenValue: {}},
	}))
}

// remove drops the registration of l under tokenValue. A listener with no
// registrations left is removed. A token value the listener never
// registered with removes the listener entirely: callers that unregister
// with their latest credential rather than the returned Unsubscribe are
// assumed to be going away.
func (r *registry) remove(key cache.Key, l Listener, tokenValue string) {
	regs, ok := r.pairs.Get(key)
	if !ok {
		return
	}
	for i, reg := range regs {
		if reg.listener != l {
			continue
		}
		if _, known := reg.tokens[tokenValue]; known {
			delete(reg.tokens, tokenValue)
			if len(reg.tokens) > 0 {
				return
			}
		}
		regs = append(regs[:i:i], regs[i+1:]...)
		if len(regs) == 0 {
			r.pairs.Delete(key)
		} else {
			r.pairs.Set(key, regs)
		}
		return
	}
}

// snapshot copies the listeners of key so they can be called unlocked.
func (r *registry) snapshot(key cache.Key) []Listener {
	regs, _ := r.pairs.Get(key)
	if len(regs) == 0 {
		return nil
	}
	out := make([]Listener, len(regs))
	for i, reg := range regs {
		out[i] = reg.listener
	}
	return out
}

func (r *registry) addInvalidation(l InvalidationListener) {
	for _, existing := range r.invalidation {
		if existing == l {
			return
		}
	}
	r.invalidation = append(r.invalidation, l)
}

func (r *registry) removeInvalidation(l InvalidationListener) {
	for i, existing := range r.invalidation {
		if existing == l {
			r.invalidation = append(r.invalidation[:i:i], r.invalidation[i+1:]...)
			return
		}
	}
}

func (r *registry) invalidationSnapshot() []InvalidationListener {
	return append([]InvalidationListener(nil), r.invalidation...)
}

func (r *registry) count() int {
	n := 0
	r.pairs.Range(func(_ cache.Key, regs []*registration) bool {
		n += len(regs)
		return true
	})
	return n
}

func (r *registry) reset() {
	r.pairs.Reset()
	r.invalidation = nil
}
