package store

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jonwraymond/sirenstore/ref"
	"github.com/jonwraymond/sirenstore/siren"
	"github.com/jonwraymond/sirenstore/token"
)

func TestListeners_NotifiedInRegistrationOrder(t *testing.T) {
	s := newTestStore(t, newFakeServer())
	ctx := context.Background()

	var order []int
	for i := 0; i < 3; i++ {
		i := i
		_, err := s.AddListener(ctx, ref.Href(itemHref), nil, NewListener(func(*siren.Entity, error) {
			order = append(order, i)
		}))
		if err != nil {
			t.Fatalf("AddListener() error = %v", err)
		}
	}

	_, _ = s.Update(ctx, ref.Href(itemHref), nil, &siren.Entity{})
	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Errorf("notification order = %v", order)
	}
}

func TestListeners_ReferenceFormsShareRegistrations(t *testing.T) {
	s := newTestStore(t, newFakeServer())
	ctx := context.Background()

	rec := &recorder{}
	if _, err := s.AddListener(ctx, ref.Href(itemHref), nil, rec); err != nil {
		t.Fatalf("AddListener() error = %v", err)
	}

	entity := &siren.Entity{Class: []string{"item"}}
	_, _ = s.Update(ctx, ref.LinkTo("HTTPS://API.test/Items/1", "item"), nil, entity)
	if ev := rec.lastEvent(t); ev.entity != entity {
		t.Error("listener registered by href missed an update by link")
	}

	self := &siren.Entity{
		Class: []string{"self"},
		Links: []siren.Link{{Rel: []string{siren.RelSelf}, Href: itemHref}},
	}
	_, _ = s.Update(ctx, ref.Entity(self), nil, self)
	if ev := rec.lastEvent(t); ev.entity != self {
		t.Error("listener registered by href missed an update by entity")
	}
}

func TestListeners_PartitionsAreIsolated(t *testing.T) {
	s := newTestStore(t, newFakeServer())
	ctx := context.Background()

	anon := &recorder{}
	authed := &recorder{}
	_, _ = s.AddListener(ctx, ref.Href(itemHref), nil, anon)
	_, _ = s.AddListener(ctx, ref.Href(itemHref), token.Static("tok"), authed)

	_, _ = s.Update(ctx, ref.Href(itemHref), token.Static("tok"), &siren.Entity{})

	if len(anon.all()) != 0 {
		t.Error("anonymous listener notified of an authenticated update")
	}
	if len(authed.all()) != 1 {
		t.Errorf("authenticated notifications = %d, want 1", len(authed.all()))
	}
}

func TestListeners_RemoveAndSetError(t *testing.T) {
	s := newTestStore(t, newFakeServer())
	ctx := context.Background()

	rec := &recorder{}
	_, _ = s.AddListener(ctx, ref.Href(itemHref), nil, rec)

	_, _ = s.Update(ctx, ref.Href(itemHref), nil, &siren.Entity{})
	if err := s.Remove(ctx, ref.Href(itemHref), nil); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if ev := rec.lastEvent(t); ev.entity != nil || ev.err != nil {
		t.Errorf("removal notified (%v, %v), want (nil, nil)", ev.entity, ev.err)
	}

	cause := errors.New("gone")
	if err := s.SetError(ctx, ref.Href(itemHref), nil, cause); err != nil {
		t.Fatalf("SetError() error = %v", err)
	}
	if ev := rec.lastEvent(t); ev.entity != nil || !errors.Is(ev.err, cause) {
		t.Errorf("SetError notified (%v, %v), want (nil, %v)", ev.entity, ev.err, cause)
	}
}

func TestListeners_Unsubscribe(t *testing.T) {
	s := newTestStore(t, newFakeServer())
	ctx := context.Background()

	rec := &recorder{}
	unsubscribe, err := s.AddListener(ctx, ref.Href(itemHref), nil, rec)
	if err != nil {
		t.Fatalf("AddListener() error = %v", err)
	}
	unsubscribe()
	unsubscribe()

	_, _ = s.Update(ctx, ref.Href(itemHref), nil, &siren.Entity{})
	if len(rec.all()) != 0 {
		t.Error("unsubscribed listener was notified")
	}
	if st := s.Stats(); st.Listeners != 0 {
		t.Errorf("Stats().Listeners = %d, want 0", st.Listeners)
	}
}

func TestListeners_TokenRegistrations(t *testing.T) {
	first := signedToken(t, jwt.MapClaims{"sub": "1", "exp": 100})
	second := signedToken(t, jwt.MapClaims{"sub": "1", "exp": 200})
	third := signedToken(t, jwt.MapClaims{"sub": "1", "exp": 300})

	t.Run("unsubscribe removes one token", func(t *testing.T) {
		s := newTestStore(t, newFakeServer())
		ctx := context.Background()
		rec := &recorder{}

		unsubFirst, _ := s.AddListener(ctx, ref.Href(itemHref), token.Static(first), rec)
		unsubSecond, _ := s.AddListener(ctx, ref.Href(itemHref), token.Static(second), rec)
		if st := s.Stats(); st.Listeners != 1 {
			t.Errorf("Stats().Listeners = %d, want 1 registration", st.Listeners)
		}

		unsubFirst()
		_, _ = s.Update(ctx, ref.Href(itemHref), token.Static(first), &siren.Entity{})
		if len(rec.all()) != 1 {
			t.Fatal("listener removed while still registered under another token")
		}

		unsubSecond()
		_, _ = s.Update(ctx, ref.Href(itemHref), token.Static(first), &siren.Entity{})
		if len(rec.all()) != 1 {
			t.Error("listener notified after its last registration was removed")
		}
	})

	t.Run("unknown token removes listener", func(t *testing.T) {
		s := newTestStore(t, newFakeServer())
		ctx := context.Background()
		rec := &recorder{}

		_, _ = s.AddListener(ctx, ref.Href(itemHref), token.Static(first), rec)
		_, _ = s.AddListener(ctx, ref.Href(itemHref), token.Static(second), rec)

		if err := s.RemoveListener(ctx, ref.Href(itemHref), token.Static(third), rec); err != nil {
			t.Fatalf("RemoveListener() error = %v", err)
		}
		_, _ = s.Update(ctx, ref.Href(itemHref), token.Static(first), &siren.Entity{})
		if len(rec.all()) != 0 {
			t.Error("listener survived removal with an unregistered token")
		}
	})
}

func TestListeners_NilRejected(t *testing.T) {
	s := newTestStore(t, newFakeServer())
	ctx := context.Background()

	if _, err := s.AddListener(ctx, ref.Href(itemHref), nil, nil); !errors.Is(err, ErrNilListener) {
		t.Errorf("AddListener(nil) error = %v", err)
	}
	if err := s.RemoveListener(ctx, ref.Href(itemHref), nil, nil); !errors.Is(err, ErrNilListener) {
		t.Errorf("RemoveListener(nil) error = %v", err)
	}
	if err := s.AddInvalidationListener(nil); !errors.Is(err, ErrNilListener) {
		t.Errorf("AddInvalidationListener(nil) error = %v", err)
	}
	if _, err := s.AddListener(ctx, ref.Href(""), nil, &recorder{}); !errors.Is(err, ErrMissingIdentifier) {
		t.Errorf("AddListener(undefined) error = %v", err)
	}
}

func TestListeners_MayCallBackIntoStore(t *testing.T) {
	s := newTestStore(t, newFakeServer())
	ctx := context.Background()

	var seen *siren.Entity
	_, _ = s.AddListener(ctx, ref.Href(itemHref), nil, NewListener(func(*siren.Entity, error) {
		seen, _ = s.Get(ctx, ref.Href(itemHref), nil)
	}))

	entity := &siren.Entity{}
	_, _ = s.Update(ctx, ref.Href(itemHref), nil, entity)
	if seen != entity {
		t.Error("listener did not observe the stored entity")
	}
}

func TestInvalidationListeners_AddIsIdempotent(t *testing.T) {
	f := newFakeServer()
	f.serveJSON(itemHref, itemJSON(itemHref, "item"))
	s := newTestStore(t, f)
	ctx := context.Background()

	calls := 0
	l := NewInvalidationListener(func(string, string, *siren.Entity) { calls++ })
	_ = s.AddInvalidationListener(l)
	_ = s.AddInvalidationListener(l)
	if st := s.Stats(); st.InvalidationListeners != 1 {
		t.Errorf("Stats().InvalidationListeners = %d, want 1", st.InvalidationListeners)
	}

	_, _ = s.Refresh(ctx, ref.Href(itemHref), nil)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}

	s.RemoveInvalidationListener(l)
	_, _ = s.Refresh(ctx, ref.Href(itemHref), nil)
	if calls != 1 {
		t.Errorf("calls after removal = %d, want 1", calls)
	}
}
