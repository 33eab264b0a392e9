package store

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/jonwraymond/sirenstore/ref"
	"github.com/jonwraymond/sirenstore/siren"
	"github.com/jonwraymond/sirenstore/token"
)

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{name: "missing transport", config: Config{}, wantErr: ErrNilTransport},
		{name: "negative primer fetches", config: Config{Transport: newFakeServer(), MaxPrimerFetches: -1}, wantErr: ErrInvalidConfig},
		{name: "valid", config: Config{Transport: newFakeServer()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.config)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("New() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil || s == nil {
				t.Fatalf("New() = %v, %v", s, err)
			}
			if s.config.PrimerRel != DefaultPrimerRel || s.config.MaxPrimerFetches != 8 {
				t.Errorf("defaults not applied: %+v", s.config)
			}
		})
	}
}

func TestStore_Lifecycle(t *testing.T) {
	s := newTestStore(t, newFakeServer())
	ctx := context.Background()

	if got, err := s.Get(ctx, ref.Href(itemHref), nil); got != nil || err != nil {
		t.Errorf("Get() on empty store = %v, %v", got, err)
	}
	if _, ok, _ := s.Lookup(ctx, ref.Href(itemHref), nil); ok {
		t.Error("Lookup() found an entry in an empty store")
	}

	entity := &siren.Entity{Class: []string{"item"}}
	got, err := s.Update(ctx, ref.Href(itemHref), nil, entity)
	if err != nil || got != entity {
		t.Fatalf("Update() = %v, %v", got, err)
	}

	if got, _ := s.Get(ctx, ref.Href("HTTPS://API.TEST/ITEMS/1"), nil); got != entity {
		t.Error("Get() is not case-insensitive")
	}

	if err := s.Remove(ctx, ref.Href(itemHref), nil); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if got, _ := s.Get(ctx, ref.Href(itemHref), nil); got != nil {
		t.Error("entry survived Remove()")
	}
	if err := s.Remove(ctx, ref.Href(itemHref), nil); err != nil {
		t.Errorf("Remove() of a missing entry error = %v", err)
	}
}

func TestStore_UpdateExpandsGraph(t *testing.T) {
	s := newTestStore(t, newFakeServer())
	ctx := context.Background()

	child := selfLinked(otherHref)
	child.Rel = []string{"item"}
	root := selfLinked(rootHref, child)

	rootRec := &recorder{}
	childRec := &recorder{}
	_, _ = s.AddListener(ctx, ref.Href(rootHref), nil, rootRec)
	_, _ = s.AddListener(ctx, ref.Href(otherHref), nil, childRec)

	_, _ = s.Update(ctx, ref.Href(rootHref), nil, root)

	if got, _ := s.Get(ctx, ref.Href(otherHref), nil); got != child {
		t.Error("sub-entity not stored under its self href")
	}
	if rootRec.lastEvent(t).entity != root || childRec.lastEvent(t).entity != child {
		t.Error("pair listeners not notified with their entities")
	}
}

func TestStore_SetErrorOverridesReady(t *testing.T) {
	s := newTestStore(t, newFakeServer())
	ctx := context.Background()

	_, _ = s.Update(ctx, ref.Href(itemHref), nil, &siren.Entity{})
	cause := &HTTPError{Code: http.StatusForbidden}
	_ = s.SetError(ctx, ref.Href(itemHref), nil, cause)

	e, ok, _ := s.Lookup(ctx, ref.Href(itemHref), nil)
	if !ok || e.Status != StatusError || e.Err != error(cause) {
		t.Errorf("Lookup() = %+v, %v", e, ok)
	}
	if got, _ := s.Get(ctx, ref.Href(itemHref), nil); got != nil {
		t.Error("Get() returned an entity for an error entry")
	}
}

func TestStore_Clear(t *testing.T) {
	f := newFakeServer()
	gate := make(chan struct{})
	f.handle(itemHref, fakeResponse{status: http.StatusOK, body: itemJSON(itemHref, "late"), gate: gate})
	s := newTestStore(t, f)
	ctx := context.Background()

	rec := &recorder{}
	_, _ = s.AddListener(ctx, ref.Href(itemHref), nil, rec)
	_ = s.AddInvalidationListener(NewInvalidationListener(func(string, string, *siren.Entity) {}))
	_, _ = s.Update(ctx, ref.Href(otherHref), token.Static("tok"), &siren.Entity{})

	done := make(chan Entry, 1)
	go func() {
		e, _ := s.Fetch(ctx, ref.Href(itemHref), nil)
		done <- e
	}()
	f.waitStarted(t, itemHref)

	s.Clear()
	if st := s.Stats(); st != (Stats{}) {
		t.Errorf("Stats() after Clear = %+v", st)
	}

	close(gate)
	if e := <-done; e.Status != StatusReady {
		t.Errorf("in-flight caller got %+v", e)
	}
	if st := s.Stats(); st.Entries != 0 {
		t.Errorf("late response written after Clear: %+v", st)
	}
	if n := len(rec.all()); n != 0 {
		t.Errorf("cleared listener notified %d times", n)
	}
}

func TestStore_Stats(t *testing.T) {
	f := newFakeServer()
	f.handle(otherHref, fakeResponse{status: http.StatusNotFound})
	s := newTestStore(t, f)
	ctx := context.Background()

	_, _ = s.Update(ctx, ref.Href(itemHref), nil, &siren.Entity{})
	_, _ = s.Update(ctx, ref.Href(itemHref), token.Static("tok"), &siren.Entity{})
	_, _ = s.Fetch(ctx, ref.Href(otherHref), nil)
	_, _ = s.AddListener(ctx, ref.Href(itemHref), nil, &recorder{})
	_, _ = s.AddListener(ctx, ref.Href(otherHref), nil, &recorder{})

	want := Stats{Entries: 3, Ready: 2, Errors: 1, Partitions: 2, Listeners: 2}
	if got := s.Stats(); got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}
}

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusFetching, "fetching"},
		{StatusReady, "ready"},
		{StatusError, "error"},
		{Status(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestStatusCode(t *testing.T) {
	err := &HTTPError{Code: http.StatusNotFound}
	if err.Error() != "store: unexpected status 404 Not Found" {
		t.Errorf("Error() = %q", err.Error())
	}

	wrapped := errors.Join(errors.New("context"), err)
	if code, ok := StatusCode(wrapped); !ok || code != http.StatusNotFound {
		t.Errorf("StatusCode(wrapped) = %d, %v", code, ok)
	}
	if _, ok := StatusCode(errors.New("plain")); ok {
		t.Error("StatusCode(plain) reported a status")
	}
}
