package store

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonwraymond/sirenstore/observe"
	"github.com/jonwraymond/sirenstore/siren"
	"github.com/jonwraymond/sirenstore/transport"
)

const (
	rootHref  = "https://api.test/root"
	itemHref  = "https://api.test/items/1"
	otherHref = "https://api.test/items/2"
)

// fakeResponse is one canned response. A non-nil err is returned instead
// of a response. A non-nil gate holds the request until it is closed.
type fakeResponse struct {
	status int
	header http.Header
	body   string
	err    error
	gate   chan struct{}
}

// fakeServer is an in-memory transport. Each href serves its responses in
// order, repeating the last one.
type fakeServer struct {
	mu       sync.Mutex
	routes   map[string][]fakeResponse
	requests []*transport.Request
	started  chan string
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		routes:  make(map[string][]fakeResponse),
		started: make(chan string, 64),
	}
}

func (f *fakeServer) handle(href string, responses ...fakeResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[strings.ToLower(href)] = responses
}

func (f *fakeServer) serveJSON(href, body string, header ...string) {
	h := http.Header{}
	for i := 0; i+1 < len(header); i += 2 {
		h.Add(header[i], header[i+1])
	}
	f.handle(href, fakeResponse{status: http.StatusOK, header: h, body: body})
}

func (f *fakeServer) Do(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	key := strings.ToLower(req.Href)
	queue := f.routes[key]
	var resp fakeResponse
	switch {
	case len(queue) == 0:
		resp = fakeResponse{status: http.StatusNotFound}
	case len(queue) == 1:
		resp = queue[0]
	default:
		resp = queue[0]
		f.routes[key] = queue[1:]
	}
	f.mu.Unlock()

	select {
	case f.started <- req.Href:
	default:
	}

	if resp.gate != nil {
		select {
		case <-resp.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if resp.err != nil {
		return nil, resp.err
	}

	header := resp.header
	if header == nil {
		header = http.Header{}
	}
	return &transport.Response{
		StatusCode: resp.status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(resp.body)),
	}, nil
}

func (f *fakeServer) count(href string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if strings.EqualFold(r.Href, href) {
			n++
		}
	}
	return n
}

func (f *fakeServer) last(href string) *transport.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.requests) - 1; i >= 0; i-- {
		if strings.EqualFold(f.requests[i].Href, href) {
			return f.requests[i]
		}
	}
	return nil
}

func (f *fakeServer) waitStarted(t *testing.T, href string) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case got := <-f.started:
			if strings.EqualFold(got, href) {
				return
			}
		case <-timeout:
			t.Fatalf("request for %s never started", href)
		}
	}
}

func newTestStore(t *testing.T, f *fakeServer, opts ...func(*Config)) *Store {
	t.Helper()
	cfg := Config{Transport: f}
	for _, opt := range opts {
		opt(&cfg)
	}
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func itemJSON(href, class string) string {
	return `{"class":["` + class + `"],"links":[{"rel":["self"],"href":"` + href + `"}]}`
}

// recorder is a Listener that keeps every notification.
type recorder struct {
	mu     sync.Mutex
	events []event
}

type event struct {
	entity *siren.Entity
	err    error
}

func (r *recorder) EntityChanged(entity *siren.Entity, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event{entity: entity, err: err})
}

func (r *recorder) all() []event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]event(nil), r.events...)
}

func (r *recorder) lastEvent(t *testing.T) event {
	t.Helper()
	events := r.all()
	if len(events) == 0 {
		t.Fatal("listener was not notified")
	}
	return events[len(events)-1]
}

// opRecorder is an observe.Metrics that keeps operation names.
type opRecorder struct {
	mu     sync.Mutex
	ops    []observe.Op
	failed []observe.Op
	joins  int
}

func (m *opRecorder) RecordOp(_ context.Context, op observe.Op, _ time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = append(m.ops, op)
	if err != nil {
		m.failed = append(m.failed, op)
	}
}

func (m *opRecorder) RecordJoin(context.Context, observe.Op) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.joins++
}

func (m *opRecorder) names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.ops))
	for i, op := range m.ops {
		out[i] = op.Name
	}
	return out
}

var errConnRefused = errors.New("connection refused")
