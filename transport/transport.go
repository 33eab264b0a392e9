package transport

import (
	"context"
	"io"
	"net/http"
)

// Request is an outgoing request. Href may be relative when the transport
// has a base URL.
type Request struct {
	Method string
	Href   string
	Header http.Header
	Body   io.Reader
}

// Response is a received response. Body must be closed.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
}

// OK reports whether the status is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Transport sends requests.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: Do must honor cancellation while waiting on the network.
// - Errors: only failures to obtain a response are errors; a non-2xx
// response is returned as a Response.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// Func adapts a function to Transport.
type Func func(ctx context.Context, req *Request) (*Response, error)

// Do calls f.
func (f Func) Do(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

var _ Transport = Func(nil)
