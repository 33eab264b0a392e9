package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// DefaultUserAgent is sent when HTTPConfig.UserAgent is empty.
const DefaultUserAgent = "sirenstore/1"

// HTTPConfig configures the HTTP transport.
type HTTPConfig struct {
	// Client sends the requests.
	// Default: a new http.Client
	Client *http.Client

	// BaseURL resolves relative hrefs. Absolute hrefs are sent unchanged.
	// Default: "" (hrefs must be absolute)
	BaseURL string

	// Timeout bounds a request from send until its body is closed.
	// Default: 30 seconds
	Timeout time.Duration

	// MaxConcurrent is the maximum number of requests in flight.
	// Default: 0 (unlimited)
	MaxConcurrent int

	// MaxWait is how long a request waits for a slot before ErrBusy.
	// Default: 0 (fail immediately when MaxConcurrent is reached)
	MaxWait time.Duration

	// UserAgent is set on requests that carry none.
	// Default: DefaultUserAgent
	UserAgent string
}

// HTTP is a Transport over net/http.
type HTTP struct {
	config  HTTPConfig
	base    *url.URL
	limiter *limiter
}

// NewHTTP creates an HTTP transport.
func NewHTTP(config HTTPConfig) (*HTTP, error) {
	if config.Client == nil {
		config.Client = &http.Client{}
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}

	t := &HTTP{config: config}

	if config.BaseURL != "" {
		base, err := url.Parse(config.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
		}
		if !base.IsAbs() {
			return nil, fmt.Errorf("%w: %q is not absolute", ErrInvalidBaseURL, config.BaseURL)
		}
		t.base = base
	}
	if config.MaxConcurrent > 0 {
		t.limiter = newLimiter(config.MaxConcurrent, config.MaxWait)
	}

	return t, nil
}

// Do sends req.
func (t *HTTP) Do(ctx context.Context, req *Request) (*Response, error) {
	target, err := t.resolve(req.Href)
	if err != nil {
		return nil, err
	}

	if t.limiter != nil {
		if err := t.limiter.acquire(ctx); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, t.config.Timeout)
	release := t.releaser(cancel)

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, req.Body)
	if err != nil {
		release()
		return nil, fmt.Errorf("transport: build request: %w", err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", t.config.UserAgent)
	}

	resp, err := t.config.Client.Do(httpReq)
	if err != nil {
		deadline := errors.Is(ctx.Err(), context.DeadlineExceeded)
		release()
		if deadline {
			return nil, fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		return nil, err
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       &releasingBody{ReadCloser: resp.Body, release: release},
	}, nil
}

// Stats returns the request slot statistics. The zero value is returned
// when MaxConcurrent is unlimited.
func (t *HTTP) Stats() Stats {
	if t.limiter == nil {
		return Stats{}
	}
	return t.limiter.stats()
}

func (t *HTTP) resolve(href string) (string, error) {
	if t.base == nil {
		return href, nil
	}
	u, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("transport: invalid href %q: %w", href, err)
	}
	return t.base.ResolveReference(u).String(), nil
}

func (t *HTTP) releaser(cancel context.CancelFunc) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			if t.limiter != nil {
				t.limiter.release()
			}
		})
	}
}

// releasingBody frees the request's timeout and slot on Close.
type releasingBody struct {
	io.ReadCloser
	release func()
}

func (b *releasingBody) Close() error {
	err := b.ReadCloser.Close()
	b.release()
	return err
}

var _ Transport = (*HTTP)(nil)
