package action

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/jonwraymond/sirenstore/observe"
	"github.com/jonwraymond/sirenstore/queue"
	"github.com/jonwraymond/sirenstore/ref"
	"github.com/jonwraymond/sirenstore/siren"
	"github.com/jonwraymond/sirenstore/store"
	"github.com/jonwraymond/sirenstore/token"
	"github.com/jonwraymond/sirenstore/transport"
)

// Content types an action may declare.
const (
	TypeForm = "application/x-www-form-urlencoded"
	TypeJSON = "application/json"
)

// Config configures a Performer.
type Config struct {
	// Store receives entities returned by actions. Required.
	Store *store.Store `validate:"required"`

	// Transport sends action requests. Required.
	Transport transport.Transport `validate:"required"`

	// Queue serializes actions.
	// Default: a new queue.Queue
	Queue *queue.Queue

	// Resolver derives the bearer token from credentials.
	// Default: token.NewResolver(token.ResolverConfig{})
	Resolver *token.Resolver

	// Parser decodes response bodies.
	// Default: siren.Parse
	Parser func(data []byte) (*siren.Entity, error)

	// Logger receives action diagnostics.
	// Default: observe.NopLogger()
	Logger observe.Logger

	// Middleware instruments action requests.
	// Default: a middleware that only logs, through Logger
	Middleware *observe.Middleware
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		switch verrs[0].Field() {
		case "Store":
			return ErrNilStore
		case "Transport":
			return ErrNilTransport
		}
	}
	return err
}

func (c *Config) applyDefaults() {
	if c.Logger == nil {
		c.Logger = observe.NopLogger()
	}
	if c.Queue == nil {
		c.Queue = queue.New(queue.Config{Logger: c.Logger})
	}
	if c.Resolver == nil {
		c.Resolver = token.NewResolver(token.ResolverConfig{})
	}
	if c.Parser == nil {
		c.Parser = siren.Parse
	}
	if c.Middleware == nil {
		c.Middleware = observe.NewMiddleware(nil, nil, c.Logger)
	}
}

// Options adjusts a single Perform call.
type Options struct {
	// Fields sets field values, replacing the action's defaults for the
	// same names. Names the action does not declare are sent too.
	Fields url.Values

	// Immediate sends the action at once instead of after every action
	// queued before it.
	Immediate bool
}

// Performer sends Siren actions.
//
// Contract:
// - Concurrency: safe for concurrent use. Queued actions run one at a time.
// - Context: ctx bounds the wait for the queue and the request.
// - Errors: non-2xx responses are *store.HTTPError; body decode failures
// wrap siren.ErrInvalidEntity.
type Performer struct {
	config Config
}

// New creates a Performer.
func New(config Config) (*Performer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config.applyDefaults()
	return &Performer{config: config}, nil
}

// Queue returns the queue actions run through.
func (p *Performer) Queue() *queue.Queue {
	return p.config.Queue
}

// Perform sends a and returns the entity the server answered with, or nil
// when the response carries none. A returned entity with a self link is
// written into the store under cred's partition before Perform returns.
func (p *Performer) Perform(ctx context.Context, a siren.Action, cred token.Credential, opts Options) (*siren.Entity, error) {
	if a.Name == "" || a.Href == "" {
		return nil, ErrInvalidAction
	}

	if opts.Immediate {
		return p.send(ctx, a, cred, opts.Fields)
	}

	v, err := p.config.Queue.Enqueue(ctx, func(ctx context.Context) (any, error) {
		return p.send(ctx, a, cred, opts.Fields)
	}).Wait(ctx)
	if err != nil {
		return nil, err
	}
	entity, _ := v.(*siren.Entity)
	return entity, nil
}

// PerformByName performs the action named name on entity.
func (p *Performer) PerformByName(ctx context.Context, entity *siren.Entity, name string, cred token.Credential, opts Options) (*siren.Entity, error) {
	if entity == nil {
		return nil, fmt.Errorf("%w: %q", ErrActionNotFound, name)
	}
	a, ok := entity.ActionByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrActionNotFound, name)
	}
	return p.Perform(ctx, a, cred, opts)
}

func (p *Performer) send(ctx context.Context, a siren.Action, cred token.Credential, fields url.Values) (*siren.Entity, error) {
	resolved, err := p.config.Resolver.Resolve(ctx, cred)
	if err != nil {
		return nil, err
	}

	op := observe.Op{
		Name:      observe.OpPerform,
		Href:      a.Href,
		Anonymous: resolved.IsAnonymous(),
	}

	var entity *siren.Entity
	err = p.config.Middleware.Wrap(func(ctx context.Context, _ observe.Op) error {
		req, err := buildRequest(a, fields)
		if err != nil {
			return err
		}
		if resolved.TokenValue != "" {
			req.Header.Set("Authorization", "Bearer "+resolved.TokenValue)
		}
		entity, err = p.do(ctx, req)
		return err
	})(ctx, op)
	if err != nil {
		return nil, err
	}

	if entity == nil {
		return nil, nil
	}
	if _, ok := entity.SelfHref(); ok {
		if _, err := p.config.Store.Update(ctx, ref.Entity(entity), resolved, entity); err != nil {
			return nil, err
		}
	}
	return entity, nil
}

func (p *Performer) do(ctx context.Context, req *transport.Request) (*siren.Entity, error) {
	resp, err := p.config.Transport.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !resp.OK() {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &store.HTTPError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNoContent || len(strings.TrimSpace(string(body))) == 0 {
		return nil, nil
	}
	return p.config.Parser(body)
}

// buildRequest encodes a's fields, overridden by fields, into a request.
func buildRequest(a siren.Action, fields url.Values) (*transport.Request, error) {
	method := strings.ToUpper(a.Method)
	if method == "" {
		method = http.MethodGet
	}

	header := http.Header{}
	header.Set("Accept", "application/vnd.siren+json, application/json")
	req := &transport.Request{Method: method, Href: a.Href, Header: header}

	if method == http.MethodGet || method == http.MethodHead {
		href, err := withQuery(a.Href, formValues(a, fields))
		if err != nil {
			return nil, err
		}
		req.Href = href
		return req, nil
	}

	if isJSON(a.Type) {
		body, err := sonic.ConfigStd.Marshal(jsonValues(a, fields))
		if err != nil {
			return nil, fmt.Errorf("action: encode %s: %w", a.Name, err)
		}
		header.Set("Content-Type", TypeJSON)
		req.Body = strings.NewReader(string(body))
		return req, nil
	}

	values := formValues(a, fields)
	if len(values) > 0 || len(a.Fields) > 0 {
		header.Set("Content-Type", TypeForm)
		req.Body = strings.NewReader(values.Encode())
	}
	return req, nil
}

func isJSON(contentType string) bool {
	mediaType, _, _ := strings.Cut(contentType, ";")
	return strings.EqualFold(strings.TrimSpace(mediaType), TypeJSON)
}

// formValues returns the action's field defaults overlaid with fields.
func formValues(a siren.Action, fields url.Values) url.Values {
	values := url.Values{}
	for _, f := range a.Fields {
		if f.Name == "" || f.Value == nil {
			continue
		}
		values.Set(f.Name, fmt.Sprint(f.Value))
	}
	for name, vs := range fields {
		values[name] = append([]string(nil), vs...)
	}
	return values
}

// jsonValues is formValues for JSON bodies: defaults keep their JSON type
// and overrides with a single value are sent as a string.
func jsonValues(a siren.Action, fields url.Values) map[string]any {
	values := make(map[string]any, len(a.Fields)+len(fields))
	for _, f := range a.Fields {
		if f.Name == "" || f.Value == nil {
			continue
		}
		values[f.Name] = f.Value
	}
	for name, vs := range fields {
		switch len(vs) {
		case 0:
		case 1:
			values[name] = vs[0]
		default:
			values[name] = append([]string(nil), vs...)
		}
	}
	return values
}

func withQuery(href string, values url.Values) (string, error) {
	if len(values) == 0 {
		return href, nil
	}
	u, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidAction, err)
	}
	q := u.Query()
	for name, vs := range values {
		q[name] = vs
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
