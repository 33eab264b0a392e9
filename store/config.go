package store

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/jonwraymond/sirenstore/observe"
	"github.com/jonwraymond/sirenstore/siren"
	"github.com/jonwraymond/sirenstore/token"
	"github.com/jonwraymond/sirenstore/transport"
)

// DefaultPrimerRel is the link relation that marks cache-primer links.
const DefaultPrimerRel = "https://api.brightspace.com/rels/cache-primer"

// Config configures a Store.
type Config struct {
	// Transport sends requests. Required.
	Transport transport.Transport `validate:"required"`

	// Parser decodes response bodies.
	// Default: siren.Parse
	Parser func(data []byte) (*siren.Entity, error)

	// Resolver derives cache keys from credentials.
	// Default: token.NewResolver(token.ResolverConfig{})
	Resolver *token.Resolver

	// Logger receives store diagnostics.
	// Default: observe.NopLogger()
	Logger observe.Logger

	// Middleware instruments network requests.
	// Default: a middleware that only logs, through Logger
	Middleware *observe.Middleware

	// PrimerRel is the relation that marks cache-primer links.
	// Default: DefaultPrimerRel
	PrimerRel string

	// MaxPrimerFetches bounds concurrent cache-primer fetches per response.
	// Default: 8
	MaxPrimerFetches int `validate:"gte=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Field() == "Transport" {
		return ErrNilTransport
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
}

func (c *Config) applyDefaults() {
	if c.Parser == nil {
		c.Parser = siren.Parse
	}
	if c.Resolver == nil {
		c.Resolver = token.NewResolver(token.ResolverConfig{})
	}
	if c.Logger == nil {
		c.Logger = observe.NopLogger()
	}
	if c.Middleware == nil {
		c.Middleware = observe.NewMiddleware(nil, nil, c.Logger)
	}
	if c.PrimerRel == "" {
		c.PrimerRel = DefaultPrimerRel
	}
	if c.MaxPrimerFetches == 0 {
		c.MaxPrimerFetches = 8
	}
}
