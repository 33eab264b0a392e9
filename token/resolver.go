package token

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/golang-jwt/jwt/v5"
)

// claimsJSON keeps numbers as written and sorts object keys at every depth
// on output, so equal claim sets encode to equal bytes.
var claimsJSON = sonic.Config{
	EscapeHTML:  true,
	SortMapKeys: true,
	UseNumber:   true,
}.Froze()

// DefaultVolatileClaims are the claims that change on every token refresh
// and so never take part in cache key derivation.
var DefaultVolatileClaims = []string{"exp", "iat", "jti", "nbf"}

// ResolverConfig configures the Resolver.
type ResolverConfig struct {
	// VolatileClaims are stripped before the cache key is derived.
	// Default: DefaultVolatileClaims
	VolatileClaims []string
}

// Resolver derives Resolved pairs from credentials.
//
// Contract:
// - Concurrency: safe for concurrent use; it holds no mutable state.
// - Context: ctx is passed to suppliers.
// - Errors: decode failures wrap ErrMalformedClaims; supplier failures wrap ErrSupplier.
type Resolver struct {
	volatile map[string]struct{}
	parser   *jwt.Parser
}

// NewResolver creates a resolver.
func NewResolver(config ResolverConfig) *Resolver {
	if config.VolatileClaims == nil {
		config.VolatileClaims = DefaultVolatileClaims
	}

	volatile := make(map[string]struct{}, len(config.VolatileClaims))
	for _, c := range config.VolatileClaims {
		volatile[c] = struct{}{}
	}

	return &Resolver{
		volatile: volatile,
		parser:   jwt.NewParser(jwt.WithPaddingAllowed()),
	}
}

// Resolve turns c into a Resolved pair.
//
// Suppliers are invoked once. Empty credentials resolve to Anonymous.
// Tokens with fewer than three dot-separated segments are opaque and used
// verbatim as both cache key and token value.
func (r *Resolver) Resolve(ctx context.Context, c Credential) (Resolved, error) {
	if fn, ok := c.(Func); ok {
		if fn == nil {
			return Anonymous, nil
		}
		supplied, err := fn(ctx)
		if err != nil {
			return Resolved{}, fmt.Errorf("%w: %w", ErrSupplier, err)
		}
		if _, nested := supplied.(Func); nested {
			return Resolved{}, ErrNestedSupplier
		}
		c = supplied
	}

	switch v := c.(type) {
	case nil:
		return Anonymous, nil
	case Resolved:
		return v, nil
	case Static:
		return r.resolveValue(string(v))
	default:
		return Resolved{}, fmt.Errorf("token: unsupported credential %T", c)
	}
}

func (r *Resolver) resolveValue(value string) (Resolved, error) {
	if value == "" {
		return Anonymous, nil
	}

	parts := strings.Split(value, ".")
	if len(parts) < 3 {
		return Resolved{CacheKey: value, TokenValue: value}, nil
	}

	claims, err := r.decodeClaims(parts[1])
	if err != nil {
		return Resolved{}, err
	}

	cacheKey, err := r.CacheKey(claims)
	if err != nil {
		return Resolved{}, err
	}

	return Resolved{CacheKey: cacheKey, TokenValue: value}, nil
}

// CacheKey derives the partition key for claims: volatile claims are
// dropped, the rest canonically serialized, base64-encoded, and lower-cased.
func (r *Resolver) CacheKey(claims jwt.MapClaims) (string, error) {
	stable := make(map[string]any, len(claims))
	for k, v := range claims {
		if _, skip := r.volatile[k]; skip {
			continue
		}
		stable[k] = v
	}

	canonical, err := claimsJSON.Marshal(stable)
	if err != nil {
		return "", fmt.Errorf("token: failed to canonicalize claims: %w", err)
	}

	return strings.ToLower(base64.StdEncoding.EncodeToString(canonical)), nil
}

// decodeClaims decodes the claims segment. JWTs use unpadded base64url;
// hand-built tokens often use the standard alphabet, so both are accepted.
func (r *Resolver) decodeClaims(segment string) (jwt.MapClaims, error) {
	raw, err := r.parser.DecodeSegment(segment)
	if err != nil {
		std, stdErr := decodeStd(segment)
		if stdErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedClaims, err)
		}
		raw = std
	}

	var claims jwt.MapClaims
	if err := claimsJSON.Unmarshal(raw, &claims); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedClaims, err)
	}
	if claims == nil {
		return nil, fmt.Errorf("%w: claims are not an object", ErrMalformedClaims)
	}
	return claims, nil
}

func decodeStd(segment string) ([]byte, error) {
	if l := len(segment) % 4; l > 0 {
		segment += strings.Repeat("=", 4-l)
	}
	return base64.StdEncoding.DecodeString(segment)
}
