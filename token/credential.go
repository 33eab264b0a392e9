package token

import "context"

// Credential is anything the Resolver can turn into a Resolved pair.
//
// The set is closed: Static, Func, and Resolved. A nil Credential is the
// anonymous credential.
type Credential interface {
	credential()
}

// Static is a literal token value.
type Static string

// Func supplies a credential lazily, for example from a refreshing token
// source. It is invoked on every resolution.
type Func func(ctx context.Context) (Credential, error)

// Resolved is a credential whose cache key has already been derived.
// Resolving it returns it unchanged.
type Resolved struct {
	CacheKey   string
	TokenValue string
}

// Anonymous is the resolved pair of the anonymous partition.
var Anonymous = Resolved{}

// IsAnonymous reports whether r addresses the anonymous partition.
func (r Resolved) IsAnonymous() bool {
	return r.CacheKey == ""
}

func (Static) credential()   {}
func (Func) credential()     {}
func (Resolved) credential() {}

// StaticFunc adapts a plain string supplier.
func StaticFunc(fn func(ctx context.Context) (string, error)) Func {
	return func(ctx context.Context) (Credential, error) {
		v, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		return Static(v), nil
	}
}

var (
	_ Credential = Static("")
	_ Credential = Func(nil)
	_ Credential = Resolved{}
)
