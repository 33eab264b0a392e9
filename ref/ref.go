// Package ref normalizes the references callers use to address cached
// resources.
//
// A Ref is one of: a plain identifier, a structured link carrying relation
// metadata, or an entity addressed through its self link. Every form yields
// the same identifier for the same resource, so a string href and an
// equivalent link share cache entries and listener registrations.
package ref

import "github.com/jonwraymond/sirenstore/siren"

// RelNoFollow suppresses credential attachment for a structured link.
const RelNoFollow = "nofollow"

type kind int

const (
	kindHref kind = iota
	kindLink
)

// Ref is a tagged reference to a resource. The zero value has no identifier.
type Ref struct {
	kind kind
	href string
	rel  []string
}

// Href returns a plain identifier reference.
func Href(href string) Ref {
	return Ref{kind: kindHref, href: href}
}

// LinkTo returns a structured link reference.
func LinkTo(href string, rel ...string) Ref {
	return Ref{kind: kindLink, href: href, rel: append([]string(nil), rel...)}
}

// Link returns a structured link reference built from a Siren link.
func Link(l siren.Link) Ref {
	return LinkTo(l.Href, l.Rel...)
}

// Entity returns a reference to e. Embedded links are addressed by their
// href, full entities by their self link. The entity's relations are kept so
// a nofollow sub-entity stays anonymous.
func Entity(e *siren.Entity) Ref {
	if e == nil {
		return Ref{kind: kindLink}
	}
	if e.Href != "" {
		return LinkTo(e.Href, e.Rel...)
	}
	href, _ := e.SelfHref()
	return LinkTo(href, e.Rel...)
}

// ID returns the identifier the reference addresses. It reports false when
// the reference carries none.
func (r Ref) ID() (string, bool) {
	if r.href == "" {
		return "", false
	}
	return r.href, true
}

// AttachToken reports whether a credential may be attached when fetching r.
// Only a structured link whose relations include nofollow refuses.
func (r Ref) AttachToken() bool {
	if r.kind != kindLink {
		return true
	}
	for _, rel := range r.rel {
		if rel == RelNoFollow {
			return false
		}
	}
	return true
}

// IsLink reports whether r is a structured link.
func (r Ref) IsLink() bool {
	return r.kind == kindLink
}

// Rel returns a copy of the link relations. Plain identifiers have none.
func (r Ref) Rel() []string {
	if len(r.rel) == 0 {
		return nil
	}
	out := make([]string, len(r.rel))
	copy(out, r.rel)
	return out
}

// String returns the identifier, or "<undefined>" when there is none.
func (r Ref) String() string {
	if r.href == "" {
		return "<undefined>"
	}
	return r.href
}
