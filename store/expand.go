package store

import (
	"strings"

	"github.com/jonwraymond/sirenstore/siren"
)

// Pair is an identifier and the entity stored under it.
type Pair struct {
	ID     string
	Entity *siren.Entity
}

// Expand lists every identifier a response for id populates.
//
// The root pair comes first and is always present. The embedded graph is
// then walked breadth-first; each full sub-entity (one without a direct
// href) that has a self link contributes a pair keyed by the lower-cased
// self href, unless that identifier was already recorded.
func Expand(id string, entity *siren.Entity) []Pair {
	seen := map[string]struct{}{strings.ToLower(id): {}}
	pairs := []Pair{{ID: id, Entity: entity}}

	if entity == nil {
		return pairs
	}

	queue := []*siren.Entity{entity}
	for len(queue) > 0 {
		e := queue[0]
		queue = queue[1:]

		for _, child := range e.Entities {
			if child != nil {
				queue = append(queue, child)
			}
		}

		if e.Href != "" {
			continue
		}
		self, ok := e.SelfHref()
		if !ok {
			continue
		}
		self = strings.ToLower(self)
		if _, dup := seen[self]; dup {
			continue
		}
		seen[self] = struct{}{}
		pairs = append(pairs, Pair{ID: self, Entity: e})
	}

	return pairs
}
