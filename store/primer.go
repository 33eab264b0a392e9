package store

import (
	"context"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/sirenstore/cache"
	"github.com/jonwraymond/sirenstore/linkheader"
	"github.com/jonwraymond/sirenstore/observe"
	"github.com/jonwraymond/sirenstore/ref"
)

type primeChainKey struct{}

// primeChain is the set of pairs whose responses are priming along the
// current call path. A primer link back into the chain is skipped so two
// resources advertising each other cannot refresh each other forever.
type primeChain map[cache.Key]struct{}

func (c primeChain) contains(key cache.Key) bool {
	_, ok := c[key]
	return ok
}

func (c primeChain) with(key cache.Key) primeChain {
	next := make(primeChain, len(c)+1)
	for k := range c {
		next[k] = struct{}{}
	}
	next[key] = struct{}{}
	return next
}

// prime refreshes every cache-primer link in header under t's credential
// and returns once all of them have settled. Failures are logged only.
func (s *Store) prime(ctx context.Context, t target, header http.Header) {
	values := header.Values("Link")
	if len(values) == 0 {
		return
	}

	links, err := linkheader.ParseValues(values...)
	if err != nil {
		s.logger.Warn(ctx, "skipping cache priming: malformed Link header",
			observe.Field{Key: "href", Value: t.id},
			observe.Field{Key: "error", Value: err},
		)
		return
	}

	primers := linkheader.ByRel(links, s.config.PrimerRel)
	if len(primers) == 0 {
		return
	}

	chain, _ := ctx.Value(primeChainKey{}).(primeChain)
	chain = chain.with(t.key)
	ctx = context.WithValue(ctx, primeChainKey{}, chain)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.MaxPrimerFetches)

	for _, link := range primers {
		if chain.contains(cache.NewKey(t.resolved.CacheKey, link.Href)) {
			continue
		}
		href := link.Href
		g.Go(func() error {
			entry, err := s.Refresh(gctx, ref.Href(href), t.resolved)
			if err == nil && entry.Status == StatusError {
				err = entry.Err
			}
			if err != nil {
				s.logger.Warn(gctx, "cache primer failed",
					observe.Field{Key: "href", Value: href},
					observe.Field{Key: "error", Value: err},
				)
			}
			return nil
		})
	}
	_ = g.Wait()
}
