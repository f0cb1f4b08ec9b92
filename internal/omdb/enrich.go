package omdb

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/mmcdole/cinelist/internal/domain"
)

// defaultEnrichLimit bounds concurrent provider lookups
const defaultEnrichLimit = 4

// Detail is the per-title outcome of a batch lookup
type Detail struct {
	Metadata *domain.Metadata
	Err      error
}

// Enrich resolves metadata for each title concurrently.
// A failure for one title is recorded in its Detail and never aborts the batch.
func Enrich(ctx context.Context, resolver domain.DetailResolver, titles []string, limit int) map[string]Detail {
	if limit <= 0 {
		limit = defaultEnrichLimit
	}

	results := make([]Detail, len(titles))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, title := range titles {
		i, title := i, title
		g.Go(func() error {
			meta, err := resolver.Resolve(ctx, title)
			results[i] = Detail{Metadata: meta, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]Detail, len(titles))
	for i, title := range titles {
		out[title] = results[i]
	}
	return out
}
