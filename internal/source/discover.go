package source

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/spine-tools/Spine-Toolbox-sub009/internal/mapping"
)

// maxConcurrentListings bounds the sources listed at the same time.
const maxConcurrentListings = 4

// Listing is the table list of one source.
type Listing struct {
	Source string
	Tables map[string]mapping.Root
	Err    error
}

// Discover lists the tables of connected sources concurrently. A failing
// source does not stop the others; its error is carried in its Listing.
// Only context cancellation aborts the whole discovery.
func Discover(ctx context.Context, sources map[string]Source) (map[string]Listing, error) {
	var (
		mu  sync.Mutex
		out = make(map[string]Listing, len(sources))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentListings)

	for id, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			tables, err := src.Tables(gctx)

			mu.Lock()
			out[id] = Listing{Source: id, Tables: tables, Err: err}
			mu.Unlock()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to discover tables: %w", err)
	}

	return out, nil
}
