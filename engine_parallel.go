package walkr

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/walkr-io/walkr/internal/report"
)

// extractParallel runs extraction over a worker pool. Each result lands in
// its source's slot, so the output order matches the prepared input order
// exactly and the downstream merge stays deterministic. Extraction is
// CPU-bound; the pool is capped at the configured worker count.
func (e *Engine) extractParallel(ctx context.Context, sources []sourceFile) ([]*report.FileRecord, error) {
	records := make([]*report.FileRecord, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			rec, err := e.extractOne(ctx, src)
			if err != nil {
				return err
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}
