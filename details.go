package kindle

import (
	"context"

	"golang.org/x/sync/errgroup"
)

const defaultDetailWorkers = 4

// FetchDetails loads FullDetails for every book with at most workers
// requests in flight. Results keep the order of books. The first failure
// cancels the remaining requests and is returned.
func (k *Kindle) FetchDetails(ctx context.Context, books []*Book, workers int) ([]*BookDetails, error) {
	if workers <= 0 {
		workers = defaultDetailWorkers
	}

	results := make([]*BookDetails, len(books))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, book := range books {
		g.Go(func() error {
			details, err := book.FullDetails(ctx)
			if err != nil {
				return err
			}
			results[i] = details
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		k.api.logger.Log("Detail fetch failed: %v", err)
		return nil, err
	}
	k.api.logger.Log("Fetched details for %d books", len(results))
	return results, nil
}
