package lookup

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// BulkResult pairs a query with its outcome.
type BulkResult struct {
	Query  Query
	Result *Result
	Err    error
}

// SearchMany runs the queries against client with at most limit lookups in
// flight. Results keep the order of queries; individual failures are
// reported per item, not as an overall error.
func SearchMany(ctx context.Context, client Client, queries []Query, limit int) []BulkResult {
	results := make([]BulkResult, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			res, err := client.Search(gctx, q)
			results[i] = BulkResult{Query: q, Result: res, Err: err}
			return nil
		})
	}

	_ = g.Wait()
	return results
}
