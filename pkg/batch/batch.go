// Package batch evaluates independent calculations in parallel.
package batch

import (
	"context"

	"github.com/iwvelando/loan-calculator/pkg/constants"
	"golang.org/x/sync/errgroup"
)

// Map applies fn to every item using at most workers goroutines and returns
// the results in input order. Every item is evaluated; when some fail, the
// error of the failing item with the lowest index is returned and no partial
// results are. Items not yet started when ctx is cancelled fail with the
// context's error. workers <= 0 selects constants.DefaultBatchWorkers.
func Map[T, R any](ctx context.Context, items []T, workers int, fn func(context.Context, T) (R, error)) ([]R, error) {
	if len(items) == 0 {
		return nil, nil
	}
	if workers <= 0 {
		workers = constants.DefaultBatchWorkers
	}

	results := make([]R, len(items))
	errs := make([]error, len(items))
	var g errgroup.Group
	g.SetLimit(workers)

	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			results[i], errs[i] = fn(ctx, item)
			return nil
		})
	}

	_ = g.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
