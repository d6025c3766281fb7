package orchestrator

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// fanOut calls fn for every index in [0, n) on at most limit goroutines.
// Each call writes its own slot, so the result order is the index order no
// matter how the calls interleave.
//
// ctx is checked before each call starts. Once it is done no further calls
// are started, the in-flight ones finish, and fanOut returns ctx.Err().
func fanOut[T any](ctx context.Context, n, limit int, fn func(i int) T) ([]T, error) {
	results := make([]T, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(limit, 1))

	for i := range n {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = fn(i)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
