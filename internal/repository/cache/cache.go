package cache

import (
	"context"
	"fmt"
)

const (
	KeyStandings = "standings"
	KeyResults   = "results"
)

// ScoreboardCache stores derived scoreboard views. Entries belong to a
// generation; Invalidate starts a new one, so a value computed before the
// invalidation can never be served after it.
type ScoreboardCache interface {
	Generation(ctx context.Context) (uint64, error)
	Get(ctx context.Context, gen uint64, key string, dst any) (bool, error)
	Set(ctx context.Context, gen uint64, key string, value any) error
	Invalidate(ctx context.Context) error
}

// ReadThrough returns the cached value for key or computes and stores it.
// hit reports whether the value came from the cache. Cache failures fall back
// to compute; only compute errors are returned.
func ReadThrough[T any](ctx context.Context, c ScoreboardCache, key string, compute func(context.Context) (T, error)) (value T, hit bool, err error) {
	gen, genErr := c.Generation(ctx)
	if genErr == nil {
		if ok, _ := c.Get(ctx, gen, key, &value); ok {
			return value, true, nil
		}
	}

	value, err = compute(ctx)
	if err != nil {
		return value, false, fmt.Errorf("compute -> %w", err)
	}

	if genErr == nil {
		_ = c.Set(ctx, gen, key, value)
	}
	return value, false, nil
}
