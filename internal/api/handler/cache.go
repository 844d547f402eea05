package handler

import (
	"context"
	"log/slog"

	"github.com/ledgerline/dashboard/internal/viewcache"
)

// cachedView returns the cached value of view/key, loading and storing it on a
// miss. The view generation is read before loading so a value that an
// invalidation overtook is never written back. Cache failures are logged and
// fall through to load.
func cachedView[T any](ctx context.Context, cache viewcache.Cache, view, key string, load func(context.Context) (T, error)) (T, error) {
	var v T
	ok, err := cache.Get(ctx, view, key, &v)
	if err != nil {
		slog.Warn("view cache read failed", "error", err, "view", view)
	}
	if ok {
		return v, nil
	}

	gen, genErr := cache.Generation(ctx, view)
	if genErr != nil {
		slog.Warn("view cache generation read failed", "error", genErr, "view", view)
	}

	v, err = load(ctx)
	if err != nil || genErr != nil {
		return v, err
	}
	if err := cache.Set(ctx, view, key, gen, v); err != nil {
		slog.Warn("view cache write failed", "error", err, "view", view)
	}
	return v, nil
}

func orNop(c viewcache.Cache) viewcache.Cache {
	if c == nil {
		return viewcache.Nop{}
	}
	return c
}
