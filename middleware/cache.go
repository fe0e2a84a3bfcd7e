package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/shrek82/jsql/core"
)

type cacheTTLKey struct{}

// WithCacheTTL marks the context so that cache middlewares store the result
// of read commands for the given duration. A zero duration disables caching
// for the call; a negative duration caches without expiration.
func WithCacheTTL(ctx context.Context, ttl time.Duration) context.Context {
	return context.WithValue(ctx, cacheTTLKey{}, ttl)
}

func cacheTTL(ctx context.Context) (time.Duration, bool) {
	ttl, ok := ctx.Value(cacheTTLKey{}).(time.Duration)
	return ttl, ok
}

func cacheKey(info *core.ExecInfo) string {
	return fmt.Sprintf("jsql:cache:%s:%v", info.Description, info.Args)
}
