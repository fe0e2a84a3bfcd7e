package middleware

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/shrek82/jsql/core"
)

// MemoryCacheBuilder builds a middleware caching read results in process
// memory. Enable it per call with WithCacheTTL on the context.
//
// Values are stored live rather than serialized, so every read kind can be
// cached, but entries are only valid within the current process.
type MemoryCacheBuilder struct {
	c *gocache.Cache
}

// NewMemoryCache creates a MemoryCacheBuilder whose entries default to
// defaultTTL and are swept every cleanupInterval.
func NewMemoryCache(defaultTTL, cleanupInterval time.Duration) *MemoryCacheBuilder {
	return &MemoryCacheBuilder{
		c: gocache.New(defaultTTL, cleanupInterval),
	}
}

func (b *MemoryCacheBuilder) Build() core.Middleware {
	return func(next core.ExecFunc) core.ExecFunc {
		return func(ctx context.Context, info *core.ExecInfo) *core.ExecResult {
			switch info.Kind {
			case core.KindNonQuery, core.KindStream:
				return next(ctx, info)
			}
			ttl, ok := cacheTTL(ctx)
			if !ok || ttl == 0 {
				return next(ctx, info)
			}
			if ttl < 0 {
				ttl = gocache.NoExpiration
			}

			key := cacheKey(info)
			if cached, found := b.c.Get(key); found {
				return &core.ExecResult{Value: cached}
			}

			res := next(ctx, info)
			if res.Err != nil || res.Value == nil {
				return res
			}
			b.c.Set(key, res.Value, ttl)
			return res
		}
	}
}
