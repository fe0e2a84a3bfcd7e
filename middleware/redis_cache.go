package middleware

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/shrek82/jsql/core"
)

// RedisCacheBuilder builds a middleware caching dictionary results in Redis.
// Enable it per call with WithCacheTTL on the context.
//
// Only DICTIONARIES results are cached: their shape survives a JSON round
// trip, which the other materializers' dynamic types do not.
type RedisCacheBuilder struct {
	Client *redis.Client
}

func NewRedisCache(opt *redis.Options) *RedisCacheBuilder {
	return &RedisCacheBuilder{
		Client: redis.NewClient(opt),
	}
}

// Ping verifies the Redis connection.
func (b *RedisCacheBuilder) Ping(ctx context.Context) error {
	return b.Client.Ping(ctx).Err()
}

// Shutdown closes the Redis client.
func (b *RedisCacheBuilder) Shutdown() error {
	return b.Client.Close()
}

func (b *RedisCacheBuilder) Build() core.Middleware {
	return func(next core.ExecFunc) core.ExecFunc {
		return func(ctx context.Context, info *core.ExecInfo) *core.ExecResult {
			if info.Kind != core.KindDictionaries {
				return next(ctx, info)
			}
			ttl, ok := cacheTTL(ctx)
			if !ok || ttl == 0 {
				return next(ctx, info)
			}
			if ttl < 0 {
				// Redis uses zero expiration for "keep forever".
				ttl = 0
			}

			key := cacheKey(info)
			if raw, err := b.Client.Get(ctx, key).Result(); err == nil {
				var cached []map[string]any
				if err := json.Unmarshal([]byte(raw), &cached); err == nil {
					return &core.ExecResult{Value: cached}
				}
				// Failed to unmarshal, fall through to the database.
			}

			res := next(ctx, info)
			if res.Err != nil || res.Value == nil {
				return res
			}

			if data, err := json.Marshal(res.Value); err == nil {
				b.Client.Set(ctx, key, data, ttl)
			}
			return res
		}
	}
}
