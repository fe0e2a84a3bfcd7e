package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/shrek82/jsql/core"
)

// The hit/miss paths need a live server; these tests cover the decisions the
// middleware makes before it ever talks to Redis.

func TestRedisCachePassesThroughNonDictionaries(t *testing.T) {
	b := NewRedisCache(&redis.Options{Addr: "localhost:0"})
	defer b.Shutdown()
	h := b.Build()(mustCountingNext(t))

	ctx := WithCacheTTL(context.Background(), time.Minute)
	res := h(ctx, queryInfo("select name from user"))
	assert.Equal(t, "x", res.Value, "QUERY results bypass the redis cache")
}

func TestRedisCachePassesThroughWithoutTTL(t *testing.T) {
	b := NewRedisCache(&redis.Options{Addr: "localhost:0"})
	defer b.Shutdown()
	h := b.Build()(mustCountingNext(t))

	info := &core.ExecInfo{Kind: core.KindDictionaries, Description: "select * from user"}
	res := h(context.Background(), info)
	assert.Equal(t, "x", res.Value)

	res = h(WithCacheTTL(context.Background(), 0), info)
	assert.Equal(t, "x", res.Value)
}

func mustCountingNext(t *testing.T) core.ExecFunc {
	t.Helper()
	next, _ := countingNext("x", nil)
	return next
}
