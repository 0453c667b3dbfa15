package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"rail-route-service/internal/platform/obs"
)

// Redis-backed cache for serialized search results. A search run over a
// fixed snapshot and parameter set is deterministic, so the cached
// document stays valid until the snapshot changes; the TTL exists to
// bound staleness after re-seeding.
type RedisResultCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisResultCache(addr string, ttl time.Duration) *RedisResultCache {
	return &RedisResultCache{
		rdb: redis.NewClient(&redis.Options{Addr: addr}),
		ttl: ttl,
	}
}

// Fetch a cached result document. A missing key is a miss, not an error.
func (c *RedisResultCache) Get(ctx context.Context, key string) (_ []byte, _ bool, err error) {
	defer obs.Time(ctx, "result.cache.Get")(&err)

	payload, err := c.rdb.Get(ctx, resultKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("result cache: get %q: %w", key, err)
	}
	return payload, true, nil
}

// Store a result document under the run-parameter key.
func (c *RedisResultCache) Put(ctx context.Context, key string, payload []byte) (err error) {
	defer obs.Time(ctx, "result.cache.Put")(&err)

	if err := c.rdb.Set(ctx, resultKey(key), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("result cache: put %q: %w", key, err)
	}
	return nil
}

func (c *RedisResultCache) Close() error {
	return c.rdb.Close()
}

func resultKey(key string) string {
	return "search:result:" + key
}
