package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const defaultPageTTL = 30 * time.Second

// PageCache holds rendered dashboard fragments for a short window. Misses
// and Redis failures both fall through to a fresh render, so callers never
// see an error from it.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

func NewPageCache(client *redis.Client, ttl time.Duration, log zerolog.Logger) *PageCache {
	if ttl <= 0 {
		ttl = defaultPageTTL
	}
	return &PageCache{client: client, ttl: ttl, log: log}
}

func (c *PageCache) Get(ctx context.Context, key string) (string, bool) {
	html, err := c.client.Get(ctx, "page:"+key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("key", key).Msg("page cache read failed")
		}
		return "", false
	}
	return html, true
}

func (c *PageCache) Set(ctx context.Context, key, html string) {
	if err := c.client.Set(ctx, "page:"+key, html, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("page cache write failed")
	}
}
