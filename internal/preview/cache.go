package preview

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// cachedProvider is a read-through cache over a Provider. Signing is a network
// round trip per preview render; caching well under the link expiry keeps the
// wizard snappy without ever serving a dead URL. Redis being down degrades to
// direct signer calls.
type cachedProvider struct {
	inner Provider
	rdb   *redis.Client
	ttl   time.Duration
}

func NewCachedProvider(inner Provider, rdb *redis.Client, ttl time.Duration) Provider {
	return &cachedProvider{inner: inner, rdb: rdb, ttl: ttl}
}

func cacheKey(fileRef string) string {
	return "preview:signed_url:" + fileRef
}

func (c *cachedProvider) SignedURL(ctx context.Context, fileRef string) (string, error) {
	key := cacheKey(fileRef)

	cached, err := c.rdb.Get(ctx, key).Result()
	if err == nil && cached != "" {
		return cached, nil
	}
	if err != nil && err != redis.Nil {
		log.Warn().Err(err).Msg("preview cache read failed, falling through")
	}

	signed, err := c.inner.SignedURL(ctx, fileRef)
	if err != nil {
		return "", err
	}

	if setErr := c.rdb.Set(ctx, key, signed, c.ttl).Err(); setErr != nil {
		log.Warn().Err(setErr).Msg("preview cache write failed")
	}
	return signed, nil
}
