package reputation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultCacheTTL = 10 * time.Minute

// CachedProvider caches ratings in Redis in front of another provider.
// Redis failures are ignored and the inner provider is used directly.
type CachedProvider struct {
	client *redis.Client
	inner  Provider
	ttl    time.Duration
	prefix string
}

// NewCachedProvider creates a Redis-backed cache. A zero ttl uses 10 minutes.
func NewCachedProvider(client *redis.Client, inner Provider, ttl time.Duration) *CachedProvider {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &CachedProvider{
		client: client,
		inner:  inner,
		ttl:    ttl,
		prefix: "reputation:",
	}
}

func (c *CachedProvider) key(candidateID string) string {
	return c.prefix + candidateID
}

// GlobalRating implements Provider
func (c *CachedProvider) GlobalRating(ctx context.Context, candidateID string) (Rating, error) {
	if cached, err := c.client.Get(ctx, c.key(candidateID)).Bytes(); err == nil {
		var r Rating
		if jsonErr := json.Unmarshal(cached, &r); jsonErr == nil {
			return r, nil
		}
	}

	r, err := c.inner.GlobalRating(ctx, candidateID)
	if err != nil {
		return Rating{}, err
	}

	if payload, err := json.Marshal(r); err == nil {
		// Best effort; a cache write failure must not fail the lookup
		_ = c.client.Set(ctx, c.key(candidateID), payload, c.ttl).Err()
	}
	return r, nil
}

// Invalidate drops the cached rating for a candidate, e.g. after a new rating is stored
func (c *CachedProvider) Invalidate(ctx context.Context, candidateID string) error {
	if err := c.client.Del(ctx, c.key(candidateID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate rating cache for %s: %w", candidateID, err)
	}
	return nil
}
