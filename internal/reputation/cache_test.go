package reputation

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProvider struct {
	calls  int
	rating Rating
}

func (c *countingProvider) GlobalRating(_ context.Context, _ string) (Rating, error) {
	c.calls++
	return c.rating, nil
}

func TestCachedProvider_RedisDownFallsThrough(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	inner := &countingProvider{rating: Rating{GlobalRating: 4.1, RatingsCount: 3}}
	cached := NewCachedProvider(client, inner, time.Minute)

	r, err := cached.GlobalRating(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, inner.rating, r)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedProvider_DefaultTTL(t *testing.T) {
	cached := NewCachedProvider(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), &countingProvider{}, 0)
	assert.Equal(t, defaultCacheTTL, cached.ttl)
	assert.Equal(t, "reputation:u1", cached.key("u1"))
}

func TestCachedProvider_Integration(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	inner := &countingProvider{rating: Rating{GlobalRating: 3.9, RatingsCount: 2}}
	cached := NewCachedProvider(client, inner, time.Minute)
	require.NoError(t, cached.Invalidate(ctx, "it_user"))

	first, err := cached.GlobalRating(ctx, "it_user")
	require.NoError(t, err)
	second, err := cached.GlobalRating(ctx, "it_user")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls)

	require.NoError(t, cached.Invalidate(ctx, "it_user"))
}
