package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisCache(t *testing.T, ttl time.Duration) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return NewRedisCache(client, "test:products", ttl), mr
}

func TestRedisCacheRoundTrip(t *testing.T) {
	c, _ := newTestRedisCache(t, time.Minute)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "browse:a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "browse:a", []byte(`{"total":1}`)))
	data, ok, err := c.Get(ctx, "browse:a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"total":1}`, string(data))
}

func TestRedisCacheInvalidateBumpsGeneration(t *testing.T) {
	c, mr := newTestRedisCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "browse:a", []byte("v1")))
	require.NoError(t, c.Invalidate(ctx))

	_, ok, err := c.Get(ctx, "browse:a")
	require.NoError(t, err)
	assert.False(t, ok)

	gen, err := mr.Get("test:products:gen")
	require.NoError(t, err)
	assert.Equal(t, "1", gen)

	require.NoError(t, c.Set(ctx, "browse:a", []byte("v2")))
	assert.True(t, mr.Exists("test:products:1:browse:a"))
}

func TestRedisCacheExpires(t *testing.T) {
	c, mr := newTestRedisCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "browse:a", []byte("v1")))
	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, "browse:a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewRedisClientFailsFast(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisClient(ctx, "127.0.0.1:1", "", 0)
	assert.Error(t, err)
}
