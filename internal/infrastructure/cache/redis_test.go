package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type summary struct {
	Open  int    `json:"open"`
	Value string `json:"value"`
}

func newTestCache(t *testing.T, ttl time.Duration) (*JSONCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := NewClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = client.Close() })
	return NewJSONCache(client, "dashboard", ttl), mr
}

func TestJSONCacheRoundTrip(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	var got summary
	hit, err := c.Get(ctx, "tenant-a", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, "tenant-a", summary{Open: 3, Value: "150000"}))
	assert.True(t, mr.Exists("dashboard:tenant-a"))

	hit, err = c.Get(ctx, "tenant-a", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, summary{Open: 3, Value: "150000"}, got)

	require.NoError(t, c.Delete(ctx, "tenant-a"))
	hit, err = c.Get(ctx, "tenant-a", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestJSONCacheExpires(t *testing.T) {
	c, mr := newTestCache(t, 30*time.Second)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "tenant-b", summary{Open: 1}))
	mr.FastForward(31 * time.Second)

	var got summary
	hit, err := c.Get(ctx, "tenant-b", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestNoopNeverHits(t *testing.T) {
	var c Noop
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", summary{Open: 1}))
	hit, err := c.Get(ctx, "k", &summary{})
	require.NoError(t, err)
	assert.False(t, hit)
}
