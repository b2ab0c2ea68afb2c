package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, ttl), mr
}

func TestCacheRoundtrip(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	in := []Product{{ID: "p1", Name: "Consultoria", SalePrice: "450.00"}}
	require.NoError(t, cache.SetJSON(ctx, "catalog:test", in))

	var out []Product
	ok, err := cache.GetJSON(ctx, "catalog:test", &out)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, in, out)
}

func TestCacheMissingKey(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)

	var out []Product
	ok, err := cache.GetJSON(context.Background(), "catalog:absent", &out)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCacheExpiry(t *testing.T) {
	cache, mr := newTestCache(t, time.Second)
	ctx := context.Background()

	require.NoError(t, cache.SetJSON(ctx, "catalog:ttl", []Product{{ID: "p1"}}))
	mr.FastForward(2 * time.Second)

	var out []Product
	ok, err := cache.GetJSON(ctx, "catalog:ttl", &out)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCacheInvalidate(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.SetJSON(ctx, "catalog:gone", []Product{{ID: "p1"}}))
	cache.Invalidate(ctx, "catalog:gone")
	require.False(t, mr.Exists("catalog:gone"))
}

func TestNilClientDisablesCache(t *testing.T) {
	cache := NewCache(nil, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.SetJSON(ctx, "catalog:nil", []Product{{ID: "p1"}}))
	var out []Product
	ok, err := cache.GetJSON(ctx, "catalog:nil", &out)
	require.NoError(t, err)
	require.False(t, ok)
}
