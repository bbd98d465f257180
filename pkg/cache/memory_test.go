package cache_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/shopfront/pkg/cache"
)

type product struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func TestMemoryRoundTripAndExpiry(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	store := cache.NewMemory().WithClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "products:1", product{Name: "Shirt", Price: 10}, time.Minute))

	var got product
	hit, err := store.Get(ctx, "products:1", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, product{Name: "Shirt", Price: 10}, got)

	now = now.Add(2 * time.Minute)
	hit, err = store.Get(ctx, "products:1", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestMemoryDelPattern(t *testing.T) {
	store := cache.NewMemory()
	ctx := context.Background()
	for _, k := range []string{"products:1", "products:2", "users:1"} {
		require.NoError(t, store.Set(ctx, k, 1, 0))
	}

	require.NoError(t, store.DelPattern(ctx, "products:*"))

	var v int
	hit, _ := store.Get(ctx, "products:2", &v)
	assert.False(t, hit)
	hit, _ = store.Get(ctx, "users:1", &v)
	assert.True(t, hit)
}

func TestMemoryIncrWindow(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	store := cache.NewMemory().WithClock(func() time.Time { return now })
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		n, err := store.Incr(ctx, "rate:1.2.3.4", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	now = now.Add(61 * time.Second)
	n, err := store.Incr(ctx, "rate:1.2.3.4", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMemoryWritesSweepExpiredEntries(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	store := cache.NewMemory().WithClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "settings", "kept", 0))
	for i := 0; i < 10000; i++ {
		require.NoError(t, store.Set(ctx, fmt.Sprintf("products:%d", i), nil, time.Minute))
	}
	assert.Equal(t, 10001, store.Len())

	now = now.Add(time.Hour)
	require.NoError(t, store.Set(ctx, "products:new", product{Name: "Socks"}, time.Minute))
	assert.Equal(t, 2, store.Len())

	var s string
	hit, err := store.Get(ctx, "settings", &s)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "kept", s)
}
