package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetGetDelete(t *testing.T) {
	c := NewMemoryService(time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", map[string]string{"value": "alphabetical"}, time.Minute))

	var got map[string]string
	require.NoError(t, c.Get(ctx, "k", &got))
	assert.Equal(t, "alphabetical", got["value"])

	ok, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, c.Delete(ctx, "k"))
	assert.ErrorIs(t, c.Get(ctx, "k", &got), ErrMiss)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryService(time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", "v", 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	var got string
	assert.ErrorIs(t, c.Get(ctx, "short", &got), ErrMiss)
}

func TestRedisCache_NilClient(t *testing.T) {
	c := NewService(nil)
	ctx := context.Background()

	assert.False(t, c.IsAvailable())
	assert.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	var got string
	assert.ErrorIs(t, c.Get(ctx, "k", &got), ErrMiss)
	assert.NoError(t, c.Delete(ctx, "k"))
	assert.Error(t, c.Ping(ctx))
}
