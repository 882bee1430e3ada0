package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLimiter(t *testing.T) (*Limiter, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewLimiter(rdb), mr
}

func TestLimiter_AllowWithinLimit(t *testing.T) {
	limiter, _ := setupLimiter(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		ok, err := limiter.Allow(ctx, "contact:1", 5, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestLimiter_DenyOverLimit(t *testing.T) {
	limiter, _ := setupLimiter(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := limiter.Allow(ctx, "contact:2", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := limiter.Allow(ctx, "contact:2", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	limiter, _ := setupLimiter(t)
	ctx := context.Background()

	ok, err := limiter.Allow(ctx, "contact:3", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = limiter.Allow(ctx, "contact:3", 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// 其他用户不受影响
	ok, err = limiter.Allow(ctx, "contact:4", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLimiter_ZeroLimitAlwaysAllows(t *testing.T) {
	limiter, _ := setupLimiter(t)

	ok, err := limiter.Allow(context.Background(), "x", 0, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
