package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentforge/candidate-os/internal/application/service"
	"github.com/talentforge/candidate-os/pkg/apperror"
	"github.com/talentforge/candidate-os/pkg/logger"
)

type countingStandardizer struct {
	calls  int
	result string
	err    error
}

func (c *countingStandardizer) Standardize(_ context.Context, _ string) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return c.result, nil
}

func newLocationCache(t *testing.T, inner *countingStandardizer, ttl time.Duration) (service.LocationStandardizer, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewCachedLocationStandardizer(inner, rdb, ttl, logger.NewNop()), mr
}

func TestLocationCacheHitBypassesInner(t *testing.T) {
	inner := &countingStandardizer{result: "Berlin, Germany"}
	cache, _ := newLocationCache(t, inner, time.Hour)

	first, err := cache.Standardize(context.Background(), "berlin")
	require.NoError(t, err)
	assert.Equal(t, "Berlin, Germany", first)
	assert.Equal(t, 1, inner.calls)

	second, err := cache.Standardize(context.Background(), "berlin")
	require.NoError(t, err)
	assert.Equal(t, "Berlin, Germany", second)
	assert.Equal(t, 1, inner.calls)
}

func TestLocationCacheKeyNormalization(t *testing.T) {
	inner := &countingStandardizer{result: "Berlin, Germany"}
	cache, _ := newLocationCache(t, inner, time.Hour)

	_, err := cache.Standardize(context.Background(), "  Berlin ")
	require.NoError(t, err)
	_, err = cache.Standardize(context.Background(), "berlin")
	require.NoError(t, err)

	// Case and surrounding whitespace map to the same cache key.
	assert.Equal(t, 1, inner.calls)
}

func TestLocationCacheInnerErrorNotCached(t *testing.T) {
	inner := &countingStandardizer{err: apperror.NewTransient("model timeout", nil)}
	cache, mr := newLocationCache(t, inner, time.Hour)

	_, err := cache.Standardize(context.Background(), "berlin")
	require.Error(t, err)
	assert.Empty(t, mr.Keys())

	// Once the model recovers, the next call reaches it.
	inner.err = nil
	inner.result = "Berlin, Germany"
	got, err := cache.Standardize(context.Background(), "berlin")
	require.NoError(t, err)
	assert.Equal(t, "Berlin, Germany", got)
	assert.Equal(t, 2, inner.calls)
}

func TestLocationCacheEntryExpires(t *testing.T) {
	inner := &countingStandardizer{result: "Berlin, Germany"}
	cache, mr := newLocationCache(t, inner, time.Minute)

	_, err := cache.Standardize(context.Background(), "berlin")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = cache.Standardize(context.Background(), "berlin")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestLocationCacheRedisDownFallsThrough(t *testing.T) {
	inner := &countingStandardizer{result: "Berlin, Germany"}
	cache, mr := newLocationCache(t, inner, time.Hour)
	mr.Close()

	got, err := cache.Standardize(context.Background(), "berlin")
	require.NoError(t, err)
	assert.Equal(t, "Berlin, Germany", got)
	assert.Equal(t, 1, inner.calls)
}
