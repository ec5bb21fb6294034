package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/talentforge/candidate-os/internal/application/service"
	"github.com/talentforge/candidate-os/pkg/logger"
)

// cachedLocationStandardizer fronts a standardizer with a redis cache, so
// re-runs and repeated locations never re-hit the model.
type cachedLocationStandardizer struct {
	inner  service.LocationStandardizer
	rdb    *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedLocationStandardizer(
	inner service.LocationStandardizer,
	rdb *redis.Client,
	ttl time.Duration,
	log logger.Logger,
) service.LocationStandardizer {
	if ttl <= 0 {
		ttl = 720 * time.Hour
	}
	return &cachedLocationStandardizer{inner: inner, rdb: rdb, ttl: ttl, logger: log}
}

func (c *cachedLocationStandardizer) Standardize(ctx context.Context, location string) (string, error) {
	key := "loc:" + strings.ToLower(strings.TrimSpace(location))

	cached, err := c.rdb.Get(ctx, key).Result()
	if err == nil {
		return cached, nil
	}
	if err != redis.Nil {
		c.logger.Warn("location cache read failed", zap.Error(err))
	}

	std, err := c.inner.Standardize(ctx, location)
	if err != nil {
		return "", err
	}

	if err := c.rdb.Set(ctx, key, std, c.ttl).Err(); err != nil {
		c.logger.Warn("location cache write failed", zap.Error(err))
	}
	return std, nil
}
