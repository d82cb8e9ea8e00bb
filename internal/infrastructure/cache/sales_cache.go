package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"mfgplan/pkg/logger"
)

const salesKeyPrefix = "mfgplan:sales:units"

// UnitsSoldSource is the uncached sales aggregate.
type UnitsSoldSource interface {
	GetUnitsSold(ctx context.Context, productCode string, from, to time.Time) (float64, error)
}

// store is the part of the Redis client used by the cache.
type store interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// SalesCache caches units-sold totals per product and window.
// Redis failures are logged and the source is queried directly.
type SalesCache struct {
	source UnitsSoldSource
	store  store
	ttl    time.Duration
}

// NewSalesCache wraps source with a read-through cache.
func NewSalesCache(source UnitsSoldSource, client *redis.Client, ttl time.Duration) *SalesCache {
	return &SalesCache{source: source, store: client, ttl: ttl}
}

// GetUnitsSold returns the cached total or loads and stores it.
func (c *SalesCache) GetUnitsSold(ctx context.Context, productCode string, from, to time.Time) (float64, error) {
	key := unitsSoldKey(productCode, from, to)

	cached, err := c.store.Get(ctx, key).Result()
	switch {
	case err == nil:
		if v, parseErr := strconv.ParseFloat(cached, 64); parseErr == nil {
			return v, nil
		}
		logger.Warn(ctx, "invalid cached sales value", "key", key, "value", cached)
	case !errors.Is(err, redis.Nil):
		logger.Warn(ctx, "sales cache read failed", "key", key, "error", err)
	}

	total, err := c.source.GetUnitsSold(ctx, productCode, from, to)
	if err != nil {
		return 0, err
	}

	value := strconv.FormatFloat(total, 'f', -1, 64)
	if err := c.store.Set(ctx, key, value, c.ttl).Err(); err != nil {
		logger.Warn(ctx, "sales cache write failed", "key", key, "error", err)
	}

	return total, nil
}

// unitsSoldKey keys a total by product and calendar days of the window.
func unitsSoldKey(productCode string, from, to time.Time) string {
	return fmt.Sprintf("%s:%s:%s:%s", salesKeyPrefix, productCode,
		from.UTC().Format(time.DateOnly), to.UTC().Format(time.DateOnly))
}
