package cache

import (
	"context"
	"dispatch-route-service/internal/domain"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "dispatch:"

// RedisEstimateCache is a Redis-backed cache for route estimates.
// Entries expire after TTL so stale road conditions age out.
type RedisEstimateCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisEstimateCache(rdb *redis.Client, ttl time.Duration) *RedisEstimateCache {
	return &RedisEstimateCache{rdb: rdb, ttl: ttl}
}

// NewRedisClient parses a redis:// URL and verifies the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}

	return rdb, nil
}

type cachedEstimate struct {
	DistanceMeters  int `json:"distance_meters"`
	DurationSeconds int `json:"duration_seconds"`
}

// Fetch the cached estimate for key.
func (c *RedisEstimateCache) Get(ctx context.Context, key string) (domain.RouteEstimate, bool, error) {
	if c.rdb == nil {
		return domain.RouteEstimate{}, false, errors.New("estimate cache: client is nil")
	}

	if strings.TrimSpace(key) == "" {
		return domain.RouteEstimate{}, false, errors.New("get estimate cache: key must not be empty")
	}

	raw, err := c.rdb.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.RouteEstimate{}, false, nil
	}
	if err != nil {
		return domain.RouteEstimate{}, false, fmt.Errorf("get estimate cache: %w", err)
	}

	var ce cachedEstimate
	if err := json.Unmarshal(raw, &ce); err != nil {
		return domain.RouteEstimate{}, false, fmt.Errorf("get estimate cache: decode %q: %w", key, err)
	}

	return domain.RouteEstimate{
		DistanceMeters:  ce.DistanceMeters,
		DurationSeconds: ce.DurationSeconds,
	}, true, nil
}

// Store an estimate under key.
func (c *RedisEstimateCache) Put(ctx context.Context, key string, est domain.RouteEstimate) error {
	if c.rdb == nil {
		return errors.New("estimate cache: client is nil")
	}

	if strings.TrimSpace(key) == "" {
		return errors.New("insert estimate cache: key must not be empty")
	}

	raw, err := json.Marshal(cachedEstimate{
		DistanceMeters:  est.DistanceMeters,
		DurationSeconds: est.DurationSeconds,
	})
	if err != nil {
		return fmt.Errorf("insert estimate cache: encode: %w", err)
	}

	if err := c.rdb.Set(ctx, keyPrefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("insert estimate cache key=%q: %w", key, err)
	}

	return nil
}
