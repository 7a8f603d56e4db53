// Package cache keeps the dashboard summary in redis
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/lily/pkg/metrics"
	"github.com/Ramsey-B/lily/pkg/store"
	"github.com/redis/go-redis/v9"
)

const statsKey = "lily:stats"

// Config holds Redis connection configuration
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// redisClient is the subset of *redis.Client the cache uses
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// StatsCache stores the listing summary between requests
type StatsCache struct {
	rdb    redisClient
	ttl    time.Duration
	logger ectologger.Logger
}

// NewStatsCache creates a cache. The connection is checked by Ping.
func NewStatsCache(cfg Config, logger ectologger.Logger) *StatsCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return newStatsCache(rdb, cfg.TTL, logger)
}

func newStatsCache(rdb redisClient, ttl time.Duration, logger ectologger.Logger) *StatsCache {
	return &StatsCache{rdb: rdb, ttl: ttl, logger: logger}
}

// Get returns the cached summary. Misses and redis errors both report false.
func (c *StatsCache) Get(ctx context.Context) (store.Summary, bool) {
	var summary store.Summary

	raw, err := c.rdb.Get(ctx, statsKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.RecordCacheLookup("miss")
			return summary, false
		}
		c.logger.WithContext(ctx).WithError(err).Warn("Failed to read cached stats")
		metrics.RecordCacheLookup("error")
		return summary, false
	}

	if err := json.Unmarshal(raw, &summary); err != nil {
		c.logger.WithContext(ctx).WithError(err).Warn("Discarding malformed cached stats")
		metrics.RecordCacheLookup("miss")
		return summary, false
	}

	metrics.RecordCacheLookup("hit")
	return summary, true
}

// Set caches summary for the configured TTL
func (c *StatsCache) Set(ctx context.Context, summary store.Summary) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode stats: %w", err)
	}
	if err := c.rdb.Set(ctx, statsKey, raw, c.ttl).Err(); err != nil {
		c.logger.WithContext(ctx).WithError(err).Warn("Failed to cache stats")
		return err
	}
	return nil
}

// Invalidate drops the cached summary
func (c *StatsCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, statsKey).Err()
}

// Ping checks if Redis is reachable
func (c *StatsCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *StatsCache) Close() error {
	return c.rdb.Close()
}
