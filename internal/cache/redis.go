// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/ManuGH/snippets/internal/config"
	xglog "github.com/ManuGH/snippets/internal/log"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	opTimeout   = 2 * time.Second
	dialTimeout = 5 * time.Second
)

// RedisCache is a Redis-backed implementation of Cache. Values are stored as
// JSON, so Get returns decoded JSON values (float64 for numbers).
type RedisCache struct {
	client *redis.Client
	logger zerolog.Logger
	stats  counters
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string // host:port
	Password string // optional
	DB       int
}

// RedisConfigFrom maps the validated cache section to connection options.
func RedisConfigFrom(c config.CacheConfig) RedisConfig {
	return RedisConfig{
		Addr:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Password: c.Password,
		DB:       c.DB,
	}
}

// NewRedisCache connects to Redis and pings it once.
func NewRedisCache(ctx context.Context, cfg RedisConfig, logger zerolog.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  dialTimeout,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	logger.Info().
		Str("addr", cfg.Addr).
		Int("db", cfg.DB).
		Msg("connected to Redis cache")

	return &RedisCache{client: client, logger: logger}, nil
}

// New builds the process cache from the cache section. When Redis is not
// reachable it logs a warning and returns an in-memory cache.
func New(ctx context.Context, c config.CacheConfig) Cache {
	logger := xglog.WithComponent("cache")
	rc, err := NewRedisCache(ctx, RedisConfigFrom(c), logger)
	if err != nil {
		logger.Warn().
			Err(err).
			Str("event", "cache.fallback").
			Msg("redis unavailable, falling back to in-memory cache")
		return NewMemoryCache(time.Minute)
	}
	return rc
}

func (c *RedisCache) Get(key string) (any, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.stats.misses.Add(1)
		return nil, false
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("redis get failed")
		c.stats.misses.Add(1)
		return nil, false
	}

	var result any
	if err := json.Unmarshal(val, &result); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("json unmarshal failed")
		c.stats.misses.Add(1)
		return nil, false
	}

	c.stats.hits.Add(1)
	return result, true
}

func (c *RedisCache) Set(key string, value any, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("json marshal failed")
		return
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("redis set failed")
		return
	}
	c.stats.sets.Add(1)
}

func (c *RedisCache) Delete(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("redis delete failed")
	}
}

// Clear flushes the selected Redis database.
func (c *RedisCache) Clear() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.client.FlushDB(ctx).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("redis flush failed")
	}
}

func (c *RedisCache) Stats() CacheStats {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	size, err := c.client.DBSize(ctx).Result()
	if err != nil {
		c.logger.Warn().Err(err).Msg("redis dbsize failed")
		size = 0
	}
	return c.stats.snapshot(int(size))
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Backend() string { return "redis" }

func (c *RedisCache) Close() error {
	return c.client.Close()
}
