// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	opTimeout   = 2 * time.Second
	scanTimeout = 5 * time.Second
	scanBatch   = 256
)

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string // Redis server address (host:port)
	Password string // Redis password (optional)
	DB       int    // Redis database number
}

// NewRedisClient connects to Redis and verifies the connection with a PING.
// The returned client may be shared by many RedisCache instances.
func NewRedisClient(ctx context.Context, config RedisConfig, logger zerolog.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	logger.Info().
		Str("addr", config.Addr).
		Int("db", config.DB).
		Msg("connected to Redis cache")

	return client, nil
}

// RedisCache is a Redis-backed implementation of Cache. Values are stored as JSON
// under "<namespace>:<key>", so several caches can share one database.
type RedisCache[V any] struct {
	client    redis.UniversalClient
	namespace string
	logger    zerolog.Logger
	stats     counters
}

// NewRedisCache creates a cache scoped to namespace on an existing client.
func NewRedisCache[V any](client redis.UniversalClient, namespace string, logger zerolog.Logger) *RedisCache[V] {
	return &RedisCache[V]{
		client:    client,
		namespace: strings.TrimSuffix(namespace, ":"),
		logger:    logger,
	}
}

func (c *RedisCache[V]) key(k string) string {
	return c.namespace + ":" + k
}

// Get retrieves a value from Redis cache.
func (c *RedisCache[V]) Get(key string) (V, bool) {
	var zero V

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	val, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.stats.misses.Add(1)
		return zero, false
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("redis get failed")
		c.stats.misses.Add(1)
		return zero, false
	}

	var result V
	if err := json.Unmarshal(val, &result); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("json unmarshal failed")
		c.stats.misses.Add(1)
		return zero, false
	}

	c.stats.hits.Add(1)
	return result, true
}

// Set stores a value in Redis cache with TTL.
func (c *RedisCache[V]) Set(key string, value V, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("json marshal failed")
		return
	}
	if ttl < 0 {
		ttl = 0
	}

	if err := c.client.Set(ctx, c.key(key), data, ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("redis set failed")
		return
	}

	c.stats.sets.Add(1)
}

// Delete removes a value from Redis cache.
func (c *RedisCache[V]) Delete(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("redis delete failed")
	}
}

// Clear removes every key in this cache's namespace. Other namespaces are untouched.
func (c *RedisCache[V]) Clear() {
	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	var deleted int64
	err := c.scan(ctx, func(keys []string) error {
		n, err := c.client.Del(ctx, keys...).Result()
		deleted += n
		return err
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("namespace", c.namespace).Msg("redis clear failed")
		return
	}
	c.stats.evictions.Add(deleted)
}

// Stats returns cache statistics. CurrentSize counts keys in the namespace.
func (c *RedisCache[V]) Stats() CacheStats {
	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	size := 0
	if err := c.scan(ctx, func(keys []string) error {
		size += len(keys)
		return nil
	}); err != nil {
		c.logger.Warn().Err(err).Str("namespace", c.namespace).Msg("redis scan failed")
	}

	return c.stats.snapshot(size)
}

// HealthCheck checks if Redis is available.
func (c *RedisCache[V]) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache[V]) scan(ctx context.Context, fn func(keys []string) error) error {
	var cursor uint64
	pattern := c.namespace + ":*"
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := fn(keys); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
