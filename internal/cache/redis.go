// Package cache provides a Redis-backed store for breach range responses.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/securevault/internal/logging"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "securevault:breach:range:"

type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

type RedisCache struct {
	client redisClient
	log    logging.Logger
}

var newRedisClient = func(addr string) redisClient {
	return redis.NewClient(&redis.Options{Addr: addr})
}

// NewRedisCache connects to addr and pings it before returning.
func NewRedisCache(ctx context.Context, addr string, log logging.Logger) (*RedisCache, error) {
	client := newRedisClient(addr)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisCache{client: client, log: log.With("module", "cache")}, nil
}

// Get reports a miss for both absent keys and Redis errors.
func (c *RedisCache) Get(ctx context.Context, prefix string) (string, bool) {
	val, err := c.client.Get(ctx, keyPrefix+prefix).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		c.log.Warn(ctx, "cache read failed", "error", err)
		return "", false
	}
	return val, true
}

func (c *RedisCache) Set(ctx context.Context, prefix string, body string, ttl time.Duration) error {
	return c.client.Set(ctx, keyPrefix+prefix, body, ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
