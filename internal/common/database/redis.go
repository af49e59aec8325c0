// internal/common/database/redis.go
package database

import (
	"context"
	"fmt"
	"time"

	"petfood-workers/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// Cache callers treat Redis errors as misses, so the timeouts stay
// tight rather than queueing behind a wedged server.
const (
	redisDialTimeout = 5 * time.Second
	redisIOTimeout   = 3 * time.Second
)

// RedisClient wraps the attribute-cache connection. Handlers receive
// the bare *redis.Client; the wrapper exists for the manager's
// lifecycle calls.
type RedisClient struct {
	Client *redis.Client
}

// NewRedis builds the client; the first command or Ping dials.
func NewRedis(cfg config.RedisConfig) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  redisDialTimeout,
		ReadTimeout:  redisIOTimeout,
		WriteTimeout: redisIOTimeout,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	return &RedisClient{Client: rdb}, nil
}

// Ping is used by startup and health checks only; cache reads and
// writes go through Client directly.
func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}
