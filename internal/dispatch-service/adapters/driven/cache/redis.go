package cache

import (
	"context"
	"fmt"
	"time"

	"instantfix/internal/config"

	"github.com/redis/go-redis/v9"
)

// RedisClient wraps the redis connection used by the request-creation
// rate limiter.
type RedisClient struct {
	Client *redis.Client
}

func New(cfg *config.Redisconfig) *RedisClient {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	return &RedisClient{Client: rdb}
}

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
