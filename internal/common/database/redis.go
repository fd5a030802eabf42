// internal/common/database/redis.go
package database

import (
	"context"
	"fmt"
	"time"

	"phalanx-matcher/internal/common/config"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisPoolSize     = 10
	defaultRedisMinIdleConns = 2
)

// RedisClient holds the connection pool behind the founder profile cache.
type RedisClient struct {
	Client *redis.Client
}

func NewRedis(cfg config.RedisConfig) (*RedisClient, error) {
	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}
	return &RedisClient{Client: redis.NewClient(opts)}, nil
}

// redisOptions fills pool settings the config leaves at zero.
func redisOptions(cfg config.RedisConfig) (*redis.Options, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is empty")
	}
	if cfg.DB < 0 {
		return nil, fmt.Errorf("redis db must not be negative, got %d", cfg.DB)
	}

	pool := cfg.PoolSize
	if pool <= 0 {
		pool = defaultRedisPoolSize
	}
	idle := cfg.MinIdleConns
	if idle <= 0 || idle > pool {
		idle = min(defaultRedisMinIdleConns, pool)
	}

	return &redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		PoolSize:     pool,
		MinIdleConns: idle,
	}, nil
}

func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping %s: %w", c.Client.Options().Addr, err)
	}
	return nil
}

func (c *RedisClient) Close() error {
	if c.Client == nil {
		return nil
	}
	return c.Client.Close()
}
