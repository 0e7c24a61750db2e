package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/muhammadheryan/contact-manager/cmd/config"
	"github.com/redis/go-redis/v9"
)

// New builds a Redis client from cfg and verifies connectivity. It returns a
// nil client when Redis is disabled; callers treat that as "no shared locks".
func New(cfg *config.Config) (*redis.Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config provided")
	}
	if !cfg.Redis.Enabled {
		return nil, nil
	}

	addr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
	c := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("unable to ping redis at %s: %w", addr, err)
	}

	return c, nil
}

// Close closes c when it is non-nil.
func Close(c *redis.Client) error {
	if c == nil {
		return nil
	}
	return c.Close()
}
