// Package redis opens the shared connection used by the capability cache.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"smpadmin/internal/platform/config"
	"smpadmin/pkg/platform/sentinel"
)

// Client embeds the go-redis client so callers use its commands directly.
type Client struct {
	*redis.Client
}

// New dials cfg.URL with the pool settings from cfg and fails unless the
// server answers a PING.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("redis cache selected but redis.url is empty")
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.MinIdleConns = cfg.MinIdleConns
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}

	c := &Client{Client: redis.NewClient(opts)}
	if err := c.Health(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// Health reports sentinel.ErrUnavailable when redis does not answer.
func (c *Client) Health(ctx context.Context) error {
	if err := c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}
