// Package cache holds the Redis-backed state FreshPlate shares across API
// instances: per-IP rate-limit buckets and spent recovery-token markers.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Pool defaults. Every request that hits a limited route or completes a
// password reset makes one round trip, so a small pool is enough.
const (
	defaultPoolSize     = 10
	defaultMinIdleConns = 2
	defaultPoolTimeout  = 4 * time.Second
	defaultIdleTimeout  = 5 * time.Minute
)

// Option adjusts the Redis client options before the connection is opened.
type Option func(*redis.Options)

// WithPoolSize overrides the maximum number of pooled connections.
func WithPoolSize(n int) Option {
	return func(o *redis.Options) {
		if n > 0 {
			o.PoolSize = n
		}
	}
}

// Cache wraps the Redis client used for rate limiting and token markers.
type Cache struct {
	client *redis.Client
}

// New dials REDIS_URL and verifies the server answers before returning.
func New(ctx context.Context, redisURL string, opts ...Option) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("cache: parse REDIS_URL: %w", err)
	}
	opt.PoolSize = defaultPoolSize
	opt.MinIdleConns = defaultMinIdleConns
	opt.PoolTimeout = defaultPoolTimeout
	opt.ConnMaxIdleTime = defaultIdleTimeout
	for _, apply := range opts {
		apply(opt)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cache: ping %s: %w", opt.Addr, err)
	}
	return &Cache{client: client}, nil
}

// NewFromClient wraps a client the caller already configured, e.g. one
// pointed at miniredis in tests.
func NewFromClient(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Ping reports whether Redis is reachable.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}
