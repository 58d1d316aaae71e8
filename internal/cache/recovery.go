package cache

import (
	"context"
	"fmt"
	"time"
)

// usedTokenPrefix is the Redis key prefix for consumed recovery token ids.
const usedTokenPrefix = "freshplate:recovery:used:"

// ConsumeOnce records id as used for ttl. It reports true only for the first
// caller; every later call within ttl gets false. Unlike rate limiting this
// fails closed: a Redis error is returned, never treated as success.
func (c *Cache) ConsumeOnce(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	if id == "" {
		return false, nil
	}
	ok, err := c.client.SetNX(ctx, usedTokenPrefix+id, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark token used: %w", err)
	}
	return ok, nil
}

// Release removes the used marker for id, so a consume whose follow-up
// write failed can be retried.
func (c *Cache) Release(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := c.client.Del(ctx, usedTokenPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to release token marker: %w", err)
	}
	return nil
}
