package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdempotencyCache replays responses for repeated Idempotency-Key headers.
// The first request under a key stores its response body; later requests
// within the TTL get the stored body back instead of a second mutation.
type IdempotencyCache struct {
	redisClient *redis.Client
	ttl         time.Duration
}

func NewIdempotencyCache(redisClient *redis.Client) *IdempotencyCache {
	return &IdempotencyCache{
		redisClient: redisClient,
		ttl:         24 * time.Hour,
	}
}

func idemKey(key string) string {
	return fmt.Sprintf("idem:%s", key)
}

// Lookup returns the stored response body for key, if any.
func (c *IdempotencyCache) Lookup(ctx context.Context, key string) ([]byte, bool, error) {
	body, err := c.redisClient.Get(ctx, idemKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("looking up idempotency key: %w", err)
	}
	return body, true, nil
}

// Store records the response body for key. NX keeps the first writer's
// body if two requests race on the same key.
func (c *IdempotencyCache) Store(ctx context.Context, key string, body []byte) error {
	if err := c.redisClient.SetNX(ctx, idemKey(key), body, c.ttl).Err(); err != nil {
		return fmt.Errorf("storing idempotency key: %w", err)
	}
	return nil
}
