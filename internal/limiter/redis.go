package limiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "rl"

	// How long to sleep between lock attempts when the slot is taken and
	// redis cannot tell us the remaining TTL.
	retryDelay = 100 * time.Millisecond
)

// RedisLimiter paces requests per key through a SETNX lease with the interval
// as TTL. Unlike the in-memory limiter the schedule survives restarts, which
// matters when an indexer bans aggressive clients.
type RedisLimiter struct {
	cl *redis.Client
}

func NewRedisLimiter(cl *redis.Client) *RedisLimiter {
	return &RedisLimiter{cl: cl}
}

func (l *RedisLimiter) WaitAndPulse(ctx context.Context, key string, interval time.Duration) error {
	leaseKey := fmt.Sprintf("%s:%s", keyPrefix, key)

	for {
		ok, err := l.cl.SetNX(ctx, leaseKey, "1", interval).Result()
		if err != nil {
			return fmt.Errorf("cannot acquire rate limit lease: %w", err)
		}

		if ok {
			return nil
		}

		delay := retryDelay
		if ttl, err := l.cl.PTTL(ctx, leaseKey).Result(); err == nil && ttl > 0 {
			delay = ttl
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()

			return ctx.Err()
		case <-timer.C:
			timer.Stop()
		}
	}
}
