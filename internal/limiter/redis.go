package limiter

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter implements the cooldown gate on Redis. SET NX with a TTL
// equal to the window makes grant-or-deny a single atomic operation, so
// concurrent calls for the same key serialize on the server. Records
// expire on their own; nothing is ever deleted explicitly.
type RedisLimiter struct {
	client *redis.Client
}

// NewRedisLimiter constructs the limiter.
func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	return &RedisLimiter{client: client}
}

func (l *RedisLimiter) Allow(ctx context.Context, subjectID int64, action string, window time.Duration) (Result, error) {
	key := cooldownKey(subjectID, action)

	granted, err := l.client.SetNX(ctx, key, time.Now().Unix(), window).Result()
	if err != nil {
		return Result{}, err
	}
	if granted {
		return Result{Granted: true}, nil
	}

	ttl, err := l.client.PTTL(ctx, key).Result()
	if err != nil {
		return Result{}, err
	}
	if ttl < 0 {
		// Key vanished between SETNX and PTTL; treat as the tail of the
		// window rather than retrying.
		ttl = 0
	}
	return Result{Granted: false, RetryAfter: ttl}, nil
}
