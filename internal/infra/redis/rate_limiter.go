package redis

import (
	"context"
	"fmt"
	"time"
)

// Limiter is a fixed-window rate limiter. The gateway uses it to cap
// decision submissions per token so a runaway merchant test loop cannot
// hammer the finalize path.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type RateLimiter struct {
	client RedisClient
}

var _ Limiter = (*RateLimiter)(nil)

func NewRateLimiter(client RedisClient) *RateLimiter {
	return &RateLimiter{client: client}
}

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := r.client.Incr(ctx, key)
	if err != nil {
		return false, err
	}

	if count == 1 {
		err = r.client.Expire(ctx, key, window)
		if err != nil {
			return false, err
		}
	}

	if count > int64(limit) {
		return false, nil
	}

	return true, nil
}

// NoopLimiter always allows; used when redis is not configured.
type NoopLimiter struct{}

var _ Limiter = NoopLimiter{}

func (NoopLimiter) Allow(context.Context, string, int, time.Duration) (bool, error) {
	return true, nil
}

func TokenDecisionKey(token string) string {
	return fmt.Sprintf("rate_limit:decision:%s", token)
}
