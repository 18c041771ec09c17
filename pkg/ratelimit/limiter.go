package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter counts requests per client in fixed time windows backed by Redis.
type Limiter struct {
	rdb    *redis.Client
	window time.Duration
	max    int64
}

func NewLimiter(rdb *redis.Client, window time.Duration, max int64) *Limiter {
	return &Limiter{rdb: rdb, window: window, max: max}
}

func (l *Limiter) key(client string) string {
	bucket := time.Now().Unix() / int64(l.window.Seconds())
	return fmt.Sprintf("ratelimit:%s:%d", client, bucket)
}

// Allow increments the client's counter for the current window and reports
// whether the request is within the limit.
func (l *Limiter) Allow(ctx context.Context, client string) (bool, error) {
	key := l.key(client)
	n, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		// First hit in this window owns the expiry.
		if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
			return false, err
		}
	}
	return n <= l.max, nil
}
