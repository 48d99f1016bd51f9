package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"courier-dispatch/internal/logx"
)

// RedisLimiter is a fixed-window counter shared by every instance behind the same Redis.
// It fails open when Redis is unreachable.
type RedisLimiter struct {
	client redis.UniversalClient
	limit  int64
	window time.Duration
	prefix string
	clock  Clock
	logger logx.Logger
}

// NewRedisLimiter allows limit requests per window and key.
func NewRedisLimiter(client redis.UniversalClient, limit int, window time.Duration, logger logx.Logger) *RedisLimiter {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &RedisLimiter{
		client: client,
		limit:  int64(limit),
		window: window,
		prefix: "ratelimit",
		clock:  RealClock{},
		logger: logger,
	}
}

// Allow increments key's counter for the current window.
func (l *RedisLimiter) Allow(ctx context.Context, key string) bool {
	slot := l.clock.Now().UnixNano() / int64(l.window)
	k := l.prefix + ":" + key + ":" + strconv.FormatInt(slot, 10)

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, k)
		p.PExpire(ctx, k, l.window)
		return nil
	})
	if err != nil {
		l.logger.Warn("rate limit store unavailable", logx.String("key", key), logx.Err(err))
		return true
	}
	return incr.Val() <= l.limit
}
