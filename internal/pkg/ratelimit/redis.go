package ratelimit

import (
	"RoastMe/internal/pkg/consts"
	"RoastMe/internal/pkg/redis"
	"context"
	"strings"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// RedisLimiter 多实例共享的固定窗口计数，窗口由 key 的 TTL 表示
type RedisLimiter struct {
	rdb    *redisv9.Client
	prefix string
	max    int
	window time.Duration
}

func NewRedisLimiter(rdb *redisv9.Client, max int, window time.Duration, prefix string) *RedisLimiter {
	prefix = strings.Trim(prefix, ":")
	if prefix == "" {
		prefix = consts.RateLimitRoastKey
	}
	return &RedisLimiter{rdb: rdb, prefix: prefix, max: max, window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	count, ttl, err := redis.IncrWindow(ctx, l.rdb, l.prefix+":"+key, l.window)
	if err != nil {
		return Decision{}, err
	}
	if int(count) > l.max {
		return Decision{Allowed: false, Limit: l.max, RetryAfter: ttl}, nil
	}
	return Decision{Allowed: true, Limit: l.max, Remaining: l.max - int(count)}, nil
}
