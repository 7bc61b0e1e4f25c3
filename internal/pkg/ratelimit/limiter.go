package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Decision 单次请求的限流结果
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter 按客户端标识计数的固定窗口限流器
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

type Option func(*MemoryLimiter)

// WithClock 替换时钟，测试使用
func WithClock(now func() time.Time) Option {
	return func(l *MemoryLimiter) {
		if now != nil {
			l.now = now
		}
	}
}

// MemoryLimiter 进程内固定窗口计数，重启即清空
type MemoryLimiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	max     int
	window  time.Duration
	now     func() time.Time
}

type entry struct {
	count int
	reset time.Time
}

func NewMemoryLimiter(max int, window time.Duration, opts ...Option) *MemoryLimiter {
	l := &MemoryLimiter{
		entries: make(map[string]*entry),
		max:     max,
		window:  window,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow 无记录或窗口已过期时重置为 1 并放行，否则累加，超过上限则拒绝
func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	ent, ok := l.entries[key]
	if !ok || !now.Before(ent.reset) {
		l.entries[key] = &entry{count: 1, reset: now.Add(l.window)}
		return Decision{Allowed: true, Limit: l.max, Remaining: l.max - 1}, nil
	}

	ent.count++
	if ent.count > l.max {
		return Decision{Allowed: false, Limit: l.max, RetryAfter: ent.reset.Sub(now)}, nil
	}
	return Decision{Allowed: true, Limit: l.max, Remaining: l.max - ent.count}, nil
}

// Sweep 删除已过期的窗口，返回删除数量
func (l *MemoryLimiter) Sweep() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for k, ent := range l.entries {
		if !now.Before(ent.reset) {
			delete(l.entries, k)
			removed++
		}
	}
	return removed
}

// Len 当前跟踪的客户端数
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
