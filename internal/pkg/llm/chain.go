package llm

import (
	"RoastMe/internal/api/config"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"time"

	"golang.org/x/sync/semaphore"
)

const (
	defaultRetries          = 2
	defaultRateLimitBackoff = 2 * time.Second
	defaultRetryDelay       = time.Second
	defaultAttemptTimeout   = 30 * time.Second
	defaultTextWeight       = int64(5)
)

var (
	// ErrExhausted 所有供应商都失败且策略为 error
	ErrExhausted = errors.New("all generation providers failed")
	// ErrDecode 模型输出无法解析为吐槽
	ErrDecode = errors.New("provider output is not a valid roast")
)

// Result 一次生成的结果及其来源（供应商名或 fallback）
type Result struct {
	Roast  Roast
	Source string
}

// Generator 供 service 层注入的生成接口
type Generator interface {
	Generate(ctx context.Context, req RoastRequest) (*Result, error)
}

// Chain 依次尝试供应商，每个供应商有限次重试，最后按策略兜底或报错
type Chain struct {
	providers        []Provider
	prompts          *Prompts
	onExhaustion     string
	retries          int
	rateLimitBackoff time.Duration
	retryDelay       time.Duration
	attemptTimeout   time.Duration
	textSem          *semaphore.Weighted
	sleeper          func(ctx context.Context, d time.Duration) error
}

type ChainOption func(*Chain)

// WithSleeper 替换重试等待实现，测试中用来记录延迟而不真正睡眠
func WithSleeper(sleeper func(ctx context.Context, d time.Duration) error) ChainOption {
	return func(c *Chain) {
		c.sleeper = sleeper
	}
}

func WithOnExhaustion(policy string) ChainOption {
	return func(c *Chain) {
		c.onExhaustion = policy
	}
}

func NewChain(providers []Provider, prompts *Prompts, cfg config.LLMConfig, opts ...ChainOption) *Chain {
	c := &Chain{
		providers:        providers,
		prompts:          prompts,
		onExhaustion:     cfg.OnExhaustion,
		retries:          cfg.Retries,
		rateLimitBackoff: cfg.RateLimitBackoff,
		retryDelay:       cfg.RetryDelay,
		attemptTimeout:   cfg.AttemptTimeout,
		sleeper:          sleepContext,
	}
	if c.onExhaustion == "" {
		c.onExhaustion = config.OnExhaustionFallback
	}
	if c.retries < 0 {
		c.retries = defaultRetries
	}
	if c.rateLimitBackoff <= 0 {
		c.rateLimitBackoff = defaultRateLimitBackoff
	}
	if c.retryDelay <= 0 {
		c.retryDelay = defaultRetryDelay
	}
	if c.attemptTimeout <= 0 {
		c.attemptTimeout = defaultAttemptTimeout
	}
	weight := cfg.MaxConcurrency
	if weight <= 0 {
		weight = defaultTextWeight
	}
	c.textSem = semaphore.NewWeighted(weight)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate 按优先级尝试供应商；全部失败时 fallback 策略返回本地兜底，error 策略返回 ErrExhausted
func (c *Chain) Generate(ctx context.Context, req RoastRequest) (*Result, error) {
	prompt, err := c.prompts.Render(req)
	if err != nil {
		return nil, err
	}

	for _, p := range c.providers {
		if !p.Available() {
			log.DebugContext(ctx, "供应商未配置凭证，跳过", "provider", p.Name())
			continue
		}
		roast, err := c.tryProvider(ctx, p, prompt)
		if err == nil {
			return &Result{Roast: roast, Source: p.Name()}, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.WarnContext(ctx, "供应商生成失败，尝试下一个", "provider", p.Name(), "err", err)
	}

	if c.onExhaustion == config.OnExhaustionError {
		return nil, ErrExhausted
	}
	log.InfoContext(ctx, "使用本地兜底吐槽")
	return &Result{Roast: Fallback(req.Content), Source: FallbackSource}, nil
}

func (c *Chain) tryProvider(ctx context.Context, p Provider, prompt string) (Roast, error) {
	attempts := c.retries + 1
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		raw, err := c.complete(ctx, p, prompt)
		if err == nil {
			roast, ok := DecodeRoast(raw)
			if !ok {
				return Roast{}, ErrDecode
			}
			return roast, nil
		}
		lastErr = err
		log.WarnContext(ctx, "供应商调用失败", "provider", p.Name(), "attempt", attempt, "err", err)
		if attempt == attempts || ctx.Err() != nil {
			break
		}
		if err := c.sleeper(ctx, c.retryDelayFor(err, attempt)); err != nil {
			return Roast{}, err
		}
	}
	return Roast{}, fmt.Errorf("%s: failed after %d attempts: %w", p.Name(), attempts, lastErr)
}

func (c *Chain) complete(ctx context.Context, p Provider, prompt string) (string, error) {
	if err := c.textSem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer c.textSem.Release(1)

	attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()
	return p.Complete(attemptCtx, prompt)
}

// retryDelayFor 限流时指数退避 base, base*2, ...；其他错误固定短延迟
func (c *Chain) retryDelayFor(err error, attempt int) time.Duration {
	if errors.Is(err, ErrRateLimited) {
		return c.rateLimitBackoff << (attempt - 1)
	}
	return c.retryDelay
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
