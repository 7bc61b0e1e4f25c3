package llm

import (
	"RoastMe/internal/api/config"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

const maxOutputTokens = 800

// ErrRateLimited 供应商返回限流（HTTP 429）
var ErrRateLimited = errors.New("provider rate limited")

// Provider 一个可调用的文本生成后端
type Provider interface {
	Name() string
	// Available 没有凭证的供应商直接跳过，不发起网络请求
	Available() bool
	Complete(ctx context.Context, prompt string) (string, error)
}

// LangChainProvider 基于 langchaingo 的供应商实现
type LangChainProvider struct {
	name        string
	model       llms.Model
	temperature float64
}

func NewLangChainProvider(name string, model llms.Model, temperature float64) *LangChainProvider {
	return &LangChainProvider{name: name, model: model, temperature: temperature}
}

func (p *LangChainProvider) Name() string {
	return p.name
}

func (p *LangChainProvider) Available() bool {
	return p.model != nil
}

func (p *LangChainProvider) Complete(ctx context.Context, prompt string) (string, error) {
	if p.model == nil {
		return "", fmt.Errorf("%s: no credential configured", p.name)
	}
	out, err := llms.GenerateFromSinglePrompt(ctx, p.model, prompt,
		llms.WithTemperature(p.temperature),
		llms.WithMaxTokens(maxOutputTokens),
	)
	if err != nil {
		return "", classifyError(err)
	}
	return out, nil
}

// NewProviders 按优先级 openai > anthropic > gemini 构建供应商，未配置 api_key 的保留为不可用
func NewProviders(ctx context.Context, cfg config.LLMConfig) ([]Provider, error) {
	var providers []Provider

	openaiModel, err := newOpenAI(cfg.Providers.OpenAI)
	if err != nil {
		return nil, err
	}
	providers = append(providers, NewLangChainProvider(ProviderOpenAI, openaiModel, cfg.Temperature))

	anthropicModel, err := newAnthropic(cfg.Providers.Anthropic)
	if err != nil {
		return nil, err
	}
	providers = append(providers, NewLangChainProvider(ProviderAnthropic, anthropicModel, cfg.Temperature))

	geminiModel, err := newGemini(ctx, cfg.Providers.Gemini)
	if err != nil {
		return nil, err
	}
	providers = append(providers, NewLangChainProvider(ProviderGemini, geminiModel, cfg.Temperature))

	for _, p := range providers {
		log.Info("LLM供应商", "provider", p.Name(), "available", p.Available())
	}
	return providers, nil
}

func newOpenAI(cfg config.ProviderConfig) (llms.Model, error) {
	if cfg.ApiKey == "" {
		return nil, nil
	}
	opts := []openai.Option{
		openai.WithToken(cfg.ApiKey),
		openai.WithModel(cfg.Model),
	}
	if cfg.URL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.URL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		log.Error("OpenAI初始化失败", "err", err)
		return nil, err
	}
	return llm, nil
}

func newAnthropic(cfg config.ProviderConfig) (llms.Model, error) {
	if cfg.ApiKey == "" {
		return nil, nil
	}
	opts := []anthropic.Option{
		anthropic.WithToken(cfg.ApiKey),
		anthropic.WithModel(cfg.Model),
	}
	if cfg.URL != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.URL))
	}
	llm, err := anthropic.New(opts...)
	if err != nil {
		log.Error("Anthropic初始化失败", "err", err)
		return nil, err
	}
	return llm, nil
}

func newGemini(ctx context.Context, cfg config.ProviderConfig) (llms.Model, error) {
	if cfg.ApiKey == "" {
		return nil, nil
	}
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(cfg.ApiKey),
		googleai.WithDefaultModel(cfg.Model),
	)
	if err != nil {
		log.Error("Gemini初始化失败", "err", err)
		return nil, err
	}
	return llm, nil
}

// classifyError langchaingo 各 SDK 的错误类型不统一，按文本识别限流
func classifyError(err error) error {
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"429", "rate limit", "rate_limit", "too many requests", "resource_exhausted"} {
		if strings.Contains(msg, marker) {
			return fmt.Errorf("%w: %w", ErrRateLimited, err)
		}
	}
	return err
}
