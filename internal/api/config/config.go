package config

import "time"

// Config 配置主体
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	LLM       LLMConfig       `mapstructure:"llm"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Fetcher   FetcherConfig   `mapstructure:"fetcher"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	TrustedProxies []string `mapstructure:"trusted_proxies"`
	// AllowedOrigins 为空时允许任意来源跨域
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// StorageConfig 数据文件配置
type StorageConfig struct {
	DataFile string `mapstructure:"data_file"`
}

const (
	OnExhaustionFallback = "fallback"
	OnExhaustionError    = "error"
)

type LLMConfig struct {
	OnExhaustion     string           `mapstructure:"on_exhaustion"`
	Retries          int              `mapstructure:"retries"`
	RateLimitBackoff time.Duration    `mapstructure:"rate_limit_backoff"`
	RetryDelay       time.Duration    `mapstructure:"retry_delay"`
	AttemptTimeout   time.Duration    `mapstructure:"attempt_timeout"`
	Temperature      float64          `mapstructure:"temperature"`
	MaxConcurrency   int64            `mapstructure:"max_concurrency"`
	PromptsPath      PromptPathConfig `mapstructure:"prompts_path"`
	Providers        ProvidersConfig  `mapstructure:"providers"`
}

type PromptPathConfig struct {
	Default string `mapstructure:"default"`
	Tweet   string `mapstructure:"tweet"`
}

// ProvidersConfig 按优先级排列：openai > anthropic > gemini
type ProvidersConfig struct {
	OpenAI    ProviderConfig `mapstructure:"openai"`
	Anthropic ProviderConfig `mapstructure:"anthropic"`
	Gemini    ProviderConfig `mapstructure:"gemini"`
}

type ProviderConfig struct {
	ApiKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
	URL    string `mapstructure:"url"`
}

type RateLimitConfig struct {
	Window      time.Duration `mapstructure:"window"`
	MaxRequests int           `mapstructure:"max_requests"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// FetcherConfig url 类型吐槽时抓取页面摘要
type FetcherConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Timeout    time.Duration `mapstructure:"timeout"`
	UserAgent  string        `mapstructure:"user_agent"`
	MaxExcerpt int           `mapstructure:"max_excerpt"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}
