package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Cfg 全局可访问的配置实例
var Cfg *Config

// envBindings 兼容部署环境里已有的变量名
var envBindings = map[string]string{
	"server.port":                     "PORT",
	"storage.data_file":               "DATA_FILE",
	"llm.providers.openai.api_key":    "OPENAI_API_KEY",
	"llm.providers.anthropic.api_key": "ANTHROPIC_API_KEY",
	"llm.providers.gemini.api_key":    "GEMINI_API_KEY",
	"redis.addr":                      "REDIS_ADDR",
}

// LoadConfig 从文件与环境变量加载配置并填充到 Cfg。
// configFile 为空时查找 ./configs/config.yaml，找不到则只用默认值和环境变量
func LoadConfig(configFile string) error {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
	}

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("failed to bind env %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	Cfg = &cfg

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3002)
	v.SetDefault("server.trusted_proxies", []string{"127.0.0.1"})

	v.SetDefault("storage.data_file", "./data/data.json")

	v.SetDefault("llm.on_exhaustion", OnExhaustionFallback)
	v.SetDefault("llm.retries", 2)
	v.SetDefault("llm.rate_limit_backoff", 2*time.Second)
	v.SetDefault("llm.retry_delay", time.Second)
	v.SetDefault("llm.attempt_timeout", 30*time.Second)
	v.SetDefault("llm.temperature", 0.9)
	v.SetDefault("llm.max_concurrency", 5)
	v.SetDefault("llm.providers.openai.model", "gpt-4o-mini")
	v.SetDefault("llm.providers.anthropic.model", "claude-3-5-haiku-latest")
	v.SetDefault("llm.providers.gemini.model", "gemini-1.5-flash")

	v.SetDefault("rate_limit.window", time.Minute)
	v.SetDefault("rate_limit.max_requests", 20)

	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("fetcher.enabled", true)
	v.SetDefault("fetcher.timeout", 8*time.Second)
	v.SetDefault("fetcher.user_agent", "Mozilla/5.0 (compatible; RoastMeBot/1.0)")
	v.SetDefault("fetcher.max_excerpt", 600)

	v.SetDefault("log.level", "info")
}

// Validate 校验取值范围
func (c *Config) Validate() error {
	switch c.LLM.OnExhaustion {
	case OnExhaustionFallback, OnExhaustionError:
	default:
		return fmt.Errorf("llm.on_exhaustion must be %q or %q, got %q", OnExhaustionFallback, OnExhaustionError, c.LLM.OnExhaustion)
	}
	if c.LLM.Retries < 0 {
		return fmt.Errorf("llm.retries must not be negative")
	}
	if c.RateLimit.MaxRequests <= 0 {
		return fmt.Errorf("rate_limit.max_requests must be positive")
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate_limit.window must be positive")
	}
	return nil
}
