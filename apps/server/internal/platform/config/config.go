// Package config loads apps/server settings from the environment.
//
// Every setting is a plain upper-case environment variable (PORT,
// GITHUB_TOKEN, REDIS_ADDR, ...). Durations accept Go syntax such as "300s"
// or "2m". Values are read once at process start.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config is the full server configuration.
type Config struct {
	Port string `koanf:"port"`

	GithubToken          string        `koanf:"github_token"`
	GithubAPIURL         string        `koanf:"github_api_url"`
	GithubConnectTimeout time.Duration `koanf:"github_connect_timeout"`

	OpenAIAPIKey  string `koanf:"openai_api_key"`
	OpenAIModel   string `koanf:"openai_model"`
	OpenAIBaseURL string `koanf:"openai_base_url"`

	RedisAddr     string        `koanf:"redis_addr"`
	RedisPassword string        `koanf:"redis_password"`
	RedisDB       int           `koanf:"redis_db"`
	CacheTTL      time.Duration `koanf:"cache_ttl"`

	FetchTimeout              time.Duration `koanf:"fetch_timeout"`
	FetchMaxDepth             int           `koanf:"fetch_max_depth"`
	FetchMaxEntries           int           `koanf:"fetch_max_entries"`
	FetchConcurrency          int           `koanf:"fetch_concurrency"`
	FetchFailOnMissingContent bool          `koanf:"fetch_fail_on_missing_content"`

	MaxPromptChars int `koanf:"max_prompt_chars"`

	OtelEnabled     bool   `koanf:"otel_enabled"`
	OtelServiceName string `koanf:"otel_service_name"`
}

// Defaults returns the configuration used for any variable left unset.
func Defaults() Config {
	return Config{
		Port:                 "8080",
		GithubAPIURL:         "https://api.github.com",
		GithubConnectTimeout: 10 * time.Second,
		OpenAIModel:          "gpt-4-turbo",
		CacheTTL:             300 * time.Second,
		// 30000 tokens for gpt-4-turbo at roughly four characters per token.
		MaxPromptChars:  120000,
		OtelServiceName: "assay-server",
	}
}

// known lists the environment variables Load reads.
var known = map[string]bool{
	"port":                          true,
	"github_token":                  true,
	"github_api_url":                true,
	"github_connect_timeout":        true,
	"openai_api_key":                true,
	"openai_model":                  true,
	"openai_base_url":               true,
	"redis_addr":                    true,
	"redis_password":                true,
	"redis_db":                      true,
	"cache_ttl":                     true,
	"fetch_timeout":                 true,
	"fetch_max_depth":               true,
	"fetch_max_entries":             true,
	"fetch_concurrency":             true,
	"fetch_fail_on_missing_content": true,
	"max_prompt_chars":              true,
	"otel_enabled":                  true,
	"otel_service_name":             true,
}

// Load reads the environment over Defaults and validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	// GITHUB_TOKEN -> github_token; variables Load does not know are skipped.
	if err := k.Load(env.Provider("", ".", func(s string) string {
		key := strings.ToLower(s)
		if !known[key] {
			return ""
		}
		return key
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := Defaults()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate reports every missing or out-of-range setting.
func (c *Config) Validate() error {
	var errs []error
	if c.GithubToken == "" {
		errs = append(errs, errors.New("GITHUB_TOKEN is required"))
	}
	if c.OpenAIAPIKey == "" {
		errs = append(errs, errors.New("OPENAI_API_KEY is required"))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	for name, v := range map[string]int{
		"FETCH_MAX_DEPTH":   c.FetchMaxDepth,
		"FETCH_MAX_ENTRIES": c.FetchMaxEntries,
		"FETCH_CONCURRENCY": c.FetchConcurrency,
		"MAX_PROMPT_CHARS":  c.MaxPromptChars,
		"REDIS_DB":          c.RedisDB,
	} {
		if v < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %d", name, v))
		}
	}
	for name, d := range map[string]time.Duration{
		"GITHUB_CONNECT_TIMEOUT": c.GithubConnectTimeout,
		"CACHE_TTL":              c.CacheTTL,
		"FETCH_TIMEOUT":          c.FetchTimeout,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %s", name, d))
		}
	}
	return errors.Join(errs...)
}

// CacheEnabled reports whether a Redis result cache is configured.
func (c *Config) CacheEnabled() bool { return c.RedisAddr != "" }
