package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilsley/assay/apps/server/internal/platform/config"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("GITHUB_TOKEN", "ghp_test")
	t.Setenv("OPENAI_API_KEY", "sk-test")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "https://api.github.com", cfg.GithubAPIURL)
	assert.Equal(t, "gpt-4-turbo", cfg.OpenAIModel)
	assert.Equal(t, 300*time.Second, cfg.CacheTTL)
	assert.Equal(t, 120000, cfg.MaxPromptChars)
	assert.Zero(t, cfg.FetchTimeout)
	assert.False(t, cfg.CacheEnabled())
	assert.False(t, cfg.OtelEnabled)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9090")
	t.Setenv("GITHUB_API_URL", "http://localhost:8081")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("CACHE_TTL", "2m")
	t.Setenv("FETCH_TIMEOUT", "45s")
	t.Setenv("FETCH_MAX_DEPTH", "12")
	t.Setenv("FETCH_CONCURRENCY", "8")
	t.Setenv("FETCH_FAIL_ON_MISSING_CONTENT", "true")
	t.Setenv("OTEL_ENABLED", "true")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "http://localhost:8081", cfg.GithubAPIURL)
	assert.True(t, cfg.CacheEnabled())
	assert.Equal(t, 2*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 45*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 12, cfg.FetchMaxDepth)
	assert.Equal(t, 8, cfg.FetchConcurrency)
	assert.True(t, cfg.FetchFailOnMissingContent)
	assert.True(t, cfg.OtelEnabled)
}

func TestLoad_MissingCredentials(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("OPENAI_API_KEY", "")

	_, err := config.Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "GITHUB_TOKEN")
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestLoad_NegativeLimit(t *testing.T) {
	setRequired(t)
	t.Setenv("FETCH_MAX_ENTRIES", "-1")

	_, err := config.Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "FETCH_MAX_ENTRIES")
}

func TestLoad_BadDuration(t *testing.T) {
	setRequired(t)
	t.Setenv("CACHE_TTL", "soon")

	_, err := config.Load()

	assert.Error(t, err)
}
