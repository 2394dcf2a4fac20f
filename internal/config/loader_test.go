package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestLoadFrom_DefaultsWithoutFiles(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Generation.MaxAttempts)
	assert.Equal(t, 30*time.Second, cfg.Generation.BaseTimeout)
	assert.Equal(t, 10*time.Second, cfg.Generation.TimeoutStep)
	assert.Equal(t, time.Second, cfg.Generation.Backoff.Initial)
	assert.Equal(t, 3, cfg.Retrieval.Limit)
	assert.Equal(t, 10, cfg.Quota.DefaultMonthlyLimit)
	assert.Equal(t, 2, cfg.Validation.LenientTolerance)
	assert.Equal(t, "---SCRIPT START---", cfg.Script.BodyStart)
	assert.Equal(t, 40, cfg.Script.LengthTiers["medium"])
	assert.Equal(t, PendingBackendAuto, cfg.Pending.Backend)
	assert.Equal(t, 10*time.Minute, cfg.Pending.TTL)
}

func TestLoadFrom_EnvOverlayAndPlaceholders(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("APP_ENV", "staging")
	t.Setenv("TEST_OPENAI_KEY", "sk-test")

	writeFile(t, dir, "config.yaml", `
llm:
  default_provider: openai
  providers:
    openai:
      api_key: ${TEST_OPENAI_KEY}
      model: ${TEST_MODEL_UNSET:gpt-4o-mini}
quota:
  default_monthly_limit: 5
`)
	writeFile(t, dir, "config.staging.yaml", `
quota:
  default_monthly_limit: -1
validation:
  fail_on_mismatch: true
`)

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.LLM.Providers["openai"].APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Providers["openai"].Model)
	assert.Equal(t, -1, cfg.Quota.DefaultMonthlyLimit)
	assert.True(t, cfg.Validation.FailOnMismatch)
}

func TestLoadFrom_BrokenYAML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("APP_ENV", "test")
	writeFile(t, dir, "config.yaml", "quota: [unterminated")

	_, err := LoadFrom(dir)
	assert.Error(t, err)
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("EXPAND_SET", "value")

	assert.Equal(t, "value", expandEnv("${EXPAND_SET}"))
	assert.Equal(t, "value", expandEnv("${EXPAND_SET:fallback}"))
	assert.Equal(t, "fallback", expandEnv("${EXPAND_UNSET:fallback}"))
	assert.Equal(t, "", expandEnv("${EXPAND_UNSET:}"))
	assert.Equal(t, "${EXPAND_UNSET}", expandEnv("${EXPAND_UNSET}"))
}
