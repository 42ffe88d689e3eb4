package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "webpilot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "target_url: https://app.local\n"))
	require.NoError(t, err)

	assert.Equal(t, "https://app.local", cfg.TargetURL)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 1280, cfg.Browser.ViewportWidth)
	assert.Equal(t, 1, cfg.MaxStepRetries)
	assert.Equal(t, "gpt-4o", cfg.Planner.Model)
	assert.Equal(t, 6000, cfg.Planner.TokenBudget)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
target_url: https://staging.example.com
max_step_retries: 3
allowed_hosts:
  - "*.example.com"
browser:
  headless: false
  viewport_width: 1920
  viewport_height: 1080
planner:
  model: gpt-4o-mini
  token_budget: 4000
`))
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.MaxStepRetries)
	assert.Equal(t, []string{"*.example.com"}, cfg.AllowedHosts)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 1920, cfg.Browser.ViewportWidth)
	assert.Equal(t, "gpt-4o-mini", cfg.Planner.Model)
	assert.Equal(t, 4000, cfg.Planner.TokenBudget)
}

func TestLoad_RequiresTargetURL(t *testing.T) {
	_, err := Load(writeConfig(t, "max_step_retries: 2\n"))
	assert.ErrorContains(t, err, "target_url")
}

func TestLoad_RejectsNegativeRetries(t *testing.T) {
	_, err := Load(writeConfig(t, "target_url: https://a\nmax_step_retries: -1\n"))
	assert.ErrorContains(t, err, "max_step_retries")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
