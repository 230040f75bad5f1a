package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", cfg.API.BaseURL)
	assert.Equal(t, 45*time.Second, cfg.API.Timeout)
	assert.Equal(t, 30*time.Second, cfg.API.HealthPollInterval)
	assert.Equal(t, "light", cfg.UI.Theme)
	assert.False(t, cfg.Chat.Mock)
	assert.NotEmpty(t, cfg.UI.StateDir)
}

func TestLoadExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "api:\n  base_url: https://dash.internal:9443\n  timeout: 10s\nui:\n  theme: dark\n  state_dir: " + dir + "\nchat:\n  mock: true\nlogging:\n  level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://dash.internal:9443", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, "dark", cfg.UI.Theme)
	assert.Equal(t, dir, cfg.UI.StateDir)
	assert.True(t, cfg.Chat.Mock)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadExplicitFileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("ENSURAX_API_BASE_URL", "http://override:8000")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://override:8000", cfg.API.BaseURL)
}
