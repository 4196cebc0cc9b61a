package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aviroop07/NL2DATA-sub000/internal/config"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := config.LoadConfig(writeConfigFile(t, ""))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.Server.URL)
	assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
	assert.False(t, cfg.Auth.Enable)
	assert.Equal(t, 500*time.Millisecond, cfg.Fetch.BaseDelay)
	assert.Equal(t, 2.0, cfg.Fetch.Growth)
	assert.Equal(t, 8*time.Second, cfg.Fetch.MaxDelay)
	assert.Equal(t, 20, cfg.Fetch.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Stream.ReconnectBase)
	assert.Equal(t, 5, cfg.Stream.MaxAttempts)
	assert.Equal(t, 300, cfg.Trail.Capacity)
	assert.Equal(t, 5, cfg.Undo.Depth)
	assert.Equal(t, 5*time.Second, cfg.Suggest.Interval)
	assert.NotEmpty(t, cfg.Storage.DescriptionPath)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  url: https://pipeline.example.com/
  timeout: 10s
fetch:
  max_attempts: 3
trail:
  capacity: 50
log_level: debug
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	// Trailing slash is trimmed so URL joining stays predictable.
	assert.Equal(t, "https://pipeline.example.com", cfg.Server.URL)
	assert.Equal(t, 10*time.Second, cfg.Server.Timeout)
	assert.Equal(t, 3, cfg.Fetch.MaxAttempts)
	assert.Equal(t, 50, cfg.Trail.Capacity)
	assert.Equal(t, "debug", cfg.LogLevel)
	// Untouched sections keep their defaults.
	assert.Equal(t, 5, cfg.Undo.Depth)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("NL2DATA_SERVER_URL", "http://10.0.0.5:9000")

	cfg, err := config.LoadConfig(writeConfigFile(t, ""))
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:9000", cfg.Server.URL)
}

func TestLoadConfigMalformedFile(t *testing.T) {
	_, err := config.LoadConfig(writeConfigFile(t, "server: [not a map"))
	assert.Error(t, err)
}
