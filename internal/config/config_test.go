package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5001", cfg.Backend.BaseURL)
	assert.Equal(t, 60, cfg.Backend.TimeoutSecs)
	assert.Equal(t, "site-advisor/1.0", cfg.Backend.UserAgent)
	assert.Equal(t, 2, cfg.Retry.MaxAttempts)
	assert.Equal(t, 0, cfg.Retry.InitialBackoffMs)
	assert.Equal(t, 2000, cfg.Retry.MaxBackoffMs)
	assert.InDelta(t, 2.0, cfg.Retry.Multiplier, 0.001)
	assert.InDelta(t, 0.0, cfg.Retry.JitterFraction, 0.001)
	assert.Equal(t, 5, cfg.Circuit.FailureThreshold)
	assert.Equal(t, 30, cfg.Circuit.ResetTimeoutSecs)
	assert.InDelta(t, 0.0, cfg.RateLimit.RPS, 0.001)
	assert.Equal(t, 1, cfg.RateLimit.Burst)
	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
backend:
  base_url: http://advisor.internal:5001
retry:
  max_attempts: 3
  initial_backoff_ms: 250
log:
  level: debug
  format: console
server:
  port: 9090
  cors_origins:
    - http://localhost:3000
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://advisor.internal:5001", cfg.Backend.BaseURL)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, 250, cfg.Retry.InitialBackoffMs)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORSOrigins)
	// Defaults still apply for unset values
	assert.Equal(t, 5, cfg.Circuit.FailureThreshold)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
backend:
  base_url: http://from-file:5001
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))
	t.Setenv("ADVISOR_BACKEND_BASE_URL", "http://from-env:5001")
	t.Setenv("ADVISOR_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://from-env:5001", cfg.Backend.BaseURL)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)
	t.Setenv("ADVISOR_SERVER_PORT", "3000")
	t.Setenv("ADVISOR_RETRY_MAX_ATTEMPTS", "4")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Retry.MaxAttempts)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("backend: [unclosed"), 0644))

	_, err := Load()
	assert.Error(t, err)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "parse log level")
}

func validDefaults() *Config {
	return &Config{
		Backend: BackendConfig{BaseURL: "http://localhost:5001", TimeoutSecs: 60},
		Retry:   RetryConfig{MaxAttempts: 2, MaxBackoffMs: 2000, Multiplier: 2},
		Server:  ServerConfig{Port: 8090},
	}
}

func TestValidate_Defaults(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("client"))
	assert.NoError(t, cfg.Validate("serve"))
}

func TestValidate_BadBaseURL(t *testing.T) {
	cfg := validDefaults()
	cfg.Backend.BaseURL = "localhost:5001/api"

	err := cfg.Validate("client")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "backend.base_url")
}

func TestValidate_Retry(t *testing.T) {
	cfg := validDefaults()
	cfg.Retry.MaxAttempts = 0
	cfg.Retry.JitterFraction = 1.5

	err := cfg.Validate("client")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "retry.max_attempts must be >= 1")
	assert.Contains(t, err.Error(), "retry.jitter_fraction")
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	assert.NoError(t, cfg.Validate("client"))
	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
