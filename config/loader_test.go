package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, 9091, cfg.Server.MetricsPort)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)

	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	assert.Equal(t, "gateway", cfg.Mongo.Database)

	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 0, cfg.Redis.DB)

	assert.True(t, cfg.Providers.CerebrasEnabled)
	assert.True(t, cfg.Providers.MistralEnabled)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoader_LoadDefaults(t *testing.T) {
	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, "gateway", cfg.Mongo.Database)
}

func TestLoader_LoadMissingFile_FallsBackToDefaults(t *testing.T) {
	cfg, err := NewLoader().WithConfigPath("/nonexistent/path/config.yaml").Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.HTTPPort)
}

func TestLoader_LoadFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlContent := `
server:
  http_port: 9000
mongo:
  uri: "mongodb://mongo-host:27017"
  database: "gateway_test"
redis:
  addr: "redis-host:6380"
providers:
  cerebras_enabled: true
  mistral_enabled: false
log:
  level: "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o644))

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.HTTPPort)
	assert.Equal(t, "mongodb://mongo-host:27017", cfg.Mongo.URI)
	assert.Equal(t, "gateway_test", cfg.Mongo.Database)
	assert.Equal(t, "redis-host:6380", cfg.Redis.Addr)
	assert.True(t, cfg.Providers.CerebrasEnabled)
	assert.False(t, cfg.Providers.MistralEnabled)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoader_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  http_port: 9000\n"), 0o644))

	t.Setenv("GATEWAY_SERVER_HTTP_PORT", "7000")

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.HTTPPort)
}

func TestLoader_CustomEnvPrefix(t *testing.T) {
	t.Setenv("CUSTOM_SERVER_HTTP_PORT", "6000")

	cfg, err := NewLoader().WithEnvPrefix("CUSTOM").Load()
	require.NoError(t, err)
	assert.Equal(t, 6000, cfg.Server.HTTPPort)
}

func TestLoader_ValidatorRuns(t *testing.T) {
	called := false
	_, err := NewLoader().WithValidator(func(c *Config) error {
		called = true
		return nil
	}).Load()
	require.NoError(t, err)
	assert.True(t, called)
}

func TestLoader_ValidatorAcceptsDefaultConfig(t *testing.T) {
	_, err := NewLoader().WithValidator(func(c *Config) error {
		return c.Validate()
	}).WithEnvPrefix("UNUSED").Load()
	// defaults enable providers and set a mongo URI, so this should pass
	require.NoError(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid default", func(c *Config) {}, false},
		{"bad http port", func(c *Config) { c.Server.HTTPPort = 0 }, true},
		{"missing mongo uri", func(c *Config) { c.Mongo.URI = "" }, true},
		{"no providers enabled", func(c *Config) {
			c.Providers.CerebrasEnabled = false
			c.Providers.MistralEnabled = false
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMustLoad_PanicsOnInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  http_port: [not a number]\n"), 0o644))

	assert.Panics(t, func() {
		MustLoad(path)
	})
}
