package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "user-service/pkg/errors"
)

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(content), 0o600))
	return dir
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "default-api-key", cfg.Feature.APIKey)
	assert.True(t, cfg.Feature.FeatureFlag)

	assert.Equal(t, "8080", cfg.App.HTTPPort)
	assert.Equal(t, "50051", cfg.App.GRPCPort)
	assert.True(t, cfg.App.GRPCEnabled)
	assert.Equal(t, "9090", cfg.App.MetricsPort)
	assert.Equal(t, 10, cfg.App.ShutdownTimeoutSeconds)

	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 300, cfg.Redis.CacheTTL)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 10.0, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 20, cfg.RateLimit.BurstCapacity)

	assert.Equal(t, "console", cfg.Logger.Format)
	assert.Equal(t, "user-service", cfg.Logger.ServiceName)

	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("API_KEY", "secret")
	t.Setenv("FEATURE_FLAG", "false")
	t.Setenv("HTTP_PORT", "3000")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.Feature.APIKey)
	assert.False(t, cfg.Feature.FeatureFlag)
	assert.Equal(t, "3000", cfg.App.HTTPPort)
}

func TestLoadConfig_FromFile(t *testing.T) {
	dir := writeEnvFile(t, "API_KEY=from-file\nSTORAGE_DRIVER=sqlite\nREDIS_ENABLED=true\n")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.Feature.APIKey)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.True(t, cfg.Redis.Enabled)
	assert.True(t, cfg.Feature.FeatureFlag)
}

func TestLoadConfig_EnvWinsOverFile(t *testing.T) {
	dir := writeEnvFile(t, "API_KEY=from-file\n")
	t.Setenv("API_KEY", "from-env")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Feature.APIKey)
}

func TestLoadConfig_ProductionLogging(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.App.Env)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.True(t, cfg.Logger.EnableSampling)
}

func TestValidate(t *testing.T) {
	valid := func(t *testing.T) *Config {
		cfg, err := LoadConfig(t.TempDir())
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty api key", func(c *Config) { c.Feature.APIKey = "" }, "APIKey"},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "mongo" }, "Driver"},
		{"mysql without dsn", func(c *Config) { c.Storage.Driver = "mysql" }, "MySQLDSN"},
		{"non numeric port", func(c *Config) { c.App.HTTPPort = "http" }, "HTTPPort"},
		{"zero shutdown timeout", func(c *Config) { c.App.ShutdownTimeoutSeconds = 0 }, "ShutdownTimeoutSeconds"},
		{"rate limit without rps", func(c *Config) {
			c.RateLimit.Enabled = true
			c.RateLimit.RequestsPerSecond = 0
		}, "RequestsPerSecond"},
		{"bad log format", func(c *Config) { c.Logger.Format = "xml" }, "Format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid(t)
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, pkgerrors.IsValidation(err))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestValidate_MySQLWithDSN(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	cfg.Storage.Driver = "mysql"
	cfg.Storage.MySQLDSN = "user:pass@tcp(localhost:3306)/users?parseTime=true"
	assert.NoError(t, cfg.Validate())
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{Host: "h", Port: "5432", User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=h user=u password=p dbname=n port=5432 sslmode=disable", db.DSN())
}
