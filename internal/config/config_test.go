package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "file", cfg.History.Backend)
	assert.Equal(t, 30, cfg.RateLimit.PerMinute)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, 10*time.Second, cfg.StudentData.Timeout)
	assert.False(t, cfg.Remote())
}

func TestLoadLayering(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	file := filepath.Join(dir, "risk.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
port: "9090"
history:
  backend: memory
rate_limit:
  per_minute: 5
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("RISK_LOG_LEVEL=debug\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("RISK_LOG_LEVEL") })

	t.Setenv("RISK_RATE_LIMIT_PER_MINUTE", "12")
	t.Setenv("RISK_STUDENT_DATA_URL", "http://students.internal")
	t.Setenv("RISK_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port, "config file overrides defaults")
	assert.Equal(t, "memory", cfg.History.Backend)
	assert.Equal(t, "debug", cfg.LogLevel, ".env is loaded")
	assert.Equal(t, 12, cfg.RateLimit.PerMinute, "environment overrides config file")
	assert.True(t, cfg.Remote())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.Origins)
}

func TestLoadExplicitFileMustExist(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load(viper.New(), "missing.yaml")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Port:        "8080",
			History:     HistoryConfig{Backend: "file"},
			RateLimit:   RateLimitConfig{PerMinute: 30},
			SessionTTL:  time.Hour,
			StudentData: StudentDataConfig{Timeout: time.Second},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown backend", mutate: func(c *Config) { c.History.Backend = "s3" }, wantErr: true},
		{name: "redis without addr", mutate: func(c *Config) { c.History.Backend = "redis" }, wantErr: true},
		{name: "redis with addr", mutate: func(c *Config) {
			c.History.Backend = "redis"
			c.Redis.Addr = "localhost:6379"
		}},
		{name: "zero rate", mutate: func(c *Config) { c.RateLimit.PerMinute = 0 }, wantErr: true},
		{name: "short secret", mutate: func(c *Config) { c.JWTSecret = "short" }, wantErr: true},
		{name: "zero session ttl", mutate: func(c *Config) { c.SessionTTL = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
