// Package config loads the application configuration from defaults, an
// optional config file, a .env file and RISK_ prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. RISK_REDIS_ADDR
const EnvPrefix = "RISK"

// Config is the resolved application configuration
type Config struct {
	Port         string            `mapstructure:"port"`
	DataDir      string            `mapstructure:"data_dir"`
	LogLevel     string            `mapstructure:"log_level"`
	History      HistoryConfig     `mapstructure:"history"`
	Redis        RedisConfig       `mapstructure:"redis"`
	StudentData  StudentDataConfig `mapstructure:"student_data"`
	JWTSecret    string            `mapstructure:"jwt_secret"`
	SecureCookie bool              `mapstructure:"secure_cookie"`
	RateLimit    RateLimitConfig   `mapstructure:"rate_limit"`
	CORS         CORSConfig        `mapstructure:"cors"`
	SessionTTL   time.Duration     `mapstructure:"session_ttl"`
}

// HistoryConfig selects the assessment history backend
type HistoryConfig struct {
	Backend string `mapstructure:"backend"`
}

// RedisConfig configures the shared redis client
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// StudentDataConfig points at a remote student-data service. An empty URL
// serves student data in-process from SQLite.
type StudentDataConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// RateLimitConfig bounds assess and generate requests per client
type RateLimitConfig struct {
	PerMinute int `mapstructure:"per_minute"`
}

// CORSConfig lists the allowed browser origins
type CORSConfig struct {
	Origins []string `mapstructure:"origins"`
}

// Remote reports whether student data comes from a remote service
func (c *Config) Remote() bool {
	return c.StudentData.URL != ""
}

// SetDefaults registers every key with its default value
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("data_dir", "./data")
	v.SetDefault("log_level", "info")
	v.SetDefault("history.backend", "file")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("student_data.url", "")
	v.SetDefault("student_data.timeout", 10*time.Second)
	v.SetDefault("jwt_secret", "")
	v.SetDefault("secure_cookie", false)
	v.SetDefault("rate_limit.per_minute", 30)
	v.SetDefault("cors.origins", []string{"http://localhost:8080", "http://localhost:5173"})
	v.SetDefault("session_ttl", time.Hour)
}

// Load resolves the configuration into v. configFile may be empty, in which
// case a risk.yaml in the working directory is used when present.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	loadDotEnv()
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("risk")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// comma separated env values arrive as a single element
	if len(cfg.CORS.Origins) == 1 && strings.Contains(cfg.CORS.Origins[0], ",") {
		cfg.CORS.Origins = splitList(cfg.CORS.Origins[0])
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the resolved values
func (c *Config) Validate() error {
	switch c.History.Backend {
	case "file", "memory":
	case "redis":
		if c.Redis.Addr == "" {
			return errors.New("history.backend redis requires redis.addr")
		}
	default:
		return fmt.Errorf("unknown history.backend %q", c.History.Backend)
	}

	if c.Port == "" {
		return errors.New("port must not be empty")
	}
	if c.RateLimit.PerMinute <= 0 {
		return fmt.Errorf("rate_limit.per_minute must be positive, got %d", c.RateLimit.PerMinute)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session_ttl must be positive, got %s", c.SessionTTL)
	}
	if c.StudentData.Timeout <= 0 {
		return fmt.Errorf("student_data.timeout must be positive, got %s", c.StudentData.Timeout)
	}
	if c.JWTSecret != "" && len(c.JWTSecret) < 16 {
		return errors.New("jwt_secret must be at least 16 characters")
	}
	return nil
}

func loadDotEnv() {
	if _, err := os.Stat(".env"); err != nil {
		return
	}
	if err := godotenv.Load(".env"); err != nil {
		slog.Warn("Failed to load .env file", "error", err)
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
