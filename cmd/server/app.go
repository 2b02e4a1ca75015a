package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/ZanzyTHEbar/student-risk-meter/internal/adapters"
	"github.com/ZanzyTHEbar/student-risk-meter/internal/cache"
	"github.com/ZanzyTHEbar/student-risk-meter/internal/config"
	"github.com/ZanzyTHEbar/student-risk-meter/internal/dashboard"
	"github.com/ZanzyTHEbar/student-risk-meter/internal/database"
	"github.com/ZanzyTHEbar/student-risk-meter/internal/encoding"
	apperrors "github.com/ZanzyTHEbar/student-risk-meter/internal/errors"
	"github.com/ZanzyTHEbar/student-risk-meter/internal/history"
	"github.com/ZanzyTHEbar/student-risk-meter/internal/middleware"
	"github.com/ZanzyTHEbar/student-risk-meter/internal/monitoring"
	"github.com/ZanzyTHEbar/student-risk-meter/internal/ratelimit"
	"github.com/ZanzyTHEbar/student-risk-meter/internal/security"
	"github.com/ZanzyTHEbar/student-risk-meter/internal/students"
)

const version = "1.0.0"

// app holds every long-lived component of the server
type app struct {
	cfg       *config.Config
	logger    *monitoring.Logger
	metrics   *monitoring.Metrics
	prom      *monitoring.Prometheus
	memory    *monitoring.MemoryMonitor
	db        *database.DB
	local     *students.Service
	remote    *adapters.StudentDataClient
	redis     *ratelimit.RedisClient
	limiter   *ratelimit.RateLimiter
	backend   history.Backend
	dashboard *dashboard.Service
	security  *security.SecurityMiddleware
	profiles  *security.ProfileTokens
	catalog   *cache.ResponseCache
	compress  *middleware.CompressionMiddleware
	started   time.Time
}

// newApp wires the components described by cfg
func newApp(ctx context.Context, cfg *config.Config, logger *monitoring.Logger) (*app, error) {
	a := &app{
		cfg:      cfg,
		logger:   logger,
		metrics:  monitoring.NewMetrics(),
		prom:     monitoring.NewPrometheus(),
		catalog:  cache.NewResponseCache(15 * time.Minute),
		compress: middleware.NewCompressionMiddleware(middleware.DefaultCompressionConfig()),
		started:  time.Now(),
	}
	a.memory = monitoring.NewMemoryMonitor(a.metrics, logger, 30*time.Second, 0.9)

	if err := a.openStudentData(cfg); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.openHistory(ctx, cfg); err != nil {
		a.Close()
		return nil, err
	}

	a.limiter = ratelimit.NewRateLimiter(a.redis, ratelimit.Config{PerMinute: cfg.RateLimit.PerMinute}, a.metrics)

	secCfg := security.DefaultSecurityConfig()
	secCfg.EnableHSTS = cfg.SecureCookie
	a.security = security.NewSecurityMiddleware(secCfg)

	secret := cfg.JWTSecret
	if secret == "" {
		generated, err := security.GenerateNonce()
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to generate jwt secret: %w", err)
		}
		secret = generated
		slog.Warn("jwt_secret not configured, profile cookies will not survive a restart")
	}
	profiles, err := security.NewProfileTokens(secret, 30*24*time.Hour, cfg.SecureCookie)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.profiles = profiles

	var source students.Source = a.local
	if a.remote != nil {
		source = a.remote
	}
	a.dashboard = dashboard.NewService(dashboard.Options{
		Source:     source,
		History:    history.NewRegistry(a.backend),
		Sessions:   dashboard.NewSessionStore(cfg.SessionTTL),
		Metrics:    a.metrics,
		Prometheus: a.prom,
		Logger:     logger,
	})

	return a, nil
}

func (a *app) openStudentData(cfg *config.Config) error {
	if cfg.Remote() {
		a.remote = adapters.NewStudentDataClient(cfg.StudentData.URL, cfg.StudentData.Timeout)
		slog.Info("Using remote student data service", "url", cfg.StudentData.URL)
		return nil
	}

	db, err := database.NewDB(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	a.db = db
	a.local = students.NewService(database.NewRepository(db), nil)
	return nil
}

func (a *app) openHistory(ctx context.Context, cfg *config.Config) error {
	if cfg.Redis.Addr != "" {
		rc, err := ratelimit.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			slog.Warn("Redis unavailable", "addr", cfg.Redis.Addr, "error", err)
		}
		a.redis = rc
	}

	if cfg.History.Backend == history.BackendRedis {
		if !a.redis.IsEnabled() {
			return apperrors.NewConfigurationError("history backend redis requires a reachable redis server", nil)
		}
		a.backend = history.NewRedisBackendWithClient(a.redis.GetClient())
		return nil
	}

	backend, err := history.OpenBackend(ctx, cfg.History.Backend, history.BackendOptions{
		Dir: filepath.Join(cfg.DataDir, "history"),
	})
	if err != nil {
		return fmt.Errorf("failed to open history backend: %w", err)
	}
	a.backend = backend
	return nil
}

// Run starts the background workers until ctx is cancelled
func (a *app) Run(ctx context.Context) {
	go a.memory.Run(ctx)
	go a.dashboard.Sessions().Run(ctx, time.Minute)
}

// stats gathers the component statistics served on /metrics
func (a *app) stats() map[string]interface{} {
	stats := map[string]interface{}{
		"app":         a.metrics.GetStats(),
		"sessions":    a.dashboard.Sessions().Stats(),
		"catalog":     a.catalog.Stats(),
		"rate_limit":  a.limiter.GetStats(),
		"compression": a.compress.GetStats(),
		"codec":       encoding.Default().Stats(),
		"uptime":      time.Since(a.started).Round(time.Second).String(),
	}
	if a.db != nil {
		stats["database"] = a.db.GetPoolStats()
	}
	if a.remote != nil {
		stats["student_data"] = a.remote.Stats()
	}
	if a.redis.IsEnabled() {
		stats["redis"] = a.redis.GetPoolStats()
	}
	return stats
}

// health checks the dependencies a request may touch
func (a *app) health(ctx context.Context) (map[string]interface{}, bool) {
	services := map[string]interface{}{}
	healthy := true

	check := func(name string, err error) {
		if err != nil {
			services[name] = map[string]interface{}{"status": "down", "error": err.Error()}
			healthy = false
			return
		}
		services[name] = map[string]interface{}{"status": "up"}
	}

	if a.db != nil {
		check("database", a.db.PingContext(ctx))
	}
	if a.redis.IsEnabled() {
		check("redis", a.redis.HealthCheck(ctx))
	}
	if a.remote != nil {
		state := a.remote.Stats()["circuit_breaker_state"]
		services["student_data"] = map[string]interface{}{"status": "up", "circuit_breaker": state}
		if state == "open" {
			services["student_data"] = map[string]interface{}{"status": "down", "circuit_breaker": state}
			healthy = false
		}
	}
	services["history"] = map[string]interface{}{"status": "up", "backend": a.cfg.History.Backend}

	return services, healthy
}

// Close releases every resource that was opened
func (a *app) Close() {
	if a.limiter != nil {
		a.limiter.Close()
	}
	if closer, ok := a.backend.(interface{ Close() error }); ok && a.cfg.History.Backend != history.BackendRedis {
		apperrors.SafeClose(closer, "history backend")
	}
	if a.redis != nil {
		apperrors.SafeClose(a.redis, "redis client")
	}
	if a.remote != nil {
		apperrors.SafeClose(a.remote, "student data client")
	}
	if a.db != nil {
		apperrors.SafeClose(a.db, "database")
	}
}
