package ratelimit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/student-risk-meter/internal/monitoring"
)

func newFallbackLimiter(t *testing.T) (*RateLimiter, *monitoring.Metrics) {
	t.Helper()
	metrics := monitoring.NewMetrics()
	limiter := NewRateLimiter(nil, Config{PerMinute: 5}, metrics)
	t.Cleanup(limiter.Close)
	return limiter, metrics
}

func newRedisLimiter(t *testing.T) (*RateLimiter, *miniredis.Miniredis, *monitoring.Metrics) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	metrics := monitoring.NewMetrics()
	limiter := NewRateLimiter(WrapRedisClient(client), Config{PerMinute: 5}, metrics)
	t.Cleanup(limiter.Close)
	return limiter, mr, metrics
}

func TestRateLimiterFallbackMode(t *testing.T) {
	limiter, metrics := newFallbackLimiter(t)
	ctx := context.Background()
	r := PerMinute(5)

	for i := 0; i < 5; i++ {
		result, err := limiter.Allow(ctx, "test:profile:123", r)
		require.NoError(t, err)
		assert.True(t, result.Allowed, "Request %d should be allowed", i+1)
		assert.Equal(t, 5, result.Limit)
	}

	result, err := limiter.Allow(ctx, "test:profile:123", r)
	require.NoError(t, err)
	assert.False(t, result.Allowed, "6th request should be blocked")
	assert.Greater(t, result.RetryAfter, time.Duration(0))

	other, err := limiter.Allow(ctx, "test:profile:456", r)
	require.NoError(t, err)
	assert.True(t, other.Allowed)

	assert.EqualValues(t, 7, metrics.GetRateLimitStats()["fallback_count"])
}

func TestRateLimiterRejectsInvalidRate(t *testing.T) {
	limiter, _ := newFallbackLimiter(t)
	_, err := limiter.Allow(context.Background(), "k", Rate{})
	assert.Error(t, err)
}

func TestRateLimiterRedis(t *testing.T) {
	limiter, _, metrics := newRedisLimiter(t)
	ctx := context.Background()
	r := PerMinute(3)

	for i := 0; i < 3; i++ {
		result, err := limiter.Allow(ctx, "test:redis", r)
		require.NoError(t, err)
		assert.True(t, result.Allowed, "Request %d should be allowed", i+1)
	}

	result, err := limiter.Allow(ctx, "test:redis", r)
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Greater(t, result.RetryAfter, time.Duration(0))

	require.NoError(t, limiter.Reset(ctx, "test:redis"))
	result, err = limiter.Allow(ctx, "test:redis", r)
	require.NoError(t, err)
	assert.True(t, result.Allowed)

	assert.EqualValues(t, 0, metrics.GetRateLimitStats()["fallback_count"])
	assert.Equal(t, true, limiter.GetStats()["redis_enabled"])
}

func TestRateLimiterFallsBackWhenRedisFails(t *testing.T) {
	limiter, mr, metrics := newRedisLimiter(t)
	mr.Close()

	result, err := limiter.Allow(context.Background(), "test:down", PerMinute(2))
	require.NoError(t, err)
	assert.True(t, result.Allowed)

	stats := metrics.GetRateLimitStats()
	assert.EqualValues(t, 1, stats["redis_errors"])
	assert.EqualValues(t, 1, stats["fallback_count"])
}

func TestSweepRemovesIdleLimiters(t *testing.T) {
	limiter, _ := newFallbackLimiter(t)
	_, err := limiter.Allow(context.Background(), "idle", PerMinute(1))
	require.NoError(t, err)

	assert.Equal(t, 0, limiter.sweep(time.Now()))
	assert.Equal(t, 1, limiter.sweep(time.Now().Add(2*time.Hour)))
	assert.Equal(t, 0, limiter.GetStats()["fallback_limiters"])
}

func TestEndpointMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter, metrics := newFallbackLimiter(t)

	router := gin.New()
	router.POST("/api/assess",
		limiter.EndpointMiddleware("assess", PerMinute(2), func(c *gin.Context) string { return c.GetHeader("X-Profile") }),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	send := func(profile string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/assess", nil)
		req.Header.Set("X-Profile", profile)
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send("a").Code)
	w := send("a")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))

	w = send("a")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "rate_limit", body["category"])

	assert.Equal(t, http.StatusOK, send("b").Code)
	assert.EqualValues(t, 1, metrics.GetRateLimitStats()["blocks"])
}
