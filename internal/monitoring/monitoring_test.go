package monitoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestLoggerWritesTimestampKey(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.LevelInfo, &buf)

	logger.AssessmentLogger("p1", "12345678", "High", 0.82, 2, nil)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Contains(t, entry, "timestamp")
	assert.NotContains(t, entry, "time")
	assert.Equal(t, "Assessment Recorded", entry["msg"])
	assert.Equal(t, "High", entry["risk_level"])
}

func TestHistoryLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.LevelInfo, &buf)

	logger.HistoryLogger("append", "studentRiskData", 3, nil)
	assert.Empty(t, buf.String())

	logger.HistoryLogger("append", "studentRiskData", 0, errors.New("disk full"))
	assert.Contains(t, buf.String(), "disk full")
}

func TestMetricsStats(t *testing.T) {
	m := NewMetrics()
	m.IncrementRequest()
	m.IncrementRequest()
	m.IncrementError()
	m.IncrementCacheHit()
	m.IncrementCacheMiss()
	m.RecordAssessment("High")
	m.RecordAssessment("High")
	m.RecordAssessment("Low")
	m.RecordExternalAPIRequest("fetch_student", false)
	m.IncrementRateLimitBlock("/api/assess")
	for i := 1; i <= 100; i++ {
		m.RecordResponseTime(time.Duration(i) * time.Millisecond)
	}

	stats := m.GetStats()
	assert.EqualValues(t, 2, stats["total_requests"])
	assert.Equal(t, 50.0, stats["error_rate_percent"])
	assert.Equal(t, 50.0, stats["cache_hit_rate_percent"])
	assert.EqualValues(t, 3, stats["assessments_recorded"])
	assert.Equal(t, map[string]int64{"High": 2, "Low": 1}, stats["assessments_by_level"])
	assert.Equal(t, 50*time.Millisecond, m.GetPercentileResponseTime(50))
	assert.EqualValues(t, 1, m.GetRateLimitStats()["blocks"])
}

func TestMonitoringMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.LevelInfo, &buf)
	metrics := NewMetrics()
	prom := NewPrometheus()

	router := gin.New()
	router.Use(RequestIDMiddleware(), MonitoringMiddleware(metrics, prom, logger))
	router.GET("/api/thing/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/thing/7", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.EqualValues(t, 1, metrics.GetStats()["error_count"])
	assert.Contains(t, buf.String(), "HTTP Request")

	pw := httptest.NewRecorder()
	prom.Handler().ServeHTTP(pw, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := pw.Body.String()
	assert.Contains(t, body, `risk_http_requests_total{method="GET",route="/api/thing/:id",status="404"} 1`)
}

func TestRequestIDIsPreserved(t *testing.T) {
	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetHeader(RequestIDHeader)) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	router.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestPrometheusObserveAssessment(t *testing.T) {
	prom := NewPrometheus()
	prom.ObserveAssessment("Medium", 0.5)
	prom.ObserveStudentData("fetch_student", 10*time.Millisecond, errors.New("boom"))

	w := httptest.NewRecorder()
	prom.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `risk_assessments_total{level="Medium"} 1`))
	assert.True(t, strings.Contains(body, `risk_student_data_requests_total{operation="fetch_student",outcome="error"} 1`))
}

func TestSuspiciousPatterns(t *testing.T) {
	assert.True(t, containsSQLInjectionPatterns("id=1 UNION SELECT password"))
	assert.False(t, containsSQLInjectionPatterns("profile=abc"))
	assert.True(t, containsSuspiciousUserAgent("Mozilla/5.0 sqlmap/1.7"))
	assert.False(t, containsSuspiciousUserAgent("Mozilla/5.0"))
}

func TestMemoryMonitorSample(t *testing.T) {
	metrics := NewMetrics()
	mm := NewMemoryMonitor(metrics, NewLogger(slog.LevelError, &bytes.Buffer{}), 0, 0)
	mm.Sample()
	assert.Greater(t, metrics.GetStats()["go_heap_sys_bytes"].(int64), int64(0))
}
