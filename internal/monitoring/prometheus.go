package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus holds the collectors exported on /metrics/prometheus. Each
// instance owns its registry so tests can build several.
type Prometheus struct {
	registry *prometheus.Registry

	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
	Assessments        *prometheus.CounterVec
	RiskScore          prometheus.Histogram
	HistoryErrors      *prometheus.CounterVec
	RateLimitBlocks    *prometheus.CounterVec
	StudentDataCalls   *prometheus.CounterVec
	StudentDataLatency *prometheus.HistogramVec
	ActiveSessions     prometheus.Gauge
}

// NewPrometheus registers the risk meter collectors on a fresh registry
func NewPrometheus() *Prometheus {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Prometheus{
		registry: reg,
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "risk_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "risk_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		Assessments: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "risk_assessments_total",
				Help: "Total number of recorded assessments by risk level",
			},
			[]string{"level"},
		),
		RiskScore: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "risk_assessment_score",
				Help:    "Distribution of aggregated risk scores",
				Buckets: prometheus.LinearBuckets(0, 0.1, 11),
			},
		),
		HistoryErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "risk_history_errors_total",
				Help: "Total number of failed history operations",
			},
			[]string{"operation"},
		),
		RateLimitBlocks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "risk_rate_limit_blocks_total",
				Help: "Total number of rate limited requests",
			},
			[]string{"endpoint"},
		),
		StudentDataCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "risk_student_data_requests_total",
				Help: "Total number of student-data calls",
			},
			[]string{"operation", "outcome"},
		),
		StudentDataLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "risk_student_data_request_duration_seconds",
				Help:    "Duration of student-data calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		ActiveSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "risk_active_sessions",
				Help: "Number of live dashboard sessions",
			},
		),
	}
}

// ObserveRequest records one HTTP request
func (p *Prometheus) ObserveRequest(method, route string, status int, duration time.Duration) {
	p.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveAssessment records one assessment
func (p *Prometheus) ObserveAssessment(level string, score float64) {
	p.Assessments.WithLabelValues(level).Inc()
	p.RiskScore.Observe(score)
}

// ObserveStudentData records one student-data call
func (p *Prometheus) ObserveStudentData(operation string, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	p.StudentDataCalls.WithLabelValues(operation, outcome).Inc()
	p.StudentDataLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// Registry exposes the underlying registry
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus exposition format
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}
