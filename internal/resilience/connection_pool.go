package resilience

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

// PoolConfig holds transport limits for a ConnectionPool
type PoolConfig struct {
	MaxIdle     int           `mapstructure:"max_idle"`
	MaxActive   int           `mapstructure:"max_active"`
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// DefaultPoolConfig returns the limits used by the student-data client
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxIdle:     10,
		MaxActive:   20,
		IdleTimeout: 30 * time.Second,
		Timeout:     10 * time.Second,
	}
}

// Response is a fully read HTTP response
type Response struct {
	StatusCode int
	Body       []byte
}

// ServerError is returned for 5xx responses so they count against the
// circuit breaker and are retried
type ServerError struct {
	StatusCode int
	Body       string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("upstream error: status %d: %s", e.StatusCode, e.Body)
}

// ConnectionPool shares one transport between callers, bounds the number of
// in-flight requests and guards them with a circuit breaker and retries
type ConnectionPool struct {
	client         *http.Client
	transport      *http.Transport
	slots          chan struct{}
	circuitBreaker *CircuitBreaker
	retry          RetryConfig

	requests atomic.Int64
	failures atomic.Int64
}

// NewConnectionPool creates a new connection pool with circuit breaker
func NewConnectionPool(config PoolConfig, cb *CircuitBreaker, retry RetryConfig) *ConnectionPool {
	def := DefaultPoolConfig()
	if config.MaxIdle <= 0 {
		config.MaxIdle = def.MaxIdle
	}
	if config.MaxActive <= 0 {
		config.MaxActive = def.MaxActive
	}
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = def.IdleTimeout
	}
	if config.Timeout <= 0 {
		config.Timeout = def.Timeout
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          config.MaxIdle,
		MaxConnsPerHost:       config.MaxActive,
		MaxIdleConnsPerHost:   max(1, config.MaxIdle/2),
		IdleConnTimeout:       config.IdleTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: config.Timeout,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &ConnectionPool{
		client:         &http.Client{Transport: transport, Timeout: config.Timeout},
		transport:      transport,
		slots:          make(chan struct{}, config.MaxActive),
		circuitBreaker: cb,
		retry:          retry,
	}
}

// DoRequest executes an HTTP request with circuit breaker protection and
// retries. Non-5xx responses are returned to the caller as-is.
func (cp *ConnectionPool) DoRequest(ctx context.Context, method, url string, body []byte, headers map[string]string) (*Response, error) {
	select {
	case cp.slots <- struct{}{}:
		defer func() { <-cp.slots }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var out *Response
	err := RetryWithConfig(ctx, cp.retry, func() error {
		return cp.circuitBreaker.Call(func() error {
			resp, err := cp.do(ctx, method, url, body, headers)
			if err != nil {
				return err
			}
			out = resp
			return nil
		})
	})
	if err != nil {
		cp.failures.Add(1)
		return nil, err
	}
	return out, nil
}

func (cp *ConnectionPool) do(ctx context.Context, method, url string, body []byte, headers map[string]string) (*Response, error) {
	cp.requests.Add(1)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := cp.client.Do(req)
	duration := time.Since(start)
	if err != nil {
		slog.Warn("Request failed", "url", url, "error", err, "duration_ms", duration.Milliseconds())
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	slog.Debug("Request completed", "url", url, "status", resp.StatusCode, "duration_ms", duration.Milliseconds())

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, &ServerError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}

// GetStats returns connection pool statistics
func (cp *ConnectionPool) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"in_flight":             len(cp.slots),
		"max_active":            cap(cp.slots),
		"requests":              cp.requests.Load(),
		"failures":              cp.failures.Load(),
		"circuit_breaker_state": cp.circuitBreaker.State().String(),
	}
}

// Close releases idle connections
func (cp *ConnectionPool) Close() error {
	cp.transport.CloseIdleConnections()
	slog.Info("Connection pool closed")
	return nil
}
