package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/student-risk-meter/internal/resilience"
	"github.com/ZanzyTHEbar/student-risk-meter/internal/students"
)

// submitRequest is the body of POST /data/students/{id}/assessments
type submitRequest struct {
	Factors []string `json:"factors"`
}

// StudentDataClient fetches student data from a remote student-data service
type StudentDataClient struct {
	baseURL string
	pool    *resilience.ConnectionPool
}

var _ students.Source = (*StudentDataClient)(nil)

// NewStudentDataClient creates a client for the service at baseURL
func NewStudentDataClient(baseURL string, timeout time.Duration) *StudentDataClient {
	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		FailureThreshold: 5,
		RecoveryTimeout:  30 * time.Second,
		SuccessThreshold: 2,
	})

	retry := resilience.DefaultRetryConfig()
	retry.RetryableErrors = func(err error) bool {
		var cbErr *resilience.CircuitBreakerError
		return !errors.As(err, &cbErr)
	}

	config := resilience.DefaultPoolConfig()
	if timeout > 0 {
		config.Timeout = timeout
	}

	return &StudentDataClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		pool:    resilience.NewConnectionPool(config, cb, retry),
	}
}

// FetchStudent fetches a student record and its latest assessment
func (c *StudentDataClient) FetchStudent(ctx context.Context, id string) (*students.Record, error) {
	resp, err := c.pool.DoRequest(ctx, http.MethodGet, c.studentURL(id), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch student %s: %w", id, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, &students.NotFoundError{StudentID: id}
	}
	if err := checkStatus(resp, http.StatusOK); err != nil {
		return nil, err
	}

	var record students.Record
	if err := json.Unmarshal(resp.Body, &record); err != nil {
		return nil, fmt.Errorf("failed to decode student: %w", err)
	}
	return &record, nil
}

// GenerateStudent asks the service to create a synthetic student
func (c *StudentDataClient) GenerateStudent(ctx context.Context) (*students.Generated, error) {
	resp, err := c.pool.DoRequest(ctx, http.MethodPost, c.baseURL+"/data/students", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate student: %w", err)
	}
	if err := checkStatus(resp, http.StatusCreated, http.StatusOK); err != nil {
		return nil, err
	}

	var generated students.Generated
	if err := json.Unmarshal(resp.Body, &generated); err != nil {
		return nil, fmt.Errorf("failed to decode generated student: %w", err)
	}
	return &generated, nil
}

// SubmitAssessment posts a factor selection and returns the evaluated metrics
func (c *StudentDataClient) SubmitAssessment(ctx context.Context, studentID string, factors []string) (*students.Evaluation, error) {
	if factors == nil {
		factors = []string{}
	}
	body, err := json.Marshal(submitRequest{Factors: factors})
	if err != nil {
		return nil, fmt.Errorf("failed to encode assessment: %w", err)
	}

	resp, err := c.pool.DoRequest(ctx, http.MethodPost, c.studentURL(studentID)+"/assessments", body,
		map[string]string{"Content-Type": "application/json"})
	if err != nil {
		return nil, fmt.Errorf("failed to submit assessment for %s: %w", studentID, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, &students.NotFoundError{StudentID: studentID}
	}
	if err := checkStatus(resp, http.StatusCreated, http.StatusOK); err != nil {
		return nil, err
	}

	var evaluation students.Evaluation
	if err := json.Unmarshal(resp.Body, &evaluation); err != nil {
		return nil, fmt.Errorf("failed to decode evaluation: %w", err)
	}
	return &evaluation, nil
}

// Stats returns transport statistics for the metrics endpoint
func (c *StudentDataClient) Stats() map[string]interface{} {
	return c.pool.GetStats()
}

// Close releases idle connections
func (c *StudentDataClient) Close() error {
	return c.pool.Close()
}

func (c *StudentDataClient) studentURL(id string) string {
	return c.baseURL + "/data/students/" + url.PathEscape(id)
}

func checkStatus(resp *resilience.Response, accepted ...int) error {
	for _, code := range accepted {
		if resp.StatusCode == code {
			return nil
		}
	}
	return fmt.Errorf("student data API error: status %d, body: %s", resp.StatusCode, string(resp.Body))
}
