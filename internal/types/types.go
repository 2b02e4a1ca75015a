// Package types holds the request and response bodies of the HTTP API.
package types

import (
	"time"

	"github.com/ZanzyTHEbar/student-risk-meter/internal/risk"
)

// AssessRequest represents the request structure for the assess endpoint
type AssessRequest struct {
	StudentID string   `json:"studentId" example:"12345678"`
	Factors   []string `json:"factors" example:"declining_grades,poor_attendance"`
}

// ClassifyRequest classifies a metric set without touching history
type ClassifyRequest struct {
	Metrics risk.Metrics `json:"metrics"`
	Partial bool         `json:"partial"`
}

// CategorizeRequest groups factor tags into categories
type CategorizeRequest struct {
	Factors []string `json:"factors" example:"grades_declining,tardiness,peer_conflicts"`
}

// CategorizeResponse is the categorized and labelled factor selection
type CategorizeResponse struct {
	Categories risk.Categories `json:"categories"`
}

// RecordRequest records a client-measured assessment in history
type RecordRequest struct {
	StudentID string       `json:"studentId" binding:"required" example:"12345678"`
	Metrics   risk.Metrics `json:"metrics"`
	Factors   []string     `json:"factors"`
	Partial   bool         `json:"partial"`
}

// DistributionRequest computes the per-assessment distribution of a metric set
type DistributionRequest struct {
	Metrics risk.Metrics `json:"metrics"`
}

// HistoryResponse lists a profile's assessments
type HistoryResponse struct {
	Profile     string            `json:"profile"`
	Assessments []risk.Assessment `json:"assessments"`
	Count       int               `json:"count"`
}

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status    string                 `json:"status" example:"ok"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version" example:"1.0.0"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// MessageResponse is a plain acknowledgement
type MessageResponse struct {
	Message string `json:"message"`
}
