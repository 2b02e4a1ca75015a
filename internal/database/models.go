package database

import (
	"time"

	"github.com/google/uuid"

	"github.com/ZanzyTHEbar/student-risk-meter/internal/risk"
)

// Student is a student record owned by the student-data service
type Student struct {
	ID         string    `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	GradeLevel int       `json:"grade_level" db:"grade_level"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// StudentAssessment is one set of server-computed metrics for a student
type StudentAssessment struct {
	ID        string        `json:"id" db:"id"`
	StudentID string        `json:"student_id" db:"student_id"`
	Metrics   risk.Metrics  `json:"metrics"`
	Patterns  risk.Patterns `json:"patterns" db:"patterns"`
	Factors   []string      `json:"factors" db:"factors"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
}

// NewStudentAssessment creates a new assessment row
func NewStudentAssessment(studentID string, metrics risk.Metrics, patterns risk.Patterns, factors []string) *StudentAssessment {
	if patterns == nil {
		patterns = risk.Patterns{}
	}
	if factors == nil {
		factors = []string{}
	}
	return &StudentAssessment{
		ID:        uuid.New().String(),
		StudentID: studentID,
		Metrics:   metrics,
		Patterns:  patterns,
		Factors:   factors,
		CreatedAt: time.Now().UTC(),
	}
}
