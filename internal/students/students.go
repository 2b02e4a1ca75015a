// Package students implements the student-data service: it owns student
// records and turns a selection of risk factors into fresh metrics and
// behavioral patterns.
package students

import (
	"context"
	"errors"
	"fmt"

	"github.com/ZanzyTHEbar/student-risk-meter/internal/risk"
)

// NotFoundError reports an unknown student id.
type NotFoundError struct {
	StudentID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("student %s not found", e.StudentID)
}

// IsNotFound reports whether err carries a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// LatestAssessment is the newest server-side evaluation of a student.
type LatestAssessment struct {
	Metrics  risk.Metrics  `json:"metrics"`
	Patterns risk.Patterns `json:"patterns"`
	Factors  []string      `json:"factors"`
}

// Record is a student as returned by FetchStudent.
type Record struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	GradeLevel       int               `json:"grade_level"`
	LatestAssessment *LatestAssessment `json:"latest_assessment,omitempty"`
}

// Generated is a freshly created synthetic student.
type Generated struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	GradeLevel int           `json:"grade_level"`
	Metrics    risk.Metrics  `json:"metrics"`
	Patterns   risk.Patterns `json:"patterns"`
}

// Evaluation is the service's answer to a factor selection.
type Evaluation struct {
	Metrics  risk.Metrics  `json:"metrics"`
	Patterns risk.Patterns `json:"patterns"`
}

// Source is the student-data contract consumed by the dashboard. It is
// served in-process by Service or remotely over HTTP.
type Source interface {
	FetchStudent(ctx context.Context, id string) (*Record, error)
	GenerateStudent(ctx context.Context) (*Generated, error)
	SubmitAssessment(ctx context.Context, studentID string, factors []string) (*Evaluation, error)
}
