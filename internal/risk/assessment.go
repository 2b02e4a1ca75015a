package risk

import (
	"maps"
	"time"

	"github.com/google/uuid"
)

// NewAssessment classifies metrics and stamps the result for a student.
func NewAssessment(studentID string, m Metrics, factors []string, now time.Time, opts ...Option) (Assessment, error) {
	c, err := Classify(m, opts...)
	if err != nil {
		return Assessment{}, err
	}
	return c.Assessment(studentID, m, factors, now), nil
}

// Assessment stamps an already computed classification of m.
func (c Classification) Assessment(studentID string, m Metrics, factors []string, now time.Time) Assessment {
	tags := make([]string, len(factors))
	copy(tags, factors)

	return Assessment{
		ID:        uuid.New().String(),
		StudentID: studentID,
		Timestamp: now.UTC().Truncate(time.Millisecond),
		Metrics:   m.Clone(),
		Grades:    maps.Clone(c.Grades),
		RiskScore: c.RiskScore,
		RiskLevel: c.RiskLevel,
		Factors:   tags,
	}
}
