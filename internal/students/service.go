package students

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ZanzyTHEbar/student-risk-meter/internal/database"
)

const maxIDAttempts = 10

// Repository is the persistence the service needs.
type Repository interface {
	StudentExists(ctx context.Context, id string) (bool, error)
	GetStudent(ctx context.Context, id string) (*database.Student, error)
	CreateStudent(ctx context.Context, s *database.Student, initial *database.StudentAssessment) error
	InsertAssessment(ctx context.Context, a *database.StudentAssessment) error
	LatestAssessment(ctx context.Context, studentID string) (*database.StudentAssessment, error)
}

// Service is the in-process student-data service backed by the database.
type Service struct {
	repo Repository
	gen  *Generator
	now  func() time.Time
}

// NewService creates the service. A nil generator draws from a runtime seed.
func NewService(repo Repository, gen *Generator) *Service {
	if gen == nil {
		gen = NewGenerator(nil)
	}
	return &Service{repo: repo, gen: gen, now: time.Now}
}

// FetchStudent returns a student and their newest assessment, if any.
func (s *Service) FetchStudent(ctx context.Context, id string) (*Record, error) {
	st, err := s.repo.GetStudent(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, &NotFoundError{StudentID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load student %s: %w", id, err)
	}

	rec := &Record{ID: st.ID, Name: st.Name, GradeLevel: st.GradeLevel}

	latest, err := s.repo.LatestAssessment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load assessment for %s: %w", id, err)
	}
	if latest != nil {
		rec.LatestAssessment = &LatestAssessment{
			Metrics:  latest.Metrics,
			Patterns: latest.Patterns,
			Factors:  latest.Factors,
		}
	}
	return rec, nil
}

// GenerateStudent creates a synthetic student with an initial assessment.
func (s *Service) GenerateStudent(ctx context.Context) (*Generated, error) {
	id, err := s.uniqueID(ctx)
	if err != nil {
		return nil, err
	}

	st := &database.Student{
		ID:         id,
		Name:       s.gen.Name(),
		GradeLevel: s.gen.GradeLevel(),
		CreatedAt:  s.now().UTC(),
	}
	metrics := s.gen.InitialMetrics()
	patterns := PatternsFor(metrics)

	if err := s.repo.CreateStudent(ctx, st, database.NewStudentAssessment(id, metrics, patterns, nil)); err != nil {
		return nil, fmt.Errorf("failed to store generated student: %w", err)
	}

	slog.Info("Generated student", "student_id", id, "grade_level", st.GradeLevel)

	return &Generated{
		ID:         st.ID,
		Name:       st.Name,
		GradeLevel: st.GradeLevel,
		Metrics:    metrics,
		Patterns:   patterns,
	}, nil
}

// SubmitAssessment evaluates a factor selection for a student and stores the
// resulting metrics.
func (s *Service) SubmitAssessment(ctx context.Context, studentID string, factors []string) (*Evaluation, error) {
	exists, err := s.repo.StudentExists(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &NotFoundError{StudentID: studentID}
	}

	eval := s.gen.Evaluate(factors)

	row := database.NewStudentAssessment(studentID, eval.Metrics, eval.Patterns, factors)
	if err := s.repo.InsertAssessment(ctx, row); err != nil {
		return nil, fmt.Errorf("failed to store assessment: %w", err)
	}

	slog.Info("Student assessment evaluated",
		"student_id", studentID,
		"factor_count", len(factors),
		"patterns", eval.Patterns)

	return &eval, nil
}

func (s *Service) uniqueID(ctx context.Context) (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := s.gen.StudentID()
		exists, err := s.repo.StudentExists(ctx, id)
		if err != nil {
			return "", err
		}
		if !exists {
			return id, nil
		}
	}
	return "", fmt.Errorf("no free student id after %d attempts", maxIDAttempts)
}
