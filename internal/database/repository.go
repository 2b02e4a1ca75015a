package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ZanzyTHEbar/student-risk-meter/internal/risk"
)

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("record not found")

// Repository handles database operations
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// StudentExists reports whether a student id is taken
func (r *Repository) StudentExists(ctx context.Context, id string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM students WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check student: %w", err)
	}
	return n > 0, nil
}

// GetStudent loads a student by id
func (r *Repository) GetStudent(ctx context.Context, id string) (*Student, error) {
	var s Student
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, grade_level, created_at
		FROM students
		WHERE id = ?
	`, id).Scan(&s.ID, &s.Name, &s.GradeLevel, &s.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query student: %w", err)
	}
	return &s, nil
}

// CreateStudent stores a new student together with its initial assessment
func (r *Repository) CreateStudent(ctx context.Context, s *Student, initial *StudentAssessment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO students (id, name, grade_level, created_at)
		VALUES (?, ?, ?, ?)
	`, s.ID, s.Name, s.GradeLevel, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create student: %w", err)
	}

	if initial != nil {
		if err := insertAssessment(ctx, tx, initial); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit student: %w", err)
	}
	return nil
}

// InsertAssessment stores a computed assessment
func (r *Repository) InsertAssessment(ctx context.Context, a *StudentAssessment) error {
	return insertAssessment(ctx, r.db, a)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertAssessment(ctx context.Context, db execer, a *StudentAssessment) error {
	patterns, err := json.Marshal(a.Patterns)
	if err != nil {
		return fmt.Errorf("failed to encode patterns: %w", err)
	}
	factors, err := json.Marshal(a.Factors)
	if err != nil {
		return fmt.Errorf("failed to encode factors: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO student_assessments (
			id, student_id, academic_performance, attendance_rate,
			behavioral_incidents, social_emotional_score, patterns, factors, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.StudentID,
		nullFloat(a.Metrics.AcademicPerformance), nullFloat(a.Metrics.AttendanceRate),
		nullInt(a.Metrics.BehavioralIncidents), nullFloat(a.Metrics.SocialEmotionalScore),
		string(patterns), string(factors), a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert assessment: %w", err)
	}
	return nil
}

// LatestAssessment returns the newest assessment of a student, or nil when
// the student has none
func (r *Repository) LatestAssessment(ctx context.Context, studentID string) (*StudentAssessment, error) {
	var (
		a                         StudentAssessment
		academic, attendance, soc sql.NullFloat64
		incidents                 sql.NullInt64
		patternsJSON, factorsJSON string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, student_id, academic_performance, attendance_rate,
			behavioral_incidents, social_emotional_score, patterns, factors, created_at
		FROM student_assessments
		WHERE student_id = ?
		ORDER BY created_at DESC
		LIMIT 1
	`, studentID).Scan(
		&a.ID, &a.StudentID, &academic, &attendance,
		&incidents, &soc, &patternsJSON, &factorsJSON, &a.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query assessment: %w", err)
	}

	a.Metrics = risk.Metrics{
		AcademicPerformance:  floatPtr(academic),
		AttendanceRate:       floatPtr(attendance),
		BehavioralIncidents:  intPtr(incidents),
		SocialEmotionalScore: floatPtr(soc),
	}
	if err := json.Unmarshal([]byte(patternsJSON), &a.Patterns); err != nil {
		return nil, fmt.Errorf("failed to decode patterns: %w", err)
	}
	if err := json.Unmarshal([]byte(factorsJSON), &a.Factors); err != nil {
		return nil, fmt.Errorf("failed to decode factors: %w", err)
	}
	return &a, nil
}

// CountStudents returns the number of stored students
func (r *Repository) CountStudents(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM students`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count students: %w", err)
	}
	return n, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
