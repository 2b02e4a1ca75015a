package database

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/student-risk-meter/internal/risk"
)

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewRepository(Wrap(conn, 1, 1, time.Minute)), mock
}

func TestGetStudent(t *testing.T) {
	repo, mock := newMockRepository(t)
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery("SELECT id, name, grade_level, created_at").
		WithArgs("12345678").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "grade_level", "created_at"}).
			AddRow("12345678", "Ada Lovelace", 11, created))

	s, err := repo.GetStudent(context.Background(), "12345678")
	require.NoError(t, err)
	assert.Equal(t, &Student{ID: "12345678", Name: "Ada Lovelace", GradeLevel: 11, CreatedAt: created}, s)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetStudentNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery("SELECT id, name, grade_level, created_at").
		WithArgs("00000000").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetStudent(context.Background(), "00000000")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentExists(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery("SELECT COUNT\\(1\\) FROM students WHERE id").
		WithArgs("12345678").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	ok, err := repo.StudentExists(context.Background(), "12345678")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateStudent(t *testing.T) {
	repo, mock := newMockRepository(t)
	s := &Student{ID: "12345678", Name: "Ada Lovelace", GradeLevel: 10, CreatedAt: time.Now()}
	a := NewStudentAssessment(s.ID, risk.NewMetrics(0.9, 0.85, 1, 0.7), risk.Patterns{risk.ShapeCircle: risk.GradeGreen}, nil)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO students").
		WithArgs(s.ID, s.Name, s.GradeLevel, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO student_assessments").
		WithArgs(a.ID, s.ID, 0.9, 0.85, int64(1), 0.7, `{"circle":"green"}`, `[]`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.CreateStudent(context.Background(), s, a))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateStudentRollsBackOnFailure(t *testing.T) {
	repo, mock := newMockRepository(t)
	s := &Student{ID: "12345678", Name: "Ada Lovelace", GradeLevel: 10, CreatedAt: time.Now()}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO students").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.CreateStudent(context.Background(), s, nil)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertAssessmentWithAbsentMetric(t *testing.T) {
	repo, mock := newMockRepository(t)
	academic := 0.4
	a := NewStudentAssessment("12345678", risk.Metrics{AcademicPerformance: &academic}, nil, []string{"low_grades"})

	mock.ExpectExec("INSERT INTO student_assessments").
		WithArgs(a.ID, "12345678", 0.4, nil, nil, nil, `{}`, `["low_grades"]`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.InsertAssessment(context.Background(), a))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestAssessment(t *testing.T) {
	repo, mock := newMockRepository(t)
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM student_assessments").
		WithArgs("12345678").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "student_id", "academic_performance", "attendance_rate",
			"behavioral_incidents", "social_emotional_score", "patterns", "factors", "created_at",
		}).AddRow("a-1", "12345678", 0.55, 0.92, int64(4), nil, `{"circle":"red","square":"yellow"}`, `["tardiness"]`, created))

	a, err := repo.LatestAssessment(context.Background(), "12345678")
	require.NoError(t, err)
	require.NotNil(t, a)

	assert.Equal(t, 0.55, *a.Metrics.AcademicPerformance)
	assert.Equal(t, 4, *a.Metrics.BehavioralIncidents)
	assert.Nil(t, a.Metrics.SocialEmotionalScore)
	assert.Equal(t, risk.Patterns{risk.ShapeCircle: risk.GradeRed, risk.ShapeSquare: risk.GradeYellow}, a.Patterns)
	assert.Equal(t, []string{"tardiness"}, a.Factors)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestAssessmentNone(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery("FROM student_assessments").
		WithArgs("12345678").
		WillReturnError(sql.ErrNoRows)

	a, err := repo.LatestAssessment(context.Background(), "12345678")
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestNewDBMigrates(t *testing.T) {
	db, err := NewDB(t.TempDir())
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	s := &Student{ID: "87654321", Name: "Grace Hopper", GradeLevel: 12, CreatedAt: time.Now().UTC()}
	a := NewStudentAssessment(s.ID, risk.NewMetrics(0.7, 0.8, 2, 0.9), risk.Patterns{risk.ShapeCircle: risk.GradeYellow}, []string{"tardiness"})
	require.NoError(t, repo.CreateStudent(ctx, s, a))

	n, err := repo.CountStudents(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	latest, err := repo.LatestAssessment(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Patterns, latest.Patterns)
	assert.Equal(t, 2, *latest.Metrics.BehavioralIncidents)
}
