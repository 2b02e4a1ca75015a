package students

import (
	"context"
	"errors"
	"math/rand/v2"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/student-risk-meter/internal/database"
	"github.com/ZanzyTHEbar/student-risk-meter/internal/risk"
)

type fakeRepository struct {
	mu          sync.Mutex
	students    map[string]*database.Student
	assessments map[string][]*database.StudentAssessment
	failWith    error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		students:    make(map[string]*database.Student),
		assessments: make(map[string][]*database.StudentAssessment),
	}
}

func (f *fakeRepository) StudentExists(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return false, f.failWith
	}
	_, ok := f.students[id]
	return ok, nil
}

func (f *fakeRepository) GetStudent(_ context.Context, id string) (*database.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.students[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return s, nil
}

func (f *fakeRepository) CreateStudent(_ context.Context, s *database.Student, a *database.StudentAssessment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.students[s.ID] = s
	if a != nil {
		f.assessments[s.ID] = append(f.assessments[s.ID], a)
	}
	return nil
}

func (f *fakeRepository) InsertAssessment(_ context.Context, a *database.StudentAssessment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assessments[a.StudentID] = append(f.assessments[a.StudentID], a)
	return nil
}

func (f *fakeRepository) LatestAssessment(_ context.Context, id string) (*database.StudentAssessment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := f.assessments[id]
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[len(rows)-1], nil
}

func seeded() *Generator {
	return NewGenerator(rand.NewPCG(1, 2))
}

func TestPatternsFor(t *testing.T) {
	tests := []struct {
		name     string
		metrics  risk.Metrics
		expected risk.Patterns
	}{
		{
			name:    "healthy",
			metrics: risk.NewMetrics(0.85, 0.95, 1, 0.9),
			expected: risk.Patterns{
				risk.ShapeCircle: risk.GradeGreen, risk.ShapeTriangle: risk.GradeGreen, risk.ShapeSquare: risk.GradeGreen,
			},
		},
		{
			name:    "boundaries",
			metrics: risk.NewMetrics(0.6, 0.7, 3, 0.5),
			expected: risk.Patterns{
				risk.ShapeCircle: risk.GradeYellow, risk.ShapeTriangle: risk.GradeYellow, risk.ShapeSquare: risk.GradeYellow,
			},
		},
		{
			name:    "struggling",
			metrics: risk.NewMetrics(0.59, 0.69, 6, 0.2),
			expected: risk.Patterns{
				risk.ShapeCircle: risk.GradeRed, risk.ShapeTriangle: risk.GradeRed, risk.ShapeSquare: risk.GradeRed,
			},
		},
		{
			name:     "absent metrics report no shape",
			metrics:  risk.Metrics{},
			expected: risk.Patterns{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PatternsFor(tt.metrics))
		})
	}
}

func TestGeneratorRanges(t *testing.T) {
	g := seeded()
	idPattern := regexp.MustCompile(`^\d{8}$`)

	for i := 0; i < 200; i++ {
		assert.Regexp(t, idPattern, g.StudentID())
		level := g.GradeLevel()
		assert.True(t, level >= 9 && level <= 12, "grade level %d", level)

		m := g.InitialMetrics()
		assert.True(t, *m.AcademicPerformance >= 0.6 && *m.AcademicPerformance < 1.0)
		assert.True(t, *m.AttendanceRate >= 0.7 && *m.AttendanceRate < 1.0)
		assert.True(t, *m.BehavioralIncidents >= 0 && *m.BehavioralIncidents <= 5)
		assert.True(t, *m.SocialEmotionalScore >= 0.5 && *m.SocialEmotionalScore < 1.0)
	}
}

func TestGeneratorIsDeterministicForSeed(t *testing.T) {
	assert.Equal(t, seeded().StudentID(), seeded().StudentID())
	assert.Equal(t, seeded().Name(), seeded().Name())
}

func TestEvaluateDegradesHitAxes(t *testing.T) {
	g := seeded()

	for i := 0; i < 100; i++ {
		e := g.Evaluate([]string{"grades_declining", "frequent_absences", "peer_conflicts", "social_isolation"})
		m := e.Metrics
		assert.True(t, *m.AcademicPerformance >= 0.3 && *m.AcademicPerformance < 0.6)
		assert.True(t, *m.AttendanceRate >= 0.5 && *m.AttendanceRate < 0.8)
		assert.True(t, *m.BehavioralIncidents >= 3 && *m.BehavioralIncidents <= 8)
		assert.True(t, *m.SocialEmotionalScore >= 0.4 && *m.SocialEmotionalScore < 0.7)
		assert.Equal(t, PatternsFor(m), e.Patterns)
	}

	for i := 0; i < 100; i++ {
		m := g.Evaluate(nil).Metrics
		assert.True(t, *m.AcademicPerformance >= 0.6)
		assert.True(t, *m.AttendanceRate >= 0.8)
		assert.True(t, *m.BehavioralIncidents <= 2)
		assert.True(t, *m.SocialEmotionalScore >= 0.7)
	}
}

func TestAffectedAxes(t *testing.T) {
	tests := []struct {
		factors  []string
		expected map[axis]bool
	}{
		{[]string{"low_grades"}, map[axis]bool{axisAcademic: true}},
		{[]string{"assignment_completion"}, map[axis]bool{axisAcademic: true}},
		{[]string{"class_skipping", "tardiness"}, map[axis]bool{axisAttendance: true}},
		{[]string{"disruptive_behavior"}, map[axis]bool{axisBehavioral: true}},
		{[]string{"Emotional_Distress"}, map[axis]bool{axisSocial: true}},
		{[]string{"unknown_thing", ""}, map[axis]bool{}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, affectedAxes(tt.factors), "factors %v", tt.factors)
	}
}

func TestServiceGenerateAndFetch(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	svc := NewService(repo, seeded())

	gen, err := svc.GenerateStudent(ctx)
	require.NoError(t, err)
	assert.Len(t, gen.ID, 8)
	assert.Equal(t, PatternsFor(gen.Metrics), gen.Patterns)

	rec, err := svc.FetchStudent(ctx, gen.ID)
	require.NoError(t, err)
	assert.Equal(t, gen.Name, rec.Name)
	require.NotNil(t, rec.LatestAssessment)
	assert.Equal(t, gen.Metrics, rec.LatestAssessment.Metrics)
	assert.Empty(t, rec.LatestAssessment.Factors)
}

func TestServiceSubmitAssessment(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	svc := NewService(repo, seeded())

	gen, err := svc.GenerateStudent(ctx)
	require.NoError(t, err)

	eval, err := svc.SubmitAssessment(ctx, gen.ID, []string{"tardiness"})
	require.NoError(t, err)
	assert.Less(t, *eval.Metrics.AttendanceRate, 0.8)

	rec, err := svc.FetchStudent(ctx, gen.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"tardiness"}, rec.LatestAssessment.Factors)
	assert.Equal(t, eval.Patterns, rec.LatestAssessment.Patterns)
}

func TestServiceUnknownStudent(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepository(), seeded())

	_, err := svc.FetchStudent(ctx, "99999999")
	assert.True(t, IsNotFound(err))

	_, err = svc.SubmitAssessment(ctx, "99999999", []string{"tardiness"})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "99999999", nf.StudentID)
}

func TestServiceRepositoryFailure(t *testing.T) {
	repo := newFakeRepository()
	repo.failWith = errors.New("database is locked")
	svc := NewService(repo, seeded())

	_, err := svc.GenerateStudent(context.Background())
	assert.ErrorIs(t, err, repo.failWith)
	assert.False(t, IsNotFound(err))
}
