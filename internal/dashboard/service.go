// Package dashboard implements the risk dashboard workflows on top of the
// student-data source, the classifier and the assessment history.
package dashboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/ZanzyTHEbar/student-risk-meter/internal/history"
	"github.com/ZanzyTHEbar/student-risk-meter/internal/monitoring"
	"github.com/ZanzyTHEbar/student-risk-meter/internal/risk"
	"github.com/ZanzyTHEbar/student-risk-meter/internal/students"
)

// ErrNoStudent is returned by Assess when neither the request nor the
// session names a student.
var ErrNoStudent = errors.New("no student selected")

// Options wires a Service. Prometheus is optional.
type Options struct {
	Source     students.Source
	History    *history.Registry
	Sessions   *SessionStore
	Metrics    *monitoring.Metrics
	Prometheus *monitoring.Prometheus
	Logger     *monitoring.Logger
	Now        func() time.Time
}

// Service runs dashboard workflows. A failed workflow leaves the session as
// it was.
type Service struct {
	source   students.Source
	history  *history.Registry
	sessions *SessionStore
	metrics  *monitoring.Metrics
	prom     *monitoring.Prometheus
	logger   *monitoring.Logger
	now      func() time.Time
}

// NewService creates a dashboard service.
func NewService(opts Options) *Service {
	s := &Service{
		source:   opts.Source,
		history:  opts.History,
		sessions: opts.Sessions,
		metrics:  opts.Metrics,
		prom:     opts.Prometheus,
		logger:   opts.Logger,
		now:      opts.Now,
	}
	if s.sessions == nil {
		s.sessions = NewSessionStore(time.Hour)
	}
	if s.metrics == nil {
		s.metrics = monitoring.NewMetrics()
	}
	if s.logger == nil {
		s.logger = monitoring.NewLogger(slog.LevelError, io.Discard)
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Sessions exposes the session store.
func (s *Service) Sessions() *SessionStore {
	return s.sessions
}

// View renders the current session of profile.
func (s *Service) View(profile string) (View, error) {
	return Render(s.sessions.Load(profile))
}

// FetchStudent loads a student and its latest server-side evaluation into
// the session.
func (s *Service) FetchStudent(ctx context.Context, profile, id string) (View, error) {
	var rec *students.Record
	err := s.call("fetch_student", func() (err error) {
		rec, err = s.source.FetchStudent(ctx, id)
		return err
	})
	if err != nil {
		return View{}, err
	}

	next := s.sessions.Load(profile)
	next.Student = &Student{ID: rec.ID, Name: rec.Name, GradeLevel: rec.GradeLevel}
	next.Patterns = nil
	next.Assessment = nil
	next.Factors = []string{}
	if latest := rec.LatestAssessment; latest != nil {
		next.Student.Metrics = latest.Metrics.Clone()
		next.Patterns = latest.Patterns
		next.Factors = copyTags(latest.Factors)
	}

	return s.commit(next)
}

// GenerateStudent creates a synthetic student and selects it.
func (s *Service) GenerateStudent(ctx context.Context, profile string) (View, error) {
	var gen *students.Generated
	err := s.call("generate_student", func() (err error) {
		gen, err = s.source.GenerateStudent(ctx)
		return err
	})
	if err != nil {
		return View{}, err
	}

	next := s.sessions.Load(profile)
	next.Student = &Student{
		ID:         gen.ID,
		Name:       gen.Name,
		GradeLevel: gen.GradeLevel,
		Metrics:    gen.Metrics.Clone(),
	}
	next.Patterns = gen.Patterns
	next.Assessment = nil
	next.Factors = []string{}

	return s.commit(next)
}

// Assess submits a factor selection, classifies the returned metrics and
// records the assessment. An empty studentID falls back to the session's
// student.
func (s *Service) Assess(ctx context.Context, profile, studentID string, factors []string) (View, error) {
	cur := s.sessions.Load(profile)
	if studentID == "" && cur.Student != nil {
		studentID = cur.Student.ID
	}
	if studentID == "" {
		return View{}, ErrNoStudent
	}

	var eval *students.Evaluation
	err := s.call("submit_assessment", func() (err error) {
		eval, err = s.source.SubmitAssessment(ctx, studentID, factors)
		return err
	})
	if err != nil {
		return View{}, err
	}

	c, err := risk.Classify(eval.Metrics)
	if err != nil {
		return View{}, err
	}
	a := c.Assessment(studentID, eval.Metrics, factors, s.now())

	next := cur
	if cur.Student != nil && cur.Student.ID == studentID {
		st := *cur.Student
		next.Student = &st
	} else {
		next.Student = &Student{ID: studentID}
	}
	next.Student.Metrics = eval.Metrics.Clone()
	next.Patterns = eval.Patterns
	next.Assessment = &a
	next.Factors = copyTags(factors)

	// Rendering first keeps a payload the dashboard cannot show out of the
	// history.
	view, err := Render(next)
	if err != nil {
		return View{}, err
	}
	if err := s.append(ctx, profile, a, c.Flags); err != nil {
		return View{}, err
	}
	s.save(next)
	view.Assessment.Flags = c.Flags
	return view, nil
}

// RecordAssessment classifies client-provided metrics and appends the result
// to the profile's history.
func (s *Service) RecordAssessment(ctx context.Context, profile, studentID string, m risk.Metrics, factors []string, opts ...risk.Option) (*AssessmentView, error) {
	c, err := risk.Classify(m, opts...)
	if err != nil {
		return nil, err
	}
	a := c.Assessment(studentID, m, factors, s.now())
	view, err := assessmentView(a, c.Flags)
	if err != nil {
		return nil, err
	}

	next := s.sessions.Load(profile)
	next.Assessment = &a
	next.Factors = copyTags(factors)
	if _, err := Render(next); err != nil {
		return nil, err
	}
	if err := s.append(ctx, profile, a, c.Flags); err != nil {
		return nil, err
	}
	s.save(next)
	return view, nil
}

// Reset clears the profile's history and its session.
func (s *Service) Reset(ctx context.Context, profile string) (View, error) {
	if err := s.ClearHistory(ctx, profile); err != nil {
		return View{}, err
	}
	s.sessions.Delete(profile)
	s.updateSessionGauge()
	s.logger.SystemLogger("dashboard_reset", profile)
	return Render(NewSession(profile))
}

// Statistics summarises the profile's history.
func (s *Service) Statistics(ctx context.Context, profile string) (Statistics, error) {
	all, err := s.History(ctx, profile)
	if err != nil {
		return Statistics{}, err
	}

	stats := Statistics{
		Total:        len(all),
		Distribution: risk.DistributionForHistory(all),
		Categories:   risk.Categories{},
	}
	if len(all) == 0 {
		return stats, nil
	}

	latest := all[len(all)-1]
	dist, err := risk.DistributionForAssessment(latest)
	if err != nil {
		return Statistics{}, err
	}
	stats.Latest = &latest
	stats.Categories = risk.CategorizeFactors(latest.Factors)
	stats.LatestDistribution = &dist
	return stats, nil
}

// History returns every recorded assessment of profile, oldest first.
func (s *Service) History(ctx context.Context, profile string) ([]risk.Assessment, error) {
	store := s.history.ForProfile(profile)
	all, err := store.All(ctx)
	s.logger.HistoryLogger("read", store.Key(), len(all), err)
	if err != nil {
		s.historyError("read")
		return nil, err
	}
	return all, nil
}

// LatestAssessment returns the newest assessment of profile.
func (s *Service) LatestAssessment(ctx context.Context, profile string) (risk.Assessment, bool, error) {
	store := s.history.ForProfile(profile)
	a, ok, err := store.Latest(ctx)
	if err != nil {
		s.historyError("read")
		s.logger.HistoryLogger("latest", store.Key(), 0, err)
	}
	return a, ok, err
}

// ClearHistory deletes the profile's history.
func (s *Service) ClearHistory(ctx context.Context, profile string) error {
	store := s.history.ForProfile(profile)
	err := store.Clear(ctx)
	s.logger.HistoryLogger("clear", store.Key(), 0, err)
	if err != nil {
		s.historyError("clear")
	}
	return err
}

func (s *Service) append(ctx context.Context, profile string, a risk.Assessment, flags []string) error {
	store := s.history.ForProfile(profile)
	if err := store.Append(ctx, a); err != nil {
		s.historyError("append")
		s.logger.HistoryLogger("append", store.Key(), 0, err)
		return err
	}

	s.metrics.RecordAssessment(string(a.RiskLevel))
	if s.prom != nil {
		s.prom.ObserveAssessment(string(a.RiskLevel), a.RiskScore)
	}
	s.logger.AssessmentLogger(profile, a.StudentID, string(a.RiskLevel), a.RiskScore, len(a.Factors), flags)
	return nil
}

func (s *Service) commit(next Session) (View, error) {
	view, err := Render(next)
	if err != nil {
		return View{}, err
	}
	s.save(next)
	return view, nil
}

func (s *Service) save(next Session) {
	s.sessions.Save(next)
	s.updateSessionGauge()
}

func (s *Service) call(operation string, fn func() error) error {
	start := time.Now()
	err := fn()
	duration := time.Since(start)

	s.metrics.RecordExternalAPIRequest(operation, err == nil || students.IsNotFound(err))
	if s.prom != nil {
		s.prom.ObserveStudentData(operation, duration, err)
	}
	s.logger.ExternalAPILogger("student_data", operation, duration, err)
	return err
}

func (s *Service) historyError(operation string) {
	s.metrics.IncrementHistoryError()
	if s.prom != nil {
		s.prom.HistoryErrors.WithLabelValues(operation).Inc()
	}
}

func (s *Service) updateSessionGauge() {
	if s.prom != nil {
		s.prom.ActiveSessions.Set(float64(s.sessions.Size()))
	}
}

func copyTags(tags []string) []string {
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}
