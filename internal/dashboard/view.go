package dashboard

import (
	"fmt"
	"math"

	"github.com/ZanzyTHEbar/student-risk-meter/internal/risk"
)

var metricLabels = map[risk.MetricKind]string{
	risk.AcademicPerformance:  "Academic Performance",
	risk.AttendanceRate:       "Attendance Rate",
	risk.BehavioralIncidents:  "Behavioral Incidents",
	risk.SocialEmotionalScore: "Social-Emotional Score",
}

// Gauge is one metric bar of the student card.
type Gauge struct {
	Metric  risk.MetricKind `json:"metric"`
	Label   string          `json:"label"`
	Display string          `json:"display"`
	Width   float64         `json:"width"`
	Grade   risk.Grade      `json:"grade"`
}

// PatternIndicator is one behavioral pattern badge.
type PatternIndicator struct {
	Shape     risk.Shape    `json:"shape"`
	Indicator risk.Category `json:"indicator,omitempty"`
	Grade     risk.Grade    `json:"grade"`
}

// StudentView is the display-ready student card.
type StudentView struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	GradeLevel  int                `json:"gradeLevel"`
	Gauges      []Gauge            `json:"gauges"`
	Patterns    []PatternIndicator `json:"patterns"`
	PatternRisk *risk.Score        `json:"patternRisk,omitempty"`
}

// AssessmentView is the result panel of the last assessment.
type AssessmentView struct {
	risk.Assessment
	Categories   risk.Categories   `json:"categories"`
	Distribution risk.Distribution `json:"distribution"`
	Flags        []string          `json:"flags,omitempty"`
}

// View is what the dashboard renders for a session.
type View struct {
	Profile    string          `json:"profile"`
	Student    *StudentView    `json:"student,omitempty"`
	Assessment *AssessmentView `json:"assessment,omitempty"`
	Factors    []string        `json:"factors"`
}

// Statistics is the population panel of a profile.
type Statistics struct {
	Total              int                `json:"total"`
	Distribution       risk.Distribution  `json:"distribution"`
	Latest             *risk.Assessment   `json:"latest,omitempty"`
	Categories         risk.Categories    `json:"categories"`
	LatestDistribution *risk.Distribution `json:"latestDistribution,omitempty"`
}

// Gauges renders a metric set. Absent metrics are blue with an empty bar.
func Gauges(m risk.Metrics, grades map[risk.MetricKind]risk.Grade) []Gauge {
	gauges := make([]Gauge, 0, len(risk.MetricKinds))
	for _, kind := range risk.MetricKinds {
		g := Gauge{Metric: kind, Label: metricLabels[kind], Display: "N/A", Grade: risk.GradeBlue}
		if grade, ok := grades[kind]; ok {
			g.Grade = grade
		}

		if v, ok := m.Value(kind); ok {
			if kind == risk.BehavioralIncidents {
				g.Display = fmt.Sprintf("%d", int(v))
				g.Width = math.Min(math.Max(v*10, 0), 100)
			} else {
				pct := math.Round(v * 100)
				g.Display = fmt.Sprintf("%.0f%%", pct)
				g.Width = math.Min(math.Max(pct, 0), 100)
			}
		}
		gauges = append(gauges, g)
	}
	return gauges
}

// Indicators renders the pattern badges in display order.
func Indicators(p risk.Patterns) []PatternIndicator {
	out := make([]PatternIndicator, 0, len(p))
	for _, shape := range p.Shapes() {
		ind := PatternIndicator{Shape: shape, Grade: p[shape]}
		if cat, ok := risk.IndicatorFor(shape); ok {
			ind.Indicator = cat
		}
		out = append(out, ind)
	}
	return out
}

func studentView(st *Student, patterns risk.Patterns) (*StudentView, error) {
	health, _, err := risk.NormalizeMetrics(st.Metrics, risk.WithPartial())
	if err != nil {
		return nil, err
	}
	grades := risk.GradeMetrics(health)

	view := &StudentView{
		ID:         st.ID,
		Name:       st.Name,
		GradeLevel: st.GradeLevel,
		Gauges:     Gauges(st.Metrics, grades),
		Patterns:   Indicators(patterns),
	}
	if len(patterns) > 0 {
		score, err := risk.AggregatePatterns(patterns)
		if err != nil {
			return nil, err
		}
		view.PatternRisk = &score
	}
	return view, nil
}

func assessmentView(a risk.Assessment, flags []string) (*AssessmentView, error) {
	dist, err := risk.DistributionForAssessment(a)
	if err != nil {
		return nil, err
	}
	return &AssessmentView{
		Assessment:   a,
		Categories:   risk.CategorizeFactors(a.Factors),
		Distribution: dist,
		Flags:        flags,
	}, nil
}

// Render builds the view of a session.
func Render(sess Session) (View, error) {
	view := View{Profile: sess.Profile, Factors: sess.Factors}
	if view.Factors == nil {
		view.Factors = []string{}
	}

	if sess.Student != nil {
		sv, err := studentView(sess.Student, sess.Patterns)
		if err != nil {
			return View{}, err
		}
		view.Student = sv
	}
	if sess.Assessment != nil {
		av, err := assessmentView(*sess.Assessment, nil)
		if err != nil {
			return View{}, err
		}
		view.Assessment = av
	}
	return view, nil
}
