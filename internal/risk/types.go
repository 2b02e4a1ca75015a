package risk

import "time"

// MetricKind names one of the four wellbeing dimensions tracked per student.
type MetricKind string

const (
	AcademicPerformance  MetricKind = "academic_performance"
	AttendanceRate       MetricKind = "attendance_rate"
	BehavioralIncidents  MetricKind = "behavioral_incidents"
	SocialEmotionalScore MetricKind = "social_emotional_score"
)

// MetricKinds lists every metric in classification order.
var MetricKinds = []MetricKind{
	AcademicPerformance,
	AttendanceRate,
	BehavioralIncidents,
	SocialEmotionalScore,
}

type Grade string

const (
	GradeGreen  Grade = "green"
	GradeYellow Grade = "yellow"
	GradeRed    Grade = "red"
	GradeBlue   Grade = "blue"
)

// Severity orders grades red > yellow > green > blue.
func (g Grade) Severity() int {
	switch g {
	case GradeRed:
		return 3
	case GradeYellow:
		return 2
	case GradeGreen:
		return 1
	default:
		return 0
	}
}

func (g Grade) Valid() bool {
	switch g {
	case GradeGreen, GradeYellow, GradeRed, GradeBlue:
		return true
	}
	return false
}

type Level string

const (
	LevelLow    Level = "Low"
	LevelMedium Level = "Medium"
	LevelHigh   Level = "High"
)

// Metrics carries the raw values reported for a student. A nil field means
// the metric was never reported.
type Metrics struct {
	AcademicPerformance  *float64 `json:"academic_performance,omitempty"`
	AttendanceRate       *float64 `json:"attendance_rate,omitempty"`
	BehavioralIncidents  *int     `json:"behavioral_incidents,omitempty"`
	SocialEmotionalScore *float64 `json:"social_emotional_score,omitempty"`
}

// NewMetrics builds a complete metric set.
func NewMetrics(academic, attendance float64, incidents int, social float64) Metrics {
	return Metrics{
		AcademicPerformance:  &academic,
		AttendanceRate:       &attendance,
		BehavioralIncidents:  &incidents,
		SocialEmotionalScore: &social,
	}
}

// Value returns the raw value of a metric and whether it was reported.
func (m Metrics) Value(kind MetricKind) (float64, bool) {
	switch kind {
	case AcademicPerformance:
		return floatValue(m.AcademicPerformance)
	case AttendanceRate:
		return floatValue(m.AttendanceRate)
	case BehavioralIncidents:
		if m.BehavioralIncidents == nil {
			return 0, false
		}
		return float64(*m.BehavioralIncidents), true
	case SocialEmotionalScore:
		return floatValue(m.SocialEmotionalScore)
	}
	return 0, false
}

// Clone returns a copy that shares no pointers with m.
func (m Metrics) Clone() Metrics {
	var out Metrics
	if m.AcademicPerformance != nil {
		v := *m.AcademicPerformance
		out.AcademicPerformance = &v
	}
	if m.AttendanceRate != nil {
		v := *m.AttendanceRate
		out.AttendanceRate = &v
	}
	if m.BehavioralIncidents != nil {
		v := *m.BehavioralIncidents
		out.BehavioralIncidents = &v
	}
	if m.SocialEmotionalScore != nil {
		v := *m.SocialEmotionalScore
		out.SocialEmotionalScore = &v
	}
	return out
}

func floatValue(v *float64) (float64, bool) {
	if v == nil {
		return 0, false
	}
	return *v, true
}

// Classification is the graded view of one metric set.
type Classification struct {
	Health    map[MetricKind]float64 `json:"health"`
	Grades    map[MetricKind]Grade   `json:"grades"`
	RiskScore float64                `json:"riskScore"`
	RiskLevel Level                  `json:"riskLevel"`
	Flags     []string               `json:"flags,omitempty"`
}

// Assessment is one completed evaluation of a student. It is never mutated
// after creation.
type Assessment struct {
	ID        string               `json:"id"`
	StudentID string               `json:"studentId"`
	Timestamp time.Time            `json:"timestamp"`
	Metrics   Metrics              `json:"metrics"`
	Grades    map[MetricKind]Grade `json:"grades"`
	RiskScore float64              `json:"riskScore"`
	RiskLevel Level                `json:"riskLevel"`
	Factors   []string             `json:"factors"`
}
