package students

import "github.com/ZanzyTHEbar/student-risk-meter/internal/risk"

// PatternsFor grades the three reported shapes from raw metrics. The
// thresholds are the service's own and differ from the health grading.
func PatternsFor(m risk.Metrics) risk.Patterns {
	p := risk.Patterns{}

	if v := m.AcademicPerformance; v != nil {
		p[risk.ShapeCircle] = gradeBelow(*v, 0.6, 0.8)
	}
	if v := m.AttendanceRate; v != nil {
		p[risk.ShapeTriangle] = gradeBelow(*v, 0.7, 0.9)
	}
	if v := m.BehavioralIncidents; v != nil {
		switch {
		case *v > 5:
			p[risk.ShapeSquare] = risk.GradeRed
		case *v > 2:
			p[risk.ShapeSquare] = risk.GradeYellow
		default:
			p[risk.ShapeSquare] = risk.GradeGreen
		}
	}
	return p
}

func gradeBelow(v, red, yellow float64) risk.Grade {
	switch {
	case v < red:
		return risk.GradeRed
	case v < yellow:
		return risk.GradeYellow
	default:
		return risk.GradeGreen
	}
}
