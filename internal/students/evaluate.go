package students

import (
	"strings"

	"github.com/ZanzyTHEbar/student-risk-meter/internal/risk"
)

type axis int

const (
	axisAcademic axis = iota
	axisAttendance
	axisBehavioral
	axisSocial
)

type axisRanges struct {
	healthy, low floatRange
}

var floatAxes = map[axis]axisRanges{
	axisAcademic:   {healthy: floatRange{0.6, 1.0}, low: floatRange{0.3, 0.6}},
	axisAttendance: {healthy: floatRange{0.8, 1.0}, low: floatRange{0.5, 0.8}},
	axisSocial:     {healthy: floatRange{0.7, 1.0}, low: floatRange{0.4, 0.7}},
}

var (
	healthyIncidents  = intRange{0, 2}
	troubledIncidents = intRange{3, 8}
)

var (
	behavioralTags = map[string]bool{
		"disruptive_behavior":    true,
		"disciplinary_incidents": true,
		"peer_conflicts":         true,
	}
	socialTags = map[string]bool{
		"social_isolation":   true,
		"emotional_distress": true,
		"motivation_loss":    true,
	}
)

// affectedAxes reports which metric axes a factor selection degrades.
func affectedAxes(factors []string) map[axis]bool {
	hit := make(map[axis]bool, 4)
	for _, f := range factors {
		tag := strings.ToLower(strings.TrimSpace(f))
		if tag == "" {
			continue
		}
		switch {
		case tag == "low_grades":
			hit[axisAcademic] = true
		case tag == "frequent_absences":
			hit[axisAttendance] = true
		case behavioralTags[tag]:
			hit[axisBehavioral] = true
		case socialTags[tag]:
			hit[axisSocial] = true
		default:
			switch risk.CategorizeFactor(tag) {
			case risk.CategoryAcademic:
				hit[axisAcademic] = true
			case risk.CategoryAttendance:
				hit[axisAttendance] = true
			}
		}
	}
	return hit
}

// Evaluate draws metrics for a factor selection. Each axis hit by a factor is
// drawn from its low range, every other axis from its healthy range.
func (g *Generator) Evaluate(factors []string) Evaluation {
	hit := affectedAxes(factors)

	g.mu.Lock()
	defer g.mu.Unlock()

	pick := func(a axis) float64 {
		r := floatAxes[a]
		if hit[a] {
			return g.float(r.low)
		}
		return g.float(r.healthy)
	}

	incidents := g.int(healthyIncidents)
	if hit[axisBehavioral] {
		incidents = g.int(troubledIncidents)
	}

	m := risk.NewMetrics(pick(axisAcademic), pick(axisAttendance), incidents, pick(axisSocial))
	return Evaluation{Metrics: m, Patterns: PatternsFor(m)}
}
