package risk

// Distribution counts samples per risk bucket.
type Distribution struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
	Total  int `json:"total"`
}

func (d *Distribution) add(level Level) {
	switch level {
	case LevelLow:
		d.Low++
	case LevelMedium:
		d.Medium++
	case LevelHigh:
		d.High++
	default:
		return
	}
	d.Total++
}

// healthLevel buckets a single health score with the grade thresholds.
func healthLevel(health float64) Level {
	switch GradeFor(health) {
	case GradeGreen:
		return LevelLow
	case GradeYellow:
		return LevelMedium
	default:
		return LevelHigh
	}
}

// DistributionForHealth buckets each health score independently.
func DistributionForHealth(health map[MetricKind]float64) Distribution {
	var d Distribution
	for _, kind := range MetricKinds {
		if h, ok := health[kind]; ok {
			d.add(healthLevel(h))
		}
	}
	return d
}

// DistributionForAssessment describes the spread of one assessment's metrics.
// Absent metrics are not counted.
func DistributionForAssessment(a Assessment) (Distribution, error) {
	health, _, err := NormalizeMetrics(a.Metrics, WithPartial())
	if err != nil {
		return Distribution{}, err
	}
	return DistributionForHealth(health), nil
}

// DistributionForHistory counts assessments by their recorded risk level.
// Levels are taken as stored, not re-derived from metrics.
func DistributionForHistory(history []Assessment) Distribution {
	var d Distribution
	for _, a := range history {
		d.add(a.RiskLevel)
	}
	return d
}
