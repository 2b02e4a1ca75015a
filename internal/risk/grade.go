package risk

// Grade boundaries are inclusive lower bounds on the health score.
const (
	GreenThreshold  = 0.8
	YellowThreshold = 0.6
)

// GradeFor maps a health score onto green, yellow or red. Blue is never
// derived from a number; see GradeMetrics.
func GradeFor(health float64) Grade {
	switch {
	case health >= GreenThreshold:
		return GradeGreen
	case health >= YellowThreshold:
		return GradeYellow
	default:
		return GradeRed
	}
}

// GradeMetrics grades every metric kind. Kinds missing from health are
// structurally absent and graded blue.
func GradeMetrics(health map[MetricKind]float64) map[MetricKind]Grade {
	grades := make(map[MetricKind]Grade, len(MetricKinds))
	for _, kind := range MetricKinds {
		h, ok := health[kind]
		if !ok {
			grades[kind] = GradeBlue
			continue
		}
		grades[kind] = GradeFor(h)
	}
	return grades
}

// Classify normalizes, grades and aggregates a metric set.
func Classify(m Metrics, opts ...Option) (Classification, error) {
	health, flags, err := NormalizeMetrics(m, opts...)
	if err != nil {
		return Classification{}, err
	}

	grades := GradeMetrics(health)
	ordered := make([]Grade, 0, len(MetricKinds))
	for _, kind := range MetricKinds {
		ordered = append(ordered, grades[kind])
	}

	score, err := Aggregate(ordered)
	if err != nil {
		return Classification{}, err
	}

	return Classification{
		Health:    health,
		Grades:    grades,
		RiskScore: score.RiskScore,
		RiskLevel: score.RiskLevel,
		Flags:     flags,
	}, nil
}
