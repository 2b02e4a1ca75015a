package risk

import (
	"math"
)

// MaxIncidents caps the behavioral incident scale; any count at or above it
// maps to zero health.
const MaxIncidents = 10

// Option adjusts how a metric set is normalized and classified.
type Option func(*options)

type options struct {
	partial bool
}

// WithPartial allows classification of a metric set with absent metrics.
// Absent metrics are graded blue instead of failing.
func WithPartial() Option {
	return func(o *options) { o.partial = true }
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Normalize maps a raw metric value onto a [0,1] health score where 1 is the
// healthiest. Out-of-range values are clamped and reported through clamped.
func Normalize(kind MetricKind, value float64) (health float64, clamped bool, err error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false, &InvalidMetricError{Metric: kind, Reason: "value is not a finite number"}
	}

	switch kind {
	case AcademicPerformance, AttendanceRate, SocialEmotionalScore:
		health = clamp01(value)
		return health, health != value, nil
	case BehavioralIncidents:
		incidents := value
		if incidents < 0 {
			incidents = 0
			clamped = true
		}
		if incidents > MaxIncidents {
			incidents = MaxIncidents
			clamped = true
		}
		return (MaxIncidents - incidents) / MaxIncidents, clamped, nil
	}

	return 0, false, &InvalidMetricError{Metric: kind, Reason: "unknown metric kind"}
}

// NormalizeMetrics normalizes every reported metric. Absent metrics fail with
// InvalidMetricError unless WithPartial is given, in which case they are left
// out of the returned map.
func NormalizeMetrics(m Metrics, opts ...Option) (map[MetricKind]float64, []string, error) {
	o := buildOptions(opts)

	health := make(map[MetricKind]float64, len(MetricKinds))
	var flags []string
	for _, kind := range MetricKinds {
		value, ok := m.Value(kind)
		if !ok {
			if o.partial {
				continue
			}
			return nil, nil, &InvalidMetricError{Metric: kind, Reason: "metric is absent"}
		}

		h, clamped, err := Normalize(kind, value)
		if err != nil {
			return nil, nil, err
		}
		if clamped {
			flags = append(flags, string(kind)+":clamped")
		}
		health[kind] = h
	}

	return health, flags, nil
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
