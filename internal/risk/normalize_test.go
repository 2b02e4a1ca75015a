package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name        string
		kind        MetricKind
		value       float64
		expected    float64
		wantClamped bool
	}{
		{name: "academic passes through", kind: AcademicPerformance, value: 0.73, expected: 0.73},
		{name: "attendance above range is clamped", kind: AttendanceRate, value: 1.4, expected: 1, wantClamped: true},
		{name: "social below range is clamped", kind: SocialEmotionalScore, value: -0.2, expected: 0, wantClamped: true},
		{name: "no incidents is full health", kind: BehavioralIncidents, value: 0, expected: 1},
		{name: "three incidents", kind: BehavioralIncidents, value: 3, expected: 0.7},
		{name: "ten incidents is zero health", kind: BehavioralIncidents, value: 10, expected: 0},
		{name: "fifteen incidents is capped", kind: BehavioralIncidents, value: 15, expected: 0, wantClamped: true},
		{name: "negative incidents are clamped", kind: BehavioralIncidents, value: -2, expected: 1, wantClamped: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			health, clamped, err := Normalize(tt.kind, tt.value)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, health, 1e-9)
			assert.Equal(t, tt.wantClamped, clamped)
		})
	}
}

func TestNormalizeRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		kind  MetricKind
		value float64
	}{
		{name: "nan", kind: AcademicPerformance, value: math.NaN()},
		{name: "infinity", kind: AttendanceRate, value: math.Inf(1)},
		{name: "unknown kind", kind: MetricKind("shoe_size"), value: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Normalize(tt.kind, tt.value)
			var invalid *InvalidMetricError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.kind, invalid.Metric)
		})
	}
}

func TestNormalizeMetrics(t *testing.T) {
	t.Run("complete set", func(t *testing.T) {
		health, flags, err := NormalizeMetrics(NewMetrics(0.9, 0.85, 2, 0.65))
		require.NoError(t, err)
		assert.Empty(t, flags)
		assert.Len(t, health, 4)
		assert.InDelta(t, 0.8, health[BehavioralIncidents], 1e-9)
	})

	t.Run("clamped values are flagged", func(t *testing.T) {
		_, flags, err := NormalizeMetrics(NewMetrics(1.2, 0.9, 12, 0.7))
		require.NoError(t, err)
		assert.Equal(t, []string{"academic_performance:clamped", "behavioral_incidents:clamped"}, flags)
	})

	t.Run("absent metric fails by default", func(t *testing.T) {
		academic := 0.7
		_, _, err := NormalizeMetrics(Metrics{AcademicPerformance: &academic})

		var invalid *InvalidMetricError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, AttendanceRate, invalid.Metric)
	})

	t.Run("absent metric is skipped when partial", func(t *testing.T) {
		academic := 0.7
		health, _, err := NormalizeMetrics(Metrics{AcademicPerformance: &academic}, WithPartial())
		require.NoError(t, err)
		assert.Equal(t, map[MetricKind]float64{AcademicPerformance: 0.7}, health)
	})
}
