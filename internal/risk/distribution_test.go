package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistributionForAssessment(t *testing.T) {
	tests := []struct {
		name     string
		metrics  Metrics
		expected Distribution
	}{
		{
			name:     "spread across buckets",
			metrics:  NewMetrics(0.9, 0.7, 5, 0.3),
			expected: Distribution{Low: 1, Medium: 1, High: 2, Total: 4},
		},
		{
			name:     "boundaries",
			metrics:  NewMetrics(0.8, 0.6, 0, 0.5999),
			expected: Distribution{Low: 2, Medium: 1, High: 1, Total: 4},
		},
		{
			name:     "absent metrics are skipped",
			metrics:  Metrics{AttendanceRate: ptr(0.95)},
			expected: Distribution{Low: 1, Total: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := DistributionForAssessment(Assessment{Metrics: tt.metrics})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d)
		})
	}
}

func TestDistributionForHistory(t *testing.T) {
	history := []Assessment{
		{RiskLevel: LevelLow},
		{RiskLevel: LevelHigh},
		{RiskLevel: LevelLow},
		{RiskLevel: LevelMedium},
		{RiskLevel: Level("unknown")},
	}

	assert.Equal(t, Distribution{Low: 2, Medium: 1, High: 1, Total: 4}, DistributionForHistory(history))
	assert.Equal(t, Distribution{}, DistributionForHistory(nil))
}

func TestDistributionForHistoryUsesStoredLevel(t *testing.T) {
	// metrics would bucket as High, the stored level wins
	a := Assessment{
		Metrics:   NewMetrics(0.1, 0.1, 10, 0.1),
		RiskLevel: LevelLow,
		Timestamp: time.Now(),
	}

	assert.Equal(t, Distribution{Low: 1, Total: 1}, DistributionForHistory([]Assessment{a}))
}
