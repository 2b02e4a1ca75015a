package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name          string
		grades        []Grade
		expectedScore float64
		expectedLevel Level
	}{
		{
			name:          "all red",
			grades:        []Grade{GradeRed, GradeRed, GradeRed, GradeRed},
			expectedScore: 1.0,
			expectedLevel: LevelHigh,
		},
		{
			name:          "all green",
			grades:        []Grade{GradeGreen, GradeGreen, GradeGreen, GradeGreen},
			expectedScore: 0.3,
			expectedLevel: LevelLow,
		},
		{
			name:          "one of each",
			grades:        []Grade{GradeRed, GradeYellow, GradeGreen, GradeBlue},
			expectedScore: 0.475,
			expectedLevel: LevelMedium,
		},
		{
			name:          "single yellow",
			grades:        []Grade{GradeYellow},
			expectedScore: 0.6,
			expectedLevel: LevelMedium,
		},
		{
			name:          "all blue",
			grades:        []Grade{GradeBlue, GradeBlue},
			expectedScore: 0,
			expectedLevel: LevelLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, err := Aggregate(tt.grades)
			require.NoError(t, err)
			assert.InDelta(t, tt.expectedScore, score.RiskScore, 1e-9)
			assert.Equal(t, tt.expectedLevel, score.RiskLevel)
		})
	}
}

func TestAggregateEmpty(t *testing.T) {
	_, err := Aggregate(nil)

	var insufficient *InsufficientDataError
	assert.ErrorAs(t, err, &insufficient)
}

func TestAggregateUnknownGrade(t *testing.T) {
	_, err := Aggregate([]Grade{GradeRed, Grade("purple")})
	assert.ErrorIs(t, err, ErrUnknownGrade)
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, LevelHigh, LevelFor(0.7))
	assert.Equal(t, LevelMedium, LevelFor(0.6999))
	assert.Equal(t, LevelMedium, LevelFor(0.4))
	assert.Equal(t, LevelLow, LevelFor(0.3999))
}
