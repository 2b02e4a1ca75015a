package risk

import "fmt"

var gradeWeights = map[Grade]float64{
	GradeRed:    1.0,
	GradeYellow: 0.6,
	GradeGreen:  0.3,
	GradeBlue:   0.0,
}

// Risk level boundaries are inclusive lower bounds on the risk score.
const (
	HighThreshold   = 0.7
	MediumThreshold = 0.4
)

// Score is the aggregate of a set of grades.
type Score struct {
	RiskScore float64 `json:"riskScore"`
	RiskLevel Level   `json:"riskLevel"`
}

// Weight returns the grade's contribution to a risk score.
func (g Grade) Weight() float64 {
	return gradeWeights[g]
}

// Aggregate averages grade weights into a risk score. Every grade counts
// equally; blue contributes zero but still counts towards the mean.
func Aggregate(grades []Grade) (Score, error) {
	if len(grades) == 0 {
		return Score{}, &InsufficientDataError{Reason: "no grades to aggregate"}
	}

	sum := 0.0
	for _, g := range grades {
		w, ok := gradeWeights[g]
		if !ok {
			return Score{}, fmt.Errorf("aggregate %q: %w", g, ErrUnknownGrade)
		}
		sum += w
	}

	score := sum / float64(len(grades))
	return Score{RiskScore: score, RiskLevel: LevelFor(score)}, nil
}

// LevelFor maps a risk score onto Low, Medium or High.
func LevelFor(score float64) Level {
	switch {
	case score >= HighThreshold:
		return LevelHigh
	case score >= MediumThreshold:
		return LevelMedium
	default:
		return LevelLow
	}
}
