package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategorizeFactor(t *testing.T) {
	tests := []struct {
		tag      string
		expected Category
	}{
		{"grades_declining", CategoryAcademic},
		{"assignment_completion", CategoryAcademic},
		{"academic_engagement", CategoryAcademic},
		{"attendance_poor", CategoryAttendance},
		{"tardiness", CategoryAttendance},
		{"class_skipping", CategoryAttendance},
		{"peer_conflicts", CategoryBehavioral},
		{"social_isolation", CategoryBehavioral},
		{"emotional_distress", CategoryBehavioral},
		{"Grade_Slump", CategoryAcademic},
		// academic wins when both rule sets match
		{"attendance_engagement", CategoryAcademic},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			assert.Equal(t, tt.expected, CategorizeFactor(tt.tag))
		})
	}
}

func TestFactorLabel(t *testing.T) {
	assert.Equal(t, "Grades Declining", FactorLabel("grades_declining"))
	assert.Equal(t, "Tardiness", FactorLabel("tardiness"))
	assert.Equal(t, "Class Skipping Often", FactorLabel("class_skipping_often"))
	assert.Equal(t, "", FactorLabel(""))
	assert.Equal(t, "Peer Conflicts", FactorLabel("peer conflicts"))
}

func TestCategorizeFactors(t *testing.T) {
	tags := []string{"grades_declining", "tardiness", "peer_conflicts"}

	got := CategorizeFactors(tags)

	assert.Equal(t, Categories{
		CategoryAcademic:   {"Grades Declining"},
		CategoryAttendance: {"Tardiness"},
		CategoryBehavioral: {"Peer Conflicts"},
	}, got)
	assert.Equal(t, got, CategorizeFactors(tags))
	assert.Equal(t, []string{"grades_declining", "tardiness", "peer_conflicts"}, tags)
}

func TestCategorizeFactorsKeepsEveryTag(t *testing.T) {
	tags := []string{"motivation_loss", "", "assignment_completion", "mystery_tag", "  ", "social_isolation"}

	got := CategorizeFactors(tags)

	assert.Equal(t, Categories{
		CategoryAcademic:   {"Assignment Completion"},
		CategoryBehavioral: {"Motivation Loss", "Mystery Tag", "Social Isolation"},
	}, got)
}

func TestFactorCatalog(t *testing.T) {
	catalog := FactorCatalog()

	assert.Len(t, catalog, 12)
	assert.Equal(t, FactorOption{Tag: "grades_declining", Label: "Declining Grades", Category: CategoryAcademic}, catalog[0])
	assert.Equal(t, FactorOption{Tag: "motivation_loss", Label: "Loss of Motivation", Category: CategoryBehavioral}, catalog[11])
}
