package risk

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type Category string

const (
	CategoryAcademic   Category = "academic"
	CategoryAttendance Category = "attendance"
	CategoryBehavioral Category = "behavioral"
)

// Categories maps a category to the display labels of its factors, in input
// order. Only categories with at least one factor are present.
type Categories map[Category][]string

// Rules are evaluated in order; the first match wins and anything unmatched
// falls through to behavioral.
var categoryRules = []struct {
	category Category
	keywords []string
}{
	{CategoryAcademic, []string{"grade", "completion", "engagement"}},
	{CategoryAttendance, []string{"attendance", "tardiness", "skipping"}},
}

// CategorizeFactor returns the category of a single risk factor tag.
func CategorizeFactor(tag string) Category {
	lower := strings.ToLower(tag)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category
			}
		}
	}
	return CategoryBehavioral
}

// FactorLabel turns a tag like "grades_declining" into "Grades Declining".
func FactorLabel(tag string) string {
	var b strings.Builder
	b.Grow(len(tag))

	startOfWord := true
	for len(tag) > 0 {
		r, size := utf8.DecodeRuneInString(tag)
		tag = tag[size:]
		if r == '_' {
			r = ' '
		}
		if startOfWord {
			r = unicode.ToUpper(r)
		}
		startOfWord = r == ' '
		b.WriteRune(r)
	}
	return b.String()
}

// CategorizeFactors groups tags by category. Blank tags are skipped; every
// other tag lands in exactly one category.
func CategorizeFactors(tags []string) Categories {
	out := make(Categories)
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		c := CategorizeFactor(tag)
		out[c] = append(out[c], FactorLabel(tag))
	}
	return out
}

// FactorOption is one selectable entry in the factor catalog.
type FactorOption struct {
	Tag      string   `json:"tag"`
	Label    string   `json:"label"`
	Category Category `json:"category"`
}

var factorCatalog = []struct{ tag, label string }{
	{"grades_declining", "Declining Grades"},
	{"assignment_completion", "Low Assignment Completion"},
	{"academic_engagement", "Low Academic Engagement"},
	{"attendance_poor", "Poor Attendance"},
	{"tardiness", "Frequent Tardiness"},
	{"class_skipping", "Class Skipping"},
	{"disruptive_behavior", "Disruptive Behavior"},
	{"disciplinary_incidents", "Disciplinary Incidents"},
	{"peer_conflicts", "Peer Conflicts"},
	{"social_isolation", "Social Isolation"},
	{"emotional_distress", "Emotional Distress"},
	{"motivation_loss", "Loss of Motivation"},
}

// FactorCatalog lists the known factor tags with their curated labels.
func FactorCatalog() []FactorOption {
	out := make([]FactorOption, 0, len(factorCatalog))
	for _, f := range factorCatalog {
		out = append(out, FactorOption{
			Tag:      f.tag,
			Label:    f.label,
			Category: CategorizeFactor(f.tag),
		})
	}
	return out
}
