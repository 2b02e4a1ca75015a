package risk

import (
	"fmt"
	"sort"
)

// Shape identifies a behavioral pattern reported by the student-data service.
type Shape string

const (
	ShapeCircle   Shape = "circle"
	ShapeTriangle Shape = "triangle"
	ShapeSquare   Shape = "square"
)

var shapeOrder = []Shape{ShapeCircle, ShapeTriangle, ShapeSquare}

var shapeIndicators = map[Shape]Category{
	ShapeCircle:   CategoryAcademic,
	ShapeTriangle: CategoryAttendance,
	ShapeSquare:   CategoryBehavioral,
}

// Patterns maps each reported shape to its grade.
type Patterns map[Shape]Grade

// IndicatorFor returns the indicator category a shape is displayed under.
func IndicatorFor(s Shape) (Category, bool) {
	c, ok := shapeIndicators[s]
	return c, ok
}

// Shapes returns the reported shapes in display order: known shapes first,
// then any other shape sorted by name.
func (p Patterns) Shapes() []Shape {
	shapes := make([]Shape, 0, len(p))
	for _, s := range shapeOrder {
		if _, ok := p[s]; ok {
			shapes = append(shapes, s)
		}
	}

	var extra []string
	for s := range p {
		if _, known := shapeIndicators[s]; !known {
			extra = append(extra, string(s))
		}
	}
	sort.Strings(extra)
	for _, s := range extra {
		shapes = append(shapes, Shape(s))
	}
	return shapes
}

// Grades returns the pattern grades in Shapes order.
func (p Patterns) Grades() []Grade {
	grades := make([]Grade, 0, len(p))
	for _, s := range p.Shapes() {
		grades = append(grades, p[s])
	}
	return grades
}

// Validate rejects grades outside the four-color scale.
func (p Patterns) Validate() error {
	for s, g := range p {
		if !g.Valid() {
			return fmt.Errorf("pattern %s: %q: %w", s, g, ErrUnknownGrade)
		}
	}
	return nil
}

// AggregatePatterns scores one grade per reported pattern.
func AggregatePatterns(p Patterns) (Score, error) {
	return Aggregate(p.Grades())
}
