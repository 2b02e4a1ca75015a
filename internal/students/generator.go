package students

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/ZanzyTHEbar/student-risk-meter/internal/risk"
)

var (
	firstNames = []string{
		"Alex", "Jordan", "Taylor", "Morgan", "Casey", "Riley", "Avery", "Quinn",
		"Jamie", "Skyler", "Rowan", "Harper", "Elliot", "Reese", "Dakota", "Emerson",
	}
	lastNames = []string{
		"Garcia", "Smith", "Nguyen", "Johnson", "Patel", "Brown", "Kim", "Lopez",
		"Williams", "Okafor", "Silva", "Chen", "Murphy", "Haddad", "Novak", "Rossi",
	}
)

// uniform ranges are half-open [min, max)
type floatRange struct{ min, max float64 }
type intRange struct{ min, max int }

var (
	generatedAcademic   = floatRange{0.6, 1.0}
	generatedAttendance = floatRange{0.7, 1.0}
	generatedIncidents  = intRange{0, 5}
	generatedSocial     = floatRange{0.5, 1.0}
)

// Generator draws synthetic students and metrics from a random source. It is
// safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator creates a generator. A nil source seeds from the runtime.
func NewGenerator(src rand.Source) *Generator {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Generator{rng: rand.New(src)}
}

// StudentID returns a random 8-digit identifier.
func (g *Generator) StudentID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var b strings.Builder
	for i := 0; i < 8; i++ {
		b.WriteByte(byte('0' + g.rng.IntN(10)))
	}
	return b.String()
}

func (g *Generator) Name() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fmt.Sprintf("%s %s", firstNames[g.rng.IntN(len(firstNames))], lastNames[g.rng.IntN(len(lastNames))])
}

// GradeLevel returns a high-school grade between 9 and 12.
func (g *Generator) GradeLevel() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return 9 + g.rng.IntN(4)
}

// InitialMetrics draws the metrics of a newly generated student.
func (g *Generator) InitialMetrics() risk.Metrics {
	g.mu.Lock()
	defer g.mu.Unlock()
	return risk.NewMetrics(
		g.float(generatedAcademic),
		g.float(generatedAttendance),
		g.int(generatedIncidents),
		g.float(generatedSocial),
	)
}

func (g *Generator) float(r floatRange) float64 {
	return r.min + g.rng.Float64()*(r.max-r.min)
}

// int is inclusive on both ends
func (g *Generator) int(r intRange) int {
	return r.min + g.rng.IntN(r.max-r.min+1)
}
