package metrics

import (
	"math"

	"github.com/san-kum/gravsim/internal/sim"
)

// Bounded is the fraction of ticks on which every body stayed within
// threshold of the centroid. Ejected bodies pull it below 1.
type Bounded struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewBounded(threshold float64) *Bounded {
	return &Bounded{
		name:      "bounded",
		threshold: threshold,
	}
}

func (s *Bounded) Name() string {
	return s.name
}

func (s *Bounded) Observe(snap sim.Snapshot) {
	s.samples++
	c := snap.Centroid()
	for _, b := range snap.Bodies {
		if math.Hypot(b.Position.X-c.X, b.Position.Y-c.Y) > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Bounded) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Bounded) Reset() {
	s.violations = 0
	s.samples = 0
}
