package physics

import (
	"math"

	"github.com/san-kum/gravsim/internal/geom"
)

// BodyID identifies a body for the lifetime of a simulation. IDs are never
// reused, so a Force can refer to a body that has since been removed.
type BodyID uint64

// Force is the pull exerted on a body by Source.
type Force struct {
	Source BodyID
	Vector geom.Vector
}

type Params struct {
	G float64
	// MinDistance floors the separation used in the inverse-square law.
	MinDistance float64
}

func DefaultParams() Params {
	return Params{G: 1, MinDistance: 1}
}

// Attraction returns G·m1·m2/d² with d floored at MinDistance. With no floor
// a zero distance yields no force.
func (p Params) Attraction(m1, m2, d float64) float64 {
	d = math.Max(d, p.MinDistance)
	if d == 0 {
		return 0
	}
	return p.G * m1 * m2 / (d * d)
}
