package metrics

import (
	"math"

	"github.com/san-kum/gravsim/internal/geom"
	"github.com/san-kum/gravsim/internal/sim"
)

// TotalMomentum is Σ m·v in vector orientation.
func TotalMomentum(snap sim.Snapshot) geom.Vector {
	var p geom.Vector
	for _, b := range snap.Bodies {
		p = p.Add(b.Velocity.Scale(b.Mass))
	}
	return p
}

// Momentum reports the magnitude of the total linear momentum.
type Momentum struct {
	name  string
	value float64
}

func NewMomentum() *Momentum { return &Momentum{name: "momentum"} }

func (m *Momentum) Name() string              { return m.name }
func (m *Momentum) Observe(snap sim.Snapshot) { m.value = TotalMomentum(snap).Magnitude() }
func (m *Momentum) Value() float64            { return m.value }
func (m *Momentum) Reset()                    { m.value = 0 }

// CentroidDrift is the distance the mass-weighted centroid has moved since
// the first observation.
type CentroidDrift struct {
	name    string
	origin  geom.Position
	value   float64
	samples int
}

func NewCentroidDrift() *CentroidDrift { return &CentroidDrift{name: "centroid_drift"} }

func (c *CentroidDrift) Name() string { return c.name }

func (c *CentroidDrift) Observe(snap sim.Snapshot) {
	if len(snap.Bodies) == 0 {
		return
	}
	centroid := snap.Centroid()
	if c.samples == 0 {
		c.origin = centroid
	}
	c.samples++
	c.value = math.Hypot(centroid.X-c.origin.X, centroid.Y-c.origin.Y)
}

func (c *CentroidDrift) Value() float64 { return c.value }

func (c *CentroidDrift) Reset() {
	c.origin = geom.Position{}
	c.value = 0
	c.samples = 0
}
