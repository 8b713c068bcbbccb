package sim

import (
	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/gravsim/internal/geom"
	"github.com/san-kum/gravsim/internal/physics"
)

// BodyState is a read-only copy of one body for renderers and recorders.
type BodyState struct {
	ID           physics.BodyID
	Radius       float64
	Mass         float64
	Position     geom.Position
	Velocity     geom.Vector
	Acceleration geom.Vector
	NetForce     geom.Vector
	Touching     []physics.BodyID
	Path         []geom.Position
	Color        colorful.Color
}

type Snapshot struct {
	Tick     uint64
	Elapsed  float64
	Bodies   []BodyState
	Settings Settings
	Params   Params
}

// Snapshot copies the current state. It blocks while a tick is running.
func (s *Simulation) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Tick:     s.tick,
		Elapsed:  s.elapsed,
		Bodies:   make([]BodyState, 0, len(s.bodies)),
		Settings: s.settings,
		Params:   s.params,
	}
	for _, b := range s.bodies {
		snap.Bodies = append(snap.Bodies, BodyState{
			ID:           b.ID(),
			Radius:       b.Radius(),
			Mass:         b.Mass(),
			Position:     b.Position(),
			Velocity:     b.Velocity(),
			Acceleration: b.Acceleration(),
			NetForce:     b.NetForce().Vector,
			Touching:     b.Collisions(),
			Path:         b.Path().Points(),
			Color:        b.Color(),
		})
	}
	return snap
}

func (snap Snapshot) Body(id physics.BodyID) (BodyState, bool) {
	for _, b := range snap.Bodies {
		if b.ID == id {
			return b, true
		}
	}
	return BodyState{}, false
}

// Centroid is the mass-weighted centre of the bodies, or the plain average
// when every body is massless.
func (snap Snapshot) Centroid() geom.Position {
	var c geom.Position
	if len(snap.Bodies) == 0 {
		return c
	}
	total := 0.0
	for _, b := range snap.Bodies {
		c.X += b.Position.X * b.Mass
		c.Y += b.Position.Y * b.Mass
		total += b.Mass
	}
	if total == 0 {
		c = geom.Position{}
		for _, b := range snap.Bodies {
			c.X += b.Position.X
			c.Y += b.Position.Y
		}
		total = float64(len(snap.Bodies))
	}
	c.X /= total
	c.Y /= total
	return c
}
