package physics

import (
	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/gravsim/internal/geom"
)

// Lookup resolves a body by ID, reporting false once it has been removed.
type Lookup func(BodyID) (*Body, bool)

type Body struct {
	id     BodyID
	radius float64
	mass   float64

	position     geom.Position
	velocity     geom.Vector
	acceleration geom.Vector
	netForce     Force

	// forces is keyed by source; order keeps first-seen order so the net
	// force is summed deterministically.
	forces map[BodyID]*Force
	order  []BodyID

	collided []BodyID

	path  *Path
	color colorful.Color
}

// NewBody creates a body at rest (apart from v0) with mass radius².
func NewBody(id BodyID, radius float64, position geom.Position, v0 geom.Vector, color colorful.Color) *Body {
	return &Body{
		id:       id,
		radius:   radius,
		mass:     radius * radius,
		position: position,
		velocity: v0,
		netForce: Force{Source: id},
		forces:   make(map[BodyID]*Force),
		path:     NewPath(color, DefaultPathOptions()),
		color:    color,
	}
}

func (b *Body) ID() BodyID                 { return b.id }
func (b *Body) Radius() float64            { return b.radius }
func (b *Body) Mass() float64              { return b.mass }
func (b *Body) Position() geom.Position    { return b.position }
func (b *Body) Velocity() geom.Vector      { return b.velocity }
func (b *Body) Acceleration() geom.Vector  { return b.acceleration }
func (b *Body) NetForce() Force            { return b.netForce }
func (b *Body) Path() *Path                { return b.path }
func (b *Body) Color() colorful.Color      { return b.color }
func (b *Body) Collisions() []BodyID       { return append([]BodyID(nil), b.collided...) }
func (b *Body) IsTouching(id BodyID) bool  { return b.collisionIndex(id) >= 0 }
func (b *Body) ForceFrom(id BodyID) *Force { return b.forces[id] }

// Forces returns the pairwise forces in first-seen order.
func (b *Body) Forces() []Force {
	out := make([]Force, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, *b.forces[id])
	}
	return out
}

// UpdateForces recomputes the pull of every other body, refreshes the
// collision set and sums the net force.
func (b *Body) UpdateForces(bodies []*Body, p Params) {
	others := 0
	for _, other := range bodies {
		if other == nil || other.id == b.id {
			continue
		}
		others++

		f, ok := b.forces[other.id]
		if !ok {
			f = &Force{Source: other.id}
			b.forces[other.id] = f
			b.order = append(b.order, other.id)
		}

		distance := geom.Between(b.position, other.position)
		d := distance.Magnitude()
		if d == 0 {
			// Coincident bodies have no direction to pull along.
			f.Vector = geom.Vector{}
		} else {
			f.Vector = geom.FromPolar(p.Attraction(b.mass, other.mass, d), distance.Theta())
		}

		touching := b.radius/2+other.radius/2 >= d
		marked := b.IsTouching(other.id)
		switch {
		case touching && !marked:
			b.collided = append(b.collided, other.id)
		case !touching && marked:
			b.untouch(other.id)
		}
	}

	if len(b.forces) > others {
		b.prune(bodies)
	}
	b.updateNetForce()
}

// updateNetForce sums all pairwise forces. A body already in contact
// contributes its force reversed, so it stops pulling this body into it.
func (b *Body) updateNetForce() {
	var net geom.Vector
	for _, id := range b.order {
		v := b.forces[id].Vector
		if b.IsTouching(id) {
			v = v.WithTheta(v.InverseTheta())
		}
		net = net.Add(v)
	}
	b.netForce = Force{Source: b.id, Vector: net}
}

// UpdateAcceleration applies F = m·a with the force scaled by dt.
func (b *Body) UpdateAcceleration(dt float64) {
	if b.mass == 0 {
		b.acceleration = geom.Vector{}
		return
	}
	b.acceleration = geom.FromPolar(b.netForce.Vector.Magnitude()*dt/b.mass, b.netForce.Vector.Theta())
}

func (b *Body) UpdateVelocity(dt float64) {
	b.velocity = b.velocity.Add(geom.FromPolar(b.acceleration.Magnitude()*dt, b.acceleration.Theta()))
}

// UpdatePosition moves the body by velocity·dt. While touching other bodies
// each axis only moves if the move leads away from every partner on that axis.
func (b *Body) UpdatePosition(dt float64, lookup Lookup) {
	next := b.position.Translate(b.velocity, dt)
	if len(b.collided) == 0 {
		b.position = next
		return
	}

	allowX, allowY := true, true
	for _, id := range b.collided {
		other, ok := lookup(id)
		if !ok {
			continue
		}
		allowX = allowX && movesAway(b.position.X, other.position.X, next.X)
		allowY = allowY && movesAway(b.position.Y, other.position.Y, next.Y)
	}
	if allowX {
		b.position.X = next.X
	}
	if allowY {
		b.position.Y = next.Y
	}
}

// Kinematics is the per-tick mutable state of a body. Pairwise forces are
// not part of it; they are recomputed from positions on every update.
type Kinematics struct {
	Position     geom.Position
	Velocity     geom.Vector
	Acceleration geom.Vector
	NetForce     Force
	Collisions   []BodyID
}

func (b *Body) Kinematics() Kinematics {
	return Kinematics{
		Position:     b.position,
		Velocity:     b.velocity,
		Acceleration: b.acceleration,
		NetForce:     b.netForce,
		Collisions:   b.Collisions(),
	}
}

func (b *Body) Restore(k Kinematics) {
	b.position = k.Position
	b.velocity = k.Velocity
	b.acceleration = k.Acceleration
	b.netForce = k.NetForce
	b.collided = append(b.collided[:0], k.Collisions...)
}

// IsValid reports whether all kinematic quantities are finite.
func (b *Body) IsValid() bool {
	return b.position.IsValid() && b.velocity.IsValid() && b.acceleration.IsValid() && b.netForce.Vector.IsValid()
}

func movesAway(current, partner, candidate float64) bool {
	if current > partner {
		return candidate > current
	}
	return candidate < current
}

func (b *Body) collisionIndex(id BodyID) int {
	for i, c := range b.collided {
		if c == id {
			return i
		}
	}
	return -1
}

func (b *Body) untouch(id BodyID) {
	if i := b.collisionIndex(id); i >= 0 {
		b.collided = append(b.collided[:i], b.collided[i+1:]...)
	}
}

// prune drops forces and contacts whose source left the simulation.
func (b *Body) prune(bodies []*Body) {
	alive := make(map[BodyID]struct{}, len(bodies))
	for _, other := range bodies {
		if other != nil {
			alive[other.id] = struct{}{}
		}
	}

	kept := b.order[:0]
	for _, id := range b.order {
		if _, ok := alive[id]; ok {
			kept = append(kept, id)
			continue
		}
		delete(b.forces, id)
		b.untouch(id)
	}
	b.order = kept
}
