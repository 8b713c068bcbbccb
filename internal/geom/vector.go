package geom

import (
	"fmt"
	"math"
)

// cardinalEpsilon is how far (in quarter turns) an angle may sit from a
// cardinal direction and still be snapped onto the axis.
const cardinalEpsilon = 1e-12

// Vector is a 2D quantity stored as magnitude and angle. Components are
// derived once at construction, so a Vector is safe to copy and compare.
// The zero value is the zero vector.
type Vector struct {
	magnitude float64
	theta     float64
	x, y      float64
}

func FromPolar(magnitude, theta float64) Vector {
	x, y := components(magnitude, theta)
	return Vector{magnitude: magnitude, theta: theta, x: x, y: y}
}

// FromComponents builds a vector from Cartesian components in vector
// orientation (positive y up).
func FromComponents(x, y float64) Vector {
	m := math.Hypot(x, y)
	return FromPolar(m, angleOf(x, y, m))
}

// Between returns the vector pointing from source to target. The y delta is
// negated to convert from screen space.
func Between(source, target Position) Vector {
	return FromComponents(target.X-source.X, -(target.Y - source.Y))
}

func (v Vector) Magnitude() float64 { return v.magnitude }
func (v Vector) Theta() float64     { return v.theta }
func (v Vector) X() float64         { return v.x }
func (v Vector) Y() float64         { return v.y }

func (v Vector) IsZero() bool { return v.magnitude == 0 }

func (v Vector) IsValid() bool {
	for _, f := range [...]float64{v.magnitude, v.theta, v.x, v.y} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

func (v Vector) WithMagnitude(magnitude float64) Vector {
	return FromPolar(magnitude, v.theta)
}

func (v Vector) WithTheta(theta float64) Vector {
	return FromPolar(v.magnitude, theta)
}

// Scale multiplies the magnitude by k. A negative factor flips the direction
// so the magnitude stays non-negative.
func (v Vector) Scale(k float64) Vector {
	if k < 0 {
		return FromPolar(v.magnitude*-k, v.InverseTheta())
	}
	return FromPolar(v.magnitude*k, v.theta)
}

// Add returns the vector sum. Adding a zero vector returns v itself, not a
// recomputed copy, so long chains of zero forces never drift. When both
// operands lie on the positive x axis the result angle is exactly 0.
func (v Vector) Add(o Vector) Vector {
	if o.magnitude == 0 {
		return v
	}
	x := v.x + o.x
	y := v.y + o.y
	m := math.Hypot(x, y)
	theta := angleOf(x, y, m)
	if v.theta == 0 && o.theta == 0 {
		theta = 0
	}
	return FromPolar(m, theta)
}

// InverseTheta is the angle of -v.
func (v Vector) InverseTheta() float64 {
	return angleOf(-v.x, -v.y, v.magnitude)
}

func (v Vector) Inverse() Vector {
	return FromPolar(v.magnitude, v.InverseTheta())
}

func (v Vector) String() string {
	return fmt.Sprintf("|%.4f| @ %.4f rad", v.magnitude, v.theta)
}

// components derives x and y, assigning exact values on the axes instead of
// trusting sin/cos to return clean zeros.
func components(magnitude, theta float64) (float64, float64) {
	q := theta / (math.Pi / 2)
	r := math.Round(q)
	if math.Abs(q-r) <= cardinalEpsilon+1e-15*math.Abs(r) {
		quarter := math.Mod(r, 4)
		if quarter < 0 {
			quarter += 4
		}
		switch int(quarter) {
		case 0:
			return magnitude, 0
		case 1:
			return 0, magnitude
		case 2:
			return -magnitude, 0
		case 3:
			return 0, -magnitude
		}
	}
	sin, cos := math.Sincos(theta)
	return magnitude * cos, magnitude * sin
}

// angleOf recovers the angle in (-π, π] from components via arccosine,
// negated below the horizontal. A zero vector has angle 0.
func angleOf(x, y, magnitude float64) float64 {
	if magnitude == 0 {
		return 0
	}
	c := x / magnitude
	if c > 1 {
		c = 1
	} else if c < -1 {
		c = -1
	}
	theta := math.Acos(c)
	if y < 0 {
		return -theta
	}
	return theta
}
