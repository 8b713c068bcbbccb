package physics

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/gravsim/internal/geom"
)

const (
	// Spacing is the target distance between consecutive interpolated points.
	Spacing = 1

	DefaultTaperedLength = 50
)

type PathOptions struct {
	Interpolated  bool
	Tapered       bool
	TaperedLength int
}

func DefaultPathOptions() PathOptions {
	return PathOptions{TaperedLength: DefaultTaperedLength}
}

// Path is the chronological trace of a body's positions.
type Path struct {
	points []geom.Position
	color  colorful.Color
	opts   PathOptions
}

func NewPath(color colorful.Color, opts PathOptions) *Path {
	return &Path{color: color, opts: opts}
}

func (p *Path) Configure(opts PathOptions) { p.opts = opts }
func (p *Path) Options() PathOptions       { return p.opts }
func (p *Path) Color() colorful.Color      { return p.color }
func (p *Path) Len() int                   { return len(p.points) }
func (p *Path) Clear()                     { p.points = p.points[:0] }

// Points returns a copy of the trace, oldest first.
func (p *Path) Points() []geom.Position {
	return append([]geom.Position(nil), p.points...)
}

func (p *Path) Last() (geom.Position, bool) {
	if len(p.points) == 0 {
		return geom.Position{}, false
	}
	return p.points[len(p.points)-1], true
}

// Add appends target to the trace. Once two points exist and interpolation
// is on, gaps wider than Spacing are filled with synthetic points first.
// Tapering then evicts the oldest points down to TaperedLength.
func (p *Path) Add(target geom.Position) {
	if len(p.points) < 2 || !p.opts.Interpolated {
		p.points = append(p.points, target)
		p.taper()
		return
	}

	source := p.points[len(p.points)-1]
	distance := geom.Between(source, target)
	if int(distance.Magnitude()) > Spacing {
		p.points = append(p.points, interpolate(source, target, distance)...)
	}
	p.points = append(p.points, target)
	p.taper()
}

func (p *Path) taper() {
	if !p.opts.Tapered {
		return
	}
	limit := max(p.opts.TaperedLength, 0)
	if excess := len(p.points) - limit; excess > 0 {
		n := copy(p.points, p.points[excess:])
		p.points = p.points[:n]
	}
}

// interpolate walks from target back toward source in Spacing steps along
// the segment, producing floor(|distance|/Spacing) points that start at the
// target. Near-horizontal segments (within 45° of the x axis) step x and solve
// for y; the rest step y and solve for x, so the slope used is never steeper
// than 1 in magnitude.
func interpolate(source, target geom.Position, distance geom.Vector) []geom.Position {
	length := distance.Magnitude()
	n := int(length / Spacing)
	if n <= 0 {
		return nil
	}

	dx := target.X - source.X
	dy := target.Y - source.Y
	points := make([]geom.Position, 0, n)

	sin, cos := math.Sincos(distance.Theta())
	if math.Abs(cos) > math.Abs(sin) {
		step := Spacing * dx / length
		slope := dy / dx
		for i := 0; i < n; i++ {
			x := target.X - step*float64(i)
			points = append(points, geom.Position{X: x, Y: target.Y + slope*(x-target.X)})
		}
		return points
	}

	step := Spacing * dy / length
	invSlope := dx / dy
	for i := 0; i < n; i++ {
		y := target.Y - step*float64(i)
		points = append(points, geom.Position{X: target.X + invSlope*(y-target.Y), Y: y})
	}
	return points
}
