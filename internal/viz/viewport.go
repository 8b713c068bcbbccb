package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/gravsim/internal/geom"
)

// Bounds is an axis-aligned region of screen space.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

func (b Bounds) Width() float64  { return b.MaxX - b.MinX }
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// DefaultWorld is the region shown when the front end starts.
var DefaultWorld = Bounds{MaxX: 1000, MaxY: 800}

// Viewport maps screen-space positions onto canvas sub-pixels with a
// uniform scale, centring the world in the canvas.
type Viewport struct {
	world    Bounds
	scale    float64
	toCanvas mgl64.Mat3
	toWorld  mgl64.Mat3
}

func NewViewport(world Bounds, pixelWidth, pixelHeight int) Viewport {
	w, h := math.Max(world.Width(), 1), math.Max(world.Height(), 1)
	scale := math.Min(float64(pixelWidth)/w, float64(pixelHeight)/h)
	if scale <= 0 {
		scale = 1
	}
	cx := world.MinX + w/2
	cy := world.MinY + h/2

	m := mgl64.Translate2D(float64(pixelWidth)/2, float64(pixelHeight)/2).
		Mul3(mgl64.Scale2D(scale, scale)).
		Mul3(mgl64.Translate2D(-cx, -cy))

	return Viewport{
		world:    world,
		scale:    scale,
		toCanvas: m,
		toWorld:  m.Inv(),
	}
}

func (v Viewport) World() Bounds  { return v.world }
func (v Viewport) Scale() float64 { return v.scale }

// Project returns the sub-pixel holding p.
func (v Viewport) Project(p geom.Position) (int, int) {
	out := v.toCanvas.Mul3x1(mgl64.Vec3{p.X, p.Y, 1})
	return int(math.Floor(out[0])), int(math.Floor(out[1]))
}

// Unproject maps a sub-pixel coordinate back to screen space.
func (v Viewport) Unproject(x, y float64) geom.Position {
	out := v.toWorld.Mul3x1(mgl64.Vec3{x, y, 1})
	return geom.Position{X: out[0], Y: out[1]}
}

// Cell maps a terminal cell to the screen-space position of its centre.
func (v Viewport) Cell(col, row int) geom.Position {
	return v.Unproject(float64(col)*2+1, float64(row)*4+2)
}

// Fit returns bounds enclosing every point with the given margin fraction,
// or DefaultWorld when there are no points.
func Fit(points []geom.Position, margin float64) Bounds {
	if len(points) == 0 {
		return DefaultWorld
	}
	b := Bounds{MinX: points[0].X, MaxX: points[0].X, MinY: points[0].Y, MaxY: points[0].Y}
	for _, p := range points[1:] {
		b.MinX, b.MaxX = math.Min(b.MinX, p.X), math.Max(b.MaxX, p.X)
		b.MinY, b.MaxY = math.Min(b.MinY, p.Y), math.Max(b.MaxY, p.Y)
	}
	padX := math.Max(b.Width(), 1) * margin
	padY := math.Max(b.Height(), 1) * margin
	return Bounds{MinX: b.MinX - padX, MinY: b.MinY - padY, MaxX: b.MaxX + padX, MaxY: b.MaxY + padY}
}
