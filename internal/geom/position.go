package geom

import (
	"fmt"
	"math"
)

type Position struct {
	X, Y float64
}

func NewPosition(x, y float64) Position {
	return Position{X: x, Y: y}
}

func (p Position) Equal(o Position) bool {
	return p.X == o.X && p.Y == o.Y
}

func (p Position) IsValid() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Translate moves p by v scaled by k, honouring the inverted screen y axis.
func (p Position) Translate(v Vector, k float64) Position {
	return Position{X: p.X + v.X()*k, Y: p.Y - v.Y()*k}
}

func (p Position) String() string {
	return fmt.Sprintf("(%.3f, %.3f)", p.X, p.Y)
}
