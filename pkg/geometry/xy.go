package geometry

import (
	"fmt"
	"math"
)

// XY is a point on the drawing surface.
//
// Surfaces use screen coordinates, so Y increases downward.
type XY struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (xy XY) String() string {
	return fmt.Sprintf("(%g, %g)", xy.X, xy.Y)
}

// Sub returns the vector pointing from o to xy.
func (xy XY) Sub(o XY) Vector {
	return Vector{DX: xy.X - o.X, DY: xy.Y - o.Y}
}

// Translate returns xy moved by v.
func (xy XY) Translate(v Vector) XY {
	return XY{X: xy.X + v.DX, Y: xy.Y + v.DY}
}

// Distance returns the euclidean distance between two points.
func (xy XY) Distance(o XY) float64 {
	return xy.Sub(o).Length()
}

// IsNaN reports whether either coordinate is NaN.
func (xy XY) IsNaN() bool {
	return math.IsNaN(xy.X) || math.IsNaN(xy.Y)
}

// IsInf reports whether either coordinate is infinite.
func (xy XY) IsInf() bool {
	return math.IsInf(xy.X, 0) || math.IsInf(xy.Y, 0)
}
