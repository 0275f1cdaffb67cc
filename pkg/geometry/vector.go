package geometry

import (
	"fmt"
	"math"
)

// Vector is a displacement between two points.
type Vector struct {
	DX, DY float64
}

func (v Vector) String() string {
	return fmt.Sprintf("<%g, %g>", v.DX, v.DY)
}

// Length returns the magnitude of the vector.
func (v Vector) Length() float64 {
	return math.Hypot(v.DX, v.DY)
}

// Scale multiplies both components by f.
func (v Vector) Scale(f float64) Vector {
	return Vector{DX: v.DX * f, DY: v.DY * f}
}

// Normalize returns a vector of length 1 in the direction of v.
// A zero vector normalizes to NaN components.
func (v Vector) Normalize() Vector {
	return v.Scale(1.0 / v.Length())
}

// WithLength returns v rescaled to the given length.
func (v Vector) WithLength(length float64) Vector {
	return v.Normalize().Scale(length)
}

// Rotate turns v by angle radians.
//
// A positive angle rotates +X toward +Y, which on a Y-down surface is clockwise.
func (v Vector) Rotate(angle float64) Vector {
	sin, cos := math.Sincos(angle)
	return Vector{
		DX: v.DX*cos - v.DY*sin,
		DY: v.DX*sin + v.DY*cos,
	}
}

// Dot returns the dot product of v and o.
func (v Vector) Dot(o Vector) float64 {
	return v.DX*o.DX + v.DY*o.DY
}

// Cross returns the z component of the cross product of v and o.
func (v Vector) Cross(o Vector) float64 {
	return v.DX*o.DY - v.DY*o.DX
}

// IsZero reports whether v has no direction.
func (v Vector) IsZero() bool {
	return v.DX == 0 && v.DY == 0
}
