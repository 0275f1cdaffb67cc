package geometry

import "fmt"

// A Segment is a straight branch drawn from From to To.
type Segment struct {
	From, To XY
}

func (s Segment) String() string {
	return fmt.Sprintf("%v -> %v", s.From, s.To)
}

// Vector returns the direction of the segment, To - From.
func (s Segment) Vector() Vector {
	return s.To.Sub(s.From)
}

func (s Segment) Length() float64 {
	return s.Vector().Length()
}

// IsDegenerate reports whether the segment has no direction.
func (s Segment) IsDegenerate() bool {
	return s.Vector().IsZero()
}

// Trunk returns the vertical segment anchored at the bottom center of a
// width by height surface, extending upward by length.
func Trunk(width, height, length float64) Segment {
	return Segment{
		From: XY{X: width / 2, Y: height},
		To:   XY{X: width / 2, Y: height - length},
	}
}
