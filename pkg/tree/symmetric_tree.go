package tree

import "github.com/willbeason/fractal-canopy/pkg/geometry"

// symmetric emits the two children of parent, both deviating by the same
// angle, and then recurses into each with a shorter height and one less
// budget. It returns false once yield has asked to stop.
func symmetric(parent geometry.Segment, height, factor, angle float64, budget, depth int, yield func(Emitted) bool) bool {
	if budget <= 0 {
		return true
	}

	v := parent.Vector().WithLength(height)

	left := geometry.Segment{From: parent.To, To: parent.To.Translate(v.Rotate(angle))}
	right := geometry.Segment{From: parent.To, To: parent.To.Translate(v.Rotate(-angle))}

	if !yield(Emitted{Segment: left, Weight: budget, Depth: depth, Side: Left}) {
		return false
	}
	if !yield(Emitted{Segment: right, Weight: budget, Depth: depth, Side: Right}) {
		return false
	}

	next := height / factor
	return symmetric(left, next, factor, angle, budget-1, depth+1, yield) &&
		symmetric(right, next, factor, angle, budget-1, depth+1, yield)
}
