package tree

import (
	"errors"
	"fmt"
	"iter"
	"math"

	"github.com/willbeason/fractal-canopy/pkg/geometry"
)

// ErrDegenerateRoot is returned when the root segment has zero length, so there
// is no direction to branch from.
var ErrDegenerateRoot = errors.New("degenerate root segment")

// Side is which branch of a junction a segment was drawn for.
type Side int

const (
	Trunk Side = iota
	// Left is the branch rotated by +angle from its parent.
	Left
	// Right is the branch rotated by -angle from its parent.
	Right
)

func (s Side) String() string {
	switch s {
	case Trunk:
		return "trunk"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return fmt.Sprintf("Side(%d)", int(s))
}

// Emitted is a segment of the canopy along with the branch budget remaining
// when it was produced.
type Emitted struct {
	geometry.Segment

	// Weight is the remaining budget at emission. Renderers derive the stroke
	// width from it, so the trunk is the thickest line.
	Weight int

	// Depth is the number of recursive steps taken before the segment was
	// emitted. The trunk and its two children are at depth 0.
	Depth int

	Side Side
}

// Generate returns the canopy grown from root in pre-order: the root first,
// then for every junction its left and right children followed by the whole
// left subtree and then the whole right subtree.
//
// height is the length of the root's children; each further level is shorter
// by a factor of factor. angle is in radians. budget is the number of
// junction levels; a budget of zero or less yields only the root.
//
// factor is not checked. Zero or negative values produce infinite or
// reflected branches.
//
// The returned sequence may be iterated more than once and yields the same
// segments each time.
func Generate(root geometry.Segment, height, factor, angle float64, budget int) (iter.Seq[Emitted], error) {
	if root.IsDegenerate() {
		return nil, fmt.Errorf("%w: %v", ErrDegenerateRoot, root)
	}

	return func(yield func(Emitted) bool) {
		if !yield(Emitted{Segment: root, Weight: budget, Side: Trunk}) {
			return
		}
		symmetric(root, height, factor, angle, budget, 0, yield)
	}, nil
}

// Collect is Generate, but gathers every segment into a slice.
func Collect(root geometry.Segment, height, factor, angle float64, budget int) ([]Emitted, error) {
	seq, err := Generate(root, height, factor, angle, budget)
	if err != nil {
		return nil, err
	}

	result := make([]Emitted, 0, min(Count(budget), 1<<16))
	for e := range seq {
		result = append(result, e)
	}

	return result, nil
}

// Count is the number of segments Generate yields for budget: the trunk plus
// a full binary tree of budget levels, 2^(budget+1) - 1.
// Saturates at math.MaxInt.
func Count(budget int) int {
	if budget <= 0 {
		return 1
	}
	if budget >= 62 {
		return math.MaxInt
	}
	return 1<<(budget+1) - 1
}
