package render

import (
	"fmt"
	"iter"

	"github.com/willbeason/fractal-canopy/pkg/geometry"
	"github.com/willbeason/fractal-canopy/pkg/tree"
)

// ThicknessScale converts the user-facing thickness into a stroke width per
// unit of weight. A thickness of 10 draws the weight-1 twigs one unit wide.
const ThicknessScale = 0.1

// A Surface is something lines can be stroked onto.
type Surface interface {
	// Size is the current width and height of the surface.
	Size() (width, height float64)

	// Clear erases everything drawn so far.
	Clear() error

	// StrokeLine draws a straight line of the given width.
	StrokeLine(from, to geometry.XY, width float64) error
}

// Renderer strokes canopy segments onto a Surface.
type Renderer struct {
	Thickness float64
}

// StrokeWidth is the width a segment of the given weight is drawn with.
func (r Renderer) StrokeWidth(weight int) float64 {
	return r.Thickness * ThicknessScale * float64(weight)
}

// Render strokes every segment in order and returns how many were drawn.
// It stops at the first failed stroke.
func (r Renderer) Render(s Surface, segments iter.Seq[tree.Emitted]) (int, error) {
	n := 0
	for e := range segments {
		err := s.StrokeLine(e.From, e.To, r.StrokeWidth(e.Weight))
		if err != nil {
			return n, fmt.Errorf("stroking segment %d (%v): %w", n, e.Segment, err)
		}
		n++
	}

	return n, nil
}
