package render

import "github.com/willbeason/fractal-canopy/pkg/geometry"

// Stroke is one line drawn on a Recorder.
type Stroke struct {
	From  geometry.XY `json:"from"`
	To    geometry.XY `json:"to"`
	Width float64     `json:"width"`
}

// Recorder is a Surface that keeps the strokes drawn since the last Clear
// instead of rasterizing them.
type Recorder struct {
	Width, Height float64

	Strokes []Stroke

	// Clears counts how many times the surface has been cleared.
	Clears int
}

var _ Surface = (*Recorder)(nil)

func NewRecorder(width, height float64) *Recorder {
	return &Recorder{Width: width, Height: height}
}

func (r *Recorder) Size() (float64, float64) {
	return r.Width, r.Height
}

func (r *Recorder) Clear() error {
	r.Strokes = r.Strokes[:0]
	r.Clears++
	return nil
}

func (r *Recorder) StrokeLine(from, to geometry.XY, width float64) error {
	r.Strokes = append(r.Strokes, Stroke{From: from, To: to, Width: width})
	return nil
}
