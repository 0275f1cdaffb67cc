package render

import (
	"image"
	"io"
	"math"

	"github.com/gogpu/gg"
	"github.com/willbeason/fractal-canopy/pkg/geometry"
)

// HairlineWidth is used for strokes whose computed width is not positive.
const HairlineWidth = 1.0

// Canvas is a raster Surface backed by a gg drawing context.
//
// Strokes with a non-finite endpoint are skipped, as a browser canvas does.
type Canvas struct {
	dc *gg.Context

	background gg.RGBA
	ink        gg.RGBA
}

var _ Surface = (*Canvas)(nil)

// NewCanvas returns a white width by height canvas drawing in black.
func NewCanvas(width, height int) *Canvas {
	c := &Canvas{
		dc:         gg.NewContext(width, height),
		background: gg.White,
		ink:        gg.Black,
	}
	c.dc.ClearWithColor(c.background)

	return c
}

func (c *Canvas) Size() (float64, float64) {
	return float64(c.dc.Width()), float64(c.dc.Height())
}

// Resize changes the canvas dimensions. The contents are discarded.
func (c *Canvas) Resize(width, height int) error {
	err := c.dc.Resize(width, height)
	if err != nil {
		return err
	}
	c.dc.ClearWithColor(c.background)

	return nil
}

func (c *Canvas) Clear() error {
	c.dc.ClearWithColor(c.background)
	return nil
}

func (c *Canvas) StrokeLine(from, to geometry.XY, width float64) error {
	if !finite(from) || !finite(to) {
		return nil
	}
	if !(width > 0) || math.IsInf(width, 0) {
		width = HairlineWidth
	}

	c.dc.SetRGBA(c.ink.R, c.ink.G, c.ink.B, c.ink.A)
	c.dc.SetLineWidth(width)
	c.dc.DrawLine(from.X, from.Y, to.X, to.Y)

	return c.dc.Stroke()
}

func (c *Canvas) Image() image.Image {
	return c.dc.Image()
}

func (c *Canvas) EncodePNG(w io.Writer) error {
	return c.dc.EncodePNG(w)
}

// EncodeJPEG writes the canvas with the given quality (1-100).
func (c *Canvas) EncodeJPEG(w io.Writer, quality int) error {
	return c.dc.EncodeJPEG(w, quality)
}

func (c *Canvas) SavePNG(path string) error {
	return c.dc.SavePNG(path)
}

func (c *Canvas) Close() error {
	return c.dc.Close()
}

func finite(xy geometry.XY) bool {
	return !xy.IsNaN() && !xy.IsInf()
}
