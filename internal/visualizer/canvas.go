package visualizer

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/vector"
)

// PixelCanvas is an in-memory RGBA canvas with anti-aliased rectangle fills.
type PixelCanvas struct {
	img *image.RGBA
	ras *vector.Rasterizer
}

// NewPixelCanvas returns a black canvas of the given size.
func NewPixelCanvas(width, height int) (*PixelCanvas, error) {
	c := &PixelCanvas{ras: vector.NewRasterizer(1, 1)}
	if err := c.SetSize(width, height); err != nil {
		return nil, err
	}
	return c, nil
}

// SetSize resizes the canvas if needed and clears it to black.
func (c *PixelCanvas) SetSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("canvas size %dx%d", width, height)
	}
	if c.img == nil || c.img.Rect.Dx() != width || c.img.Rect.Dy() != height {
		c.img = image.NewRGBA(image.Rect(0, 0, width, height))
	}
	draw.Draw(c.img, c.img.Rect, image.Black, image.Point{}, draw.Src)
	return nil
}

// FillRect paints the rectangle at (x, y) of size w×h, clipped to the
// canvas. Fractional edges are blended.
func (c *PixelCanvas) FillRect(x, y, w, h float64, col color.Color) {
	if c.img == nil || !(w > 0) || !(h > 0) {
		return
	}
	size := c.img.Rect.Size()
	x0 := math.Max(x, 0)
	y0 := math.Max(y, 0)
	x1 := math.Min(x+w, float64(size.X))
	y1 := math.Min(y+h, float64(size.Y))
	if x1 <= x0 || y1 <= y0 {
		return
	}

	bounds := image.Rect(int(math.Floor(x0)), int(math.Floor(y0)), int(math.Ceil(x1)), int(math.Ceil(y1)))
	ox, oy := float32(bounds.Min.X), float32(bounds.Min.Y)

	c.ras.Reset(bounds.Dx(), bounds.Dy())
	c.ras.DrawOp = draw.Over
	c.ras.MoveTo(float32(x0)-ox, float32(y0)-oy)
	c.ras.LineTo(float32(x1)-ox, float32(y0)-oy)
	c.ras.LineTo(float32(x1)-ox, float32(y1)-oy)
	c.ras.LineTo(float32(x0)-ox, float32(y1)-oy)
	c.ras.ClosePath()
	c.ras.Draw(c.img, bounds, image.NewUniform(col), image.Point{})
}

// Image returns the backing image. It is overwritten by the next frame.
func (c *PixelCanvas) Image() *image.RGBA { return c.img }

// WritePNG encodes the current frame.
func (c *PixelCanvas) WritePNG(w io.Writer) error {
	if c.img == nil {
		return fmt.Errorf("canvas not initialised")
	}
	return png.Encode(w, c.img)
}
