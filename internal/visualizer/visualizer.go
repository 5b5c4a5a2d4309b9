package visualizer

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// Presenter turns a rendered frame into terminal text.
type Presenter interface {
	Name() string
	Render(img image.Image, cols, rows int) string
}

// Presenters returns all available presenters.
func Presenters() []Presenter {
	return []Presenter{
		NewBlocks(),
		NewBraille(),
	}
}

// scaleTo resamples img into dst, reusing dst when it already has the
// requested size.
func scaleTo(dst *image.RGBA, img image.Image, w, h int) *image.RGBA {
	if dst == nil || dst.Rect.Dx() != w || dst.Rect.Dy() != h {
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
	}
	xdraw.BiLinear.Scale(dst, dst.Rect, img, img.Bounds(), xdraw.Src, nil)
	return dst
}
