package visualizer

import (
	"image"
	"strings"
)

// Blocks renders two pixel rows per cell with the upper half block, the
// top pixel as foreground and the bottom one as background.
type Blocks struct {
	scaled  *image.RGBA
	profile colorProfile
}

func NewBlocks() *Blocks {
	return &Blocks{profile: currentColorProfile()}
}

func (b *Blocks) Name() string { return "blocks" }

func (b *Blocks) Render(img image.Image, cols, rows int) string {
	if img == nil || cols < 1 || rows < 1 || img.Bounds().Empty() {
		return ""
	}
	b.scaled = scaleTo(b.scaled, img, cols, rows*2)
	return renderHalfBlocks(b.scaled, b.profile)
}

func renderHalfBlocks(img *image.RGBA, p colorProfile) string {
	cols, rows := img.Rect.Dx(), img.Rect.Dy()/2

	var out strings.Builder
	out.Grow(rows * cols * 4)
	state := newANSIState(p)
	for r := range rows {
		if r > 0 {
			state.reset(&out)
			out.WriteByte('\n')
		}
		for c := range cols {
			top := rgbOf(img.RGBAAt(c, 2*r))
			bottom := rgbOf(img.RGBAAt(c, 2*r+1))
			if p == colorNone {
				out.WriteByte(densityChar((top.luma() + bottom.luma()) / 2))
				continue
			}
			state.set(&out, top)
			state.setBackground(&out, bottom)
			out.WriteString("▀")
		}
	}
	state.reset(&out)
	return out.String()
}
