package visualizer

import (
	"image"
	"strings"
)

// Braille renders a frame with Unicode Braille characters. Each cell is a
// 2x4 dot grid, giving 2x horizontal and 4x vertical resolution. A dot is
// raised when its pixel is brighter than the threshold, and the cell takes
// the average color of its raised dots.
type Braille struct {
	scaled    *image.RGBA
	profile   colorProfile
	threshold float64
}

func NewBraille() *Braille {
	return &Braille{profile: currentColorProfile(), threshold: 0.08}
}

func (b *Braille) Name() string { return "braille" }

// Braille dot positions (col, row) → bit offset:
//
//	(0,0)=0  (1,0)=3
//	(0,1)=1  (1,1)=4
//	(0,2)=2  (1,2)=5
//	(0,3)=6  (1,3)=7
var brailleBits = [2][4]uint{
	{0, 1, 2, 6},
	{3, 4, 5, 7},
}

func (b *Braille) Render(img image.Image, cols, rows int) string {
	if img == nil || cols < 1 || rows < 1 || img.Bounds().Empty() {
		return ""
	}
	b.scaled = scaleTo(b.scaled, img, cols*2, rows*4)

	var out strings.Builder
	state := newANSIState(b.profile)
	for row := range rows {
		if row > 0 {
			state.reset(&out)
			out.WriteByte('\n')
		}
		for col := range cols {
			var pattern uint
			var sr, sg, sb, lit int
			for dx := range 2 {
				for dy := range 4 {
					px := rgbOf(b.scaled.RGBAAt(col*2+dx, row*4+dy))
					if px.luma() <= b.threshold {
						continue
					}
					pattern |= 1 << brailleBits[dx][dy]
					sr += int(px.R)
					sg += int(px.G)
					sb += int(px.B)
					lit++
				}
			}
			if lit > 0 {
				state.set(&out, colorRGB{R: uint8(sr / lit), G: uint8(sg / lit), B: uint8(sb / lit)})
			}
			out.WriteRune(rune(0x2800 + pattern))
		}
	}
	state.reset(&out)
	return out.String()
}
