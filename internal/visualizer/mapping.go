package visualizer

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// FrequencyForControl maps a linear control value in [0, 1] onto
// [minHz, maxHz] on an octave scale, so equal control steps move the cutoff
// by equal musical intervals. 1 maps exactly to maxHz.
func FrequencyForControl(v, minHz, maxHz float64) float64 {
	v = clamp01(v)
	octaves := math.Log2(maxHz / minHz)
	return maxHz * math.Pow(2, octaves*(v-1))
}

// ControlForFrequency is the inverse of FrequencyForControl.
func ControlForFrequency(hz, minHz, maxHz float64) float64 {
	if hz <= 0 {
		return 0
	}
	octaves := math.Log2(maxHz / minHz)
	return clamp01(1 + math.Log2(hz/maxHz)/octaves)
}

// FrequencyBin returns the bin nearest to freq, clamped to [0, bins-1].
func FrequencyBin(freq, nyquist float64, bins int) int {
	if bins <= 0 {
		return 0
	}
	idx := math.Round(freq / nyquist * float64(bins))
	if math.IsNaN(idx) || idx < 0 {
		return 0
	}
	if idx > float64(bins-1) {
		return bins - 1
	}
	return int(idx)
}

// BarHeight scales a byte sample onto [0, height].
func BarHeight(v byte, height float64) float64 {
	return height * float64(v) / 255
}

// BinHue spreads bins over the color wheel, low frequencies red.
func BinHue(i, bins int) float64 {
	return float64(i) / float64(bins) * 360
}

// BinColor is the fully saturated, half-lightness color of bin i.
func BinColor(i, bins int) color.Color {
	return colorful.Hsl(BinHue(i, bins), 1, 0.5).Clamped()
}
