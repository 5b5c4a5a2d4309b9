package ui

import (
	"fmt"
	"strings"
)

// renderPositionBar draws the playhead within the looping clip.
func renderPositionBar(pos, total float64, width int) string {
	if width < 10 {
		width = 10
	}
	var ratio float64
	if total > 0 {
		ratio = pos / total
	}
	ratio = max(0, min(1, ratio))

	head := int(ratio * float64(width-1))
	return strings.Repeat("━", head) + "●" + strings.Repeat("─", width-1-head)
}

func formatHz(hz float64) string {
	if hz >= 1000 {
		return fmt.Sprintf("%.2f kHz", hz/1000)
	}
	return fmt.Sprintf("%.0f Hz", hz)
}

func spaces(n int) string {
	if n < 0 {
		n = 0
	}
	return strings.Repeat(" ", n)
}
