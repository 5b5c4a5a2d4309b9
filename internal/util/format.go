// Package util holds small formatting helpers shared by the UI.
package util

import (
	"fmt"
	"math"
	"time"
)

// FormatDuration formats a duration as m:ss.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// FormatSeconds formats a clock reading in seconds as m:ss.t.
func FormatSeconds(s float64) string {
	if s < 0 || math.IsNaN(s) {
		s = 0
	}
	tenths := int(math.Floor(s * 10))
	return fmt.Sprintf("%s.%d", FormatDuration(time.Duration(tenths/10)*time.Second), tenths%10)
}
