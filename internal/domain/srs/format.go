package srs

import (
	"fmt"
	"math"
)

// FormatInterval converts a day interval into a short display label such as
// "10m", "5h", "3d", "2mo" or "1.5y". It is for display only.
func FormatInterval(days float64) string {
	if days < 1 {
		minutes := math.Round(days * 24 * 60)
		if minutes < 60 {
			return fmt.Sprintf("%dm", int(minutes))
		}
		return fmt.Sprintf("%dh", int(math.Round(minutes/60)))
	}
	if days < 30 {
		return fmt.Sprintf("%dd", int(math.Round(days)))
	}
	if days < 365 {
		return fmt.Sprintf("%dmo", int(math.Round(days/30)))
	}
	return fmt.Sprintf("%.1fy", days/365)
}
