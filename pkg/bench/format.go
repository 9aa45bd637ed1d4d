package bench

import (
	"fmt"
	"time"
)

var byteUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatBytes renders a byte count with a binary unit, two decimals.
func FormatBytes(bytes int64) string {
	if bytes <= 0 {
		return "0 B"
	}
	size := float64(bytes)
	unit := 0
	for size >= 1024.0 && unit < len(byteUnits)-1 {
		size /= 1024.0
		unit++
	}
	return fmt.Sprintf("%.2f %s", size, byteUnits[unit])
}

// FormatDuration renders a duration as ms, seconds, or minutes depending on
// magnitude.
func FormatDuration(d time.Duration) string {
	ms := d.Milliseconds()
	switch {
	case ms < 1000:
		return fmt.Sprintf("%dms", ms)
	case ms < 60_000:
		return fmt.Sprintf("%.2fs", float64(ms)/1000.0)
	default:
		minutes := ms / 60_000
		seconds := float64(ms%60_000) / 1000.0
		return fmt.Sprintf("%dm %.2fs", minutes, seconds)
	}
}
