package player

import "fmt"

// FormatClock renders a position as mm:ss, or hh:mm:ss once it reaches an hour.
// Negative values render as zero.
func FormatClock(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	seconds := ms / 1000
	minutes := seconds / 60
	hours := minutes / 60
	seconds %= 60
	minutes %= 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// FormatDuration renders a media length as hh:mm:ss from one hour on, mm:ss
// otherwise.
func FormatDuration(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	seconds := ms / 1000
	if ms >= 3600000 {
		return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds/60)%60, seconds%60)
	}
	return fmt.Sprintf("%02d:%02d", (seconds/60)%60, seconds%60)
}
