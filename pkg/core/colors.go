package core

import "strings"

// Reserved colors. Older databases encoded status in the color column, so
// these values are still accepted on input and mapped to a Status.
const (
	DefaultColor    = "#FFF9E6"
	CompletedColor  = "#e0e0e0"
	UrgentColor     = "#ffcccc"
	DefaultTagColor = "#5C4B00"

	// ClearedColor is what older clients wrote to drop a status marker.
	ClearedColor = "#ffffff"
)

// StatusFromColor maps a legacy marker color to its status.
// ok is false for ordinary display colors.
func StatusFromColor(color string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(color)) {
	case CompletedColor:
		return StatusCompleted, true
	case UrgentColor:
		return StatusUrgent, true
	case ClearedColor:
		return StatusNormal, true
	}
	return StatusNormal, false
}
