package dock

import (
	"math"
	"time"
)

// IntentKind tells the window shell which way to animate.
type IntentKind string

const (
	IntentNone IntentKind = "none"
	IntentShow IntentKind = "show"
	IntentHide IntentKind = "hide"
)

// Intent is a slide animation the shell should run.
type Intent struct {
	Kind     IntentKind
	From     Point
	To       Point
	Duration time.Duration
}

// None reports whether there is nothing to animate.
func (i Intent) None() bool {
	return i.Kind == "" || i.Kind == IntentNone
}

// PositionAt returns the window position at progress in [0, 1] using an
// out-quad curve. Values outside the range are clamped.
func (i Intent) PositionAt(progress float64) Point {
	if progress <= 0 {
		return i.From
	}
	if progress >= 1 {
		return i.To
	}
	eased := OutQuad(progress)
	return Point{
		X: i.From.X + int(math.Round(float64(i.To.X-i.From.X)*eased)),
		Y: i.From.Y + int(math.Round(float64(i.To.Y-i.From.Y)*eased)),
	}
}

// OutQuad decelerates toward the end: 1 - (1-t)^2.
func OutQuad(t float64) float64 {
	return 1 - (1-t)*(1-t)
}
