package dock

// Point is a position in screen pixels.
type Point struct {
	X, Y int
}

// Rect is an axis-aligned rectangle in screen pixels.
type Rect struct {
	X, Y, W, H int
}

// Valid reports whether the rectangle has a positive area.
func (r Rect) Valid() bool {
	return r.W > 0 && r.H > 0
}

// Origin returns the top-left corner.
func (r Rect) Origin() Point {
	return Point{X: r.X, Y: r.Y}
}

// At returns the rectangle moved to p.
func (r Rect) At(p Point) Rect {
	r.X, r.Y = p.X, p.Y
	return r
}

// State is the screen edge the window is docked against.
type State string

const (
	StateNormal State = "normal"
	StateTop    State = "top"
	StateLeft   State = "left"
	StateRight  State = "right"
)

// Classify picks the dock edge for win inside the usable screen area.
// Edges are checked top, left, right; the first within margin wins.
func Classify(win, screen Rect, margin int) State {
	switch {
	case win.Y < screen.Y+margin:
		return StateTop
	case win.X < screen.X+margin:
		return StateLeft
	case win.X+win.W > screen.X+screen.W-margin:
		return StateRight
	}
	return StateNormal
}

// slideTarget returns where the window goes when shown or hidden on an edge.
// Only the axis perpendicular to the edge moves.
func slideTarget(state State, show bool, win, screen Rect, hiddenMargin int) Point {
	p := win.Origin()
	switch state {
	case StateTop:
		if show {
			p.Y = screen.Y
		} else {
			p.Y = screen.Y - win.H + hiddenMargin
		}
	case StateLeft:
		if show {
			p.X = screen.X
		} else {
			p.X = screen.X - win.W + hiddenMargin
		}
	case StateRight:
		if show {
			p.X = screen.X + screen.W - win.W
		} else {
			p.X = screen.X + screen.W - hiddenMargin
		}
	}
	return p
}

const indicatorInset = 5

// IndicatorRect places the compact dock icon inside a window of the given
// size, in window-local coordinates, on the side that stays visible.
func IndicatorRect(state State, w, h, size int) Rect {
	switch state {
	case StateLeft:
		return Rect{X: w - indicatorInset - size, Y: (h - size) / 2, W: size, H: size}
	case StateRight:
		return Rect{X: indicatorInset, Y: (h - size) / 2, W: size, H: size}
	case StateTop:
		return Rect{X: (w - size) / 2, Y: h - indicatorInset - size, W: size, H: size}
	}
	return Rect{}
}
