// Package dock decides when a floating window snaps to a screen edge and
// slides out of view. It owns no business data: callers feed it geometry and
// pointer state, and apply the returned intents.
package dock

import (
	"log/slog"
	"sync"
	"time"
)

// Config holds the docking parameters.
type Config struct {
	AutoHide          bool
	Margin            int
	HiddenMargin      int
	PollInterval      time.Duration
	AnimationDuration time.Duration
	IndicatorSize     int
	Logger            *slog.Logger
}

// DefaultConfig returns the standard docking parameters with auto-hide on.
func DefaultConfig() Config {
	return Config{
		AutoHide:          true,
		Margin:            20,
		HiddenMargin:      40,
		PollInterval:      300 * time.Millisecond,
		AnimationDuration: 300 * time.Millisecond,
		IndicatorSize:     56,
	}
}

// Input is one geometry sample from the window shell.
type Input struct {
	Window      Rect
	Screen      Rect
	PointerOver bool
	Focused     bool
	FullScreen  bool
	Maximized   bool
}

// Result is the controller decision for one tick.
type Result struct {
	State  State
	Hidden bool
	Intent Intent
	// Indicator is the icon area in window coordinates; zero when visible.
	Indicator Rect
	// Raise asks the shell to bring the window to front.
	Raise bool
	// Skipped is set when the tick was ignored.
	Skipped bool
}

// Controller is the docking state machine. Safe for concurrent use.
type Controller struct {
	mu            sync.Mutex
	cfg           Config
	logger        *slog.Logger
	state         State
	hidden        bool
	dragging      bool
	showRequested bool

	ticks, skipped, hides, shows int
}

// NewController creates a controller in the normal, visible state.
// Zero numeric fields fall back to DefaultConfig.
func NewController(cfg Config) *Controller {
	def := DefaultConfig()
	if cfg.Margin <= 0 {
		cfg.Margin = def.Margin
	}
	if cfg.HiddenMargin <= 0 {
		cfg.HiddenMargin = def.HiddenMargin
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.AnimationDuration <= 0 {
		cfg.AnimationDuration = def.AnimationDuration
	}
	if cfg.IndicatorSize <= 0 {
		cfg.IndicatorSize = def.IndicatorSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{cfg: cfg, logger: logger, state: StateNormal}
}

// Config returns the active configuration.
func (c *Controller) Config() Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// OnDragStart suspends docking until OnDragEnd.
func (c *Controller) OnDragStart() {
	c.mu.Lock()
	c.dragging = true
	c.mu.Unlock()
}

// OnDragEnd resumes docking.
func (c *Controller) OnDragEnd() {
	c.mu.Lock()
	c.dragging = false
	c.mu.Unlock()
}

// NotifyShowRequested makes the next tick reveal a hidden window and raise it.
func (c *Controller) NotifyShowRequested() {
	c.mu.Lock()
	c.showRequested = true
	c.mu.Unlock()
}

// SetAutoHide toggles auto-hide. Disabling it brings a hidden window back on
// the next tick.
func (c *Controller) SetAutoHide(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cfg.AutoHide != enabled {
		c.logger.Debug("dock auto-hide changed", "enabled", enabled)
	}
	c.cfg.AutoHide = enabled
}

// Snapshot returns the current state without advancing it.
func (c *Controller) Snapshot() (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.hidden
}

// Tick evaluates one geometry sample and returns what the shell should do.
func (c *Controller) Tick(in Input) Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks++

	if c.dragging || !in.Window.Valid() || !in.Screen.Valid() || in.FullScreen || in.Maximized {
		c.skipped++
		return c.result(in.Window, Intent{Kind: IntentNone}, false, true)
	}

	raise := c.showRequested
	c.showRequested = false

	if !c.cfg.AutoHide {
		intent := Intent{Kind: IntentNone}
		if c.hidden {
			intent = c.slide(IntentShow, in)
			c.hidden = false
		}
		return c.result(in.Window, intent, raise, false)
	}

	c.state = Classify(in.Window, in.Screen, c.cfg.Margin)
	if c.state == StateNormal {
		c.hidden = false
		return c.result(in.Window, Intent{Kind: IntentNone}, raise, false)
	}

	intent := Intent{Kind: IntentNone}
	switch {
	case in.PointerOver || raise:
		if c.hidden {
			intent = c.slide(IntentShow, in)
		}
	case !in.Focused && !c.hidden:
		intent = c.slide(IntentHide, in)
	}
	if !intent.None() {
		c.hidden = intent.Kind == IntentHide
	}
	return c.result(in.Window, intent, raise, false)
}

// slide builds the animation for kind, or IntentNone when the window already
// sits at the target.
func (c *Controller) slide(kind IntentKind, in Input) Intent {
	from := in.Window.Origin()
	to := slideTarget(c.state, kind == IntentShow, in.Window, in.Screen, c.cfg.HiddenMargin)
	if to == from {
		return Intent{Kind: IntentNone}
	}
	if kind == IntentShow {
		c.shows++
	} else {
		c.hides++
	}
	c.logger.Debug("dock slide", "kind", kind, "edge", c.state, "from", from, "to", to)
	return Intent{Kind: kind, From: from, To: to, Duration: c.cfg.AnimationDuration}
}

func (c *Controller) result(win Rect, intent Intent, raise, skipped bool) Result {
	r := Result{
		State:   c.state,
		Hidden:  c.hidden,
		Intent:  intent,
		Raise:   raise,
		Skipped: skipped,
	}
	if c.hidden {
		r.Indicator = IndicatorRect(c.state, win.W, win.H, c.cfg.IndicatorSize)
	}
	return r
}
