package dock

import (
	"github.com/aretw0/introspection"
)

// ControllerState exposes internal state for observability.
type ControllerState struct {
	State         State `json:"state"`
	Hidden        bool  `json:"hidden"`
	AutoHide      bool  `json:"auto_hide"`
	Dragging      bool  `json:"dragging"`
	ShowRequested bool  `json:"show_requested"`
	Ticks         int   `json:"ticks"`
	Skipped       int   `json:"skipped"`
	Hides         int   `json:"hides"`
	Shows         int   `json:"shows"`
}

// State implements introspection.Introspectable.
func (c *Controller) State() any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ControllerState{
		State:         c.state,
		Hidden:        c.hidden,
		AutoHide:      c.cfg.AutoHide,
		Dragging:      c.dragging,
		ShowRequested: c.showRequested,
		Ticks:         c.ticks,
		Skipped:       c.skipped,
		Hides:         c.hides,
		Shows:         c.shows,
	}
}

// ComponentType implements introspection.Component.
func (c *Controller) ComponentType() string {
	return "dock-controller"
}

var _ introspection.Introspectable = (*Controller)(nil)
var _ introspection.Component = (*Controller)(nil)
