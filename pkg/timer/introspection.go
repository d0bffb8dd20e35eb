package timer

import (
	"github.com/aretw0/introspection"
)

// EngineState exposes internal state for observability.
type EngineState struct {
	Status    Status `json:"status"`
	Phase     Phase  `json:"phase"`
	Minutes   int    `json:"minutes"`
	Remaining int    `json:"remaining"`
	Handlers  int    `json:"handlers"`
}

// State implements introspection.Introspectable.
func (e *Engine) State() any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return EngineState{
		Status:    e.status,
		Phase:     e.phase,
		Minutes:   e.minutes,
		Remaining: e.remaining,
		Handlers:  len(e.handlers),
	}
}

// ComponentType implements introspection.Component.
func (e *Engine) ComponentType() string {
	return "timer-engine"
}

var _ introspection.Introspectable = (*Engine)(nil)
var _ introspection.Component = (*Engine)(nil)
