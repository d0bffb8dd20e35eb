// Package timer implements the pomodoro countdown. It is in-memory only and
// knows nothing about notes or windows.
package timer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
)

var (
	// ErrInvalidDuration is returned when a session length is not positive.
	ErrInvalidDuration = errors.New("timer duration must be positive")
	// ErrNotRunning is returned by Pause outside the running state.
	ErrNotRunning = errors.New("timer is not running")
	// ErrNotPaused is returned by Resume outside the paused state or with nothing left.
	ErrNotPaused = errors.New("timer is not paused")
)

// Status is the countdown state.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusRunning  Status = "running"
	StatusPaused   Status = "paused"
	StatusFinished Status = "finished"
)

// Phase labels a session.
type Phase string

const (
	PhaseWork  Phase = "work"
	PhaseBreak Phase = "break"
)

// EventKind distinguishes countdown events.
type EventKind string

const (
	EventTick     EventKind = "tick"
	EventFinished EventKind = "finished"
)

// Event is emitted to handlers. Phase, Minutes and Sound describe the session
// the event belongs to.
type Event struct {
	Kind      EventKind
	Remaining int
	Phase     Phase
	Minutes   int
	Sound     bool
}

// Config carries the timer defaults.
type Config struct {
	WorkMinutes  int
	BreakMinutes int
	SoundEnabled bool
}

// DefaultConfig returns a 25/5 pomodoro with sound.
func DefaultConfig() Config {
	return Config{WorkMinutes: 25, BreakMinutes: 5, SoundEnabled: true}
}

// Option configures an Engine.
type Option func(*Engine)

// WithHandler registers an event handler. Handlers run outside the engine
// lock, one event at a time and in the order the events happened. They may be
// called from the clock goroutine or from whichever caller is delivering
// queued events, so a method such as Stop can return before its own event
// has reached the handlers.
func WithHandler(h func(Event)) Option {
	return func(e *Engine) { e.handlers = append(e.handlers, h) }
}

// WithClock replaces the real clock.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithContext bounds the clock goroutine. Cancelling it stops ticking.
func WithContext(ctx context.Context) Option {
	return func(e *Engine) { e.parent = ctx }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// Engine is the countdown state machine.
type Engine struct {
	mu        sync.Mutex
	cfg       Config
	clock     Clock
	parent    context.Context
	logger    *slog.Logger
	handlers  []func(Event)
	status    Status
	remaining int
	phase     Phase
	minutes   int
	gen       uint64
	cancel    context.CancelFunc

	queue    []Event
	draining bool
}

// NewEngine creates an idle engine.
func NewEngine(cfg Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:    cfg,
		clock:  RealClock{},
		parent: context.Background(),
		status: StatusIdle,
		phase:  PhaseWork,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	return e
}

// SetConfig replaces the defaults used by StartDefault. A running session is
// not affected.
func (e *Engine) SetConfig(cfg Config) {
	e.mu.Lock()
	e.cfg = cfg
	e.mu.Unlock()
}

// Status returns the current state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Remaining returns the seconds left.
func (e *Engine) Remaining() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.remaining
}

// Start begins a work session of the given length. A running session is
// replaced.
func (e *Engine) Start(minutes int) error {
	return e.start(PhaseWork, minutes)
}

// StartDefault begins a session with the configured length for phase.
func (e *Engine) StartDefault(phase Phase) error {
	e.mu.Lock()
	minutes := e.cfg.WorkMinutes
	if phase == PhaseBreak {
		minutes = e.cfg.BreakMinutes
	}
	e.mu.Unlock()
	return e.start(phase, minutes)
}

func (e *Engine) start(phase Phase, minutes int) error {
	if minutes <= 0 {
		return fmt.Errorf("%w: %d minutes", ErrInvalidDuration, minutes)
	}

	e.mu.Lock()
	e.stopClockLocked()
	e.status = StatusRunning
	e.phase = phase
	e.minutes = minutes
	e.remaining = minutes * 60
	e.queue = append(e.queue, e.eventLocked(EventTick))
	e.startClockLocked()
	e.mu.Unlock()

	e.logger.Debug("timer started", "phase", phase, "minutes", minutes)
	e.dispatch()
	return nil
}

// Pause suspends the countdown, keeping the remaining time.
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status != StatusRunning {
		return ErrNotRunning
	}
	e.stopClockLocked()
	e.status = StatusPaused
	return nil
}

// Resume continues a paused countdown.
func (e *Engine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status != StatusPaused || e.remaining <= 0 {
		return ErrNotPaused
	}
	e.status = StatusRunning
	e.startClockLocked()
	return nil
}

// Stop resets to idle from any state and emits a final zero tick.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.stopClockLocked()
	e.status = StatusIdle
	e.remaining = 0
	e.queue = append(e.queue, e.eventLocked(EventTick))
	e.mu.Unlock()

	e.dispatch()
}

// Tick advances the countdown by one second. It does nothing unless running.
func (e *Engine) Tick() {
	e.mu.Lock()
	gen := e.gen
	e.mu.Unlock()
	e.tick(gen)
}

// tick reports whether the clock that produced it should keep going.
func (e *Engine) tick(gen uint64) bool {
	e.mu.Lock()
	if gen != e.gen || e.status != StatusRunning {
		e.mu.Unlock()
		return false
	}

	e.remaining--
	if e.remaining < 0 {
		e.remaining = 0
	}
	e.queue = append(e.queue, e.eventLocked(EventTick))
	running := true
	if e.remaining == 0 {
		e.stopClockLocked()
		e.status = StatusFinished
		e.queue = append(e.queue, e.eventLocked(EventFinished))
		running = false
		e.logger.Info("timer finished", "phase", e.phase, "minutes", e.minutes)
	}
	e.mu.Unlock()

	e.dispatch()
	return running
}

func (e *Engine) eventLocked(kind EventKind) Event {
	return Event{
		Kind:      kind,
		Remaining: e.remaining,
		Phase:     e.phase,
		Minutes:   e.minutes,
		Sound:     e.cfg.SoundEnabled,
	}
}

// dispatch delivers queued events in order. Only one caller drains at a
// time; the others return and leave their events to it.
func (e *Engine) dispatch() {
	e.mu.Lock()
	if e.draining {
		e.mu.Unlock()
		return
	}
	e.draining = true
	e.mu.Unlock()

	done := false
	defer func() {
		if !done {
			e.mu.Lock()
			e.draining = false
			e.mu.Unlock()
		}
	}()

	for {
		e.mu.Lock()
		if len(e.queue) == 0 {
			e.draining = false
			e.mu.Unlock()
			done = true
			return
		}
		ev := e.queue[0]
		e.queue = e.queue[1:]
		handlers := e.handlers
		e.mu.Unlock()

		for _, h := range handlers {
			h(ev)
		}
	}
}

// startClockLocked spawns the one-second loop for the current generation.
func (e *Engine) startClockLocked() {
	e.gen++
	gen := e.gen
	ctx, cancel := context.WithCancel(e.parent)
	e.cancel = cancel
	ticker := e.clock.NewTicker(time.Second)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C():
				if !e.tick(gen) {
					return nil
				}
			}
		}
	}, lifecycle.WithErrorHandler(func(err error) {
		e.logger.Error("timer clock failed", "error", err)
	}))
}

// stopClockLocked invalidates the current generation so late ticks are ignored.
func (e *Engine) stopClockLocked() {
	e.gen++
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}
