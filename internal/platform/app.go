package platform

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/aretw0/lifecycle/pkg/core/supervisor"
	"github.com/aretw0/lifecycle/pkg/core/worker"

	lcadapter "github.com/aretw0/worklog/pkg/adapters/lifecycle"
	"github.com/aretw0/worklog/pkg/core"
	"github.com/aretw0/worklog/pkg/dock"
	"github.com/aretw0/worklog/pkg/instance"
	"github.com/aretw0/worklog/pkg/settings"
	"github.com/aretw0/worklog/pkg/timer"
)

// WorkLogTitle is the title of work logs recorded by the timer.
const WorkLogTitle = "Pomodoro"

const shutdownTimeout = 5 * time.Second

// App wires the components together. The exported fields are safe to use
// directly; App only adds the cross-component plumbing.
type App struct {
	Service  *core.Service
	Dock     *dock.Controller
	Timer    *timer.Engine
	Settings *settings.Store

	dataDir string
	opts    *options
	logger  *slog.Logger

	mu             sync.RWMutex
	current        settings.Settings
	timerListeners []func(timer.Event)
	noteListeners  []noteListener
}

type noteListener struct {
	fn    func(core.Event)
	types []core.EventType
}

func (l noteListener) wants(t core.EventType) bool {
	if len(l.types) == 0 {
		return true
	}
	for _, want := range l.types {
		if want == t {
			return true
		}
	}
	return false
}

// DataDir returns the resolved data directory.
func (a *App) DataDir() string {
	return a.dataDir
}

// CurrentSettings returns the last loaded settings.
func (a *App) CurrentSettings() settings.Settings {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.current
}

// OnTimerEvent registers a listener for timer events.
func (a *App) OnTimerEvent(fn func(timer.Event)) {
	a.mu.Lock()
	a.timerListeners = append(a.timerListeners, fn)
	a.mu.Unlock()
}

// OnNoteEvent registers a listener for committed note changes, optionally
// limited to the given types. Listeners are only called while Run is active
// and must be registered before it starts.
func (a *App) OnNoteEvent(fn func(core.Event), types ...core.EventType) {
	a.mu.Lock()
	a.noteListeners = append(a.noteListeners, noteListener{fn: fn, types: types})
	a.mu.Unlock()
}

// noteTypes returns the event types some listener wants, or nil when any
// listener takes every type.
func (a *App) noteTypes() []core.EventType {
	a.mu.RLock()
	defer a.mu.RUnlock()

	seen := make(map[core.EventType]bool)
	var types []core.EventType
	for _, l := range a.noteListeners {
		if len(l.types) == 0 {
			return nil
		}
		for _, t := range l.types {
			if !seen[t] {
				seen[t] = true
				types = append(types, t)
			}
		}
	}
	return types
}

// ApplySettings pushes new settings into the running components.
func (a *App) ApplySettings(st settings.Settings) {
	a.mu.Lock()
	a.current = st
	a.mu.Unlock()

	a.Dock.SetAutoHide(st.Window.AutoHide)
	a.Timer.SetConfig(st.TimerConfig())
	a.debug("settings applied", "auto_hide", st.Window.AutoHide, "work_minutes", st.Timer.WorkDuration)
}

// Close releases the store.
func (a *App) Close() error {
	return a.Service.Close()
}

// Run starts the background workers and blocks until ctx is cancelled.
// shell may be nil for headless use; then no dock polling happens.
func (a *App) Run(ctx context.Context, shell dock.Shell) error {
	if a.opts.instanceName != "" {
		guard, err := instance.Acquire(ctx, a.opts.instanceName, a.Dock.NotifyShowRequested, a.logger)
		if err != nil {
			return err
		}
		defer guard.Close()
	}

	var running []stopper
	if shell != nil {
		poller := dock.NewPoller(a.Dock, shell)
		if err := poller.Start(ctx); err != nil {
			return err
		}
		running = append(running, poller)
	}

	sup := supervisor.New("worklog", supervisor.StrategyOneForOne, a.watcherSpec())
	if err := sup.Start(ctx); err != nil {
		a.stop(running...)
		return err
	}
	running = append(running, sup)

	src := lcadapter.NewSource(a.Service.Events(), a.noteTypes()...)
	if err := src.Start(ctx); err != nil {
		a.stop(running...)
		return err
	}
	lifecycle.Go(ctx, func(ctx context.Context) error {
		for e := range src.Events() {
			if ev, ok := e.(core.Event); ok {
				a.dispatchNote(ev)
			}
		}
		return nil
	})

	a.debug("worklog running", "data_dir", a.dataDir)
	<-ctx.Done()

	a.stop(running...)
	return nil
}

type stopper interface {
	Stop(ctx context.Context) error
}

// stop shuts workers down in reverse start order.
func (a *App) stop(running ...stopper) {
	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for i := len(running) - 1; i >= 0; i-- {
		if err := running[i].Stop(stopCtx); err != nil {
			a.warn("worker stop failed", "error", err)
		}
	}
	if a.Timer.Status() != timer.StatusIdle {
		a.Timer.Stop()
	}
}

func (a *App) watcherSpec() supervisor.Spec {
	return supervisor.Spec{
		Name: "settings-watcher",
		Type: string(worker.TypeGoroutine),
		Factory: func() (worker.Worker, error) {
			return settings.NewWatcher(a.Settings, a.ApplySettings, a.logger), nil
		},
		Backoff: supervisor.Backoff{
			InitialInterval: 100 * time.Millisecond,
			MaxInterval:     5 * time.Second,
			Multiplier:      2,
			ResetDuration:   time.Minute,
			MaxRestarts:     5,
			MaxDuration:     5 * time.Minute,
		},
		RestartPolicy: supervisor.RestartOnFailure,
	}
}

// onTimerEvent records finished work sessions and fans events out.
func (a *App) onTimerEvent(e timer.Event) {
	if e.Kind == timer.EventFinished && e.Phase == timer.PhaseWork {
		if _, err := a.Service.RecordWork(context.Background(), WorkLogTitle, e.Minutes); err != nil {
			a.warn("work session not recorded", "error", err)
		}
	}

	a.mu.RLock()
	listeners := a.timerListeners
	a.mu.RUnlock()
	for _, fn := range listeners {
		fn(e)
	}
}

func (a *App) dispatchNote(e core.Event) {
	a.debug("note event", "type", e.Type, "id", e.NoteID)

	a.mu.RLock()
	listeners := a.noteListeners
	a.mu.RUnlock()
	for _, l := range listeners {
		if l.wants(e.Type) {
			l.fn(e)
		}
	}
}

func (a *App) debug(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Debug(msg, args...)
	}
}

func (a *App) warn(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Warn(msg, args...)
	}
}
