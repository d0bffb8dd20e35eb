package settings

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// ReloadDelay is how long the watcher waits for writes to settle.
const ReloadDelay = 100 * time.Millisecond

// Watcher reloads the settings file when it changes on disk. Editors often
// replace files instead of writing them, so the directory is watched and
// events are filtered by name against Pattern, which also covers the other
// formats of the same file.
type Watcher struct {
	*worker.BaseWorker
	store     *Store
	pattern   string
	onChange  func(Settings)
	logger    *slog.Logger
	watcher   *fsnotify.Watcher
	debouncer *debouncer
	cancel    context.CancelFunc
}

// NewWatcher creates a watcher worker for store. onChange receives every
// successfully parsed reload.
func NewWatcher(store *Store, onChange func(Settings), logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Watcher{
		BaseWorker: worker.NewBaseWorker("settings-watcher"),
		store:      store,
		pattern:    Pattern(store.Path()),
		onChange:   onChange,
		logger:     logger,
	}
}

// Matches reports whether an event path refers to the settings file in any
// supported format.
func (w *Watcher) Matches(name string) bool {
	ok, err := doublestar.Match(w.pattern, filepath.Base(name))
	return err == nil && ok
}

func (w *Watcher) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := w.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("watcher already started (status: %s)", status)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(w.store.Path())); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch settings dir: %w", err)
	}

	w.watcher = watcher
	w.debouncer = newDebouncer(ReloadDelay)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.SetStatus(worker.StatusRunning)
	return w.StartFunc(runCtx, w.run)
}

func (w *Watcher) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}

	return w.BaseWorker.Stop(ctx)
}

func (w *Watcher) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
		}
	})
}

func (w *Watcher) reload() {
	st, err := w.store.Load()
	if err != nil {
		w.logger.Warn("settings reload skipped", "error", err)
		return
	}
	w.logger.Info("settings reloaded", "path", w.store.Path())
	if w.onChange != nil {
		w.onChange(st)
	}
}

func (w *Watcher) run(ctx context.Context) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)
			if w.logger.Enabled(ctx, slog.LevelDebug) {
				w.logger.Error("watcher panic", "error", err, "stack", string(debug.Stack()))
			} else {
				w.logger.Error("watcher panic", "error", err)
			}
		}
	}()
	defer w.watcher.Close()

	err = w.loop(ctx)
	w.debouncer.stopAndWait(5 * time.Second)
	return err
}

func (w *Watcher) loop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.Matches(event.Name) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debug("settings event", "name", event.Name, "op", event.Op.String())
			w.debouncer.trigger(w.reload)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("fsnotify error", "error", wErr)
		}
	}
}
