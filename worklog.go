package worklog

import (
	"log/slog"
	"time"

	"github.com/aretw0/worklog/internal/platform"
	"github.com/aretw0/worklog/pkg/core"
	"github.com/aretw0/worklog/pkg/timer"
)

// --- Types ---

// App is the assembled runtime.
type App = platform.App

// --- Configuration ---

// Option defines a functional option for configuring worklog.
type Option = platform.Option

// WithLogger sets the logger for every component.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithRepository allows injecting a custom storage adapter.
func WithRepository(repo core.Repository) Option {
	return platform.WithRepository(repo)
}

// WithDSN overrides the database location.
func WithDSN(dsn string) Option {
	return platform.WithDSN(dsn)
}

// WithSettingsPath overrides the settings file location.
func WithSettingsPath(path string) Option {
	return platform.WithSettingsPath(path)
}

// WithClock replaces the timer clock.
func WithClock(c timer.Clock) Option {
	return platform.WithClock(c)
}

// WithNow replaces the wall clock used for timestamps.
func WithNow(now func() time.Time) Option {
	return platform.WithNow(now)
}

// WithReadOnly enables read-only mode.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithEventBuffer allows specifying the size of the change event buffer.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// WithDefaultColor sets the display color of new notes.
func WithDefaultColor(color string) Option {
	return platform.WithDefaultColor(color)
}

// WithSingleInstance makes Run claim the named instance socket first.
func WithSingleInstance(name string) Option {
	return platform.WithSingleInstance(name)
}

// --- Factory ---

// New assembles the runtime for a data directory.
func New(dataDir string, opts ...Option) (*App, error) {
	return platform.New(dataDir, opts...)
}

// Init opens and initializes the store explicitly.
func Init(dataDir string, opts ...Option) (core.Repository, error) {
	return platform.Init(dataDir, opts...)
}

// --- Utils ---

// DefaultDataDir returns ~/.worklog_desktop.
func DefaultDataDir() string {
	return platform.DefaultDataDir()
}

// ResolveDataDir expands ~ and applies the default.
func ResolveDataDir(dir string) string {
	return platform.ResolveDataDir(dir)
}
