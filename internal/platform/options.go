package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/worklog/pkg/core"
	"github.com/aretw0/worklog/pkg/timer"
)

// options holds the internal configuration for the worklog runtime.
type options struct {
	repository   core.Repository
	logger       *slog.Logger
	dsn          string
	settingsPath string
	clock        timer.Clock
	now          func() time.Time
	readOnly     bool
	eventBuffer  int
	defaultColor string
	instanceName string
}

// Option defines a functional option for configuring the runtime.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		clock: timer.RealClock{},
	}
}

// WithLogger sets the logger for every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRepository injects a storage adapter (e.g. a mock).
// If provided, the SQLite store is not opened.
func WithRepository(repo core.Repository) Option {
	return func(o *options) {
		o.repository = repo
	}
}

// WithDSN overrides the database location. Use ":memory:" for a throwaway store.
// Defaults to worklog.db inside the data directory.
func WithDSN(dsn string) Option {
	return func(o *options) {
		o.dsn = dsn
	}
}

// WithSettingsPath overrides the settings file location.
// The extension picks the format (.json, .yaml, .yml).
func WithSettingsPath(path string) Option {
	return func(o *options) {
		o.settingsPath = path
	}
}

// WithClock replaces the timer clock (useful for testing).
func WithClock(c timer.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithNow replaces the wall clock used for note and log timestamps.
func WithNow(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithReadOnly enables read-only mode.
// In this mode every store write returns core.ErrReadOnly, nothing is written
// under the data directory, and a missing database reads as an empty store.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.readOnly = enabled
	}
}

// WithEventBuffer allows specifying the size of the change event buffer.
// Zero means default (100).
func WithEventBuffer(size int) Option {
	return func(o *options) {
		o.eventBuffer = size
	}
}

// WithDefaultColor sets the display color of new notes.
func WithDefaultColor(color string) Option {
	return func(o *options) {
		o.defaultColor = color
	}
}

// WithSingleInstance makes Run claim the named instance socket first.
func WithSingleInstance(name string) Option {
	return func(o *options) {
		o.instanceName = name
	}
}
