package platform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/worklog/pkg/adapters/sqlite"
	"github.com/aretw0/worklog/pkg/core"
	"github.com/aretw0/worklog/pkg/dock"
	"github.com/aretw0/worklog/pkg/settings"
	"github.com/aretw0/worklog/pkg/timer"
)

// DatabaseFile is the store file inside the data directory.
const DatabaseFile = "worklog.db"

func parseOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Init opens and initializes the store for dataDir.
// It returns the injected repository unchanged when one was provided.
func Init(dataDir string, opts ...Option) (core.Repository, error) {
	return initRepository(ResolveDataDir(dataDir), parseOptions(opts))
}

func initRepository(dataDir string, o *options) (core.Repository, error) {
	if o.repository != nil {
		return o.repository, nil
	}

	dsn := o.dsn
	if dsn == "" {
		if !o.readOnly {
			if err := os.MkdirAll(dataDir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data dir: %w", err)
			}
		}
		dsn = filepath.Join(dataDir, DatabaseFile)
	}

	repo, err := sqlite.NewRepository(sqlite.Config{
		DSN:      dsn,
		ReadOnly: o.readOnly,
		Logger:   o.logger,
	})
	if err != nil {
		return nil, err
	}
	if err := repo.Initialize(context.Background()); err != nil {
		_ = repo.Close()
		return nil, err
	}
	return repo, nil
}

// New builds the whole runtime for dataDir: store, settings, note service,
// dock controller and timer engine. Nothing runs until App.Run.
func New(dataDir string, opts ...Option) (*App, error) {
	o := parseOptions(opts)
	dir := ResolveDataDir(dataDir)

	repo, err := initRepository(dir, o)
	if err != nil {
		return nil, err
	}

	settingsPath := o.settingsPath
	if settingsPath == "" {
		settingsPath = filepath.Join(dir, settings.FileName)
	}
	if !o.readOnly {
		if err := os.MkdirAll(filepath.Dir(settingsPath), 0o755); err != nil {
			if o.repository == nil {
				_ = repo.Close()
			}
			return nil, fmt.Errorf("failed to create settings dir: %w", err)
		}
	}
	store := settings.NewStore(settingsPath, o.logger)
	current, err := store.Load()
	if err != nil && o.logger != nil {
		o.logger.Warn("using default settings", "error", err)
	}

	app := &App{
		dataDir:  dir,
		opts:     o,
		logger:   o.logger,
		Settings: store,
		current:  current,
	}

	app.Service = core.NewService(repo, core.Config{
		DefaultColor: o.defaultColor,
		Now:          o.now,
		Logger:       o.logger,
		EventBuffer:  o.eventBuffer,
	})

	dockCfg := current.DockConfig()
	dockCfg.Logger = o.logger
	app.Dock = dock.NewController(dockCfg)

	timerOpts := []timer.Option{
		timer.WithClock(o.clock),
		timer.WithHandler(app.onTimerEvent),
	}
	if o.logger != nil {
		timerOpts = append(timerOpts, timer.WithLogger(o.logger))
	}
	app.Timer = timer.NewEngine(current.TimerConfig(), timerOpts...)

	return app, nil
}
