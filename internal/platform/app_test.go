package platform_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/worklog/internal/platform"
	"github.com/aretw0/worklog/pkg/adapters/sqlite"
	"github.com/aretw0/worklog/pkg/core"
	"github.com/aretw0/worklog/pkg/dock"
	"github.com/aretw0/worklog/pkg/settings"
	"github.com/aretw0/worklog/pkg/timer"
)

func newApp(t *testing.T, opts ...platform.Option) *platform.App {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	base := []platform.Option{platform.WithDSN(":memory:"), platform.WithLogger(logger)}
	app, err := platform.New(t.TempDir(), append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func TestApp_EndToEnd(t *testing.T) {
	app := newApp(t)
	ctx := context.Background()
	svc := app.Service

	n, err := svc.Create(ctx, "Buy milk", "")
	require.NoError(t, err)
	notes, err := svc.ListActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", notes[0].Title)

	_, err = svc.Create(ctx, "Call mom", "")
	require.NoError(t, err)

	completed := core.CompletedColor
	_, err = svc.Update(ctx, n.ID, core.UpdateInput{Color: &completed})
	require.NoError(t, err)
	notes, err = svc.ListActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", notes[len(notes)-1].Title)

	require.True(t, svc.Delete(ctx, n.ID))
	notes, err = svc.ListActive(ctx)
	require.NoError(t, err)
	for _, note := range notes {
		assert.NotEqual(t, n.ID, note.ID)
	}

	log, err := svc.ListLog(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, log)
	assert.Equal(t, core.ActionDelete, log[0].Action)
	assert.Equal(t, "Buy milk", log[0].NoteContent)
}

func TestApp_FinishedWorkSessionIsRecorded(t *testing.T) {
	app := newApp(t)
	ctx := context.Background()

	var (
		mu     sync.Mutex
		events []timer.Event
	)
	app.OnTimerEvent(func(e timer.Event) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, e)
	})

	require.NoError(t, app.Timer.Start(1))
	for i := 0; i < 60; i++ {
		app.Timer.Tick()
	}

	stats, err := app.Service.Stats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalWorkMinutes)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, events)
	assert.Equal(t, timer.EventFinished, events[len(events)-1].Kind)

	// Break sessions are not work.
	require.NoError(t, app.Timer.StartDefault(timer.PhaseBreak))
	app.Timer.Stop()
	stats, err = app.Service.Stats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalWorkMinutes)
}

type scriptedShell struct {
	mu      sync.Mutex
	in      dock.Input
	results []dock.Result
}

func (s *scriptedShell) Geometry() (dock.Input, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.in, nil
}

func (s *scriptedShell) Apply(r dock.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, r)
	if !r.Intent.None() {
		s.in.Window = s.in.Window.At(r.Intent.To)
	}
}

func (s *scriptedShell) hidden() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results) > 0 && s.results[len(s.results)-1].Hidden
}

func TestApp_RunWiresComponents(t *testing.T) {
	dir := t.TempDir()
	settingsPath := filepath.Join(dir, "settings.yaml")
	app := newApp(t, platform.WithSettingsPath(settingsPath))

	var (
		mu        sync.Mutex
		noteTypes []core.EventType
	)
	app.OnNoteEvent(func(e core.Event) {
		mu.Lock()
		defer mu.Unlock()
		noteTypes = append(noteTypes, e.Type)
	})

	shell := &scriptedShell{in: dock.Input{
		Window: dock.Rect{X: 5, Y: 200, W: 300, H: 500},
		Screen: dock.Rect{X: 0, Y: 0, W: 1920, H: 1040},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx, shell) }()

	// The poller docks and hides the idle window.
	assert.Eventually(t, shell.hidden, 3*time.Second, 20*time.Millisecond)

	// Committed changes reach note listeners.
	_, err := app.Service.Create(context.Background(), "ping", "")
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(noteTypes) == 1 && noteTypes[0] == core.EventCreate
	}, 3*time.Second, 20*time.Millisecond)

	// Turning auto-hide off in the file brings the window back.
	st := settings.Default()
	st.Window.AutoHide = false
	require.NoError(t, app.Settings.Save(st))
	assert.Eventually(t, func() bool {
		return !app.CurrentSettings().Window.AutoHide && !shell.hidden()
	}, 5*time.Second, 20*time.Millisecond)
	assert.False(t, app.Dock.Config().AutoHide)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestInit_ReadOnly(t *testing.T) {
	dir := t.TempDir()
	app, err := platform.New(dir)
	require.NoError(t, err)
	_, err = app.Service.Create(context.Background(), "persisted", "")
	require.NoError(t, err)
	require.NoError(t, app.Close())

	ro, err := platform.New(dir, platform.WithReadOnly(true))
	require.NoError(t, err)
	defer ro.Close()

	notes, err := ro.Service.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, notes, 1)

	_, err = ro.Service.Create(context.Background(), "nope", "")
	assert.ErrorIs(t, err, core.ErrReadOnly)
	assert.False(t, ro.Service.Delete(context.Background(), notes[0].ID))
}

func TestNew_ReadOnlyFreshInstall(t *testing.T) {
	t.Run("missing data dir", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "fresh")

		ro, err := platform.New(dir, platform.WithReadOnly(true))
		require.NoError(t, err)
		defer ro.Close()

		notes, err := ro.Service.ListActive(context.Background())
		require.NoError(t, err)
		assert.Empty(t, notes)

		_, err = os.Stat(dir)
		assert.True(t, os.IsNotExist(err), "read-only mode must not create the data dir")
	})

	t.Run("empty data dir", func(t *testing.T) {
		dir := t.TempDir()

		ro, err := platform.New(dir, platform.WithReadOnly(true))
		require.NoError(t, err)
		defer ro.Close()

		_, err = ro.Service.Create(context.Background(), "nope", "")
		assert.ErrorIs(t, err, core.ErrReadOnly)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries, "read-only mode must not write files")
	})
}

func TestNew_SettingsDirFailureClosesStore(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	dbPath := filepath.Join(dir, platform.DatabaseFile)

	// An exclusive locking mode keeps the file locked until the connection
	// is closed.
	_, err := platform.New(dir,
		platform.WithDSN("file:"+filepath.ToSlash(dbPath)+"?_pragma=locking_mode(exclusive)"),
		platform.WithSettingsPath(filepath.Join(blocker, "settings.json")),
	)
	require.Error(t, err)

	repo, err := sqlite.NewRepository(sqlite.Config{DSN: dbPath})
	require.NoError(t, err)
	defer repo.Close()
	assert.NoError(t, repo.Initialize(context.Background()), "store left open after a failed New")
}

func TestApp_NoteListenerTypes(t *testing.T) {
	app := newApp(t)

	var (
		mu      sync.Mutex
		deletes []int64
	)
	app.OnNoteEvent(func(e core.Event) {
		mu.Lock()
		defer mu.Unlock()
		deletes = append(deletes, e.NoteID)
	}, core.EventDelete)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx, nil) }()

	n, err := app.Service.Create(context.Background(), "short lived", "")
	require.NoError(t, err)
	require.True(t, app.Service.Delete(context.Background(), n.ID))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(deletes) == 1
	}, 3*time.Second, 20*time.Millisecond)

	mu.Lock()
	assert.Equal(t, []int64{n.ID}, deletes, "create events are filtered out")
	mu.Unlock()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestResolveDataDir(t *testing.T) {
	assert.Equal(t, platform.DefaultDataDir(), platform.ResolveDataDir(""))
	assert.Equal(t, "/data/wl", platform.ResolveDataDir("/data/wl"))
	assert.Equal(t, platform.DefaultDirName, filepath.Base(platform.DefaultDataDir()))
}
