package sqlite

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/worklog/pkg/core"
)

func newTestRepo(t *testing.T, cfg Config) *Repository {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	repo, err := NewRepository(cfg)
	require.NoError(t, err)
	require.NoError(t, repo.Initialize(context.Background()))
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestTransaction(t *testing.T) {
	repo := newTestRepo(t, Config{DSN: MemoryDSN})
	ctx := context.Background()
	created := time.Date(2024, 3, 1, 9, 30, 0, 123, time.Local)

	t.Run("Commit makes changes visible", func(t *testing.T) {
		tx, err := repo.Begin(ctx)
		require.NoError(t, err)

		n := core.Note{Title: "a", Content: "body", Color: core.DefaultColor, Status: core.StatusNormal, CreatedAt: created, UpdatedAt: created}
		require.NoError(t, tx.InsertNote(ctx, &n))
		assert.NotZero(t, n.ID)
		require.NoError(t, tx.Commit(ctx))

		tx, err = repo.Begin(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		got, err := tx.GetNote(ctx, n.ID)
		require.NoError(t, err)
		assert.Equal(t, "a", got.Title)
		assert.Equal(t, core.StatusNormal, got.Status)
		assert.True(t, got.CreatedAt.Equal(created), "timestamps keep nanoseconds")
	})

	t.Run("Rollback discards changes", func(t *testing.T) {
		tx, err := repo.Begin(ctx)
		require.NoError(t, err)
		n := core.Note{Title: "ghost", CreatedAt: created, UpdatedAt: created, Status: core.StatusNormal}
		require.NoError(t, tx.InsertNote(ctx, &n))
		require.NoError(t, tx.Rollback(ctx))

		tx, err = repo.Begin(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)
		_, err = tx.GetNote(ctx, n.ID)
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("Closed transaction rejects work", func(t *testing.T) {
		tx, err := repo.Begin(ctx)
		require.NoError(t, err)
		require.NoError(t, tx.Commit(ctx))

		assert.NoError(t, tx.Rollback(ctx))
		assert.ErrorIs(t, tx.Commit(ctx), core.ErrTxClosed)
		_, err = tx.ListNotes(ctx, core.NoteFilter{})
		assert.ErrorIs(t, err, core.ErrTxClosed)
	})
}

func TestNotesAndTrash(t *testing.T) {
	repo := newTestRepo(t, Config{})
	ctx := context.Background()
	now := time.Now()

	tx, err := repo.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	a := core.Note{Title: "a", Status: core.StatusNormal, CreatedAt: now, UpdatedAt: now}
	b := core.Note{Title: "b", Status: core.StatusNormal, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, tx.InsertNote(ctx, &a))
	require.NoError(t, tx.InsertNote(ctx, &b))

	b.IsDeleted = true
	require.NoError(t, tx.UpdateNote(ctx, b))

	active, err := tx.ListNotes(ctx, core.NoteFilter{Deleted: false})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, a.ID, active[0].ID)

	trash, err := tx.ListNotes(ctx, core.NoteFilter{Deleted: true})
	require.NoError(t, err)
	require.Len(t, trash, 1)
	assert.Equal(t, b.ID, trash[0].ID)

	require.NoError(t, tx.DeleteNote(ctx, b.ID))
	assert.ErrorIs(t, tx.DeleteNote(ctx, b.ID), core.ErrNotFound)
	assert.ErrorIs(t, tx.UpdateNote(ctx, core.Note{ID: 999}), core.ErrNotFound)
}

func TestLogs(t *testing.T) {
	repo := newTestRepo(t, Config{})
	ctx := context.Background()

	day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.Local)
	tx, err := repo.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	entries := []core.LogEntry{
		{Action: core.ActionCreate, NoteContent: "yesterday", CreatedAt: day.Add(-time.Minute)},
		{Action: core.ActionCreate, NoteContent: "first", CreatedAt: day.Add(time.Hour)},
		{Action: core.ActionDelete, NoteContent: "same-time", CreatedAt: day.Add(time.Hour)},
		{Action: core.ActionComplete, NoteContent: "tomorrow", CreatedAt: day.AddDate(0, 0, 1)},
	}
	for i := range entries {
		require.NoError(t, tx.AppendLog(ctx, &entries[i]))
	}

	all, err := tx.ListLogs(ctx, core.LogFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "tomorrow", all[0].NoteContent)
	assert.Equal(t, "same-time", all[1].NoteContent, "ties break on id desc")
	assert.Equal(t, "first", all[2].NoteContent)

	inDay, err := tx.ListLogs(ctx, core.LogFilter{From: day, To: day.AddDate(0, 0, 1).Add(-time.Nanosecond)})
	require.NoError(t, err)
	require.Len(t, inDay, 2)

	removed, err := tx.ClearLogs(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 4, removed)
}

func TestTags(t *testing.T) {
	repo := newTestRepo(t, Config{})
	ctx := context.Background()
	now := time.Now()

	tx, err := repo.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	a := core.Note{Title: "a", Status: core.StatusNormal, CreatedAt: now, UpdatedAt: now}
	b := core.Note{Title: "b", Status: core.StatusNormal, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, tx.InsertNote(ctx, &a))
	require.NoError(t, tx.InsertNote(ctx, &b))
	require.NoError(t, tx.SetNoteTags(ctx, a.ID, []string{"work", "home"}, now))
	require.NoError(t, tx.SetNoteTags(ctx, b.ID, []string{"work"}, now.Add(time.Hour)))

	tags, err := tx.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "work", tags[0].Name)
	assert.Equal(t, 2, tags[0].Notes)
	assert.Equal(t, core.DefaultTagColor, tags[0].Color)
	assert.True(t, now.Equal(tags[0].CreatedAt), "existing tags keep their first timestamp")

	// Replacing drops the old links but keeps the tag row.
	require.NoError(t, tx.SetNoteTags(ctx, a.ID, nil, now))
	tags, err = tx.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, 1, tags[0].Notes)
	assert.Equal(t, "home", tags[1].Name)
	assert.Equal(t, 0, tags[1].Notes)
}

func TestWorkLogs(t *testing.T) {
	repo := newTestRepo(t, Config{})
	ctx := context.Background()
	now := time.Now()

	tx, err := repo.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	old := core.WorkLog{Date: now.AddDate(0, 0, -30), Title: "old", DurationMinutes: 25, CreatedAt: now, UpdatedAt: now}
	recent := core.WorkLog{Date: now, Title: "Pomodoro", DurationMinutes: 25, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, tx.InsertWorkLog(ctx, &old))
	require.NoError(t, tx.InsertWorkLog(ctx, &recent))

	logs, err := tx.ListWorkLogs(ctx, now.AddDate(0, 0, -7))
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "Pomodoro", logs[0].Title)
}

func TestReadOnlyMode(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "worklog.db")
	ctx := context.Background()

	rw := newTestRepo(t, Config{DSN: dsn})
	tx, err := rw.Begin(ctx)
	require.NoError(t, err)
	n := core.Note{Title: "kept", Status: core.StatusNormal, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, tx.InsertNote(ctx, &n))
	require.NoError(t, tx.Commit(ctx))
	require.NoError(t, rw.Close())

	ro := newTestRepo(t, Config{DSN: dsn, ReadOnly: true})
	tx, err = ro.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	got, err := tx.GetNote(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "kept", got.Title)

	err = tx.InsertNote(ctx, &core.Note{Title: "forbidden"})
	assert.ErrorIs(t, err, core.ErrReadOnly)
	assert.ErrorIs(t, tx.DeleteNote(ctx, n.ID), core.ErrReadOnly)
	_, err = tx.ClearLogs(ctx)
	assert.ErrorIs(t, err, core.ErrReadOnly)
}

func TestReadOnlyMode_MissingFile(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "absent", "worklog.db")
	ctx := context.Background()

	ro := newTestRepo(t, Config{DSN: dsn, ReadOnly: true})
	tx, err := ro.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	notes, err := tx.ListNotes(ctx, core.NoteFilter{})
	require.NoError(t, err)
	assert.Empty(t, notes)
	assert.ErrorIs(t, tx.InsertNote(ctx, &core.Note{Title: "forbidden"}), core.ErrReadOnly)

	_, err = os.Stat(filepath.Dir(dsn))
	assert.True(t, os.IsNotExist(err), "read-only store must not create directories")
}

func TestReadOnlyMode_LeavesFileUntouched(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "worklog.db")
	require.NoError(t, os.WriteFile(dsn, nil, 0o644))

	newTestRepo(t, Config{DSN: dsn, ReadOnly: true})

	info, err := os.Stat(dsn)
	require.NoError(t, err)
	assert.Zero(t, info.Size(), "schema must not be written in read-only mode")
}

func TestReadOnlyDSN(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"absolute path", "/data/worklog.db", "file:///data/worklog.db?mode=ro"},
		{"reserved characters", "/data/a?b#c.db", "file:///data/a%3Fb%23c.db?mode=ro"},
		{"uri", "file:notes.db", "file:notes.db?mode=ro"},
		{"uri with query", "file:notes.db?cache=shared", "file:notes.db?cache=shared&mode=ro"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, readOnlyDSN(tt.in))
		})
	}
}

func TestState(t *testing.T) {
	repo := newTestRepo(t, Config{})
	ctx := context.Background()

	tx, err := repo.Begin(ctx)
	require.NoError(t, err)

	state := repo.State().(RepositoryState)
	assert.True(t, state.Initialized)
	require.Len(t, state.TransactionIDs, 1)
	assert.Equal(t, tx.(*Transaction).ID(), state.TransactionIDs[0])

	require.NoError(t, tx.Commit(ctx))
	state = repo.State().(RepositoryState)
	assert.Empty(t, state.TransactionIDs)
	assert.Equal(t, 1, state.Commits)
	assert.Equal(t, "sqlite-repository", repo.ComponentType())
}
