package core

import (
	"context"
	"time"
)

// Repository defines the contract for the relational store.
// Adhering to this interface keeps the core independent of the storage engine.
type Repository interface {
	// Initialize ensures the underlying storage is ready (schema creation, migrations).
	Initialize(ctx context.Context) error

	// Begin starts a unit of work. Every NoteService operation runs in exactly one.
	Begin(ctx context.Context) (Transaction, error)

	// Close releases the underlying resources.
	Close() error
}

// NoteFilter selects notes by their soft-delete flag.
type NoteFilter struct {
	Deleted bool
}

// LogFilter bounds operation log queries. Zero times are open bounds.
type LogFilter struct {
	From time.Time
	To   time.Time
}

// Transaction defines the contract for a unit of work.
// Changes are visible to the rest of the application only after Commit.
type Transaction interface {
	// InsertNote persists a new note and assigns its ID.
	InsertNote(ctx context.Context, n *Note) error
	// GetNote returns ErrNotFound if no row has the given id.
	GetNote(ctx context.Context, id int64) (Note, error)
	// UpdateNote overwrites every mutable column of an existing note.
	UpdateNote(ctx context.Context, n Note) error
	// DeleteNote removes the row and its tag links.
	DeleteNote(ctx context.Context, id int64) error
	// ListNotes returns matching notes ordered by id.
	ListNotes(ctx context.Context, f NoteFilter) ([]Note, error)

	// AppendLog persists an operation log entry and assigns its ID.
	AppendLog(ctx context.Context, e *LogEntry) error
	// ListLogs returns entries newest first.
	ListLogs(ctx context.Context, f LogFilter) ([]LogEntry, error)
	// ClearLogs deletes every entry and reports how many were removed.
	ClearLogs(ctx context.Context) (int64, error)

	// SetNoteTags replaces the tags linked to a note, creating missing tags
	// stamped with at.
	SetNoteTags(ctx context.Context, noteID int64, names []string, at time.Time) error
	// ListTags returns all tags with their active note counts.
	ListTags(ctx context.Context) ([]TagCount, error)

	// InsertWorkLog persists a work session and assigns its ID.
	InsertWorkLog(ctx context.Context, w *WorkLog) error
	// ListWorkLogs returns sessions dated at or after since.
	ListWorkLogs(ctx context.Context, since time.Time) ([]WorkLog, error)

	// Commit applies all staged changes atomically.
	Commit(ctx context.Context) error
	// Rollback discards all staged changes. Calling it after Commit is a no-op.
	Rollback(ctx context.Context) error
}
