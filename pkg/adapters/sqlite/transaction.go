package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/worklog/pkg/core"
)

// Transaction implements core.Transaction over a sql.Tx.
type Transaction struct {
	id     string
	repo   *Repository
	tx     *sql.Tx
	mu     sync.Mutex
	closed bool
}

// ID identifies the transaction in introspection output.
func (t *Transaction) ID() string { return t.id }

func (t *Transaction) check(write bool) error {
	if t.closed {
		return core.ErrTxClosed
	}
	if write && t.repo.readOnly {
		return core.ErrReadOnly
	}
	return nil
}

func wrap(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, core.ErrStorage, err)
}

const noteColumns = `id, title, content, color, status, created_at, updated_at, is_deleted, priority`

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(row scanner) (core.Note, error) {
	var (
		n                core.Note
		status           string
		created, updated string
		deleted          int
	)
	if err := row.Scan(&n.ID, &n.Title, &n.Content, &n.Color, &status, &created, &updated, &deleted, &n.Priority); err != nil {
		return core.Note{}, err
	}
	n.Status = core.Status(status)
	n.IsDeleted = deleted != 0

	var err error
	if n.CreatedAt, err = parseTime(created); err != nil {
		return core.Note{}, err
	}
	if n.UpdatedAt, err = parseTime(updated); err != nil {
		return core.Note{}, err
	}
	return n, nil
}

// InsertNote persists a new note and assigns its ID.
func (t *Transaction) InsertNote(ctx context.Context, n *core.Note) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(true); err != nil {
		return err
	}

	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO notes (title, content, color, status, created_at, updated_at, is_deleted, priority)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.Title, n.Content, n.Color, string(n.Status),
		formatTime(n.CreatedAt), formatTime(n.UpdatedAt), boolToInt(n.IsDeleted), n.Priority,
	)
	if err != nil {
		return wrap("insert note", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return wrap("insert note", err)
	}
	n.ID = id
	return nil
}

// GetNote returns core.ErrNotFound if no row has the given id.
func (t *Transaction) GetNote(ctx context.Context, id int64) (core.Note, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(false); err != nil {
		return core.Note{}, err
	}

	row := t.tx.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = ?`, id)
	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Note{}, fmt.Errorf("note %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Note{}, wrap("get note", err)
	}
	return n, nil
}

// UpdateNote overwrites every mutable column of an existing note.
func (t *Transaction) UpdateNote(ctx context.Context, n core.Note) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(true); err != nil {
		return err
	}

	res, err := t.tx.ExecContext(ctx, `
		UPDATE notes SET title = ?, content = ?, color = ?, status = ?,
			updated_at = ?, is_deleted = ?, priority = ?
		WHERE id = ?`,
		n.Title, n.Content, n.Color, string(n.Status),
		formatTime(n.UpdatedAt), boolToInt(n.IsDeleted), n.Priority, n.ID,
	)
	if err != nil {
		return wrap("update note", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("note %d: %w", n.ID, core.ErrNotFound)
	}
	return nil
}

// DeleteNote removes the row and its tag links.
func (t *Transaction) DeleteNote(ctx context.Context, id int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(true); err != nil {
		return err
	}

	if _, err := t.tx.ExecContext(ctx, `DELETE FROM note_tags WHERE note_id = ?`, id); err != nil {
		return wrap("delete note tags", err)
	}
	res, err := t.tx.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return wrap("delete note", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("note %d: %w", id, core.ErrNotFound)
	}
	return nil
}

// ListNotes returns matching notes ordered by id.
func (t *Transaction) ListNotes(ctx context.Context, f core.NoteFilter) ([]core.Note, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(false); err != nil {
		return nil, err
	}

	rows, err := t.tx.QueryContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE is_deleted = ? ORDER BY id`, boolToInt(f.Deleted))
	if err != nil {
		return nil, wrap("list notes", err)
	}
	defer rows.Close()

	var notes []core.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, wrap("scan note", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list notes", err)
	}
	return notes, nil
}

// AppendLog persists an operation log entry and assigns its ID.
func (t *Transaction) AppendLog(ctx context.Context, e *core.LogEntry) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(true); err != nil {
		return err
	}

	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO operation_logs (action_type, note_content, created_at) VALUES (?, ?, ?)`,
		string(e.Action), e.NoteContent, formatTime(e.CreatedAt))
	if err != nil {
		return wrap("append log", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return wrap("append log", err)
	}
	e.ID = id
	return nil
}

// ListLogs returns entries newest first. Entries sharing a timestamp are
// ordered by descending id.
func (t *Transaction) ListLogs(ctx context.Context, f core.LogFilter) ([]core.LogEntry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(false); err != nil {
		return nil, err
	}

	var (
		where []string
		args  []any
	)
	if !f.From.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, formatTime(f.From))
	}
	if !f.To.IsZero() {
		where = append(where, "created_at <= ?")
		args = append(args, formatTime(f.To))
	}
	query := `SELECT id, action_type, note_content, created_at FROM operation_logs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap("list logs", err)
	}
	defer rows.Close()

	var entries []core.LogEntry
	for rows.Next() {
		var (
			e       core.LogEntry
			action  string
			created string
		)
		if err := rows.Scan(&e.ID, &action, &e.NoteContent, &created); err != nil {
			return nil, wrap("scan log", err)
		}
		e.Action = core.Action(action)
		if e.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list logs", err)
	}
	return entries, nil
}

// ClearLogs deletes every entry and reports how many were removed.
func (t *Transaction) ClearLogs(ctx context.Context) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(true); err != nil {
		return 0, err
	}

	res, err := t.tx.ExecContext(ctx, `DELETE FROM operation_logs`)
	if err != nil {
		return 0, wrap("clear logs", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// SetNoteTags replaces the tags linked to a note, creating missing tags
// stamped with at.
func (t *Transaction) SetNoteTags(ctx context.Context, noteID int64, names []string, at time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(true); err != nil {
		return err
	}

	if _, err := t.tx.ExecContext(ctx, `DELETE FROM note_tags WHERE note_id = ?`, noteID); err != nil {
		return wrap("unlink tags", err)
	}
	created := formatTime(at)
	for _, name := range names {
		if _, err := t.tx.ExecContext(ctx,
			`INSERT INTO tags (name, color, created_at) VALUES (?, ?, ?) ON CONFLICT(name) DO NOTHING`,
			name, core.DefaultTagColor, created); err != nil {
			return wrap("create tag", err)
		}
		var tagID int64
		if err := t.tx.QueryRowContext(ctx, `SELECT id FROM tags WHERE name = ?`, name).Scan(&tagID); err != nil {
			return wrap("lookup tag", err)
		}
		if _, err := t.tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO note_tags (note_id, tag_id) VALUES (?, ?)`, noteID, tagID); err != nil {
			return wrap("link tag", err)
		}
	}
	return nil
}

// ListTags returns all tags with their active note counts, most used first.
func (t *Transaction) ListTags(ctx context.Context) ([]core.TagCount, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(false); err != nil {
		return nil, err
	}

	rows, err := t.tx.QueryContext(ctx, `
		SELECT t.id, t.name, t.color, t.created_at, COUNT(n.id) AS notes
		FROM tags t
		LEFT JOIN note_tags nt ON nt.tag_id = t.id
		LEFT JOIN notes n ON n.id = nt.note_id AND n.is_deleted = 0
		GROUP BY t.id, t.name, t.color, t.created_at
		ORDER BY notes DESC, t.name ASC`)
	if err != nil {
		return nil, wrap("list tags", err)
	}
	defer rows.Close()

	var tags []core.TagCount
	for rows.Next() {
		var (
			tc      core.TagCount
			created string
		)
		if err := rows.Scan(&tc.ID, &tc.Name, &tc.Color, &created, &tc.Notes); err != nil {
			return nil, wrap("scan tag", err)
		}
		if tc.CreatedAt, err = parseTime(created); err != nil {
			return nil, wrap("scan tag", err)
		}
		tags = append(tags, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list tags", err)
	}
	return tags, nil
}

// InsertWorkLog persists a work session and assigns its ID.
func (t *Transaction) InsertWorkLog(ctx context.Context, w *core.WorkLog) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(true); err != nil {
		return err
	}

	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO worklogs (date, title, content, duration_minutes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		formatTime(w.Date), w.Title, w.Content, w.DurationMinutes,
		formatTime(w.CreatedAt), formatTime(w.UpdatedAt))
	if err != nil {
		return wrap("insert worklog", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return wrap("insert worklog", err)
	}
	w.ID = id
	return nil
}

// ListWorkLogs returns sessions dated at or after since, oldest first.
func (t *Transaction) ListWorkLogs(ctx context.Context, since time.Time) ([]core.WorkLog, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(false); err != nil {
		return nil, err
	}

	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, date, title, content, duration_minutes, created_at, updated_at
		FROM worklogs WHERE date >= ? ORDER BY date, id`, formatTime(since))
	if err != nil {
		return nil, wrap("list worklogs", err)
	}
	defer rows.Close()

	var logs []core.WorkLog
	for rows.Next() {
		var (
			w                      core.WorkLog
			date, created, updated string
		)
		if err := rows.Scan(&w.ID, &date, &w.Title, &w.Content, &w.DurationMinutes, &created, &updated); err != nil {
			return nil, wrap("scan worklog", err)
		}
		if w.Date, err = parseTime(date); err != nil {
			return nil, err
		}
		if w.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		if w.UpdatedAt, err = parseTime(updated); err != nil {
			return nil, err
		}
		logs = append(logs, w)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list worklogs", err)
	}
	return logs, nil
}

// Commit applies all staged changes atomically.
func (t *Transaction) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return core.ErrTxClosed
	}
	t.closed = true

	if err := t.tx.Commit(); err != nil {
		t.repo.release(t.id, false)
		return wrap("commit", err)
	}
	t.repo.release(t.id, true)
	return nil
}

// Rollback discards all staged changes. It is a no-op on a closed transaction.
func (t *Transaction) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	t.repo.release(t.id, false)

	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return wrap("rollback", err)
	}
	return nil
}

var _ core.Transaction = (*Transaction)(nil)
