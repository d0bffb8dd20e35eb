package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	placeholderNewNote   = "New Note"
	placeholderEmptyNote = "Empty Note"
	defaultEventBuffer   = 100
	defaultStatsDays     = 7
)

// Config carries the only settings the note service needs.
type Config struct {
	// DefaultColor is the display color given to notes created without one.
	DefaultColor string
	// Now returns the current local time. Defaults to time.Now.
	Now func() time.Time
	// Logger receives storage diagnostics. Nil means silent.
	Logger *slog.Logger
	// EventBuffer is the capacity of the change event channel. Zero means 100.
	EventBuffer int
}

// Service handles the note lifecycle over a Repository.
// It keeps no note state between calls: each operation is one unit of work.
type Service struct {
	repo   Repository
	cfg    Config
	logger *slog.Logger

	mu              sync.RWMutex
	events          chan Event
	eventBufferSize int
	closed          bool
	dropped         int
	failures        int
}

// NewService creates a new Service.
func NewService(repo Repository, cfg Config) *Service {
	if cfg.DefaultColor == "" {
		cfg.DefaultColor = DefaultColor
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	size := cfg.EventBuffer
	if size <= 0 {
		size = defaultEventBuffer
	}
	return &Service{
		repo:            repo,
		cfg:             cfg,
		logger:          logger,
		events:          make(chan Event, size),
		eventBufferSize: size,
	}
}

// Events streams committed changes. The channel is closed by Close.
func (s *Service) Events() <-chan Event {
	return s.events
}

// Close stops event delivery and closes the repository.
func (s *Service) Close() error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.events)
	}
	s.mu.Unlock()
	return s.repo.Close()
}

// CreateOption customizes a new note.
type CreateOption func(*Note)

// WithColor sets the display color. Legacy marker colors set the status instead.
func WithColor(color string) CreateOption {
	return func(n *Note) {
		if color == "" {
			return
		}
		if st, ok := StatusFromColor(color); ok {
			n.Status = st
			return
		}
		n.Color = color
	}
}

// WithStatus sets the initial status.
func WithStatus(st Status) CreateOption {
	return func(n *Note) { n.Status = st }
}

// WithPriority sets the priority.
func WithPriority(p int) CreateOption {
	return func(n *Note) { n.Priority = p }
}

// UpdateInput lists the fields to change. Nil fields keep their value, and an
// empty Title is never written.
type UpdateInput struct {
	Title    *string
	Content  *string
	Color    *string
	Status   *Status
	Priority *int
}

// ListActive returns the notes that are not in the trash, in display order.
func (s *Service) ListActive(ctx context.Context) ([]Note, error) {
	var notes []Note
	err := s.withTx(ctx, func(tx Transaction) error {
		var err error
		notes, err = tx.ListNotes(ctx, NoteFilter{Deleted: false})
		return err
	})
	if err != nil {
		return nil, err
	}
	SortNotes(notes)
	return notes, nil
}

// ListTrash returns soft-deleted notes, most recently deleted first.
func (s *Service) ListTrash(ctx context.Context) ([]Note, error) {
	var notes []Note
	err := s.withTx(ctx, func(tx Transaction) error {
		var err error
		notes, err = tx.ListNotes(ctx, NoteFilter{Deleted: true})
		return err
	})
	if err != nil {
		return nil, err
	}
	sortTrash(notes)
	return notes, nil
}

// Get returns a note by id, trashed or not.
func (s *Service) Get(ctx context.Context, id int64) (Note, error) {
	var n Note
	err := s.withTx(ctx, func(tx Transaction) error {
		var err error
		n, err = tx.GetNote(ctx, id)
		return err
	})
	return n, err
}

// Create inserts a note and records it in the operation log.
func (s *Service) Create(ctx context.Context, title, content string, opts ...CreateOption) (Note, error) {
	now := s.cfg.Now()
	n := Note{
		Title:     title,
		Content:   content,
		Color:     s.cfg.DefaultColor,
		Status:    StatusNormal,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(&n)
	}
	if !n.Status.Valid() {
		return Note{}, fmt.Errorf("%w: status %q", ErrInvalidInput, n.Status)
	}

	err := s.withTx(ctx, func(tx Transaction) error {
		if err := tx.InsertNote(ctx, &n); err != nil {
			return err
		}
		snapshot := title
		if snapshot == "" {
			snapshot = placeholderNewNote
		}
		if err := s.appendLog(ctx, tx, ActionCreate, snapshot); err != nil {
			return err
		}
		if tags := ExtractTags(n.Title, n.Content); len(tags) > 0 {
			return tx.SetNoteTags(ctx, n.ID, tags, n.CreatedAt)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("create note failed", "error", err)
		return Note{}, err
	}

	s.publish(EventCreate, n.ID)
	return n, nil
}

// Update applies a partial update. Moving a note into the completed status
// appends a complete entry to the operation log; other edits are not logged.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (Note, error) {
	if in.Status != nil && !in.Status.Valid() {
		return Note{}, fmt.Errorf("%w: status %q", ErrInvalidInput, *in.Status)
	}
	return s.mutate(ctx, id, func(n *Note) {
		if in.Title != nil && *in.Title != "" {
			n.Title = *in.Title
		}
		if in.Content != nil {
			n.Content = *in.Content
		}
		if in.Color != nil && *in.Color != "" {
			WithColor(*in.Color)(n)
		}
		if in.Status != nil {
			n.Status = *in.Status
		}
		if in.Priority != nil {
			n.Priority = *in.Priority
		}
	})
}

// SetCompleted marks a note done, or reopens it.
func (s *Service) SetCompleted(ctx context.Context, id int64, done bool) (Note, error) {
	return s.mutate(ctx, id, func(n *Note) {
		switch {
		case done:
			n.Status = StatusCompleted
		case n.Status == StatusCompleted:
			n.Status = StatusNormal
		}
	})
}

// SetUrgent flags or unflags a note. Flagging a completed note reopens it.
func (s *Service) SetUrgent(ctx context.Context, id int64, urgent bool) (Note, error) {
	return s.mutate(ctx, id, func(n *Note) {
		switch {
		case urgent:
			n.Status = StatusUrgent
		case n.Status == StatusUrgent:
			n.Status = StatusNormal
		}
	})
}

func (s *Service) mutate(ctx context.Context, id int64, apply func(n *Note)) (Note, error) {
	var n Note
	err := s.withTx(ctx, func(tx Transaction) error {
		var err error
		n, err = tx.GetNote(ctx, id)
		if err != nil {
			return err
		}
		if n.IsDeleted {
			return fmt.Errorf("note %d is in the trash: %w", id, ErrNotFound)
		}

		before := n
		apply(&n)
		n.UpdatedAt = s.cfg.Now()

		if err := tx.UpdateNote(ctx, n); err != nil {
			return err
		}
		if n.Status == StatusCompleted && before.Status != StatusCompleted {
			if err := s.appendLog(ctx, tx, ActionComplete, n.Title); err != nil {
				return err
			}
		}
		if n.Title != before.Title || n.Content != before.Content {
			return tx.SetNoteTags(ctx, n.ID, ExtractTags(n.Title, n.Content), n.UpdatedAt)
		}
		return nil
	})
	if err != nil {
		s.report("update", id, err)
		return Note{}, err
	}

	s.publish(EventModify, id)
	return n, nil
}

// Delete moves a note to the trash and records it in the operation log.
// It returns false when the note does not exist, is already trashed, or the
// store failed; in every such case nothing was changed.
func (s *Service) Delete(ctx context.Context, id int64) bool {
	err := s.withTx(ctx, func(tx Transaction) error {
		n, err := tx.GetNote(ctx, id)
		if err != nil {
			return err
		}
		if n.IsDeleted {
			return fmt.Errorf("note %d already in the trash: %w", id, ErrNotFound)
		}
		n.IsDeleted = true
		n.UpdatedAt = s.cfg.Now()
		if err := tx.UpdateNote(ctx, n); err != nil {
			return err
		}
		return s.appendLog(ctx, tx, ActionDelete, n.Title)
	})
	if err != nil {
		s.report("delete", id, err)
		return false
	}

	s.publish(EventDelete, id)
	return true
}

// Restore brings a trashed note back. Restoring an active note is a no-op
// that still reports true.
func (s *Service) Restore(ctx context.Context, id int64) bool {
	restored := false
	err := s.withTx(ctx, func(tx Transaction) error {
		n, err := tx.GetNote(ctx, id)
		if err != nil {
			return err
		}
		if !n.IsDeleted {
			return nil
		}
		n.IsDeleted = false
		n.UpdatedAt = s.cfg.Now()
		if err := tx.UpdateNote(ctx, n); err != nil {
			return err
		}
		restored = true
		return s.appendLog(ctx, tx, ActionRestore, n.Title)
	})
	if err != nil {
		s.report("restore", id, err)
		return false
	}

	if restored {
		s.publish(EventCreate, id)
	}
	return true
}

// Purge permanently removes a note, trashed or not.
func (s *Service) Purge(ctx context.Context, id int64) bool {
	err := s.withTx(ctx, func(tx Transaction) error {
		n, err := tx.GetNote(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.DeleteNote(ctx, id); err != nil {
			return err
		}
		return s.appendLog(ctx, tx, ActionPurge, n.Title)
	})
	if err != nil {
		s.report("purge", id, err)
		return false
	}

	s.publish(EventDelete, id)
	return true
}

// EmptyTrash purges every trashed note and returns how many were removed.
func (s *Service) EmptyTrash(ctx context.Context) (int, error) {
	var purged []int64
	err := s.withTx(ctx, func(tx Transaction) error {
		notes, err := tx.ListNotes(ctx, NoteFilter{Deleted: true})
		if err != nil {
			return err
		}
		for _, n := range notes {
			if err := tx.DeleteNote(ctx, n.ID); err != nil {
				return err
			}
			if err := s.appendLog(ctx, tx, ActionPurge, n.Title); err != nil {
				return err
			}
			purged = append(purged, n.ID)
		}
		return nil
	})
	if err != nil {
		s.report("empty trash", 0, err)
		return 0, err
	}

	for _, id := range purged {
		s.publish(EventDelete, id)
	}
	return len(purged), nil
}

// ClearLog deletes the whole operation log. It returns false on storage failure.
func (s *Service) ClearLog(ctx context.Context) bool {
	var removed int64
	err := s.withTx(ctx, func(tx Transaction) error {
		var err error
		removed, err = tx.ClearLogs(ctx)
		return err
	})
	if err != nil {
		s.report("clear log", 0, err)
		return false
	}

	s.logger.Debug("operation log cleared", "entries", removed)
	s.publish(EventClear, 0)
	return true
}

// ListLog returns the whole operation log, newest first.
func (s *Service) ListLog(ctx context.Context) ([]LogEntry, error) {
	return s.listLog(ctx, LogFilter{})
}

// ListLogForDate returns the entries written on the local calendar day of day.
func (s *Service) ListLogForDate(ctx context.Context, day time.Time) ([]LogEntry, error) {
	y, m, d := day.In(time.Local).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return s.listLog(ctx, LogFilter{From: start, To: end})
}

func (s *Service) listLog(ctx context.Context, f LogFilter) ([]LogEntry, error) {
	var entries []LogEntry
	err := s.withTx(ctx, func(tx Transaction) error {
		var err error
		entries, err = tx.ListLogs(ctx, f)
		return err
	})
	return entries, err
}

// ListTags returns every known tag with its active note count.
func (s *Service) ListTags(ctx context.Context) ([]TagCount, error) {
	var tags []TagCount
	err := s.withTx(ctx, func(tx Transaction) error {
		var err error
		tags, err = tx.ListTags(ctx)
		return err
	})
	return tags, err
}

// RecordWork stores a finished focus session.
func (s *Service) RecordWork(ctx context.Context, title string, minutes int) (WorkLog, error) {
	if minutes <= 0 {
		return WorkLog{}, fmt.Errorf("%w: duration must be positive, got %d", ErrInvalidInput, minutes)
	}
	now := s.cfg.Now()
	w := WorkLog{
		Date:            now,
		Title:           title,
		DurationMinutes: minutes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	err := s.withTx(ctx, func(tx Transaction) error {
		return tx.InsertWorkLog(ctx, &w)
	})
	if err != nil {
		s.logger.Error("record work failed", "error", err)
		return WorkLog{}, err
	}
	return w, nil
}

// Stats summarizes the last days of activity. Non-positive days means 7.
func (s *Service) Stats(ctx context.Context, days int) (Stats, error) {
	if days <= 0 {
		days = defaultStatsDays
	}
	st := Stats{Days: days}
	since := s.cfg.Now().AddDate(0, 0, -days)

	err := s.withTx(ctx, func(tx Transaction) error {
		logs, err := tx.ListWorkLogs(ctx, since)
		if err != nil {
			return err
		}
		for _, w := range logs {
			st.TotalWorkMinutes += w.DurationMinutes
		}

		notes, err := tx.ListNotes(ctx, NoteFilter{Deleted: false})
		if err != nil {
			return err
		}
		st.ActiveNotes = len(notes)
		for _, n := range notes {
			if n.Completed() {
				st.CompletedNotes++
			}
		}
		return nil
	})
	return st, err
}

// withTx runs fn in a unit of work. The transaction is rolled back on any
// error or panic and committed otherwise.
func (s *Service) withTx(ctx context.Context, fn func(tx Transaction) error) (err error) {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Warn("rollback failed", "error", rbErr)
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Service) appendLog(ctx context.Context, tx Transaction, action Action, content string) error {
	if content == "" {
		content = placeholderEmptyNote
	}
	return tx.AppendLog(ctx, &LogEntry{
		Action:      action,
		NoteContent: content,
		CreatedAt:   s.cfg.Now(),
	})
}

// report logs a failed operation. Missing notes are expected and logged at debug.
func (s *Service) report(op string, id int64, err error) {
	if errors.Is(err, ErrNotFound) {
		s.logger.Debug(op+" skipped", "id", id, "reason", err)
		return
	}
	s.mu.Lock()
	s.failures++
	s.mu.Unlock()
	s.logger.Error(op+" failed", "id", id, "error", err)
}

// publish never blocks: a full buffer drops the event.
func (s *Service) publish(t EventType, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	e := Event{Type: t, NoteID: id, Timestamp: s.cfg.Now().Unix()}
	select {
	case s.events <- e:
	default:
		s.dropped++
		s.logger.Debug("event dropped", "type", t, "id", id)
	}
}
