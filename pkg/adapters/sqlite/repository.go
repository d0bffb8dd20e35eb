// Package sqlite implements core.Repository on SQLite through database/sql.
// It uses the pure-Go ncruces driver so the binary stays cgo-free.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/aretw0/worklog/pkg/core"
)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS notes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL DEFAULT '',
    color TEXT NOT NULL DEFAULT '#FFF9E6',
    status TEXT NOT NULL DEFAULT 'normal',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    is_deleted INTEGER NOT NULL DEFAULT 0,
    priority INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_notes_deleted ON notes(is_deleted);

-- Append-only history; note_content is a snapshot, not a reference.
CREATE TABLE IF NOT EXISTS operation_logs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    action_type TEXT NOT NULL,
    note_content TEXT NOT NULL,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_operation_logs_created ON operation_logs(created_at);

CREATE TABLE IF NOT EXISTS tags (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    color TEXT NOT NULL DEFAULT '#5C4B00',
    created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS note_tags (
    note_id INTEGER NOT NULL,
    tag_id INTEGER NOT NULL,
    PRIMARY KEY (note_id, tag_id)
);

CREATE INDEX IF NOT EXISTS idx_note_tags_tag ON note_tags(tag_id);

CREATE TABLE IF NOT EXISTS worklogs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    date TEXT NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL DEFAULT '',
    duration_minutes INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_worklogs_date ON worklogs(date);
`

// Config holds the store settings.
type Config struct {
	// DSN is a file path or MemoryDSN.
	DSN string
	// ReadOnly rejects every write with core.ErrReadOnly. A file DSN is
	// opened with mode=ro and its schema is left alone; a missing file is
	// served as an empty in-memory store so nothing is created on disk.
	ReadOnly bool
	Logger   *slog.Logger
}

// Repository implements core.Repository for SQLite.
type Repository struct {
	DSN string

	db       *sql.DB
	readOnly bool
	memory   bool
	logger   *slog.Logger

	mu          sync.RWMutex
	initialized bool
	activeTx    map[string]struct{}
	commits     int
	rollbacks   int
}

// NewRepository opens the database. The schema is created by Initialize.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.DSN == "" {
		cfg.DSN = MemoryDSN
	}
	dsn, memory := cfg.DSN, cfg.DSN == MemoryDSN
	if cfg.ReadOnly && !memory {
		if _, err := os.Stat(cfg.DSN); errors.Is(err, fs.ErrNotExist) {
			dsn, memory = MemoryDSN, true
			if cfg.Logger != nil {
				cfg.Logger.Debug("read-only store has no database yet, serving it empty", "path", cfg.DSN)
			}
		} else {
			dsn = readOnlyDSN(cfg.DSN)
		}
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w: %w", core.ErrStorage, err)
	}
	// A single connection keeps ":memory:" coherent and matches SQLite's
	// single-writer model.
	db.SetMaxOpenConns(1)

	return &Repository{
		DSN:      dsn,
		db:       db,
		readOnly: cfg.ReadOnly,
		memory:   memory,
		logger:   cfg.Logger,
		activeTx: make(map[string]struct{}),
	}, nil
}

// readOnlyDSN turns a path (or file: URI) into a URI opened with mode=ro.
func readOnlyDSN(dsn string) string {
	if strings.HasPrefix(dsn, "file:") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		return dsn + sep + "mode=ro"
	}
	path := dsn
	if abs, err := filepath.Abs(dsn); err == nil {
		path = abs
	}
	path = filepath.ToSlash(path)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := url.URL{Scheme: "file", Path: path, RawQuery: "mode=ro"}
	return u.String()
}

// Initialize creates the schema if it does not exist. A read-only file
// store is never altered.
func (r *Repository) Initialize(ctx context.Context) error {
	if !r.readOnly || r.memory {
		if _, err := r.db.ExecContext(ctx, schema); err != nil {
			return fmt.Errorf("failed to create schema: %w: %w", core.ErrStorage, err)
		}
	}

	r.mu.Lock()
	r.initialized = true
	r.mu.Unlock()

	if r.logger != nil {
		r.logger.Debug("sqlite schema ready", "dsn", r.DSN, "read_only", r.readOnly)
	}
	return nil
}

// Begin starts a new transaction.
func (r *Repository) Begin(ctx context.Context) (core.Transaction, error) {
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w: %w", core.ErrStorage, err)
	}

	id := uuid.NewString()
	r.mu.Lock()
	r.activeTx[id] = struct{}{}
	r.mu.Unlock()

	return &Transaction{id: id, repo: r, tx: sqlTx}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) release(id string, committed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.activeTx, id)
	if committed {
		r.commits++
	} else {
		r.rollbacks++
	}
}

var _ core.Repository = (*Repository)(nil)
