// Package core holds the worklog domain: notes and their lifecycle, the
// operation log, tags and work logs, plus the ports the storage adapters implement.
package core

import "time"

// Status is the lifecycle state of a note.
type Status string

const (
	StatusNormal    Status = "normal"
	StatusUrgent    Status = "urgent"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusNormal, StatusUrgent, StatusCompleted:
		return true
	}
	return false
}

// Note is the central entity of the domain.
type Note struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Color     string    `json:"color"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	IsDeleted bool      `json:"is_deleted"`
	Priority  int       `json:"priority"`
}

// Completed reports whether the note is done.
func (n Note) Completed() bool { return n.Status == StatusCompleted }

// Urgent reports whether the note is flagged urgent.
func (n Note) Urgent() bool { return n.Status == StatusUrgent }

// DisplayColor is the color a card should be painted with.
// Status markers win over the stored preference.
func (n Note) DisplayColor() string {
	switch n.Status {
	case StatusCompleted:
		return CompletedColor
	case StatusUrgent:
		return UrgentColor
	}
	if n.Color == "" {
		return DefaultColor
	}
	return n.Color
}

// Action is the kind of lifecycle transition recorded in the operation log.
type Action string

const (
	ActionCreate   Action = "create"
	ActionComplete Action = "complete"
	ActionDelete   Action = "delete"
	ActionRestore  Action = "restore"
	ActionPurge    Action = "purge"
)

// LogEntry is one row of the operation log. NoteContent is a snapshot taken
// when the action happened, not a reference to the note.
type LogEntry struct {
	ID          int64     `json:"id"`
	Action      Action    `json:"action_type"`
	NoteContent string    `json:"note_content"`
	CreatedAt   time.Time `json:"created_at"`
}

// Tag is a normalized hashtag.
type Tag struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

// TagCount pairs a tag with the number of active notes carrying it.
type TagCount struct {
	Tag
	Notes int `json:"notes"`
}

// WorkLog records a finished focus session.
type WorkLog struct {
	ID              int64     `json:"id"`
	Date            time.Time `json:"date"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	DurationMinutes int       `json:"duration_minutes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Stats summarizes recent activity.
type Stats struct {
	Days             int `json:"days"`
	TotalWorkMinutes int `json:"total_work_minutes"`
	ActiveNotes      int `json:"active_notes"`
	CompletedNotes   int `json:"completed_notes"`
}

// EventType represents the type of change in the store.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
	EventClear  EventType = "CLEAR"
)

// Event represents a committed change to a note or to the operation log.
type Event struct {
	Type      EventType
	NoteID    int64
	Timestamp int64 // Unix timestamp
}

// String implements lifecycle.Event.
func (e Event) String() string {
	return string(e.Type)
}
