package core

import "sort"

// SortNotes orders notes for display: open notes before completed ones,
// newest first inside each group, ascending id on identical timestamps.
func SortNotes(notes []Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		a, b := notes[i], notes[j]
		if a.Completed() != b.Completed() {
			return !a.Completed()
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// sortTrash orders trashed notes by deletion time (UpdatedAt), newest first.
func sortTrash(notes []Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		a, b := notes[i], notes[j]
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.ID < b.ID
	})
}
