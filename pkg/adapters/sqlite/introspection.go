package sqlite

import (
	"sort"

	"github.com/aretw0/introspection"
)

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	DSN            string   `json:"dsn"`
	ReadOnly       bool     `json:"read_only"`
	Initialized    bool     `json:"initialized"`
	Commits        int      `json:"commits"`
	Rollbacks      int      `json:"rollbacks"`
	TransactionIDs []string `json:"active_transactions,omitempty"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.activeTx))
	for id := range r.activeTx {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return RepositoryState{
		DSN:            r.DSN,
		ReadOnly:       r.readOnly,
		Initialized:    r.initialized,
		Commits:        r.commits,
		Rollbacks:      r.rollbacks,
		TransactionIDs: ids,
	}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "sqlite-repository"
}

var _ introspection.Introspectable = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)
