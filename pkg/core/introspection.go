package core

import (
	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	EventBufferSize int    `json:"event_buffer_size"`
	PendingEvents   int    `json:"pending_events"`
	DroppedEvents   int    `json:"dropped_events"`
	StorageFailures int    `json:"storage_failures"`
	RepositoryType  string `json:"repository_type"`
	Closed          bool   `json:"closed"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	repoType := "unknown"
	if s.repo != nil {
		repoType = "repository"
		// Try to get component type if repository implements introspection.Component
		if comp, ok := s.repo.(introspection.Component); ok {
			repoType = comp.ComponentType()
		}
	}

	return ServiceState{
		EventBufferSize: s.eventBufferSize,
		PendingEvents:   len(s.events),
		DroppedEvents:   s.dropped,
		StorageFailures: s.failures,
		RepositoryType:  repoType,
		Closed:          s.closed,
	}
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "note-service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
