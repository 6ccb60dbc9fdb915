package prereq

import (
	"context"
	"sync"

	"github.com/mind-engage/mindengage-academics/internal/shared"
)

type memoryStore struct {
	mu    sync.RWMutex
	edges []Edge // declaration order
}

// NewInMemoryStore returns a process-local Store for offline mode and tests.
func NewInMemoryStore() Store {
	return &memoryStore{}
}

func (m *memoryStore) EdgesFor(_ context.Context, courseCode string) ([]Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Edge{}
	for _, e := range m.edges {
		if e.CourseCode == courseCode {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memoryStore) ListEdges(_ context.Context) ([]Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Edge, len(m.edges))
	copy(out, m.edges)
	return out, nil
}

func (m *memoryStore) InsertEdge(_ context.Context, e Edge) (Edge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.edges {
		if x.CourseCode == e.CourseCode && x.PrerequisiteCode == e.PrerequisiteCode {
			return Edge{}, shared.NewDomainError("prereq", "InsertEdge", shared.ErrConflict, "duplicate edge")
		}
	}
	m.edges = append(m.edges, e)
	return e, nil
}

func (m *memoryStore) DeleteEdge(_ context.Context, id string) (Edge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, x := range m.edges {
		if x.ID == id {
			m.edges = append(m.edges[:i], m.edges[i+1:]...)
			return x, nil
		}
	}
	return Edge{}, shared.NewDomainError("prereq", "DeleteEdge", shared.ErrNotFound, "edge not found")
}
