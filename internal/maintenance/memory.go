package maintenance

import (
	"context"
	"sync"
)

// MemoryStore keeps maintenance requests in process memory. Used by tests
// and by local runs without Postgres.
type MemoryStore struct {
	mu       sync.RWMutex
	requests map[string]*MaintenanceRequest
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{requests: make(map[string]*MaintenanceRequest)}
}

func (m *MemoryStore) CreateRequest(_ context.Context, req *MaintenanceRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[req.ID] = req.Clone()
	return nil
}

func (m *MemoryStore) GetRequest(_ context.Context, id string) (*MaintenanceRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	req, ok := m.requests[id]
	if !ok {
		return nil, ErrRequestNotFound
	}
	return req.Clone(), nil
}

func (m *MemoryStore) UpdateRequest(_ context.Context, req *MaintenanceRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[req.ID]; !ok {
		return ErrRequestNotFound
	}
	m.requests[req.ID] = req.Clone()
	return nil
}

func (m *MemoryStore) ListRequests(_ context.Context) ([]*MaintenanceRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*MaintenanceRequest, 0, len(m.requests))
	for _, req := range m.requests {
		out = append(out, req.Clone())
	}
	return out, nil
}
