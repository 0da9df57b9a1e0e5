package storage

import (
	"context"
	"sync"

	"github.com/npcforge/dialogue-engine/pkg/memory"
)

// MockMemoryStore is an in-memory MemoryStore for testing. It preserves
// insertion order per player and can be set to fail.
type MockMemoryStore struct {
	CreateFunc       func(ctx context.Context, rec memory.Record) (memory.Record, error)
	FindByPlayerFunc func(ctx context.Context, playerID string) ([]memory.Record, error)

	mu      sync.Mutex
	records map[string][]memory.Record
}

var _ MemoryStore = (*MockMemoryStore)(nil)

// NewMockMemoryStore creates an empty mock store.
func NewMockMemoryStore() *MockMemoryStore {
	return &MockMemoryStore{records: make(map[string][]memory.Record)}
}

func (m *MockMemoryStore) Create(ctx context.Context, rec memory.Record) (memory.Record, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, rec)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.PlayerID] = append(m.records[rec.PlayerID], rec)
	return rec, nil
}

func (m *MockMemoryStore) FindByPlayer(ctx context.Context, playerID string) ([]memory.Record, error) {
	if m.FindByPlayerFunc != nil {
		return m.FindByPlayerFunc(ctx, playerID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]memory.Record, len(m.records[playerID]))
	copy(out, m.records[playerID])
	return out, nil
}

// Count returns how many records the player owns.
func (m *MockMemoryStore) Count(playerID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records[playerID])
}
