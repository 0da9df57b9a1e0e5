package session

import (
	"context"
	"sync"
)

type memState struct {
	embedding    []float64
	hasEmbedding bool
	emotion      string
	hasEmotion   bool
}

// MemStore is an in-memory Store for tests and single-process runs.
// It never evicts.
type MemStore struct {
	mu       sync.RWMutex
	sessions map[string]*memState
}

var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory session store.
func NewMemStore() *MemStore {
	return &MemStore{sessions: make(map[string]*memState)}
}

func (s *MemStore) state(key string) *memState {
	st, ok := s.sessions[key]
	if !ok {
		st = &memState{}
		s.sessions[key] = st
	}
	return st
}

func (s *MemStore) PrevEmbedding(ctx context.Context, key string) ([]float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.sessions[key]
	if !ok || !st.hasEmbedding {
		return nil, false, nil
	}
	out := make([]float64, len(st.embedding))
	copy(out, st.embedding)
	return out, true, nil
}

func (s *MemStore) SetPrevEmbedding(ctx context.Context, key string, embedding []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(key)
	st.embedding = make([]float64, len(embedding))
	copy(st.embedding, embedding)
	st.hasEmbedding = true
	return nil
}

func (s *MemStore) PrevEmotion(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.sessions[key]
	if !ok || !st.hasEmotion {
		return "", false, nil
	}
	return st.emotion, true, nil
}

func (s *MemStore) SetPrevEmotion(ctx context.Context, key string, label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(key)
	st.emotion = label
	st.hasEmotion = true
	return nil
}

func (s *MemStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, key)
	return nil
}
