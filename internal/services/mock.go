package services

import (
	"context"
	"sync"

	"github.com/npcforge/dialogue-engine/pkg/chat"
)

// MockEmbedder is a mock implementation of Embedder for testing.
type MockEmbedder struct {
	EmbedFunc func(ctx context.Context, text string) ([]float64, error)

	// EmbedCalls records the texts passed to Embed.
	EmbedCalls []string

	mu sync.Mutex
}

// NewMockEmbedder creates a mock embedder.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{EmbedCalls: make([]string, 0)}
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	m.mu.Lock()
	m.EmbedCalls = append(m.EmbedCalls, text)
	m.mu.Unlock()

	if m.EmbedFunc != nil {
		return m.EmbedFunc(ctx, text)
	}
	// Default: a fixed unit vector, so every text looks identical.
	return []float64{1, 0, 0}, nil
}

// CallCount returns how many times Embed was invoked.
func (m *MockEmbedder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.EmbedCalls)
}

// MockClassifier is a mock implementation of Classifier for testing.
type MockClassifier struct {
	ClassifyFunc func(ctx context.Context, text string) (Classification, error)

	ClassifyCalls []string

	mu sync.Mutex
}

// NewMockClassifier creates a mock classifier.
func NewMockClassifier() *MockClassifier {
	return &MockClassifier{ClassifyCalls: make([]string, 0)}
}

func (m *MockClassifier) Classify(ctx context.Context, text string) (Classification, error) {
	m.mu.Lock()
	m.ClassifyCalls = append(m.ClassifyCalls, text)
	m.mu.Unlock()

	if m.ClassifyFunc != nil {
		return m.ClassifyFunc(ctx, text)
	}
	return Classification{Label: "joy", Score: 0.95}, nil
}

// CallCount returns how many times Classify was invoked.
func (m *MockClassifier) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ClassifyCalls)
}

// MockComposer is a mock implementation of Composer for testing.
type MockComposer struct {
	RespondFunc func(ctx context.Context, messages []chat.Message) (string, error)

	RespondCalls [][]chat.Message

	mu sync.Mutex
}

// NewMockComposer creates a mock composer.
func NewMockComposer() *MockComposer {
	return &MockComposer{RespondCalls: make([][]chat.Message, 0)}
}

func (m *MockComposer) Respond(ctx context.Context, messages []chat.Message) (string, error) {
	m.mu.Lock()
	m.RespondCalls = append(m.RespondCalls, messages)
	m.mu.Unlock()

	if m.RespondFunc != nil {
		return m.RespondFunc(ctx, messages)
	}
	return "Inner Monologue:\nA test thought.\n\nFinal Response:\nHello, adventurer!", nil
}

// CallCount returns how many times Respond was invoked.
func (m *MockComposer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.RespondCalls)
}
