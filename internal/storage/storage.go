package storage

import (
	"context"
	"errors"

	"github.com/npcforge/dialogue-engine/pkg/memory"
)

// ErrStore wraps memory store transport failures.
var ErrStore = errors.New("memory store error")

// HealthChecker defines basic health check capabilities.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Closer defines cleanup capabilities.
type Closer interface {
	Close(ctx context.Context) error
}

// MemoryStore persists memory records keyed by player. Records are
// append-only from the engine's point of view; eviction, if any, is store
// policy. FindByPlayer must return records in insertion order so that
// equal-similarity ranking ties break deterministically.
type MemoryStore interface {
	// Create persists one record and returns it as stored.
	Create(ctx context.Context, rec memory.Record) (memory.Record, error)

	// FindByPlayer returns the player's full memory history in
	// insertion order. An empty result is a valid state, not an error.
	FindByPlayer(ctx context.Context, playerID string) ([]memory.Record, error)
}
