// Package session holds the per-session state the perception components
// carry across turns: the previous context embedding and the previous
// emotion label. A session is one player talking to one NPC.
package session

import (
	"context"
	"errors"
)

// ErrStore wraps session store transport failures.
var ErrStore = errors.New("session store error")

// Store persists session-scoped prior state. Implementations must keep the
// two fields independently updatable: each perception component commits its
// own field as soon as it computes, so a cancelled turn leaves earlier
// stages' updates in place.
type Store interface {
	// PrevEmbedding returns the previous context embedding for the
	// session, with ok=false when the session has no prior observation.
	PrevEmbedding(ctx context.Context, key string) (embedding []float64, ok bool, err error)

	// SetPrevEmbedding replaces the session's previous embedding.
	SetPrevEmbedding(ctx context.Context, key string, embedding []float64) error

	// PrevEmotion returns the previous emotion label for the session,
	// with ok=false when no utterance has been analyzed yet.
	PrevEmotion(ctx context.Context, key string) (label string, ok bool, err error)

	// SetPrevEmotion replaces the session's previous emotion label.
	SetPrevEmotion(ctx context.Context, key string, label string) error

	// Delete discards all prior state for the session. Used on
	// deliberate session end; idle sessions may also be evicted by
	// the store itself.
	Delete(ctx context.Context, key string) error
}
