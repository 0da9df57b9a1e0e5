// Package perception watches a session for situational change: context
// drift between turns and shifts in the player's emotional state. Both
// components keep their prior observations in the session store, so they
// are safe to share across sessions as long as turns within one session
// are serialized.
package perception

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/npcforge/dialogue-engine/internal/session"
	"github.com/npcforge/dialogue-engine/internal/services"
	"github.com/npcforge/dialogue-engine/pkg/game"
	"github.com/npcforge/dialogue-engine/pkg/memory"
)

// DefaultDriftThreshold gates re-analysis: cosine similarity at or below
// this value counts as drift.
const DefaultDriftThreshold = 0.5

// DriftDetector decides whether a session's game context has changed
// enough since the previous turn to warrant re-analysis.
type DriftDetector struct {
	embedder services.Embedder
	sessions session.Store
	logger   *slog.Logger
}

// NewDriftDetector creates a drift detector.
func NewDriftDetector(embedder services.Embedder, sessions session.Store, logger *slog.Logger) *DriftDetector {
	return &DriftDetector{
		embedder: embedder,
		sessions: sessions,
		logger:   logger,
	}
}

// Detect serializes the context, embeds it, and compares it against the
// session's previous embedding. The first observation of a session stores
// the embedding and reports no drift. On later turns the stored embedding
// is replaced unconditionally, drifted or not, so the reference always
// tracks the last seen context. Similarity exactly at the threshold counts
// as drift. On embedder failure no session state is touched.
func (d *DriftDetector) Detect(ctx context.Context, sessionKey string, c game.Context, threshold float64) (bool, error) {
	serialized := c.Serialize()

	current, err := d.embedder.Embed(ctx, serialized)
	if err != nil {
		return false, err
	}

	previous, ok, err := d.sessions.PrevEmbedding(ctx, sessionKey)
	if err != nil {
		return false, err
	}

	if !ok {
		if err := d.sessions.SetPrevEmbedding(ctx, sessionKey, current); err != nil {
			return false, err
		}
		d.logger.Debug("First context observation for session", "session", sessionKey)
		return false, nil
	}

	similarity, err := memory.Cosine(previous, current)
	if err != nil {
		return false, fmt.Errorf("%w: %v", services.ErrEmbedding, err)
	}

	if err := d.sessions.SetPrevEmbedding(ctx, sessionKey, current); err != nil {
		return false, err
	}

	drifted := similarity <= threshold
	if drifted {
		d.logger.Info("Context drift detected",
			"session", sessionKey,
			"similarity", similarity,
			"threshold", threshold)
	}
	return drifted, nil
}
