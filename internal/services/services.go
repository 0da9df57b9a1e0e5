package services

import (
	"context"
	"errors"

	"github.com/npcforge/dialogue-engine/pkg/chat"
)

// Service-boundary errors. Providers wrap transport failures in these, and
// the engine aborts the turn when one surfaces; no stage downgrades another
// stage's failure into a default value.
var (
	ErrEmbedding      = errors.New("embedding service error")
	ErrClassification = errors.New("classification service error")
	ErrComposition    = errors.New("response composition error")
)

// Embedder produces a fixed-dimensionality vector for a piece of text.
// Near-identical text should yield near-identical vectors.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Classification is the top-ranked emotion label for an utterance, with the
// classifier's raw confidence score. Scores from different backends are not
// comparable; only the raw value is surfaced.
type Classification struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classifier detects the dominant emotion in a player utterance.
type Classifier interface {
	Classify(ctx context.Context, text string) (Classification, error)
}

// Composer turns prompt messages into the NPC's raw reply text.
type Composer interface {
	Respond(ctx context.Context, messages []chat.Message) (string, error)
}

// HealthChecker is implemented by providers that can test their backend
// connection.
type HealthChecker interface {
	Ping(ctx context.Context) error
}
