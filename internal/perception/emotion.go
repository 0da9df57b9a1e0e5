package perception

import (
	"context"
	"log/slog"

	"github.com/npcforge/dialogue-engine/internal/services"
	"github.com/npcforge/dialogue-engine/internal/session"
	"github.com/npcforge/dialogue-engine/pkg/emotion"
)

// EmotionAnalyzer classifies player utterances and tracks label changes
// across a session.
type EmotionAnalyzer struct {
	classifier services.Classifier
	sessions   session.Store
	logger     *slog.Logger
}

// NewEmotionAnalyzer creates an emotion analyzer.
func NewEmotionAnalyzer(classifier services.Classifier, sessions session.Store, logger *slog.Logger) *EmotionAnalyzer {
	return &EmotionAnalyzer{
		classifier: classifier,
		sessions:   sessions,
		logger:     logger,
	}
}

// Analyze classifies the utterance and reports whether the label changed
// since the session's previous turn. The comparison is a case-sensitive
// exact match. The first call of a session reports changed=false with no
// previous label. The session's prior label is updated after the flag is
// computed; on classifier failure nothing is updated and no label is
// guessed.
func (a *EmotionAnalyzer) Analyze(ctx context.Context, sessionKey string, utterance string) (emotion.Result, error) {
	classification, err := a.classifier.Classify(ctx, utterance)
	if err != nil {
		return emotion.Result{}, err
	}

	previous, ok, err := a.sessions.PrevEmotion(ctx, sessionKey)
	if err != nil {
		return emotion.Result{}, err
	}

	result := emotion.Result{
		Detected: classification.Label,
		Score:    classification.Score,
	}
	if ok {
		result.Previous = &previous
		result.Changed = previous != classification.Label
	}

	if result.Changed {
		a.logger.Info("Player emotion changed",
			"session", sessionKey,
			"previous", previous,
			"current", classification.Label)
	}

	if err := a.sessions.SetPrevEmotion(ctx, sessionKey, classification.Label); err != nil {
		return emotion.Result{}, err
	}

	return result, nil
}
