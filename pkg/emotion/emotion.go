package emotion

import "math"

// Result is the outcome of classifying one player utterance. Previous is
// nil on the first analysis of a session.
type Result struct {
	Detected string   `json:"detected_emotion"`
	Score    float64  `json:"emotion_score"`
	Changed  bool     `json:"emotion_changed"`
	Previous *string  `json:"previous_emotion,omitempty"`
}

// PromptContext returns the compact rendering of a result for prompt
// injection. The score is rounded to 3 decimals and the previous label is
// included only when one exists.
func (r Result) PromptContext() map[string]any {
	ctx := map[string]any{
		"detected_emotion": r.Detected,
		"emotion_score":    math.Round(r.Score*1000) / 1000,
		"emotion_changed":  r.Changed,
	}
	if r.Previous != nil {
		ctx["previous_emotion"] = *r.Previous
	}
	return ctx
}
