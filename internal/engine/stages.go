package engine

import (
	"github.com/npcforge/dialogue-engine/pkg/chat"
	"github.com/npcforge/dialogue-engine/pkg/emotion"
	"github.com/npcforge/dialogue-engine/pkg/game"
	"github.com/npcforge/dialogue-engine/pkg/memory"
)

// stage is one node of the turn execution graph.
type stage int

const (
	stageDetectDrift stage = iota
	stageAnalyzeEmotion
	stageSearchMemory
	stagePersistMemory
	stageComposeResponse
	stageDone
)

func (s stage) String() string {
	switch s {
	case stageDetectDrift:
		return "detect_drift"
	case stageAnalyzeEmotion:
		return "analyze_emotion"
	case stageSearchMemory:
		return "search_memory"
	case stagePersistMemory:
		return "persist_memory"
	case stageComposeResponse:
		return "compose_response"
	case stageDone:
		return "done"
	}
	return "unknown"
}

// Turn is the per-turn aggregate threaded through the stages. Each stage
// reads earlier fields and writes only its own output; nothing is deleted.
// A Turn lives for exactly one request and is never persisted.
type Turn struct {
	Req        chat.TurnRequest
	SessionKey string

	// Written by detect_drift.
	Context game.Context
	Drift   bool

	// Written by analyze_emotion; nil when the stage was skipped.
	Emotion *emotion.Result

	// Written by search_memory.
	Memories []memory.Record

	// Written by compose_response.
	Answer string
}

// next is the graph's transition table. The only branch is out of
// detect_drift: a stable context skips straight to persistence, saving
// the classifier and search calls.
func next(current stage, t *Turn) stage {
	switch current {
	case stageDetectDrift:
		if t.Drift {
			return stageAnalyzeEmotion
		}
		return stagePersistMemory
	case stageAnalyzeEmotion:
		return stageSearchMemory
	case stageSearchMemory:
		return stagePersistMemory
	case stagePersistMemory:
		return stageComposeResponse
	case stageComposeResponse:
		return stageDone
	}
	return stageDone
}
