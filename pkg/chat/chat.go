package chat

import (
	"fmt"

	"github.com/npcforge/dialogue-engine/pkg/emotion"
	"github.com/npcforge/dialogue-engine/pkg/game"
	"github.com/npcforge/dialogue-engine/pkg/memory"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant" // the NPC
	RoleSystem    = "system"
)

// Message is a single chat message in the shape LLM chat APIs expect.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TurnRequest is one player utterance plus the situational fields the
// caller knows about. Context fields left unset fall back to the engine's
// configured defaults.
type TurnRequest struct {
	PlayerID       string       `json:"player_id"`
	NPCName        string       `json:"npc_name"`
	NPCDescription string       `json:"npc_description"`
	Message        string       `json:"message"`
	Context        game.Context `json:"context"`

	// DriftThreshold overrides the engine's configured threshold for
	// this turn only.
	DriftThreshold *float64 `json:"drift_threshold,omitempty"`
}

// TurnResponse carries the NPC's answer plus the turn's derived signals,
// useful for logging and telemetry but optional for callers that only
// want the answer.
type TurnResponse struct {
	// PlayerID echoes the request's player id, or the generated one when
	// the request left it empty. Clients reuse it on later turns.
	PlayerID     string          `json:"player_id"`
	Answer       string          `json:"answer,omitempty"`
	ContextDrift bool            `json:"context_drift"`
	Emotion      *emotion.Result `json:"emotion,omitempty"`
	Memories     []memory.Record `json:"memories,omitempty"`
	Error        string          `json:"error,omitempty"`
}

func (r *TurnRequest) Validate() error {
	if r.Message == "" {
		return fmt.Errorf("message cannot be empty")
	}
	if r.NPCName == "" {
		return fmt.Errorf("npc_name cannot be empty")
	}
	return nil
}

// SessionKey identifies the conversational session this request belongs
// to: one player talking to one NPC.
func (r *TurnRequest) SessionKey() string {
	return r.PlayerID + "#" + r.NPCName
}
