package memory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultType tags records persisted without an explicit type. Other values
// seen in practice: quest_event, player_trait, npc_dialogue, world_event.
const DefaultType = "general"

// Record is one persisted memory: a unit of text plus its embedding,
// owned by a single player. Records are created once and never mutated.
type Record struct {
	ID        string    `json:"memory_id" bson:"memory_id"`
	Embedding []float64 `json:"embedding" bson:"embedding"`
	Text      string    `json:"text" bson:"text"`
	Type      string    `json:"memory_type" bson:"memory_type"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	PlayerID  string    `json:"player_id" bson:"player_id"`
}

// NewRecord builds an unpersisted record with a fresh id and timestamp.
func NewRecord(playerID string, text string, embedding []float64) Record {
	return Record{
		ID:        NewID(),
		Embedding: embedding,
		Text:      text,
		Type:      DefaultType,
		CreatedAt: time.Now().UTC(),
		PlayerID:  playerID,
	}
}

// NewID returns a short memory id of the form "mem_<7 hex chars>".
func NewID() string {
	return "mem_" + uuid.New().String()[:7]
}

// NewPlayerID returns a generated player id for callers that don't have one.
func NewPlayerID() string {
	return "player_" + uuid.New().String()[:7]
}

func (r Record) String() string {
	return fmt.Sprintf("Record(id=%s player=%s type=%s dims=%d text=%q)",
		r.ID, r.PlayerID, r.Type, len(r.Embedding), r.Text)
}
