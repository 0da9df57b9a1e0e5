package prompts

import (
	"fmt"
	"strings"

	"github.com/npcforge/dialogue-engine/pkg/chat"
)

// Builder constructs the chat messages for one NPC reply using a fluent
// interface. It separates prompt assembly from turn orchestration.
type Builder struct {
	npcName        string
	npcDescription string
	context        string
	emotion        string
	memories       []string
	utterance      string
}

// New creates a new prompt builder.
func New() *Builder {
	return &Builder{}
}

// WithNPC sets the NPC's identity and persona description.
func (b *Builder) WithNPC(name, description string) *Builder {
	b.npcName = name
	b.npcDescription = description
	return b
}

// WithContext sets the serialized game context for this turn.
func (b *Builder) WithContext(serialized string) *Builder {
	b.context = serialized
	return b
}

// WithEmotion sets the rendered emotion context. Empty means emotion
// analysis was skipped this turn.
func (b *Builder) WithEmotion(rendered string) *Builder {
	b.emotion = rendered
	return b
}

// WithMemories sets the ranked memory texts recalled for this turn.
func (b *Builder) WithMemories(texts []string) *Builder {
	b.memories = texts
	return b
}

// WithUtterance sets what the player just said.
func (b *Builder) WithUtterance(utterance string) *Builder {
	b.utterance = utterance
	return b
}

// Build constructs the final message array for the composer.
func (b *Builder) Build() ([]chat.Message, error) {
	if b.npcName == "" {
		return nil, fmt.Errorf("npc name is required")
	}
	if b.utterance == "" {
		return nil, fmt.Errorf("utterance is required")
	}

	system := fmt.Sprintf(PersonaSystemPrompt, b.npcName, b.npcDescription, b.npcName)

	var sb strings.Builder
	sb.WriteString("Current Context:\n")
	if b.context != "" {
		sb.WriteString(b.context)
	} else {
		sb.WriteString("(unknown)")
	}

	sb.WriteString("\n\nPlayer Emotion:\n")
	if b.emotion != "" {
		sb.WriteString(b.emotion)
	} else {
		sb.WriteString("(not analyzed this turn)")
	}

	sb.WriteString("\n\nRelevant Memories:\n")
	sb.WriteString(FormatMemories(b.memories))

	sb.WriteString("\n\nPlayer just said:\n")
	sb.WriteString(`"` + b.utterance + `"`)

	return []chat.Message{
		{Role: chat.RoleSystem, Content: system},
		{Role: chat.RoleUser, Content: sb.String()},
	}, nil
}
