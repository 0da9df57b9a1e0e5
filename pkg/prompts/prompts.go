package prompts

import (
	"fmt"
	"regexp"
	"strings"
)

// PersonaSystemPrompt frames the model as the NPC itself, not a narrator.
// The monologue section is parsed out before the answer reaches the player.
const PersonaSystemPrompt = `You are %s, %s.

You stay in character at all times. You never discuss things outside of the game world, and you never acknowledge being an AI.

Task:
First, as %s, think step by step about:
- The player's emotional state
- Your relationship with the player
- Current quest progress
- How your personality affects your reply

Then output your internal thoughts (Inner Monologue) before giving the final response.

Format:
Inner Monologue:
...

Final Response:
...`

var (
	monologueRe = regexp.MustCompile(`(?is)Inner Monologue:\s*(.*?)(?:Final Response:|$)`)
	answerRe    = regexp.MustCompile(`(?is)Final Response:\s*(.*)$`)
)

// ParseMonologue extracts the NPC's internal thoughts from a raw model
// response. Returns "" when no monologue section is present.
func ParseMonologue(response string) string {
	m := monologueRe.FindStringSubmatch(response)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// ParseAnswer extracts the player-facing reply from a raw model response.
// When the response carries no "Final Response:" section, the whole
// trimmed response is the answer.
func ParseAnswer(response string) string {
	m := answerRe.FindStringSubmatch(response)
	if m == nil {
		return strings.TrimSpace(response)
	}
	return strings.TrimSpace(m[1])
}

// FormatMemories renders ranked memory texts as a bulleted block for the
// prompt. An empty set renders as an explicit "(none)" so the model does
// not invent history.
func FormatMemories(texts []string) string {
	if len(texts) == 0 {
		return "(none)"
	}
	var sb strings.Builder
	for _, t := range texts {
		sb.WriteString("- ")
		sb.WriteString(t)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatEmotion renders the emotion prompt-context mapping deterministically
// (keys in a fixed order) so identical analysis results always produce
// identical prompts.
func FormatEmotion(ctx map[string]any) string {
	if len(ctx) == 0 {
		return "(unknown)"
	}
	parts := make([]string, 0, 4)
	for _, key := range []string{"detected_emotion", "emotion_score", "emotion_changed", "previous_emotion"} {
		if v, ok := ctx[key]; ok {
			parts = append(parts, fmt.Sprintf("%s: %v", key, v))
		}
	}
	return strings.Join(parts, ", ")
}
