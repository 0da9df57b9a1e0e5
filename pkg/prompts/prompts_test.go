package prompts

import (
	"strings"
	"testing"

	"github.com/npcforge/dialogue-engine/pkg/chat"
)

func TestParseAnswer_WithSections(t *testing.T) {
	response := `Inner Monologue:
The player sounds discouraged. I should be encouraging.

Final Response:
Don't give up! Every attempt teaches you the boss's patterns.`

	got := ParseAnswer(response)
	want := "Don't give up! Every attempt teaches you the boss's patterns."
	if got != want {
		t.Errorf("ParseAnswer() = %q, want %q", got, want)
	}
}

func TestParseAnswer_NoSections(t *testing.T) {
	response := "  Welcome to the village, traveler!  "
	if got := ParseAnswer(response); got != "Welcome to the village, traveler!" {
		t.Errorf("ParseAnswer() = %q", got)
	}
}

func TestParseMonologue(t *testing.T) {
	response := `Inner Monologue:
They seem excited about the game.

Final Response:
Glad you're enjoying it!`

	got := ParseMonologue(response)
	if got != "They seem excited about the game." {
		t.Errorf("ParseMonologue() = %q", got)
	}

	if got := ParseMonologue("just a plain reply"); got != "" {
		t.Errorf("ParseMonologue() on plain reply = %q, want empty", got)
	}
}

func TestParseMonologue_CaseInsensitive(t *testing.T) {
	response := "inner monologue:\nthinking...\nfinal response:\nHello."
	if got := ParseMonologue(response); got != "thinking..." {
		t.Errorf("ParseMonologue() = %q", got)
	}
	if got := ParseAnswer(response); got != "Hello." {
		t.Errorf("ParseAnswer() = %q", got)
	}
}

func TestFormatMemories(t *testing.T) {
	if got := FormatMemories(nil); got != "(none)" {
		t.Errorf("FormatMemories(nil) = %q", got)
	}

	got := FormatMemories([]string{"found the rusty key", "cleared the goblin cave"})
	want := "- found the rusty key\n- cleared the goblin cave"
	if got != want {
		t.Errorf("FormatMemories() = %q, want %q", got, want)
	}
}

func TestFormatEmotion_FixedKeyOrder(t *testing.T) {
	ctx := map[string]any{
		"emotion_changed":  true,
		"previous_emotion": "fear",
		"detected_emotion": "joy",
		"emotion_score":    0.931,
	}

	got := FormatEmotion(ctx)
	want := "detected_emotion: joy, emotion_score: 0.931, emotion_changed: true, previous_emotion: fear"
	if got != want {
		t.Errorf("FormatEmotion() = %q, want %q", got, want)
	}
}

func TestBuilder_Build(t *testing.T) {
	msgs, err := New().
		WithNPC("Elena", "A cheerful village guide who loves helping newcomers learn the game").
		WithContext("location: starting_village;\nhp: 100").
		WithEmotion("detected_emotion: joy, emotion_score: 0.98, emotion_changed: false").
		WithMemories([]string{"the player just started today"}).
		WithUtterance("This is amazing!").
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != chat.RoleSystem {
		t.Errorf("first message role = %q, want system", msgs[0].Role)
	}
	if !strings.Contains(msgs[0].Content, "You are Elena, A cheerful village guide") {
		t.Errorf("system prompt missing persona: %q", msgs[0].Content)
	}
	if !strings.Contains(msgs[0].Content, "Inner Monologue:") {
		t.Error("system prompt missing format instructions")
	}
	if msgs[1].Role != chat.RoleUser {
		t.Errorf("second message role = %q, want user", msgs[1].Role)
	}
	for _, fragment := range []string{
		"location: starting_village",
		"detected_emotion: joy",
		"- the player just started today",
		`"This is amazing!"`,
	} {
		if !strings.Contains(msgs[1].Content, fragment) {
			t.Errorf("user message missing %q:\n%s", fragment, msgs[1].Content)
		}
	}
}

func TestBuilder_Build_SkippedAnalysis(t *testing.T) {
	msgs, err := New().
		WithNPC("Gareth", "A battle-scarred veteran").
		WithUtterance("Hello again.").
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !strings.Contains(msgs[1].Content, "(not analyzed this turn)") {
		t.Errorf("expected skipped-emotion marker:\n%s", msgs[1].Content)
	}
	if !strings.Contains(msgs[1].Content, "(none)") {
		t.Errorf("expected empty memories marker:\n%s", msgs[1].Content)
	}
}

func TestBuilder_Build_RequiresFields(t *testing.T) {
	if _, err := New().WithUtterance("hi").Build(); err == nil {
		t.Error("expected error without npc name")
	}
	if _, err := New().WithNPC("Elena", "guide").Build(); err == nil {
		t.Error("expected error without utterance")
	}
}
