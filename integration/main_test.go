//go:build integration
// +build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/npcforge/dialogue-engine/internal/engine"
	"github.com/npcforge/dialogue-engine/internal/handlers"
	"github.com/npcforge/dialogue-engine/internal/services"
	"github.com/npcforge/dialogue-engine/internal/session"
	"github.com/npcforge/dialogue-engine/internal/storage"
	"github.com/npcforge/dialogue-engine/pkg/chat"
	"github.com/npcforge/dialogue-engine/pkg/game"
)

// newTestServer wires the full HTTP surface: real handlers and engine, a
// Redis session store backed by miniredis, and mock LLM providers.
func newTestServer(t *testing.T) (*httptest.Server, *storage.MockMemoryStore) {
	t.Helper()

	mr := miniredis.RunT(t)
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	sessions := session.NewRedisStore(mr.Addr(), 0, log)
	t.Cleanup(func() { _ = sessions.Close() })

	embedder := services.NewMockEmbedder()
	embedder.EmbedFunc = func(ctx context.Context, text string) ([]float64, error) {
		switch {
		case strings.Contains(text, " text: "):
			return []float64{0, 0, 1}, nil
		case strings.Contains(text, "shadow_dungeon"):
			return []float64{0, 1, 0}, nil
		default:
			return []float64{1, 0, 0}, nil
		}
	}

	memories := storage.NewMockMemoryStore()

	eng := engine.New(embedder, services.NewMockClassifier(), services.NewMockComposer(),
		sessions, memories, engine.Options{}, log)

	mux := http.NewServeMux()
	mux.Handle("/health", handlers.NewHealthHandler(map[string]services.HealthChecker{
		"sessions": sessions,
	}, log))
	mux.Handle("/v1/turn", handlers.NewTurnHandler(eng, log))
	mux.Handle("/v1/session/", handlers.NewSessionHandler(eng, log))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, memories
}

func postTurn(t *testing.T, serverURL string, req chat.TurnRequest) chat.TurnResponse {
	t.Helper()

	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("Failed to marshal request: %v", err)
	}

	resp, err := http.Post(serverURL+"/v1/turn", "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("Failed to send turn request: %v", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Turn request returned status %d", resp.StatusCode)
	}

	var turnResp chat.TurnResponse
	if err := json.NewDecoder(resp.Body).Decode(&turnResp); err != nil {
		t.Fatalf("Failed to decode turn response: %v", err)
	}
	return turnResp
}

func TestHealthEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/health")
	if err != nil {
		t.Fatalf("Health request failed: %v", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
}

func TestConversationFlow(t *testing.T) {
	server, memories := newTestServer(t)

	// First turn in the village: fresh session, no drift, no analysis.
	first := postTurn(t, server.URL, chat.TurnRequest{
		NPCName:        "Elena",
		NPCDescription: "A cheerful village guide",
		Message:        "This is amazing! I just started playing!",
		Context: game.Context{
			Location: "starting_village",
			Quest:    "tutorial_basics",
			HP:       game.IntPtr(100),
			Status:   "excited",
		},
	})

	if first.ContextDrift {
		t.Error("first turn should not drift")
	}
	if first.Emotion != nil {
		t.Error("first turn should skip emotion analysis")
	}
	if first.Answer == "" {
		t.Error("expected a non-empty answer")
	}
	if !strings.HasPrefix(first.PlayerID, "player_") {
		t.Errorf("expected a generated player id, got %q", first.PlayerID)
	}
	if memories.Count(first.PlayerID) != 1 {
		t.Errorf("expected 1 persisted memory, got %d", memories.Count(first.PlayerID))
	}

	// Second turn in the dungeon, same player: drift, analysis, recall.
	second := postTurn(t, server.URL, chat.TurnRequest{
		PlayerID:       first.PlayerID,
		NPCName:        "Elena",
		NPCDescription: "A cheerful village guide",
		Message:        "This boss is impossible! I keep dying!",
		Context: game.Context{
			Location: "shadow_dungeon",
			Quest:    "defeat_dark_lord",
			HP:       game.IntPtr(15),
			Status:   "injured",
		},
	})

	if !second.ContextDrift {
		t.Error("dungeon turn should drift")
	}
	if second.Emotion == nil {
		t.Error("drift turn should include emotion analysis")
	}
	if len(second.Memories) == 0 {
		t.Error("drift turn should recall the first turn's memory")
	}
	if memories.Count(first.PlayerID) != 2 {
		t.Errorf("expected 2 persisted memories, got %d", memories.Count(first.PlayerID))
	}

	// Ending the session resets drift state; next turn is a fresh start.
	req, err := http.NewRequest(http.MethodDelete,
		server.URL+"/v1/session/"+first.PlayerID+"/Elena", nil)
	if err != nil {
		t.Fatalf("Failed to build delete request: %v", err)
	}
	delResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to end session: %v", err)
	}
	_ = delResp.Body.Close()
	if delResp.StatusCode != http.StatusOK {
		t.Fatalf("End session returned status %d", delResp.StatusCode)
	}

	third := postTurn(t, server.URL, chat.TurnRequest{
		PlayerID: first.PlayerID,
		NPCName:  "Elena",
		Message:  "Hello again!",
		Context:  game.Context{Location: "shadow_dungeon"},
	})
	if third.ContextDrift {
		t.Error("first turn after session end should not drift")
	}
}
