package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/npcforge/dialogue-engine/pkg/chat"
)

func TestNewOpenAIService(t *testing.T) {
	s := NewOpenAIService("test-key", "gpt-4.1-nano", "text-embedding-ada-002")

	if s.apiKey != "test-key" {
		t.Errorf("expected apiKey test-key, got %s", s.apiKey)
	}
	if s.chatModel != "gpt-4.1-nano" {
		t.Errorf("expected chatModel gpt-4.1-nano, got %s", s.chatModel)
	}
	if s.embeddingModel != "text-embedding-ada-002" {
		t.Errorf("expected embeddingModel text-embedding-ada-002, got %s", s.embeddingModel)
	}
	if s.httpClient == nil {
		t.Error("expected httpClient to be initialized")
	}
}

func TestOpenAIService_Embed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}

		var req OpenAIEmbeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.Input != "location: forest" {
			t.Errorf("unexpected input %q", req.Input)
		}

		resp := OpenAIEmbeddingResponse{
			Data: []OpenAIEmbeddingData{{Index: 0, Embedding: []float64{0.1, 0.2, 0.3}}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	s := NewOpenAIService("test-key", "chat-model", "emb-model").WithBaseURL(server.URL)

	got, err := s.Embed(context.Background(), "location: forest")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if !reflect.DeepEqual(got, []float64{0.1, 0.2, 0.3}) {
		t.Errorf("Embed() = %v", got)
	}
}

func TestOpenAIService_Embed_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	s := NewOpenAIService("test-key", "chat-model", "emb-model").WithBaseURL(server.URL)

	_, err := s.Embed(context.Background(), "text")
	if !errors.Is(err, ErrEmbedding) {
		t.Errorf("expected ErrEmbedding, got %v", err)
	}
}

func TestOpenAIService_Respond(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var req OpenAIChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if len(req.Messages) != 2 {
			t.Errorf("expected 2 messages, got %d", len(req.Messages))
		}

		resp := OpenAIChatResponse{
			Choices: []OpenAIChatChoice{{
				Message: chat.Message{Role: chat.RoleAssistant, Content: "Final Response:\nWelcome!"},
			}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	s := NewOpenAIService("test-key", "chat-model", "emb-model").WithBaseURL(server.URL)

	got, err := s.Respond(context.Background(), []chat.Message{
		{Role: chat.RoleSystem, Content: "You are Elena."},
		{Role: chat.RoleUser, Content: "Hello!"},
	})
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}
	if got != "Final Response:\nWelcome!" {
		t.Errorf("Respond() = %q", got)
	}
}

func TestOpenAIService_Respond_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "rate limited", "type": "rate_limit"},
		})
	}))
	defer server.Close()

	s := NewOpenAIService("test-key", "chat-model", "emb-model").WithBaseURL(server.URL)

	_, err := s.Respond(context.Background(), []chat.Message{{Role: chat.RoleUser, Content: "hi"}})
	if !errors.Is(err, ErrComposition) {
		t.Errorf("expected ErrComposition, got %v", err)
	}
}
