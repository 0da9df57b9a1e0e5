package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHFClassifierService_Classify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/bhadresh-savani/bert-base-uncased-emotion" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[[{"label":"joy","score":0.981},{"label":"anger","score":0.012}]]`))
	}))
	defer server.Close()

	s := NewHFClassifierService("", "bhadresh-savani/bert-base-uncased-emotion").WithBaseURL(server.URL)

	got, err := s.Classify(context.Background(), "This is amazing!")
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if got.Label != "joy" {
		t.Errorf("label = %q, want joy", got.Label)
	}
	if got.Score != 0.981 {
		t.Errorf("score = %f, want 0.981", got.Score)
	}
}

func TestHFClassifierService_Classify_FlatResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"label":"fear","score":0.42},{"label":"sadness","score":0.58}]`))
	}))
	defer server.Close()

	s := NewHFClassifierService("key", "emotion-model").WithBaseURL(server.URL)

	got, err := s.Classify(context.Background(), "I keep dying!")
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	// Highest score wins even if the backend didn't sort.
	if got.Label != "sadness" {
		t.Errorf("label = %q, want sadness", got.Label)
	}
}

func TestHFClassifierService_Classify_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model loading"}`, http.StatusServiceUnavailable)
	}))
	defer server.Close()

	s := NewHFClassifierService("key", "emotion-model").WithBaseURL(server.URL)

	_, err := s.Classify(context.Background(), "hello")
	if !errors.Is(err, ErrClassification) {
		t.Errorf("expected ErrClassification, got %v", err)
	}
}

func TestHFClassifierService_Classify_EmptyLabels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	s := NewHFClassifierService("key", "emotion-model").WithBaseURL(server.URL)

	_, err := s.Classify(context.Background(), "hello")
	if !errors.Is(err, ErrClassification) {
		t.Errorf("expected ErrClassification for empty labels, got %v", err)
	}
}
