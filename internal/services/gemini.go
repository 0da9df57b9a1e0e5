package services

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/npcforge/dialogue-engine/pkg/chat"
)

// GeminiService implements Embedder and Composer using the Gemini API.
type GeminiService struct {
	client         *genai.Client
	chatModel      string
	embeddingModel string
}

// NewGeminiService creates a Gemini-backed service.
func NewGeminiService(ctx context.Context, apiKey, chatModel, embeddingModel string) (*GeminiService, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiService{
		client:         client,
		chatModel:      chatModel,
		embeddingModel: embeddingModel,
	}, nil
}

// Embed returns the embedding vector for text.
func (s *GeminiService) Embed(ctx context.Context, text string) ([]float64, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}

	resp, err := s.client.Models.EmbedContent(ctx, s.embeddingModel, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned", ErrEmbedding)
	}

	values := resp.Embeddings[0].Values
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out, nil
}

// Respond generates the raw NPC reply for the given messages. System
// messages become the model's system instruction; the rest map onto the
// Gemini user/model roles.
func (s *GeminiService) Respond(ctx context.Context, messages []chat.Message) (string, error) {
	var config *genai.GenerateContentConfig
	contents := make([]*genai.Content, 0, len(messages))

	for _, m := range messages {
		switch m.Role {
		case chat.RoleSystem:
			config = &genai.GenerateContentConfig{
				SystemInstruction: genai.NewContentFromText(m.Content, genai.RoleUser),
			}
		case chat.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.chatModel, contents, config)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrComposition, err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: empty model response", ErrComposition)
	}
	return text, nil
}
