package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/npcforge/dialogue-engine/pkg/chat"
)

const (
	openAIBaseURL = "https://api.openai.com/v1"

	DefaultOpenAITemperature = 0.7
	DefaultOpenAIMaxTokens   = 512
)

// OpenAIService implements Embedder and Composer against the OpenAI API.
type OpenAIService struct {
	apiKey         string
	chatModel      string
	embeddingModel string
	baseURL        string
	httpClient     *http.Client
}

// OpenAIChatRequest represents the request structure for chat completions.
type OpenAIChatRequest struct {
	Model       string         `json:"model"`
	Messages    []chat.Message `json:"messages"`
	Temperature float64        `json:"temperature,omitempty"`
	MaxTokens   int            `json:"max_tokens,omitempty"`
	Stream      bool           `json:"stream"`
}

// OpenAIChatChoice is a single choice in a chat completion response.
type OpenAIChatChoice struct {
	Index        int          `json:"index"`
	Message      chat.Message `json:"message"`
	FinishReason string       `json:"finish_reason"`
}

// OpenAIError is the error payload the API returns on failure.
type OpenAIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// OpenAIChatResponse represents the response structure for chat completions.
type OpenAIChatResponse struct {
	ID      string             `json:"id"`
	Model   string             `json:"model"`
	Choices []OpenAIChatChoice `json:"choices"`
	Error   *OpenAIError       `json:"error,omitempty"`
}

// OpenAIEmbeddingRequest represents the request structure for embeddings.
type OpenAIEmbeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

// OpenAIEmbeddingData is one embedding in an embeddings response.
type OpenAIEmbeddingData struct {
	Index     int       `json:"index"`
	Embedding []float64 `json:"embedding"`
}

// OpenAIEmbeddingResponse represents the response structure for embeddings.
type OpenAIEmbeddingResponse struct {
	Data  []OpenAIEmbeddingData `json:"data"`
	Error *OpenAIError          `json:"error,omitempty"`
}

// NewOpenAIService creates a new OpenAI service.
func NewOpenAIService(apiKey, chatModel, embeddingModel string) *OpenAIService {
	return &OpenAIService{
		apiKey:         apiKey,
		chatModel:      chatModel,
		embeddingModel: embeddingModel,
		baseURL:        openAIBaseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// WithBaseURL overrides the API base URL. Used for proxies and tests.
func (s *OpenAIService) WithBaseURL(baseURL string) *OpenAIService {
	s.baseURL = baseURL
	return s
}

// Embed returns the embedding vector for text.
func (s *OpenAIService) Embed(ctx context.Context, text string) ([]float64, error) {
	reqBody, err := json.Marshal(OpenAIEmbeddingRequest{
		Model: s.embeddingModel,
		Input: text,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal request: %v", ErrEmbedding, err)
	}

	body, err := s.post(ctx, "/embeddings", reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}

	var embResp OpenAIEmbeddingResponse
	if err := json.Unmarshal(body, &embResp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse response: %v", ErrEmbedding, err)
	}
	if embResp.Error != nil {
		return nil, fmt.Errorf("%w: %s", ErrEmbedding, embResp.Error.Message)
	}
	if len(embResp.Data) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned", ErrEmbedding)
	}

	return embResp.Data[0].Embedding, nil
}

// Respond generates the raw NPC reply for the given messages.
func (s *OpenAIService) Respond(ctx context.Context, messages []chat.Message) (string, error) {
	reqBody, err := json.Marshal(OpenAIChatRequest{
		Model:       s.chatModel,
		Messages:    messages,
		Temperature: DefaultOpenAITemperature,
		MaxTokens:   DefaultOpenAIMaxTokens,
		Stream:      false,
	})
	if err != nil {
		return "", fmt.Errorf("%w: failed to marshal request: %v", ErrComposition, err)
	}

	body, err := s.post(ctx, "/chat/completions", reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrComposition, err)
	}

	var chatResp OpenAIChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("%w: failed to parse response: %v", ErrComposition, err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("%w: %s", ErrComposition, chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", ErrComposition)
	}

	return chatResp.Choices[0].Message.Content, nil
}

func (s *OpenAIService) post(ctx context.Context, path string, reqBody []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+path, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}
