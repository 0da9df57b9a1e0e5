package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const hfBaseURL = "https://api-inference.huggingface.co"

// HFClassifierService implements Classifier against a HuggingFace
// inference-style text-classification endpoint.
type HFClassifierService struct {
	apiKey     string
	modelName  string
	baseURL    string
	httpClient *http.Client
}

// NewHFClassifierService creates a classifier backed by the given
// text-classification model.
func NewHFClassifierService(apiKey, modelName string) *HFClassifierService {
	return &HFClassifierService{
		apiKey:    apiKey,
		modelName: modelName,
		baseURL:   hfBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithBaseURL overrides the API base URL. Used for self-hosted inference
// servers and tests.
func (s *HFClassifierService) WithBaseURL(baseURL string) *HFClassifierService {
	s.baseURL = baseURL
	return s
}

// Classify returns the top-ranked emotion label for text, with the
// backend's raw confidence score.
func (s *HFClassifierService) Classify(ctx context.Context, text string) (Classification, error) {
	reqBody, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return Classification{}, fmt.Errorf("%w: failed to marshal request: %v", ErrClassification, err)
	}

	url := fmt.Sprintf("%s/models/%s", s.baseURL, s.modelName)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(reqBody))
	if err != nil {
		return Classification{}, fmt.Errorf("%w: failed to create request: %v", ErrClassification, err)
	}

	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return Classification{}, fmt.Errorf("%w: failed to make request: %v", ErrClassification, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Classification{}, fmt.Errorf("%w: failed to read response body: %v", ErrClassification, err)
	}

	if resp.StatusCode != http.StatusOK {
		return Classification{}, fmt.Errorf("%w: API request failed with status %d: %s", ErrClassification, resp.StatusCode, string(body))
	}

	ranked, err := parseClassifications(body)
	if err != nil {
		return Classification{}, fmt.Errorf("%w: %v", ErrClassification, err)
	}
	if len(ranked) == 0 {
		return Classification{}, fmt.Errorf("%w: no labels returned", ErrClassification)
	}

	top := ranked[0]
	for _, c := range ranked[1:] {
		if c.Score > top.Score {
			top = c
		}
	}
	return top, nil
}

// parseClassifications handles both response shapes the inference API
// produces: a flat label list, or one list per input.
func parseClassifications(body []byte) ([]Classification, error) {
	var nested [][]Classification
	if err := json.Unmarshal(body, &nested); err == nil {
		if len(nested) == 0 {
			return nil, nil
		}
		return nested[0], nil
	}

	var flat []Classification
	if err := json.Unmarshal(body, &flat); err != nil {
		return nil, fmt.Errorf("failed to parse response: %v", err)
	}
	return flat, nil
}
