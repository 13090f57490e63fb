// Package phaya provides an embedding service adapter for the Phaya API.
package phaya

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/docembed/internal/core/domain"
	"github.com/custodia-labs/docembed/internal/core/ports/driven"
	"github.com/custodia-labs/docembed/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultEndpoint = "https://api.phaya.io/api/v1/embedding/create"
	DefaultModel    = "Qwen3 Embedding 8B"
	DefaultTimeout  = 60 * time.Second
)

const providerName = "phaya"

// Config holds configuration for the Phaya embedding service.
type Config struct {
	// APIKey is the bearer key (required).
	APIKey string

	// Endpoint is the full embedding URL (default: DefaultEndpoint).
	Endpoint string

	// Model is recorded with documents. The API picks the model itself.
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration

	// HTTPClient overrides the client, mainly for tests.
	HTTPClient *http.Client
}

// EmbeddingService generates embeddings using the Phaya API.
type EmbeddingService struct {
	client   *http.Client
	endpoint string
	apiKey   string
	model    string
}

type embeddingRequest struct {
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Success bool `json:"success"`
	Data    []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
	Message string `json:"message"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewEmbeddingService creates a new Phaya embedding service.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("phaya: API key is required")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &EmbeddingService{
		client:   client,
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
	}, nil
}

// Embed requests one embedding for text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	jsonBody, err := json.Marshal(embeddingRequest{Input: []string{text}})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	// Error bodies are best-effort JSON.
	var embedResp embeddingResponse
	decodeErr := json.Unmarshal(body, &embedResp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.ProviderError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(&embedResp, resp),
		}
	}

	if decodeErr != nil {
		return nil, &domain.ProviderError{Provider: providerName, Message: "unexpected response shape"}
	}
	if !embedResp.Success {
		return nil, &domain.ProviderError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(&embedResp, resp),
		}
	}
	if len(embedResp.Data) == 0 || len(embedResp.Data[0].Embedding) == 0 {
		return nil, &domain.ProviderError{Provider: providerName, Message: "unexpected response shape"}
	}

	src := embedResp.Data[0].Embedding
	embedding := make([]float32, len(src))
	for i, v := range src {
		embedding[i] = float32(v)
	}

	logger.Debug("phaya: embedded %d chars into %d dims", len(text), len(embedding))
	return embedding, nil
}

// errorMessage picks error.message, then message, then the HTTP status line.
func errorMessage(r *embeddingResponse, resp *http.Response) string {
	if r.Error != nil && r.Error.Message != "" {
		return r.Error.Message
	}
	if r.Message != "" {
		return r.Message
	}
	text := strings.TrimPrefix(resp.Status, fmt.Sprintf("%d ", resp.StatusCode))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", resp.StatusCode, text)
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping embeds a short probe string.
// The API has no health endpoint, so this costs one embedding call.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if _, err := s.Embed(ctx, "ping"); err != nil {
		return fmt.Errorf("phaya: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
