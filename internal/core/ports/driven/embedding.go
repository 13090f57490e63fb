// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import (
	"context"

	"github.com/custodia-labs/docembed/internal/core/domain"
)

// EmbeddingService generates vector embeddings from text.
//
// Implementations include:
//   - Phaya (Qwen3 Embedding 8B)
//   - OpenAI-compatible /embeddings endpoints
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	// A non-2xx response is reported as *domain.ProviderError.
	Embed(ctx context.Context, text string) ([]float32, error)

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable and the key is accepted.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// EmbeddingFactory creates embedding services.
// Each ingestion run creates its own service so API keys never leak between runs.
type EmbeddingFactory interface {
	// CreateEmbeddingService returns a service for the given settings.
	CreateEmbeddingService(settings domain.EmbeddingSettings) (EmbeddingService, error)
}

// EmbeddingValidator checks embedding settings against the live provider.
type EmbeddingValidator interface {
	// ValidateEmbedding pings the provider. Returns nil if settings are not configured.
	ValidateEmbedding(ctx context.Context, settings *domain.EmbeddingSettings) error
}
