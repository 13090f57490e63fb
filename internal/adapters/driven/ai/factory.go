// Package ai provides factory functions for creating embedding service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/docembed/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/docembed/internal/adapters/driven/embedding/phaya"
	"github.com/custodia-labs/docembed/internal/core/domain"
	"github.com/custodia-labs/docembed/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// Ensure Factory implements the interface.
var _ driven.EmbeddingFactory = (*Factory)(nil)

// Factory creates embedding services from settings.
type Factory struct{}

// NewFactory creates a new embedding service factory.
func NewFactory() *Factory {
	return &Factory{}
}

// CreateEmbeddingService implements driven.EmbeddingFactory.
func (f *Factory) CreateEmbeddingService(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return CreateEmbeddingService(&settings)
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: embedding settings are missing", domain.ErrEmbeddingUnavailable)
	}
	if settings.APIKey == "" {
		return nil, fmt.Errorf("%w: API key is required", domain.ErrInvalidInput)
	}

	switch settings.Provider {
	case domain.EmbeddingProviderPhaya:
		return phaya.NewEmbeddingService(phaya.Config{
			APIKey:   settings.APIKey,
			Endpoint: settings.Endpoint,
			Model:    settings.Model,
		})

	case domain.EmbeddingProviderOpenAI:
		return openai.NewEmbeddingService(openai.Config{
			APIKey:   settings.APIKey,
			Endpoint: settings.Endpoint,
			Model:    settings.Model,
		})

	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider: %q",
			domain.ErrEmbeddingUnavailable, settings.Provider)
	}
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
// Returns nil when settings are not configured, since there is nothing to validate.
func ValidateEmbeddingConfig(ctx context.Context, settings *domain.EmbeddingSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: service unreachable (%w). Run 'docembed settings set' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}
	return nil
}
