package driving

import (
	"context"

	"github.com/custodia-labs/docembed/internal/core/domain"
)

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current settings with environment secrets applied.
	Get() (*domain.AppSettings, error)

	// Set stores a single setting by key. Secret keys are rejected.
	Set(key, value string) error

	// Keys returns every settable key.
	Keys() []string

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// Validate checks the current settings are complete enough to ingest.
	Validate() error

	// ValidateEmbeddingConfig pings the configured embedding provider.
	ValidateEmbeddingConfig(ctx context.Context) error
}
