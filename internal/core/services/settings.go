package services

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/docembed/internal/core/domain"
	"github.com/custodia-labs/docembed/internal/core/ports/driven"
	"github.com/custodia-labs/docembed/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyEmbedProvider   = "embedding.provider"
	keyEmbedEndpoint   = "embedding.endpoint"
	keyEmbedModel      = "embedding.model"
	keyStorageBackend  = "storage.backend"
	keyStorageURL      = "storage.url"
	keyStorageDataDir  = "storage.data_dir"
	keyChunkSize       = "chunking.size"
	keyChunkOverlap    = "chunking.overlap"
	keyChunkTrim       = "chunking.trim"
	keyChunkEmbedDelay = "chunking.embed_delay"
	keyServerAddress   = "server.address"
)

var settableKeys = []string{
	keyChunkEmbedDelay,
	keyChunkOverlap,
	keyChunkSize,
	keyChunkTrim,
	keyEmbedEndpoint,
	keyEmbedModel,
	keyEmbedProvider,
	keyServerAddress,
	keyStorageBackend,
	keyStorageDataDir,
	keyStorageURL,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	validator   driven.EmbeddingValidator
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service that reads secrets from the process environment.
func NewSettingsService(configStore driven.ConfigStore, validator driven.EmbeddingValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		validator:   validator,
		lookupEnv:   os.LookupEnv,
	}
}

// WithEnv replaces the environment lookup, mainly for tests.
func (s *SettingsService) WithEnv(lookup func(string) (string, bool)) *SettingsService {
	s.lookupEnv = lookup
	return s
}

// Get retrieves current application settings with environment secrets applied.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	provider := s.getProvider(defaults.Embedding.Provider)
	backend := s.getBackend(defaults.Storage.Backend)

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: provider,
			Endpoint: s.getString(keyEmbedEndpoint, domain.DefaultEmbeddingEndpoints()[provider]),
			Model:    s.getString(keyEmbedModel, domain.DefaultEmbeddingModels()[provider]),
			APIKey:   s.env(domain.EnvEmbeddingAPIKey),
		},
		Storage: domain.StorageSettings{
			Backend: backend,
			URL:     s.getString(keyStorageURL, defaults.Storage.URL),
			APIKey:  s.env(domain.EnvStorageAPIKey),
			DataDir: s.getString(keyStorageDataDir, defaults.Storage.DataDir),
		},
		Chunking: domain.ChunkingSettings{
			Size:          s.getInt(keyChunkSize, defaults.Chunking.Size),
			Overlap:       s.getOverlap(defaults.Chunking.Overlap),
			TrimEachChunk: s.getBool(keyChunkTrim, defaults.Chunking.TrimEachChunk),
			EmbedDelay:    s.getDuration(keyChunkEmbedDelay, defaults.Chunking.EmbedDelay),
		},
		Server: domain.ServerSettings{
			Address: s.getString(keyServerAddress, defaults.Server.Address),
		},
	}

	if url := s.env(domain.EnvStorageURL); url != "" {
		settings.Storage.URL = url
	}

	return settings, nil
}

// Set stores a single setting by key after validating the value.
func (s *SettingsService) Set(key, value string) error {
	value = strings.TrimSpace(value)

	switch key {
	case "embedding.api_key", "storage.api_key":
		return fmt.Errorf("%w: %s is a secret; set it in the environment instead", domain.ErrInvalidInput, key)

	case keyEmbedProvider:
		if !domain.EmbeddingProvider(value).IsValid() {
			return fmt.Errorf("%w: unknown embedding provider %q", domain.ErrInvalidInput, value)
		}
		return s.configStore.Set(key, value)

	case keyStorageBackend:
		if !domain.StorageBackend(value).IsValid() {
			return fmt.Errorf("%w: unknown storage backend %q", domain.ErrInvalidInput, value)
		}
		return s.configStore.Set(key, value)

	case keyChunkSize, keyChunkOverlap:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, key)
		}
		return s.configStore.Set(key, n)

	case keyChunkTrim:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		return s.configStore.Set(key, b)

	case keyChunkEmbedDelay:
		d, err := time.ParseDuration(value)
		if err != nil || d < 0 {
			return fmt.Errorf("%w: %s must be a duration such as 300ms", domain.ErrInvalidInput, key)
		}
		return s.configStore.Set(key, d.String())

	case keyEmbedEndpoint, keyEmbedModel, keyStorageURL, keyStorageDataDir, keyServerAddress:
		return s.configStore.Set(key, value)

	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
}

// Keys returns every settable key, sorted.
func (s *SettingsService) Keys() []string {
	out := make([]string, len(settableKeys))
	copy(out, settableKeys)
	return out
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Validate checks the current settings are complete enough to ingest.
// The embedding API key is not required since callers may supply it per run.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Embedding.Provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidInput, settings.Embedding.Provider)
	}
	if settings.Embedding.Endpoint == "" {
		return fmt.Errorf("%w: %s is not set", domain.ErrInvalidInput, keyEmbedEndpoint)
	}

	if !settings.Storage.IsConfigured() {
		switch {
		case !settings.Storage.Backend.IsValid():
			return fmt.Errorf("%w: invalid storage backend: %s", domain.ErrInvalidInput, settings.Storage.Backend)
		case settings.Storage.Backend.RequiresURL() && settings.Storage.URL == "":
			return fmt.Errorf("%w: storage backend %q requires %s or %s",
				domain.ErrInvalidInput, settings.Storage.Backend, keyStorageURL, domain.EnvStorageURL)
		default:
			return fmt.Errorf("%w: storage backend %q requires %s",
				domain.ErrInvalidInput, settings.Storage.Backend, domain.EnvStorageAPIKey)
		}
	}

	c := settings.Chunking
	if c.Size <= 0 || c.Overlap < 0 || c.Overlap >= c.Size {
		return fmt.Errorf("%w: chunking.size=%d chunking.overlap=%d", domain.ErrOutOfRange, c.Size, c.Overlap)
	}

	return nil
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig(ctx context.Context) error {
	if s.validator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.validator.ValidateEmbedding(ctx, &settings.Embedding)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) env(name string) string {
	if s.lookupEnv == nil {
		return ""
	}
	v, _ := s.lookupEnv(name)
	return strings.TrimSpace(v)
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

// getOverlap distinguishes a stored 0 from a missing key.
func (s *SettingsService) getOverlap(defaultVal int) int {
	if _, exists := s.configStore.Get(keyChunkOverlap); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(keyChunkOverlap)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetDuration(key)
}

func (s *SettingsService) getProvider(defaultVal domain.EmbeddingProvider) domain.EmbeddingProvider {
	val := s.configStore.GetString(keyEmbedProvider)
	if val == "" {
		return defaultVal
	}
	provider := domain.EmbeddingProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.StorageBackend) domain.StorageBackend {
	val := s.configStore.GetString(keyStorageBackend)
	if val == "" {
		return defaultVal
	}
	backend := domain.StorageBackend(val)
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
