package domain

import "time"

const unknownDescription = "Unknown"

// EmbeddingProvider identifies a remote embedding service.
type EmbeddingProvider string

// Available embedding providers.
const (
	// EmbeddingProviderPhaya is the Phaya embedding API.
	EmbeddingProviderPhaya EmbeddingProvider = "phaya"

	// EmbeddingProviderOpenAI is any OpenAI-compatible /embeddings endpoint.
	EmbeddingProviderOpenAI EmbeddingProvider = "openai"
)

// IsValid returns true if the provider is recognised.
func (p EmbeddingProvider) IsValid() bool {
	switch p {
	case EmbeddingProviderPhaya, EmbeddingProviderOpenAI:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p EmbeddingProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p EmbeddingProvider) Description() string {
	switch p {
	case EmbeddingProviderPhaya:
		return "Phaya (cloud)"
	case EmbeddingProviderOpenAI:
		return "OpenAI-compatible (cloud)"
	default:
		return unknownDescription
	}
}

// StorageBackend identifies where documents and chunks are persisted.
type StorageBackend string

// Available storage backends.
const (
	// StorageBackendSupabase stores rows through the Supabase REST API.
	StorageBackendSupabase StorageBackend = "supabase"

	// StorageBackendPostgres stores rows directly in PostgreSQL with pgvector.
	StorageBackendPostgres StorageBackend = "postgres"

	// StorageBackendSQLite stores rows in a local SQLite file.
	StorageBackendSQLite StorageBackend = "sqlite"

	// StorageBackendMemory keeps rows in process memory.
	StorageBackendMemory StorageBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	switch b {
	case StorageBackendSupabase, StorageBackendPostgres, StorageBackendSQLite, StorageBackendMemory:
		return true
	default:
		return false
	}
}

// RequiresURL returns true if the backend needs a remote URL or DSN.
func (b StorageBackend) RequiresURL() bool {
	return b == StorageBackendSupabase || b == StorageBackendPostgres
}

// String returns the string representation.
func (b StorageBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b StorageBackend) Description() string {
	switch b {
	case StorageBackendSupabase:
		return "Supabase (REST)"
	case StorageBackendPostgres:
		return "PostgreSQL + pgvector"
	case StorageBackendSQLite:
		return "SQLite (local file)"
	case StorageBackendMemory:
		return "In-memory (not durable)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider EmbeddingProvider

	// Endpoint is the full URL embeddings are requested from.
	Endpoint string

	// Model is the model name recorded with each document.
	Model string

	// APIKey is the bearer key. Read from the environment only.
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	return e.Provider.IsValid() && e.Endpoint != "" && e.APIKey != ""
}

// StorageSettings holds storage provider configuration.
type StorageSettings struct {
	// Backend selects the storage implementation.
	Backend StorageBackend

	// URL is the Supabase project URL or the PostgreSQL DSN.
	URL string

	// APIKey is the Supabase key. Read from the environment only.
	APIKey string

	// DataDir is where the SQLite database lives.
	DataDir string
}

// IsConfigured returns true if the storage backend is set up.
func (s StorageSettings) IsConfigured() bool {
	if !s.Backend.IsValid() {
		return false
	}
	if s.Backend.RequiresURL() && s.URL == "" {
		return false
	}
	if s.Backend == StorageBackendSupabase && s.APIKey == "" {
		return false
	}
	return true
}

// ChunkingSettings holds splitting and pacing configuration.
type ChunkingSettings struct {
	// Size is the window length in characters.
	Size int

	// Overlap is the number of characters shared by consecutive windows.
	Overlap int

	// TrimEachChunk trims every chunk and drops chunks that become empty.
	TrimEachChunk bool

	// EmbedDelay is the minimum gap between embedding requests. Zero disables it.
	EmbedDelay time.Duration
}

// ServerSettings holds HTTP API configuration.
type ServerSettings struct {
	// Address is the listen address, e.g. ":8080".
	Address string
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// Storage holds storage backend settings.
	Storage StorageSettings

	// Chunking holds splitting settings.
	Chunking ChunkingSettings

	// Server holds HTTP API settings.
	Server ServerSettings
}

// Environment variables holding secrets. They are never written to the config file.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
const (
	EnvEmbeddingAPIKey = "DOCEMBED_EMBEDDING_API_KEY"
	EnvStorageAPIKey   = "DOCEMBED_STORAGE_API_KEY"
	EnvStorageURL      = "DOCEMBED_STORAGE_URL"
)

// Default chunking and pacing values.
const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 50
	DefaultEmbedDelay   = 300 * time.Millisecond
)

// DefaultAppSettings returns settings with sensible defaults.
// Secrets are never defaulted.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: EmbeddingProviderPhaya,
			Endpoint: DefaultEmbeddingEndpoints()[EmbeddingProviderPhaya],
			Model:    DefaultEmbeddingModels()[EmbeddingProviderPhaya],
		},
		Storage: StorageSettings{
			Backend: StorageBackendSupabase,
		},
		Chunking: ChunkingSettings{
			Size:       DefaultChunkSize,
			Overlap:    DefaultChunkOverlap,
			EmbedDelay: DefaultEmbedDelay,
		},
		Server: ServerSettings{
			Address: ":8080",
		},
	}
}

// AllEmbeddingProviders returns every supported embedding provider.
func AllEmbeddingProviders() []EmbeddingProvider {
	return []EmbeddingProvider{
		EmbeddingProviderPhaya,
		EmbeddingProviderOpenAI,
	}
}

// AllStorageBackends returns every supported storage backend.
func AllStorageBackends() []StorageBackend {
	return []StorageBackend{
		StorageBackendSupabase,
		StorageBackendPostgres,
		StorageBackendSQLite,
		StorageBackendMemory,
	}
}

// DefaultEmbeddingEndpoints returns the default endpoint for each provider.
func DefaultEmbeddingEndpoints() map[EmbeddingProvider]string {
	return map[EmbeddingProvider]string{
		EmbeddingProviderPhaya:  "https://api.phaya.io/api/v1/embedding/create",
		EmbeddingProviderOpenAI: "https://api.openai.com/v1/embeddings",
	}
}

// DefaultEmbeddingModels returns the default model for each provider.
func DefaultEmbeddingModels() map[EmbeddingProvider]string {
	return map[EmbeddingProvider]string{
		EmbeddingProviderPhaya:  "Qwen3 Embedding 8B",
		EmbeddingProviderOpenAI: "text-embedding-3-small",
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config so processors can be added without
// modifying this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration keyed by processor name.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// ChunkingPipelineConfig returns the chunker and token estimator pipeline
// for the given chunking settings.
func ChunkingPipelineConfig(c ChunkingSettings) PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker", "tokens"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"chunk_size": c.Size,
				"overlap":    c.Overlap,
				"trim":       c.TrimEachChunk,
			},
		},
	}
}
