package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/docembed/internal/core/domain"
)

// IngestService runs chunk -> embed -> persist for one document at a time.
type IngestService interface {
	// Ingest processes pasted or pre-read text.
	// On a chunk batch failure the session is returned with Persisted false
	// and a nil error. On a document insert failure both the session and a
	// domain.ErrPersistFailed error are returned.
	Ingest(ctx context.Context, req IngestRequest) (*domain.IngestionSession, error)

	// IngestFile normalises raw file bytes by extension, then ingests them.
	IngestFile(ctx context.Context, raw *domain.RawDocument, req IngestRequest) (*domain.IngestionSession, error)

	// ReadFile normalises raw file bytes by extension without ingesting them.
	ReadFile(ctx context.Context, raw *domain.RawDocument) (*domain.Document, error)

	// Preview returns the number of chunks the text would produce. No I/O.
	Preview(text string, opts IngestOptions) (int, error)

	// DefaultOptions returns the configured chunking and pacing options.
	DefaultOptions() IngestOptions

	// CheckStorage verifies the storage provider is reachable.
	CheckStorage(ctx context.Context) error
}

// IngestOptions controls splitting and pacing for one run.
type IngestOptions struct {
	// ChunkSize is the window length in characters.
	ChunkSize int

	// ChunkOverlap is the number of characters shared by consecutive chunks.
	ChunkOverlap int

	// TrimEachChunk trims each chunk and drops empties.
	TrimEachChunk bool

	// EmbedDelay is the minimum gap between embedding requests.
	EmbedDelay time.Duration
}

// IngestRequest describes one ingestion run.
type IngestRequest struct {
	// Text is the document content. Ignored by IngestFile.
	Text string

	// Title overrides the derived title.
	Title string

	// SourceFile is the original file name, empty for pasted text.
	SourceFile string

	// FileType defaults to text.
	FileType domain.FileType

	// APIKey is the embedding provider key for this run.
	APIKey string

	// Options controls splitting and pacing.
	Options IngestOptions

	// Progress, if set, is called as the run advances.
	Progress ProgressFunc
}

// Stage identifies a phase of an ingestion run.
type Stage string

// Ingestion stages.
const (
	StageChunking  Stage = "chunking"
	StageEmbedding Stage = "embedding"
	StageEmbedded  Stage = "embedded"
	StageSaving    Stage = "saving"
	StageDone      Stage = "done"
)

// ProgressEvent reports progress within a run.
type ProgressEvent struct {
	// Stage is the current phase.
	Stage Stage

	// Current is the 1-based chunk number during embedding.
	Current int

	// Total is the number of chunks.
	Total int

	// Dimensions is the vector length once a chunk is embedded.
	Dimensions int
}

// ProgressFunc receives progress events. It is called synchronously.
type ProgressFunc func(ProgressEvent)
