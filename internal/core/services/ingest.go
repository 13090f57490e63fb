package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/docembed/internal/core/domain"
	"github.com/custodia-labs/docembed/internal/core/ports/driven"
	"github.com/custodia-labs/docembed/internal/core/ports/driving"
	"github.com/custodia-labs/docembed/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// storagePingTimeout bounds CheckStorage.
const storagePingTimeout = 5 * time.Second

// IngestService chunks a document, embeds every chunk in order and stores the result.
type IngestService struct {
	embedding   domain.EmbeddingSettings
	chunking    domain.ChunkingSettings
	embedders   driven.EmbeddingFactory
	store       driven.DocumentStore
	pipelines   driven.PipelineFactory
	normalisers driven.NormaliserRegistry
}

// NewIngestService creates a new ingest service.
// The API key in embedding is ignored; each request supplies its own.
func NewIngestService(
	embedding domain.EmbeddingSettings,
	chunking domain.ChunkingSettings,
	embedders driven.EmbeddingFactory,
	store driven.DocumentStore,
	pipelines driven.PipelineFactory,
	normalisers driven.NormaliserRegistry,
) *IngestService {
	embedding.APIKey = ""
	return &IngestService{
		embedding:   embedding,
		chunking:    chunking,
		embedders:   embedders,
		store:       store,
		pipelines:   pipelines,
		normalisers: normalisers,
	}
}

// DefaultOptions returns the configured chunking and pacing options.
func (s *IngestService) DefaultOptions() driving.IngestOptions {
	return driving.IngestOptions{
		ChunkSize:     s.chunking.Size,
		ChunkOverlap:  s.chunking.Overlap,
		TrimEachChunk: s.chunking.TrimEachChunk,
		EmbedDelay:    s.chunking.EmbedDelay,
	}
}

// Preview returns the number of chunks text would produce without any I/O.
func (s *IngestService) Preview(text string, opts driving.IngestOptions) (int, error) {
	doc := &domain.Document{Content: domain.NormaliseText(text)}

	chunks, err := s.chunk(context.Background(), doc, opts)
	if err != nil {
		return 0, err
	}
	return len(chunks), nil
}

// CheckStorage verifies the storage provider is reachable.
func (s *IngestService) CheckStorage(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, storagePingTimeout)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		logger.Warn("storage ping failed: %v", err)
		return fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// ReadFile normalises raw file bytes by extension into a document.
func (s *IngestService) ReadFile(ctx context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: no file", domain.ErrInvalidInput)
	}

	normaliser, err := s.normalisers.Get(raw.URI)
	if err != nil {
		return nil, err
	}

	result, err := normaliser.Normalise(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", raw.URI, err)
	}
	return &result.Document, nil
}

// IngestFile normalises raw file bytes by extension, then ingests them.
func (s *IngestService) IngestFile(
	ctx context.Context,
	raw *domain.RawDocument,
	req driving.IngestRequest,
) (*domain.IngestionSession, error) {
	doc, err := s.ReadFile(ctx, raw)
	if err != nil {
		return nil, err
	}

	req.Text = doc.Content
	req.FileType = doc.FileType
	if req.Title == "" {
		req.Title = doc.Title
	}
	if req.SourceFile == "" {
		req.SourceFile = doc.SourceFile
	}

	return s.Ingest(ctx, req)
}

// Ingest runs chunk -> embed -> persist for one document.
//
// Nothing is stored unless every chunk was embedded. A document insert
// failure returns the session together with a *domain.PersistError; a chunk
// batch failure returns the session with Persisted false and a nil error.
func (s *IngestService) Ingest(ctx context.Context, req driving.IngestRequest) (*domain.IngestionSession, error) {
	logger.Section("Ingest")
	defer logger.Elapsed("ingest", time.Now())

	text := domain.NormaliseText(req.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, domain.ErrEmptyDocument)
	}
	if strings.TrimSpace(req.APIKey) == "" {
		return nil, fmt.Errorf("%w: embedding API key is required", domain.ErrInvalidInput)
	}

	doc := newDocument(text, req)
	opts := req.Options
	progress := req.Progress
	if progress == nil {
		progress = func(driving.ProgressEvent) {}
	}

	progress(driving.ProgressEvent{Stage: driving.StageChunking})
	chunks, err := s.chunk(ctx, &doc, opts)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, domain.ErrEmptyDocument
	}
	logger.Debug("chunked %d chars into %d chunks (size=%d overlap=%d trim=%t)",
		doc.CharCount, len(chunks), opts.ChunkSize, opts.ChunkOverlap, opts.TrimEachChunk)

	model, err := s.embedAll(ctx, chunks, req.APIKey, opts.EmbedDelay, progress)
	if err != nil {
		return nil, err
	}

	session := &domain.IngestionSession{
		Chunks:       chunks,
		Model:        model,
		ChunkSize:    opts.ChunkSize,
		ChunkOverlap: opts.ChunkOverlap,
	}
	doc.Metadata = map[string]any{
		"model":          model,
		"chunk_count":    len(chunks),
		"chunk_size":     opts.ChunkSize,
		"chunk_overlap":  opts.ChunkOverlap,
		"embedding_dims": session.Dimensions(),
	}
	session.Document = doc

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCancelled, err)
	}

	progress(driving.ProgressEvent{Stage: driving.StageSaving, Total: len(chunks)})
	if persistErr := s.persist(ctx, session); persistErr != nil && persistErr.Stage == domain.PersistStageDocument {
		return session, persistErr
	}

	progress(driving.ProgressEvent{Stage: driving.StageDone, Total: len(chunks), Dimensions: session.Dimensions()})
	return session, nil
}

// newDocument builds the document for a request from normalised text.
func newDocument(text string, req driving.IngestRequest) domain.Document {
	title := req.Title
	if title == "" {
		title = domain.ManualTextTitle
	}
	fileType := req.FileType
	if !fileType.IsValid() {
		fileType = domain.FileTypeText
	}

	return domain.Document{
		Title:      title,
		SourceFile: req.SourceFile,
		Content:    text,
		FileType:   fileType,
		CharCount:  utf8.RuneCountInString(text),
		CreatedAt:  time.Now(),
	}
}

// chunk runs the post-processing pipeline built for opts.
func (s *IngestService) chunk(ctx context.Context, doc *domain.Document, opts driving.IngestOptions) ([]domain.Chunk, error) {
	pipeline, err := s.pipelines.BuildPipeline(domain.ChunkingPipelineConfig(domain.ChunkingSettings{
		Size:          opts.ChunkSize,
		Overlap:       opts.ChunkOverlap,
		TrimEachChunk: opts.TrimEachChunk,
	}))
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	return pipeline.Process(ctx, doc)
}

// embedAll embeds chunks in index order, one request at a time.
// Embeddings are written into chunks. Returns the model name.
func (s *IngestService) embedAll(
	ctx context.Context,
	chunks []domain.Chunk,
	apiKey string,
	delay time.Duration,
	progress driving.ProgressFunc,
) (string, error) {
	settings := s.embedding
	settings.APIKey = apiKey

	embedder, err := s.embedders.CreateEmbeddingService(settings)
	if err != nil {
		return "", err
	}
	defer embedder.Close()

	var limiter *rate.Limiter
	if delay > 0 {
		limiter = rate.NewLimiter(rate.Every(delay), 1)
	}

	total := len(chunks)
	var (
		dims int
		seen bool
	)

	for i := range chunks {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("%w: %w", domain.ErrCancelled, err)
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return "", fmt.Errorf("%w: %w", domain.ErrCancelled, err)
			}
		}

		progress(driving.ProgressEvent{Stage: driving.StageEmbedding, Current: i + 1, Total: total})

		vec, err := embedder.Embed(ctx, chunks[i].Content)
		if err != nil {
			if ctx.Err() != nil {
				return "", fmt.Errorf("%w: %w", domain.ErrCancelled, ctx.Err())
			}
			logger.Warn("embedding chunk %d/%d failed: %v", i+1, total, err)
			return "", &domain.EmbeddingError{ChunkIndex: i, Err: err}
		}

		if len(vec) == 0 {
			return "", &domain.EmbeddingError{
				ChunkIndex: i,
				Err:        &domain.ProviderError{Provider: s.embedding.Provider.String(), Message: "empty embedding"},
			}
		}
		if !seen {
			dims, seen = len(vec), true
		} else if len(vec) != dims {
			return "", &domain.EmbeddingError{
				ChunkIndex: i,
				Err: &domain.ProviderError{
					Provider: s.embedding.Provider.String(),
					Message:  fmt.Sprintf("embedding has %d dimensions, expected %d", len(vec), dims),
				},
			}
		}

		chunks[i].Embedding = vec
		progress(driving.ProgressEvent{Stage: driving.StageEmbedded, Current: i + 1, Total: total, Dimensions: len(vec)})
	}

	return embedder.ModelName(), nil
}

// persist stores the document and then every chunk in one batch.
// Failures are recorded on the session and returned.
func (s *IngestService) persist(ctx context.Context, session *domain.IngestionSession) *domain.PersistError {
	id, err := s.store.InsertDocument(ctx, &session.Document)
	if err != nil {
		logger.Warn("document insert failed: %v", err)
		persistErr := &domain.PersistError{Stage: domain.PersistStageDocument, Err: err}
		session.PersistErr = persistErr
		return persistErr
	}

	session.DocumentID = id
	session.Document.ID = id
	for i := range session.Chunks {
		session.Chunks[i].DocumentID = id
	}

	if err := s.store.InsertChunks(ctx, session.Chunks); err != nil {
		logger.Warn("chunk insert failed for document %s: %v", id, err)
		persistErr := &domain.PersistError{Stage: domain.PersistStageChunks, Err: err}
		session.PersistErr = persistErr
		return persistErr
	}

	session.Persisted = true
	logger.Info("stored document %s with %d chunks", id, len(session.Chunks))
	return nil
}
