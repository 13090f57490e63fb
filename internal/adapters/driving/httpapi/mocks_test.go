package httpapi

import (
	"context"

	"github.com/custodia-labs/docembed/internal/core/domain"
	"github.com/custodia-labs/docembed/internal/core/ports/driving"
)

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	session    *domain.IngestionSession
	err        error
	previewN   int
	previewErr error
	storageErr error

	lastReq  driving.IngestRequest
	lastRaw  *domain.RawDocument
	lastText string
	lastOpts driving.IngestOptions
}

func (m *mockIngestService) Ingest(_ context.Context, req driving.IngestRequest) (*domain.IngestionSession, error) {
	m.lastReq = req
	return m.session, m.err
}

func (m *mockIngestService) IngestFile(
	_ context.Context,
	raw *domain.RawDocument,
	req driving.IngestRequest,
) (*domain.IngestionSession, error) {
	m.lastRaw = raw
	m.lastReq = req
	return m.session, m.err
}

func (m *mockIngestService) ReadFile(_ context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	m.lastRaw = raw
	return &domain.Document{Content: string(raw.Content)}, m.err
}

func (m *mockIngestService) Preview(text string, opts driving.IngestOptions) (int, error) {
	m.lastText = text
	m.lastOpts = opts
	return m.previewN, m.previewErr
}

func (m *mockIngestService) DefaultOptions() driving.IngestOptions {
	return driving.IngestOptions{ChunkSize: 500, ChunkOverlap: 50}
}

func (m *mockIngestService) CheckStorage(_ context.Context) error {
	return m.storageErr
}

func testSession() *domain.IngestionSession {
	return &domain.IngestionSession{
		Document: domain.Document{Title: "sample_thai"},
		Chunks: []domain.Chunk{
			{Index: 0, Content: "hello", Embedding: []float32{1, 2, 3}},
			{Index: 1, Content: "world", Embedding: []float32{4, 5, 6}},
		},
		Model:      "Qwen3 Embedding 8B",
		DocumentID: "42",
		Persisted:  true,
	}
}
