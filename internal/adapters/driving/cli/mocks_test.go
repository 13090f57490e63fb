package cli

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

	// events are replayed through the request's progress callback.
	events []driving.ProgressEvent

	calls    int
	lastReq  driving.IngestRequest
	lastRaw  *domain.RawDocument
	lastOpts driving.IngestOptions
}

func (m *mockIngestService) Ingest(_ context.Context, req driving.IngestRequest) (*domain.IngestionSession, error) {
	m.calls++
	m.lastReq = req
	return m.session, m.err
}

func (m *mockIngestService) IngestFile(
	_ context.Context,
	raw *domain.RawDocument,
	req driving.IngestRequest,
) (*domain.IngestionSession, error) {
	m.calls++
	m.lastRaw = raw
	m.lastReq = req
	if req.Progress != nil {
		for _, ev := range m.events {
			req.Progress(ev)
		}
	}
	return m.session, m.err
}

func (m *mockIngestService) ReadFile(_ context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	m.lastRaw = raw
	return &domain.Document{Title: "sample", Content: string(raw.Content)}, nil
}

func (m *mockIngestService) Preview(_ string, opts driving.IngestOptions) (int, error) {
	m.lastOpts = opts
	return m.previewN, m.previewErr
}

func (m *mockIngestService) DefaultOptions() driving.IngestOptions {
	return driving.IngestOptions{ChunkSize: 500, ChunkOverlap: 50}
}

func (m *mockIngestService) CheckStorage(_ context.Context) error {
	return m.storageErr
}

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	embedErr    error
	setErr      error

	set map[string]string
}

func newMockSettingsService() *mockSettingsService {
	settings := domain.DefaultAppSettings()
	settings.Embedding.APIKey = "sk-test-embedding-key"
	return &mockSettingsService{settings: settings, set: make(map[string]string)}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []string {
	return []string{"chunking.overlap", "chunking.size", "embedding.provider"}
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) Validate() error {
	return m.validateErr
}

func (m *mockSettingsService) ValidateEmbeddingConfig(_ context.Context) error {
	return m.embedErr
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

// setupTestServices installs mocks and returns them with a restore function.
func setupTestServices() (*mockIngestService, *mockSettingsService, func()) {
	oldIngest, oldSettings, oldErr := ingestService, settingsService, ingestErr

	ingest := &mockIngestService{session: testSession()}
	settings := newMockSettingsService()
	SetServices(Services{Ingest: ingest, Settings: settings})

	return ingest, settings, func() {
		ingestService, settingsService, ingestErr = oldIngest, oldSettings, oldErr
	}
}
