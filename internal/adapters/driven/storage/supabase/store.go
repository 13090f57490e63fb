// Package supabase provides a driven.DocumentStore backed by the Supabase REST API.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/docembed/internal/core/domain"
	"github.com/custodia-labs/docembed/internal/core/ports/driven"
	"github.com/custodia-labs/docembed/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.DocumentStore = (*Store)(nil)

// DefaultTimeout bounds each REST call.
const DefaultTimeout = 30 * time.Second

const providerName = "supabase"

// Config holds configuration for the Supabase store.
type Config struct {
	// URL is the project URL, e.g. https://xyz.supabase.co.
	URL string

	// APIKey is sent as both the apikey header and the bearer token.
	APIKey string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration

	// HTTPClient overrides the client, mainly for tests.
	HTTPClient *http.Client
}

// Store writes documents and chunks through PostgREST.
type Store struct {
	client  *http.Client
	restURL string
	apiKey  string
}

type documentRow struct {
	Title      string         `json:"title"`
	SourceFile *string        `json:"source_file"`
	Content    string         `json:"content"`
	FileType   string         `json:"file_type"`
	CharCount  int            `json:"char_count"`
	Metadata   map[string]any `json:"metadata"`
}

type chunkRow struct {
	DocumentID json.RawMessage `json:"document_id"`
	ChunkIndex int             `json:"chunk_index"`
	Content    string          `json:"content"`
	Embedding  string          `json:"embedding"`
	TokenCount int             `json:"token_count"`
}

type errorBody struct {
	Message string `json:"message"`
	Hint    string `json:"hint"`
	Error   string `json:"error"`
}

// NewStore creates a new Supabase store.
func NewStore(cfg Config) (*Store, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: supabase URL is required", domain.ErrStorageUnavailable)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: supabase key is required", domain.ErrStorageUnavailable)
	}
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, fmt.Errorf("%w: invalid supabase URL: %w", domain.ErrStorageUnavailable, err)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &Store{
		client:  client,
		restURL: strings.TrimSuffix(cfg.URL, "/") + "/rest/v1",
		apiKey:  cfg.APIKey,
	}, nil
}

// InsertDocument inserts a document row and returns the id the database assigned.
func (s *Store) InsertDocument(ctx context.Context, doc *domain.Document) (string, error) {
	row := documentRow{
		Title:     doc.Title,
		Content:   doc.Content,
		FileType:  doc.FileType.String(),
		CharCount: doc.CharCount,
		Metadata:  doc.Metadata,
	}
	if doc.SourceFile != "" {
		row.SourceFile = &doc.SourceFile
	}

	body, err := s.post(ctx, "documents", row, true)
	if err != nil {
		return "", err
	}

	var inserted []struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(body, &inserted); err != nil || len(inserted) == 0 || len(inserted[0].ID) == 0 {
		return "", &domain.ProviderError{Provider: providerName, Message: "insert returned no id"}
	}

	id := rawID(inserted[0].ID)
	logger.Debug("supabase: inserted document %s", id)
	return id, nil
}

// InsertChunks inserts all chunks in one request. PostgREST runs a bulk insert in a single statement.
func (s *Store) InsertChunks(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	rows := make([]chunkRow, len(chunks))
	for i, c := range chunks {
		rows[i] = chunkRow{
			DocumentID: idJSON(c.DocumentID),
			ChunkIndex: c.Index,
			Content:    c.Content,
			Embedding:  pgvector.NewVector(c.Embedding).String(),
			TokenCount: c.TokenCount,
		}
	}

	if _, err := s.post(ctx, "chunks", rows, false); err != nil {
		return err
	}

	logger.Debug("supabase: inserted %d chunks", len(chunks))
	return nil
}

// Ping issues a one-row select against the documents table.
func (s *Store) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.restURL+"/documents?select=id&limit=1", http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, providerError(resp, body))
	}
	return nil
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}

func (s *Store) post(ctx context.Context, table string, payload any, returnRows bool) ([]byte, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", table, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.restURL+"/"+table, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	s.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	if returnRows {
		req.Header.Set("Prefer", "return=representation")
	} else {
		req.Header.Set("Prefer", "return=minimal")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, providerError(resp, body)
	}
	return body, nil
}

func (s *Store) setHeaders(req *http.Request) {
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
}

func providerError(resp *http.Response, body []byte) *domain.ProviderError {
	msg := fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))

	var e errorBody
	if json.Unmarshal(body, &e) == nil {
		switch {
		case e.Message != "":
			msg = e.Message
		case e.Error != "":
			msg = e.Error
		}
	}

	return &domain.ProviderError{Provider: providerName, StatusCode: resp.StatusCode, Message: msg}
}

// rawID renders a JSON id (number or string) as a plain string.
func rawID(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return string(raw)
}

// idJSON sends numeric ids as numbers and anything else (uuids) as strings.
func idJSON(id string) json.RawMessage {
	if _, err := strconv.ParseInt(id, 10, 64); err == nil {
		return json.RawMessage(id)
	}
	quoted, _ := json.Marshal(id)
	return quoted
}
