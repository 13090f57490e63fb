package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docembed/internal/core/domain"
)

func newTestStore(t *testing.T, handler http.HandlerFunc) *Store {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store, err := NewStore(Config{URL: server.URL + "/", APIKey: "service-key"})
	require.NoError(t, err)
	return store
}

func TestNewStore_Validation(t *testing.T) {
	_, err := NewStore(Config{APIKey: "k"})
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)

	_, err = NewStore(Config{URL: "https://x.supabase.co"})
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}

func TestInsertDocument(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/v1/documents", r.URL.Path)
		assert.Equal(t, "service-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))

		var row map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&row))
		assert.Equal(t, "sample_thai", row["title"])
		assert.Equal(t, "sample_thai.txt", row["source_file"])
		assert.Equal(t, "text", row["file_type"])
		assert.EqualValues(t, 5, row["char_count"])
		assert.Equal(t, "m", row["metadata"].(map[string]any)["model"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`[{"id":42,"title":"sample_thai"}]`))
	})

	id, err := store.InsertDocument(context.Background(), &domain.Document{
		Title:      "sample_thai",
		SourceFile: "sample_thai.txt",
		Content:    "hello",
		FileType:   domain.FileTypeText,
		CharCount:  5,
		Metadata:   map[string]any{"model": "m"},
	})
	require.NoError(t, err)
	assert.Equal(t, "42", id)
}

func TestInsertDocument_ManualTextHasNullSource(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		var row map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&row))
		v, ok := row["source_file"]
		assert.True(t, ok)
		assert.Nil(t, v)

		_, _ = w.Write([]byte(`[{"id":"6f1c"}]`))
	})

	id, err := store.InsertDocument(context.Background(), &domain.Document{Title: domain.ManualTextTitle, Content: "x"})
	require.NoError(t, err)
	assert.Equal(t, "6f1c", id)
}

func TestInsertDocument_Error(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"PGRST204","message":"Could not find the 'title' column"}`))
	})

	_, err := store.InsertDocument(context.Background(), &domain.Document{Title: "t", Content: "x"})

	var provErr *domain.ProviderError
	require.True(t, errors.As(err, &provErr))
	assert.Equal(t, http.StatusBadRequest, provErr.StatusCode)
	assert.Equal(t, "Could not find the 'title' column", provErr.Message)
}

func TestInsertDocument_EmptyRepresentation(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := store.InsertDocument(context.Background(), &domain.Document{Title: "t", Content: "x"})
	assert.Error(t, err)
}

func TestInsertChunks(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/chunks", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `[
			{"document_id":42,"chunk_index":0,"content":"hel","embedding":"[1,0.5,-2]","token_count":1},
			{"document_id":42,"chunk_index":1,"content":"llo","embedding":"[3]","token_count":1}
		]`, string(body))

		w.WriteHeader(http.StatusCreated)
	})

	err := store.InsertChunks(context.Background(), []domain.Chunk{
		{DocumentID: "42", Index: 0, Content: "hel", Embedding: []float32{1, 0.5, -2}, TokenCount: 1},
		{DocumentID: "42", Index: 1, Content: "llo", Embedding: []float32{3}, TokenCount: 1},
	})
	assert.NoError(t, err)
}

func TestInsertChunks_UUIDDocument(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		var rows []map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rows))
		assert.Equal(t, "a1b2-c3", rows[0]["document_id"])
		w.WriteHeader(http.StatusCreated)
	})

	err := store.InsertChunks(context.Background(), []domain.Chunk{
		{DocumentID: "a1b2-c3", Content: "x", Embedding: []float32{1}},
	})
	assert.NoError(t, err)
}

func TestInsertChunks_Empty(t *testing.T) {
	store := newTestStore(t, func(_ http.ResponseWriter, _ *http.Request) {
		t.Fatal("no request expected")
	})

	assert.NoError(t, store.InsertChunks(context.Background(), nil))
}

func TestPing(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/v1/documents", r.URL.Path)
		assert.Equal(t, "id", r.URL.Query().Get("select"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`[]`))
	})

	assert.NoError(t, store.Ping(context.Background()))
}

func TestPing_Unauthorized(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid API key"}`))
	})

	err := store.Ping(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.Contains(t, err.Error(), "Invalid API key")
}
