package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/custodia-labs/docembed/internal/core/domain"
	"github.com/custodia-labs/docembed/internal/core/ports/driving"
	"github.com/custodia-labs/docembed/internal/logger"
)

// chunkParams are the optional splitting overrides accepted by preview and ingest.
type chunkParams struct {
	ChunkSize    *int  `json:"chunk_size,omitempty"`
	ChunkOverlap *int  `json:"chunk_overlap,omitempty"`
	Trim         *bool `json:"trim,omitempty"`
}

// apply overlays the request's parameters on the configured defaults.
func (p chunkParams) apply(opts driving.IngestOptions) driving.IngestOptions {
	if p.ChunkSize != nil {
		opts.ChunkSize = *p.ChunkSize
	}
	if p.ChunkOverlap != nil {
		opts.ChunkOverlap = *p.ChunkOverlap
	}
	if p.Trim != nil {
		opts.TrimEachChunk = *p.Trim
	}
	return opts
}

type previewRequest struct {
	Text string `json:"text"`
	chunkParams
}

type previewResponse struct {
	ChunkCount   int  `json:"chunk_count"`
	ChunkSize    int  `json:"chunk_size"`
	ChunkOverlap int  `json:"chunk_overlap"`
	Trim         bool `json:"trim"`
}

type ingestRequest struct {
	Text  string `json:"text"`
	Title string `json:"title,omitempty"`
	chunkParams
}

type ingestResponse struct {
	Persisted    bool                 `json:"persisted"`
	DocumentID   string               `json:"document_id,omitempty"`
	Title        string               `json:"title"`
	ChunkCount   int                  `json:"chunk_count"`
	Error        string               `json:"error,omitempty"`
	PersistError string               `json:"persist_error,omitempty"`
	Export       domain.SessionExport `json:"export"`
}

type healthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.ports.Ingest.CheckStorage(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	opts := req.apply(s.ports.Ingest.DefaultOptions())
	count, err := s.ports.Ingest.Preview(req.Text, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, previewResponse{
		ChunkCount:   count,
		ChunkSize:    opts.ChunkSize,
		ChunkOverlap: opts.ChunkOverlap,
		Trim:         opts.TrimEachChunk,
	})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	apiKey := bearerToken(r)
	if apiKey == "" {
		apiKey = s.apiKey
	}

	var (
		session *domain.IngestionSession
		err     error
	)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		session, err = s.ingestMultipart(w, r, apiKey)
	} else {
		session, err = s.ingestJSON(w, r, apiKey)
	}

	switch {
	case err != nil && session != nil:
		// The document row failed to save; the vectors are still returned.
		resp := newIngestResponse(session)
		resp.Error = domain.Describe(err)
		writeJSON(w, statusFor(err), resp)
	case err != nil:
		writeError(w, err)
	default:
		writeJSON(w, http.StatusOK, newIngestResponse(session))
	}
}

func (s *Server) ingestJSON(w http.ResponseWriter, r *http.Request, apiKey string) (*domain.IngestionSession, error) {
	var req ingestRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		return nil, err
	}

	return s.ports.Ingest.Ingest(r.Context(), driving.IngestRequest{
		Text:    req.Text,
		Title:   req.Title,
		APIKey:  apiKey,
		Options: req.apply(s.ports.Ingest.DefaultOptions()),
	})
}

// decodeJSON reads at most maxUploadBytes of JSON from the request body.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: request body exceeds %d bytes", domain.ErrInvalidInput, tooLarge.Limit)
		}
		return fmt.Errorf("%w: malformed JSON body", domain.ErrInvalidInput)
	}
	return nil
}

func (s *Server) ingestMultipart(w http.ResponseWriter, r *http.Request, apiKey string) (*domain.IngestionSession, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	params, err := formChunkParams(r)
	if err != nil {
		return nil, err
	}

	req := driving.IngestRequest{
		Text:    r.FormValue("text"),
		Title:   r.FormValue("title"),
		APIKey:  apiKey,
		Options: params.apply(s.ports.Ingest.DefaultOptions()),
	}

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return s.ports.Ingest.Ingest(r.Context(), req)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("%w: reading upload: %w", domain.ErrInvalidInput, err)
	}

	logger.Debug("http: received %s (%d bytes)", header.Filename, len(content))
	raw := &domain.RawDocument{
		URI:      header.Filename,
		MIMEType: header.Header.Get("Content-Type"),
		Content:  content,
	}
	return s.ports.Ingest.IngestFile(r.Context(), raw, req)
}

// formChunkParams reads chunk_size, chunk_overlap and trim from form fields.
func formChunkParams(r *http.Request) (chunkParams, error) {
	var p chunkParams

	for _, field := range []struct {
		name string
		dst  **int
	}{
		{"chunk_size", &p.ChunkSize},
		{"chunk_overlap", &p.ChunkOverlap},
	} {
		v := strings.TrimSpace(r.FormValue(field.name))
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, field.name)
		}
		*field.dst = &n
	}

	if v := strings.TrimSpace(r.FormValue("trim")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return p, fmt.Errorf("%w: trim must be true or false", domain.ErrInvalidInput)
		}
		p.Trim = &b
	}

	return p, nil
}

func newIngestResponse(session *domain.IngestionSession) ingestResponse {
	resp := ingestResponse{
		Persisted:  session.Persisted,
		DocumentID: session.DocumentID,
		Title:      session.Document.Title,
		ChunkCount: len(session.Chunks),
		Export:     session.Export(),
	}
	if session.PersistErr != nil {
		resp.PersistError = domain.Describe(session.PersistErr)
	}
	return resp
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func writeError(w http.ResponseWriter, err error) {
	logger.Warn("http: %v", err)
	writeJSON(w, statusFor(err), newErrorResponse(err))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("http: encoding response: %v", err)
	}
}
