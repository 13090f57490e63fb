// Package httpapi provides the HTTP adapter used by the browser upload UI.
// It exposes ingestion, chunk preview and a storage health check as JSON endpoints.
package httpapi

import (
	"errors"
	"net/http"

	"github.com/custodia-labs/docembed/internal/core/domain"
)

// ErrMissingIngestService is returned when the ingest service is not provided.
var ErrMissingIngestService = errors.New("httpapi: ingest service is required")

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Error      string `json:"error"`
	ChunkIndex *int   `json:"chunk_index,omitempty"`
}

// statusFor maps the domain error taxonomy to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrCancelled):
		return http.StatusRequestTimeout
	case errors.Is(err, domain.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrEmptyDocument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrEmbeddingFailed), errors.Is(err, domain.ErrPersistFailed):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrStorageUnavailable), errors.Is(err, domain.ErrEmbeddingUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func newErrorResponse(err error) errorResponse {
	resp := errorResponse{Error: domain.Describe(err)}

	var embErr *domain.EmbeddingError
	if errors.As(err, &embErr) {
		idx := embErr.ChunkIndex
		resp.ChunkIndex = &idx
	}
	return resp
}
