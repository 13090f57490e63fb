package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrOutOfRange indicates chunk size or overlap values that cannot make progress.
	// It also matches ErrInvalidInput.
	ErrOutOfRange = fmt.Errorf("%w: chunk parameters out of range", ErrInvalidInput)

	// ErrUnsupportedType indicates an unknown file type or provider.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrEmptyDocument indicates chunking produced no segments.
	ErrEmptyDocument = errors.New("document produced no chunks")

	// ErrEmbeddingFailed indicates the embedding provider rejected a chunk.
	// Nothing is persisted when this occurs.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrPersistFailed indicates the document row could not be stored.
	ErrPersistFailed = errors.New("persist failed")

	// ErrChunkPersistFailed indicates the chunk batch could not be stored.
	// The document row exists and the computed data is still usable.
	ErrChunkPersistFailed = errors.New("chunk persist failed")

	// ErrCancelled indicates the run was cancelled by the caller.
	ErrCancelled = errors.New("ingestion cancelled")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrStorageUnavailable indicates the storage provider is not configured.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ProviderError carries the message returned by a remote provider.
type ProviderError struct {
	// Provider is the name of the remote service.
	Provider string

	// StatusCode is the HTTP status, 0 when the response was malformed.
	StatusCode int

	// Message is the provider's error message.
	Message string
}

func (e *ProviderError) Error() string {
	if e.Provider == "" {
		return e.Message
	}
	return e.Provider + ": " + e.Message
}

// EmbeddingError reports which chunk failed to embed.
type EmbeddingError struct {
	// ChunkIndex is the zero-based index of the failing chunk.
	ChunkIndex int

	// Err is the underlying provider or transport error.
	Err error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding chunk %d: %v", e.ChunkIndex, e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// Is reports ErrEmbeddingFailed as a match.
func (e *EmbeddingError) Is(target error) bool {
	return target == ErrEmbeddingFailed
}

// PersistStage names the insert that failed.
type PersistStage string

// Persistence stages.
const (
	// PersistStageDocument is the document row insert.
	PersistStageDocument PersistStage = "document"

	// PersistStageChunks is the chunk batch insert.
	PersistStageChunks PersistStage = "chunks"
)

// PersistError reports a storage failure during an ingestion run.
type PersistError struct {
	// Stage is the insert that failed.
	Stage PersistStage

	// Err is the underlying storage error.
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Stage, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// Is matches ErrPersistFailed for document failures and
// ErrChunkPersistFailed for chunk batch failures.
func (e *PersistError) Is(target error) bool {
	switch e.Stage {
	case PersistStageDocument:
		return target == ErrPersistFailed
	case PersistStageChunks:
		return target == ErrChunkPersistFailed
	default:
		return false
	}
}

// Describe renders an error as a short user-facing message.
// The CLI and the HTTP API share this wording.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var embErr *EmbeddingError
	var persistErr *PersistError
	var provErr *ProviderError
	switch {
	case errors.Is(err, ErrCancelled):
		return "Ingestion cancelled"
	case errors.As(err, &embErr):
		msg := embErr.Err.Error()
		if errors.As(embErr.Err, &provErr) {
			msg = provErr.Message
		}
		return fmt.Sprintf("Embedding failed at chunk %d: %s", embErr.ChunkIndex+1, msg)
	case errors.Is(err, ErrOutOfRange):
		return "Chunk overlap must be smaller than chunk size"
	case errors.Is(err, ErrEmptyDocument):
		return "Document is empty"
	case errors.Is(err, ErrUnsupportedType):
		return "Only .txt and .docx files are supported"
	case errors.Is(err, ErrInvalidInput):
		return "Invalid input: " + strings.TrimPrefix(err.Error(), ErrInvalidInput.Error()+": ")
	case errors.As(err, &persistErr):
		msg := persistErr.Err.Error()
		if errors.As(persistErr.Err, &provErr) {
			msg = provErr.Message
		}
		if persistErr.Stage == PersistStageChunks {
			return "Could not save chunks: " + msg
		}
		return "Could not save document: " + msg
	case errors.Is(err, ErrPersistFailed):
		return "Could not save document: " + err.Error()
	case errors.Is(err, ErrChunkPersistFailed):
		return "Could not save chunks: " + err.Error()
	default:
		return err.Error()
	}
}
