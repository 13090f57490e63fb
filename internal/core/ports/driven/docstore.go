package driven

import (
	"context"

	"github.com/custodia-labs/docembed/internal/core/domain"
)

// DocumentStore persists documents and their chunk vectors.
// Implementations: Supabase REST, PostgreSQL + pgvector, SQLite, memory.
type DocumentStore interface {
	// InsertDocument stores a document row and returns the assigned ID.
	InsertDocument(ctx context.Context, doc *domain.Document) (string, error)

	// InsertChunks stores every chunk in a single batch.
	// Either all chunks are stored or none are.
	InsertChunks(ctx context.Context, chunks []domain.Chunk) error

	// Ping checks the store is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
