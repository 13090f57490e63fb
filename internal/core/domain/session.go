package domain

// IngestionSession is the outcome of one ingestion run.
// Each run owns its session; nothing is shared between runs.
type IngestionSession struct {
	// Document is the document that was ingested.
	Document Document

	// Chunks holds every segment in index order with its embedding.
	Chunks []Chunk

	// Model is the embedding model that produced the vectors.
	Model string

	// ChunkSize and ChunkOverlap are the parameters used for splitting.
	ChunkSize    int
	ChunkOverlap int

	// DocumentID is the identifier assigned by the store, empty if the
	// document insert did not succeed.
	DocumentID string

	// Persisted is true only when the document and all chunks were stored.
	Persisted bool

	// PersistErr holds the storage failure when Persisted is false.
	PersistErr error
}

// Embeddings returns the vectors in chunk order.
func (s *IngestionSession) Embeddings() [][]float32 {
	out := make([][]float32, len(s.Chunks))
	for i, c := range s.Chunks {
		out[i] = c.Embedding
	}
	return out
}

// Dimensions returns the embedding vector length, 0 if there are no chunks.
func (s *IngestionSession) Dimensions() int {
	if len(s.Chunks) == 0 {
		return 0
	}
	return len(s.Chunks[0].Embedding)
}

// ExportedChunk is one chunk in a session export.
type ExportedChunk struct {
	ChunkIndex int       `json:"chunk_index"`
	Text       string    `json:"text"`
	Embedding  []float32 `json:"embedding"`
}

// SessionExport is the portable JSON form of a session.
type SessionExport struct {
	Model         string          `json:"model"`
	EmbeddingDims int             `json:"embedding_dims"`
	DocumentID    string          `json:"document_id,omitempty"`
	Chunks        []ExportedChunk `json:"chunks"`
}

// Export builds the portable form of the session.
func (s *IngestionSession) Export() SessionExport {
	chunks := make([]ExportedChunk, len(s.Chunks))
	for i, c := range s.Chunks {
		chunks[i] = ExportedChunk{
			ChunkIndex: c.Index,
			Text:       c.Content,
			Embedding:  c.Embedding,
		}
	}
	return SessionExport{
		Model:         s.Model,
		EmbeddingDims: s.Dimensions(),
		DocumentID:    s.DocumentID,
		Chunks:        chunks,
	}
}
