package httpapi

import (
	"github.com/custodia-labs/docembed/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the HTTP server.
type Ports struct {
	// Ingest runs chunking, embedding and persistence.
	Ingest driving.IngestService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Ingest == nil {
		return ErrMissingIngestService
	}
	return nil
}
