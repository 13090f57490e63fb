package driven

import (
	"context"

	"github.com/custodia-labs/docembed/internal/core/domain"
)

// Normaliser transforms raw file bytes into a Document.
// Each normaliser handles specific file extensions.
type Normaliser interface {
	// SupportedExtensions returns lower-case extensions including the dot, e.g. ".txt".
	SupportedExtensions() []string

	// FileType returns the document file type this normaliser produces.
	FileType() domain.FileType

	// Normalise extracts plain text from a raw document.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
// Chunking is handled by the PostProcessor pipeline.
type NormaliseResult struct {
	// Document is the normalised document with Content populated.
	Document domain.Document
}

// NormaliserRegistry selects a normaliser for a file.
type NormaliserRegistry interface {
	// Register adds a normaliser for all of its extensions.
	Register(n Normaliser)

	// Get returns the normaliser for the file name's extension.
	// Returns domain.ErrUnsupportedType when none matches.
	Get(filename string) (Normaliser, error)

	// Extensions returns every supported extension, sorted.
	Extensions() []string
}
