package domain

import (
	"strings"
	"time"
)

// FileType identifies the kind of file a document was read from.
type FileType string

// Supported file types.
const (
	// FileTypeText is plain UTF-8 text, including pasted text.
	FileTypeText FileType = "text"

	// FileTypeWord is a Word (.docx) document.
	FileTypeWord FileType = "word"
)

// IsValid returns true if the file type is recognised.
func (t FileType) IsValid() bool {
	return t == FileTypeText || t == FileTypeWord
}

// String returns the string representation.
func (t FileType) String() string {
	return string(t)
}

// ManualTextTitle is the title given to documents created from pasted text.
const ManualTextTitle = "Manual Text"

// Document represents a text document submitted for ingestion.
// It is immutable once created; after persistence only the ID is kept.
type Document struct {
	// ID is assigned by the storage provider on insert.
	ID string

	// Title is the human-readable title.
	Title string

	// SourceFile is the original file name, empty for pasted text.
	SourceFile string

	// Content is the full normalised text before chunking.
	Content string

	// FileType is the kind of file the content came from.
	FileType FileType

	// CharCount is the number of characters (code points) in Content.
	CharCount int

	// Metadata contains arbitrary key-value pairs such as the model name.
	Metadata map[string]any

	// CreatedAt is when the document was created.
	CreatedAt time.Time
}

// Chunk represents one overlapping text segment of a document.
type Chunk struct {
	// DocumentID links to the parent Document.
	DocumentID string

	// Index is the ordinal position within the document, contiguous from 0.
	Index int

	// Content is the segment text. Never empty.
	Content string

	// Embedding is the vector returned by the embedding provider.
	Embedding []float32

	// TokenCount is an estimate of the number of model tokens in Content.
	TokenCount int
}

// NormaliseText converts CRLF line endings to LF and trims surrounding whitespace.
// Chunk boundaries and character counts are computed on the normalised text.
func NormaliseText(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
}
