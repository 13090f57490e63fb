// Package plaintext provides a normaliser for UTF-8 text files.
package plaintext

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/docembed/internal/core/domain"
	"github.com/custodia-labs/docembed/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedExtensions returns the extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".txt"}
}

// FileType returns domain.FileTypeText.
func (n *Normaliser) FileType() domain.FileType {
	return domain.FileTypeText
}

// Normalise decodes the bytes as UTF-8 with any byte order mark removed.
// Chunking is handled by the PostProcessor pipeline.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	content := bytes.TrimPrefix(raw.Content, utf8BOM)
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8", domain.ErrInvalidInput, filepath.Base(raw.URI))
	}

	text := string(content)
	doc := domain.Document{
		Title:      TitleFromFilename(raw.URI),
		SourceFile: filepath.Base(raw.URI),
		Content:    text,
		FileType:   domain.FileTypeText,
		CharCount:  utf8.RuneCountInString(text),
		CreatedAt:  time.Now(),
	}

	return &driven.NormaliseResult{
		Document: doc,
	}, nil
}

// TitleFromFilename strips the directory and the final extension.
func TitleFromFilename(uri string) string {
	filename := filepath.Base(uri)
	if ext := filepath.Ext(filename); ext != "" && ext != filename {
		filename = strings.TrimSuffix(filename, ext)
	}
	return filename
}
