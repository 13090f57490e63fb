package chunker

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/docembed/internal/core/domain"
)

// Normalise converts CRLF line endings to LF and trims surrounding whitespace.
func Normalise(text string) string {
	return domain.NormaliseText(text)
}

// Validate checks that size and overlap describe a window that advances.
func Validate(size, overlap int) error {
	if size <= 0 {
		return fmt.Errorf("%w: chunk size %d must be positive", domain.ErrOutOfRange, size)
	}
	if overlap < 0 {
		return fmt.Errorf("%w: overlap %d must not be negative", domain.ErrOutOfRange, overlap)
	}
	if overlap >= size {
		return fmt.Errorf("%w: overlap %d must be smaller than chunk size %d", domain.ErrOutOfRange, overlap, size)
	}
	return nil
}

// Split divides text into overlapping windows of at most size characters.
//
// Characters are Unicode code points. Each window starts size-overlap
// characters after the previous one and the last window ends at the end
// of the normalised text. With trimEachChunk unset, concatenating every
// chunk after dropping the first overlap characters of all but the first
// reproduces the normalised text exactly.
func Split(text string, size, overlap int, trimEachChunk bool) ([]string, error) {
	if err := Validate(size, overlap); err != nil {
		return nil, err
	}

	runes := []rune(Normalise(text))
	n := len(runes)
	if n == 0 {
		return []string{}, nil
	}

	step := size - overlap
	chunks := make([]string, 0, n/step+1)

	for start := 0; ; start += step {
		end := min(start+size, n)

		chunk := string(runes[start:end])
		if trimEachChunk {
			chunk = strings.TrimSpace(chunk)
		}
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end == n {
			break
		}
	}

	return chunks, nil
}

// Count returns the number of chunks Split would produce.
func Count(text string, size, overlap int, trimEachChunk bool) (int, error) {
	chunks, err := Split(text, size, overlap, trimEachChunk)
	if err != nil {
		return 0, err
	}
	return len(chunks), nil
}
