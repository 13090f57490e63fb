// Package tokens provides a processor that estimates model token counts per chunk.
package tokens

import (
	"context"
	"math"
	"unicode/utf8"

	"github.com/custodia-labs/docembed/internal/core/domain"
)

// DefaultCharsPerToken is the character to token ratio used for estimates.
const DefaultCharsPerToken = 4.0

// Processor fills Chunk.TokenCount with a character based estimate.
// It implements the PostProcessor interface.
type Processor struct {
	charsPerToken float64
}

// Option configures the token processor.
type Option func(*Processor)

// WithCharsPerToken sets the ratio. Non-positive values are ignored.
func WithCharsPerToken(ratio float64) Option {
	return func(p *Processor) {
		if ratio > 0 {
			p.charsPerToken = ratio
		}
	}
}

// New creates a token estimating processor.
func New(opts ...Option) *Processor {
	p := &Processor{charsPerToken: DefaultCharsPerToken}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "tokens"
}

// Process sets the token estimate on every chunk and returns them.
func (p *Processor) Process(_ context.Context, _ *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	for i := range chunks {
		chunks[i].TokenCount = Estimate(chunks[i].Content, p.charsPerToken)
	}
	return chunks, nil
}

// Estimate returns ceil(characters / charsPerToken).
func Estimate(s string, charsPerToken float64) int {
	if charsPerToken <= 0 {
		charsPerToken = DefaultCharsPerToken
	}
	return int(math.Ceil(float64(utf8.RuneCountInString(s)) / charsPerToken))
}
