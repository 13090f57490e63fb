package driven

import (
	"context"

	"github.com/custodia-labs/docembed/internal/core/domain"
)

// PostProcessor produces or annotates chunks.
// PostProcessors are chained in a pipeline (chunking, then token estimates).
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes a document and returns chunks.
	// A processor that creates chunks (the chunker) receives nil.
	// A processor that annotates chunks receives and returns them.
	Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the document through all processors in order.
	Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error)
}

// PipelineFactory builds pipelines from configuration.
// Chunk parameters vary per run, so pipelines are built per run.
type PipelineFactory interface {
	// BuildPipeline assembles the named processors.
	BuildPipeline(cfg domain.PipelineConfig) (PostProcessorPipeline, error)
}
