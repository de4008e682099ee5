package driven

import (
	"context"

	"github.com/custodia-labs/persona-digest/internal/core/domain"
)

// PostProcessor processes document content to produce passages.
// PostProcessors are chained in a pipeline.
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes a document and returns passages.
	// If the processor creates passages (e.g., segmenter), it receives nil and returns new passages.
	// Later processors receive and may modify the passages.
	Process(ctx context.Context, doc *domain.Document, passages []domain.Passage) ([]domain.Passage, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the document through all processors in order.
	// Returns the final passages after all processing.
	Process(ctx context.Context, doc *domain.Document) ([]domain.Passage, error)
}
