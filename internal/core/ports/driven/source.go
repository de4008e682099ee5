package driven

import (
	"context"

	"github.com/custodia-labs/persona-digest/internal/core/domain"
)

// DocumentSource lists and reads the input documents of a run.
type DocumentSource interface {
	// List returns the documents to process, sorted by name.
	List(ctx context.Context) ([]domain.DocumentRef, error)

	// Fetch reads the bytes of a listed document.
	Fetch(ctx context.Context, ref domain.DocumentRef) (*domain.RawDocument, error)
}
