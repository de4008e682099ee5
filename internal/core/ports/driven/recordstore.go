package driven

import (
	"context"

	"github.com/custodia-labs/persona-digest/internal/core/domain"
)

// RecordStore persists per-document records and the final result.
type RecordStore interface {
	// SaveRecords replaces the records stored for a document.
	SaveRecords(ctx context.Context, document string, records []domain.QueryResult) error

	// DeleteRecords removes any records stored for a document.
	// Deleting a document with no records is not an error.
	DeleteRecords(ctx context.Context, document string) error

	// ListRecords returns every stored record set, ordered by document name.
	// The final result is never returned as a record set.
	ListRecords(ctx context.Context) ([]domain.DocumentRecords, error)

	// SaveFinal stores the final ranked result.
	SaveFinal(ctx context.Context, result *domain.FinalResult) error

	// Close releases resources.
	Close() error
}
