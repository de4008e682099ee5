package driving

import (
	"context"

	"github.com/custodia-labs/persona-digest/internal/core/domain"
)

// DigestService answers a query manifest against a set of documents and
// ranks the answers into a single digest.
type DigestService interface {
	// LoadManifest loads the query manifest and attaches any reference answers.
	LoadManifest(ctx context.Context) (*domain.QueryManifest, error)

	// ProcessDocument answers every query against one document and stores the records.
	ProcessDocument(ctx context.Context, ref domain.DocumentRef, queries []domain.QuerySpec) ([]domain.QueryResult, error)

	// ProcessAll processes every listed document, containing failures per document.
	ProcessAll(ctx context.Context, manifest *domain.QueryManifest) (*domain.RunReport, error)

	// Aggregate ranks every stored record into the final result and stores it.
	Aggregate(ctx context.Context, manifest *domain.QueryManifest) (*domain.FinalResult, error)

	// Run processes every document then aggregates.
	Run(ctx context.Context) (*domain.RunReport, *domain.FinalResult, error)
}

// PersonaClassifier maps a persona hint to a coarse audience label.
type PersonaClassifier interface {
	// Classify returns the label for a persona hint. Never fails.
	Classify(hint string) domain.PersonaLabel
}
