package driven

import (
	"context"

	"github.com/custodia-labs/persona-digest/internal/core/domain"
)

// ManifestStore loads the query and reference manifests of a run.
type ManifestStore interface {
	// Queries loads the grouped query manifest.
	// Returns an error wrapping domain.ErrManifest when it is missing or malformed.
	Queries(ctx context.Context) (*domain.QueryManifest, error)

	// References loads reference answers keyed by query text.
	// Returns an error wrapping domain.ErrNotFound when no manifest exists.
	References(ctx context.Context) (domain.References, error)
}
