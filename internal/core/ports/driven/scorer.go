package driven

import (
	"context"

	"github.com/custodia-labs/persona-digest/internal/core/domain"
)

// Scorer measures the textual overlap of a response with a reference answer.
type Scorer interface {
	// Score returns overlap F-measures of candidate against reference.
	// Implementations return an error rather than partial scores.
	Score(ctx context.Context, candidate, reference string) (domain.EvaluationScores, error)
}
