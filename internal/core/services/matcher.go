package services

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/persona-digest/internal/core/domain"
)

// DefaultTopK is the number of passages selected per query.
const DefaultTopK = 5

// Matcher ranks a document's passages against a query by cosine similarity.
type Matcher struct {
	embedder *Embedder
	topK     int
}

// NewMatcher creates a matcher returning at most topK passages.
func NewMatcher(embedder *Embedder, topK int) *Matcher {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Matcher{embedder: embedder, topK: topK}
}

// Match returns the top passages for query, best first.
// Equal scores keep passage order. The query is not embedded when there
// are no passages.
func (m *Matcher) Match(ctx context.Context, query string, passages []domain.Passage, vectors [][]float32) ([]domain.MatchResult, error) {
	if len(passages) == 0 {
		return []domain.MatchResult{}, nil
	}
	if len(vectors) != len(passages) {
		return nil, fmt.Errorf("%w: %d passages but %d vectors", domain.ErrInvalidInput, len(passages), len(vectors))
	}

	queryVec, err := m.embedder.EmbedOne(ctx, query)
	if err != nil {
		return nil, err
	}

	results := make([]domain.MatchResult, len(passages))
	for i, p := range passages {
		results[i] = domain.MatchResult{
			Score:        CosineSimilarity(queryVec, vectors[i]),
			Text:         p.Text,
			DocumentName: p.DocumentName,
			Index:        p.Index,
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > m.topK {
		results = results[:m.topK]
	}
	return results, nil
}

// CosineSimilarity returns the cosine of the angle between a and b.
// Zero vectors and length mismatches score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
