package services

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/persona-digest/internal/core/domain"
)

func passagesOf(texts ...string) []domain.Passage {
	out := make([]domain.Passage, len(texts))
	for i, t := range texts {
		out[i] = domain.Passage{DocumentName: "doc.pdf", Index: i, Text: t}
	}
	return out
}

func TestMatcher_FewerPassagesThanTopK(t *testing.T) {
	svc := newFakeEmbedding()
	svc.vectors["query"] = []float32{1, 0}
	m := NewMatcher(NewEmbedder(svc), 5)

	passages := passagesOf("orthogonal", "exact", "diagonal")
	vectors := [][]float32{{0, 1}, {1, 0}, {1, 1}}

	results, err := m.Match(context.Background(), "query", passages, vectors)

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "exact", results[0].Text)
	assert.Equal(t, 1, results[0].Index)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.Equal(t, "diagonal", results[1].Text)
	assert.InDelta(t, 1/math.Sqrt2, results[1].Score, 1e-6)
	assert.Equal(t, "orthogonal", results[2].Text)
	assert.Equal(t, "doc.pdf", results[2].DocumentName)
}

func TestMatcher_TiesKeepPassageOrder(t *testing.T) {
	svc := newFakeEmbedding()
	svc.vectors["query"] = []float32{1, 0}
	m := NewMatcher(NewEmbedder(svc), 5)

	passages := passagesOf("p0", "p1", "p2", "p3")
	vectors := [][]float32{{0, 1}, {2, 0}, {0, 1}, {3, 0}}

	results, err := m.Match(context.Background(), "query", passages, vectors)

	require.NoError(t, err)
	indexes := []int{results[0].Index, results[1].Index, results[2].Index, results[3].Index}
	assert.Equal(t, []int{1, 3, 0, 2}, indexes)
}

func TestMatcher_TruncatesToTopK(t *testing.T) {
	svc := newFakeEmbedding()
	m := NewMatcher(NewEmbedder(svc), 5)

	texts := make([]string, 12)
	vectors := make([][]float32, 12)
	for i := range texts {
		texts[i] = fmt.Sprintf("p%d", i)
		vectors[i] = []float32{float32(i + 1), 1}
	}

	results, err := m.Match(context.Background(), "query", passagesOf(texts...), vectors)

	require.NoError(t, err)
	assert.Len(t, results, 5)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestMatcher_EmptyPassagesSkipsEmbedding(t *testing.T) {
	svc := newFakeEmbedding()
	m := NewMatcher(NewEmbedder(svc), 5)

	results, err := m.Match(context.Background(), "query", nil, nil)

	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
	assert.Zero(t, svc.totalCalls())
}

func TestMatcher_VectorCountMismatch(t *testing.T) {
	m := NewMatcher(NewEmbedder(newFakeEmbedding()), 5)

	_, err := m.Match(context.Background(), "q", passagesOf("a", "b"), [][]float32{{1, 0}})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMatcher_EmbeddingFailure(t *testing.T) {
	svc := newFakeEmbedding()
	svc.failOn["q"] = errBoom
	m := NewMatcher(NewEmbedder(svc), 5)

	_, err := m.Match(context.Background(), "q", passagesOf("a"), [][]float32{{1, 0}})

	assert.ErrorIs(t, err, domain.ErrEmbedding)
}

func TestNewMatcher_DefaultTopK(t *testing.T) {
	assert.Equal(t, DefaultTopK, NewMatcher(nil, 0).topK)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 2}, []float32{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Zero(t, CosineSimilarity([]float32{0, 0}, []float32{1, 0}))
	assert.Zero(t, CosineSimilarity([]float32{1}, []float32{1, 0}))
	assert.Zero(t, CosineSimilarity(nil, nil))
}
