package hashing

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	svc := NewEmbeddingService(Config{})

	assert.Equal(t, DefaultDimensions, svc.Dimensions())
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.NoError(t, svc.Ping(context.Background()))
	assert.NoError(t, svc.Close())
}

func TestEmbed_DeterministicAndNormalised(t *testing.T) {
	svc := NewEmbeddingService(Config{Dimensions: 64})
	ctx := context.Background()

	a, err := svc.Embed(ctx, "Revenue grew in the third quarter.")
	require.NoError(t, err)
	b, err := svc.Embed(ctx, "Revenue grew in the third quarter.")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
	assert.InDelta(t, 1.0, cosine(a, a), 1e-6)
}

func TestEmbed_SimilarTextScoresHigher(t *testing.T) {
	svc := NewEmbeddingService(Config{})
	ctx := context.Background()

	query, err := svc.Embed(ctx, "revenue growth")
	require.NoError(t, err)
	related, err := svc.Embed(ctx, "Revenue growth was strong this year.")
	require.NoError(t, err)
	unrelated, err := svc.Embed(ctx, "Enzymes catalyse reactions in cells.")
	require.NoError(t, err)

	assert.Greater(t, cosine(query, related), cosine(query, unrelated))
	assert.GreaterOrEqual(t, cosine(query, unrelated), 0.0)
}

func TestEmbed_EmptyTextIsZeroVector(t *testing.T) {
	svc := NewEmbeddingService(Config{Dimensions: 8})

	vec, err := svc.Embed(context.Background(), "the of and")

	require.NoError(t, err)
	assert.Equal(t, make([]float32, 8), vec)
}

func TestEmbedBatch(t *testing.T) {
	svc := NewEmbeddingService(Config{Dimensions: 16})

	vecs, err := svc.EmbedBatch(context.Background(), []string{"one", "two", "three"})

	require.NoError(t, err)
	require.Len(t, vecs, 3)
	single, err := svc.Embed(context.Background(), "two")
	require.NoError(t, err)
	assert.Equal(t, single, vecs[1])
}

func TestEmbedBatch_Cancelled(t *testing.T) {
	svc := NewEmbeddingService(Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.EmbedBatch(ctx, []string{"text"})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"company's", "r", "d", "budget", "2024"}, Tokenize("The company's R&D budget for 2024."))
	assert.Empty(t, Tokenize("   "))
}
