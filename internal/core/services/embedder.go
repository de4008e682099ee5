package services

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/persona-digest/internal/core/domain"
	"github.com/custodia-labs/persona-digest/internal/core/ports/driven"
	"github.com/custodia-labs/persona-digest/internal/logger"
)

// DefaultBatchSize is the number of texts sent to the model per request.
const DefaultBatchSize = 32

// Embedder turns passages and queries into vectors using an EmbeddingService.
// It batches passage requests, rate-limits calls to the provider and
// memoises query vectors, since every query is embedded once per document.
// It is safe for concurrent use.
type Embedder struct {
	service   driven.EmbeddingService
	batchSize int
	limiter   *rate.Limiter

	mu    sync.RWMutex
	cache map[string][]float32
}

// EmbedderOption configures an Embedder.
type EmbedderOption func(*Embedder)

// WithBatchSize sets the number of texts embedded per request.
func WithBatchSize(n int) EmbedderOption {
	return func(e *Embedder) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

// WithRateLimit limits provider calls to rps requests per second.
// A non-positive rps leaves calls unlimited.
func WithRateLimit(rps float64) EmbedderOption {
	return func(e *Embedder) {
		if rps > 0 {
			burst := int(rps)
			if burst < 1 {
				burst = 1
			}
			e.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// NewEmbedder creates an Embedder backed by service.
func NewEmbedder(service driven.EmbeddingService, opts ...EmbedderOption) *Embedder {
	e := &Embedder{
		service:   service,
		batchSize: DefaultBatchSize,
		cache:     make(map[string][]float32),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Embed returns one vector per text, in input order.
// An empty input yields an empty result without calling the model.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := min(start+e.batchSize, len(texts))
		batch := texts[start:end]

		if err := e.wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
		}

		vecs, err := e.service.EmbedBatch(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("%w: batch %d-%d: %w", domain.ErrEmbedding, start, end, err)
		}
		if len(vecs) != len(batch) {
			return nil, fmt.Errorf("%w: batch %d-%d: got %d vectors for %d texts",
				domain.ErrEmbedding, start, end, len(vecs), len(batch))
		}
		out = append(out, vecs...)
	}

	logger.Debug("Embedded %d texts with %s", len(texts), e.service.ModelName())
	return out, nil
}

// EmbedOne returns the vector for a single text, reusing earlier results.
func (e *Embedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	e.mu.RLock()
	vec, ok := e.cache[text]
	e.mu.RUnlock()
	if ok {
		return vec, nil
	}

	if err := e.wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
	}

	vec, err := e.service.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
	}

	e.mu.Lock()
	e.cache[text] = vec
	e.mu.Unlock()
	return vec, nil
}

// Dimensions returns the vector size of the underlying model.
func (e *Embedder) Dimensions() int {
	return e.service.Dimensions()
}

// ModelName returns the name of the underlying model.
func (e *Embedder) ModelName() string {
	return e.service.ModelName()
}

func (e *Embedder) wait(ctx context.Context) error {
	if e.limiter == nil {
		return ctx.Err()
	}
	return e.limiter.Wait(ctx)
}
