package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/custodia-labs/persona-digest/internal/core/domain"
	"github.com/custodia-labs/persona-digest/internal/core/ports/driven"
)

// --- Mock implementations ---

// fakeEmbedding implements driven.EmbeddingService with fixed vectors.
// Texts without a fixed vector get a zero-free default.
type fakeEmbedding struct {
	mu         sync.Mutex
	vectors    map[string][]float32
	batchCalls [][]string
	oneCalls   []string
	failOn     map[string]error
	batchErr   error
	shortBatch bool
}

var _ driven.EmbeddingService = (*fakeEmbedding)(nil)

func newFakeEmbedding() *fakeEmbedding {
	return &fakeEmbedding{
		vectors: make(map[string][]float32),
		failOn:  make(map[string]error),
	}
}

func (f *fakeEmbedding) vector(text string) []float32 {
	if v, ok := f.vectors[text]; ok {
		return v
	}
	return []float32{1, 1}
}

func (f *fakeEmbedding) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.oneCalls = append(f.oneCalls, text)
	if err, ok := f.failOn[text]; ok {
		return nil, err
	}
	return f.vector(text), nil
}

func (f *fakeEmbedding) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchCalls = append(f.batchCalls, append([]string(nil), texts...))
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		out = append(out, f.vector(t))
	}
	if f.shortBatch && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (f *fakeEmbedding) Dimensions() int              { return 2 }
func (f *fakeEmbedding) ModelName() string            { return "fake" }
func (f *fakeEmbedding) Ping(_ context.Context) error { return nil }
func (f *fakeEmbedding) Close() error                 { return nil }

func (f *fakeEmbedding) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batchCalls) + len(f.oneCalls)
}

// fakeScorer implements driven.Scorer.
type fakeScorer struct {
	scores domain.EvaluationScores
	err    error
	panics bool
	calls  []string
}

func (f *fakeScorer) Score(_ context.Context, candidate, reference string) (domain.EvaluationScores, error) {
	f.calls = append(f.calls, candidate+"|"+reference)
	if f.panics {
		panic("scorer exploded")
	}
	return f.scores, f.err
}

// fakeSource implements driven.DocumentSource over in-memory text files.
type fakeSource struct {
	names    []string
	texts    map[string]string
	fetchErr map[string]error
	listErr  error
}

func newFakeSource() *fakeSource {
	return &fakeSource{texts: make(map[string]string), fetchErr: make(map[string]error)}
}

func (f *fakeSource) add(name, text string) *fakeSource {
	f.names = append(f.names, name)
	f.texts[name] = text
	return f
}

func (f *fakeSource) List(_ context.Context) ([]domain.DocumentRef, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	refs := make([]domain.DocumentRef, len(f.names))
	for i, n := range f.names {
		refs[i] = domain.DocumentRef{Name: n, URI: "mem://" + n, MIMEType: "text/plain"}
	}
	return refs, nil
}

func (f *fakeSource) Fetch(_ context.Context, ref domain.DocumentRef) (*domain.RawDocument, error) {
	if err, ok := f.fetchErr[ref.Name]; ok {
		return nil, err
	}
	text, ok := f.texts[ref.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, ref.Name)
	}
	return &domain.RawDocument{Name: ref.Name, URI: ref.URI, MIMEType: ref.MIMEType, Content: []byte(text)}, nil
}

// fakeManifests implements driven.ManifestStore.
type fakeManifests struct {
	manifest *domain.QueryManifest
	queryErr error
	refs     domain.References
	refErr   error
}

func (f *fakeManifests) Queries(_ context.Context) (*domain.QueryManifest, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.manifest, nil
}

func (f *fakeManifests) References(_ context.Context) (domain.References, error) {
	if f.refErr != nil {
		return nil, f.refErr
	}
	if f.refs == nil {
		return nil, domain.ErrNotFound
	}
	return f.refs, nil
}

var errBoom = errors.New("boom")
