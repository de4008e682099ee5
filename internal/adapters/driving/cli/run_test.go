package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/persona-digest/internal/adapters/driven/storage/jsonfile"
	"github.com/custodia-labs/persona-digest/internal/core/domain"
	"github.com/custodia-labs/persona-digest/internal/core/ports/driving"
)

// mockDigest implements driving.DigestService for testing.
type mockDigest struct {
	report *domain.RunReport
	final  *domain.FinalResult
	runErr error
	calls  []string
	scope  serviceScope
}

func (m *mockDigest) LoadManifest(_ context.Context) (*domain.QueryManifest, error) {
	m.calls = append(m.calls, "load")
	return &domain.QueryManifest{}, nil
}

func (m *mockDigest) ProcessDocument(_ context.Context, _ domain.DocumentRef, _ []domain.QuerySpec) ([]domain.QueryResult, error) {
	m.calls = append(m.calls, "document")
	return nil, nil
}

func (m *mockDigest) ProcessAll(_ context.Context, _ *domain.QueryManifest) (*domain.RunReport, error) {
	m.calls = append(m.calls, "process")
	return m.report, m.runErr
}

func (m *mockDigest) Aggregate(_ context.Context, _ *domain.QueryManifest) (*domain.FinalResult, error) {
	m.calls = append(m.calls, "aggregate")
	return m.final, nil
}

func (m *mockDigest) Run(_ context.Context) (*domain.RunReport, *domain.FinalResult, error) {
	m.calls = append(m.calls, "run")
	return m.report, m.final, m.runErr
}

// useDigest makes commands use digest and reports whether cleanup ran.
func useDigest(t *testing.T, digest driving.DigestService) *bool {
	t.Helper()
	useMemorySettings(t)
	cleaned := new(bool)
	old := newDigestService
	newDigestService = func(_ context.Context, _ *domain.AppSettings, scope serviceScope) (driving.DigestService, func(), error) {
		if m, ok := digest.(*mockDigest); ok {
			m.scope = scope
		}
		return digest, func() { *cleaned = true }, nil
	}
	t.Cleanup(func() { newDigestService = old })
	return cleaned
}

func sampleReport() *domain.RunReport {
	return &domain.RunReport{
		RunID:     "run-1",
		Processed: []string{"a.pdf"},
		Failed:    []domain.DocumentFailure{{Document: "b.pdf", Err: domain.ErrExtraction}},
		QueryFailures: []domain.QueryFailure{
			{Document: "a.pdf", Query: "budget", Err: domain.ErrEmbedding},
		},
		Records: 3,
	}
}

func sampleFinal() *domain.FinalResult {
	return &domain.FinalResult{
		Metadata: domain.FinalMetadata{
			InputDocuments: []string{"a.pdf"},
			Persona:        "Investment Analyst",
			JobToBeDone:    "Analyze revenue trends",
		},
		ExtractedSections: []domain.ExtractedSection{
			{Document: "a.pdf", SectionTitle: "Relevant to: revenue...", ImportanceRank: 1, PageNumber: 2},
		},
		SubsectionAnalysis: []domain.SubsectionAnalysis{
			{Document: "a.pdf", RefinedText: "Revenue grew.", PageNumber: 2},
		},
	}
}

func TestRunCmd_PrintsReportAndDigest(t *testing.T) {
	digest := &mockDigest{report: sampleReport(), final: sampleFinal()}
	cleaned := useDigest(t, digest)

	out, err := executeCommand("run")

	require.NoError(t, err)
	assert.Equal(t, []string{"run"}, digest.calls)
	assert.True(t, *cleaned)
	assert.Contains(t, out, "Run run-1")
	assert.Contains(t, out, "1 of 2 documents, 3 records")
	assert.Contains(t, out, "Failed b.pdf")
	assert.Contains(t, out, `Skipped query "budget" on a.pdf`)
	assert.Contains(t, out, "Persona: Investment Analyst")
	assert.Contains(t, out, "[1] Relevant to: revenue...")
	assert.Contains(t, out, "a.pdf, page 2")
}

func TestRunCmd_JSON(t *testing.T) {
	useDigest(t, &mockDigest{report: &domain.RunReport{RunID: "r"}, final: sampleFinal()})

	out, err := executeCommand("run", "--json")

	require.NoError(t, err)
	start := strings.Index(out, "{")
	require.GreaterOrEqual(t, start, 0)
	var decoded domain.FinalResult
	require.NoError(t, json.Unmarshal([]byte(out[start:]), &decoded))
	assert.Equal(t, "Investment Analyst", decoded.Metadata.Persona)
	assert.Len(t, decoded.ExtractedSections, 1)
}

func TestRunCmd_AllDocumentsFailed(t *testing.T) {
	report := &domain.RunReport{
		RunID:  "r",
		Failed: []domain.DocumentFailure{{Document: "a.pdf", Err: domain.ErrExtraction}},
	}
	useDigest(t, &mockDigest{
		report: report,
		final:  &domain.FinalResult{},
		runErr: fmt.Errorf("%w: a.pdf", domain.ErrAllDocumentsFailed),
	})

	out, err := executeCommand("run")

	require.ErrorIs(t, err, domain.ErrAllDocumentsFailed)
	assert.Contains(t, out, "0 of 1 documents")
	assert.Contains(t, out, "No sections extracted.")
}

func TestRunCmd_SetupFailure(t *testing.T) {
	useMemorySettings(t)
	old := newDigestService
	newDigestService = func(context.Context, *domain.AppSettings, serviceScope) (driving.DigestService, func(), error) {
		return nil, nil, domain.ErrEmbedding
	}
	defer func() { newDigestService = old }()

	_, err := executeCommand("run")

	require.ErrorIs(t, err, domain.ErrEmbedding)
	assert.Contains(t, err.Error(), "failed to set up pipeline")
}

func TestRunCmd_InvalidConfiguration(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("DIGEST_EMBEDDING_API_KEY", "")
	digest := &mockDigest{}
	svc := useMemorySettings(t)
	require.NoError(t, svc.Set("embedding.provider", "openai"))
	old := newDigestService
	newDigestService = func(context.Context, *domain.AppSettings, serviceScope) (driving.DigestService, func(), error) {
		return digest, func() {}, nil
	}
	defer func() { newDigestService = old }()

	_, err := executeCommand("run")

	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, digest.calls)
}

func TestProcessCmd(t *testing.T) {
	digest := &mockDigest{report: sampleReport()}
	useDigest(t, digest)

	out, err := executeCommand("process")

	require.NoError(t, err)
	assert.Equal(t, []string{"load", "process"}, digest.calls)
	assert.Equal(t, scopeFull, digest.scope)
	assert.Contains(t, out, "Run run-1")
	assert.NotContains(t, out, "Digest")
}

func TestProcessCmd_NoDocuments(t *testing.T) {
	useDigest(t, &mockDigest{report: &domain.RunReport{RunID: "empty"}})

	out, err := executeCommand("process")

	require.NoError(t, err)
	assert.Contains(t, out, "No input documents found.")
}

func TestAggregateCmd(t *testing.T) {
	digest := &mockDigest{final: sampleFinal()}
	useDigest(t, digest)

	out, err := executeCommand("aggregate")

	require.NoError(t, err)
	assert.Equal(t, []string{"load", "aggregate"}, digest.calls)
	assert.Equal(t, scopeAggregate, digest.scope)
	assert.Contains(t, out, "Job: Analyze revenue trends")
}

func TestBuildDigestService_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input")
	require.NoError(t, os.MkdirAll(input, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(input, "guide.txt"),
		[]byte("Budgets track spending. Revenue grew last year. The team ships software."), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(input, "notes.md"),
		[]byte("# Notes\n\nRevenue is up. Costs are flat."), 0644))
	queries := filepath.Join(dir, "queries.json")
	require.NoError(t, os.WriteFile(queries,
		[]byte(`{"business_analysis_sample_queries": [{"query": "How did revenue change?", "persona_hint": "business team"}]}`), 0644))

	settings := domain.DefaultAppSettings()
	settings.Input = domain.InputSettings{Dir: input, Queries: queries, References: filepath.Join(dir, "none.json")}
	settings.Output.Dir = filepath.Join(dir, "output")

	digest, cleanup, err := buildDigestService(context.Background(), &settings, scopeFull)
	require.NoError(t, err)
	defer cleanup()

	report, final, err := digest.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"guide.txt", "notes.md"}, report.Processed)
	assert.Equal(t, "Investment Analyst", final.Metadata.Persona)
	assert.Len(t, final.ExtractedSections, 2)
	assert.FileExists(t, filepath.Join(settings.Output.Dir, "guide.txt.json"))
	assert.FileExists(t, filepath.Join(settings.Output.Dir, "notes.md.json"))
	assert.FileExists(t, filepath.Join(settings.Output.Dir, "result.json"))
}

func TestBuildDigestService_AggregateWithoutEmbeddingProvider(t *testing.T) {
	dir := t.TempDir()
	queries := filepath.Join(dir, "queries.json")
	require.NoError(t, os.WriteFile(queries,
		[]byte(`{"business_analysis_sample_queries": [{"query": "How did revenue change?"}]}`), 0644))

	unreachable := httptest.NewServer(http.NotFoundHandler())
	unreachable.Close()

	settings := domain.DefaultAppSettings()
	settings.Input = domain.InputSettings{Dir: filepath.Join(dir, "input"), Queries: queries, References: filepath.Join(dir, "none.json")}
	settings.Output.Dir = filepath.Join(dir, "output")
	settings.Embedding = domain.EmbeddingSettings{
		Provider: domain.EmbeddingProviderOllama,
		BaseURL:  unreachable.URL,
		Model:    "nomic-embed-text",
	}

	store, err := jsonfile.New(settings.Output.Dir)
	require.NoError(t, err)
	top := 0.8
	require.NoError(t, store.SaveRecords(context.Background(), "a.pdf", []domain.QueryResult{{
		Query:            "How did revenue change?",
		Document:         "a.pdf",
		Response:         "Revenue grew.",
		RelevantSections: []string{"Revenue grew."},
		TopScore:         &top,
	}}))

	_, _, err = buildDigestService(context.Background(), &settings, scopeFull)
	require.ErrorIs(t, err, domain.ErrEmbedding)

	digest, cleanup, err := buildDigestService(context.Background(), &settings, scopeAggregate)
	require.NoError(t, err)
	defer cleanup()

	manifest, err := digest.LoadManifest(context.Background())
	require.NoError(t, err)
	final, err := digest.Aggregate(context.Background(), manifest)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf"}, final.Metadata.InputDocuments)
	require.Len(t, final.ExtractedSections, 1)
	assert.FileExists(t, filepath.Join(settings.Output.Dir, "result.json"))
}

func TestExportFinal(t *testing.T) {
	dir := t.TempDir()

	path, err := exportFinal(context.Background(), domain.OutputSettings{Dir: dir, Store: domain.StoreJSON}, sampleFinal())
	require.NoError(t, err)
	assert.Empty(t, path)

	path, err = exportFinal(context.Background(),
		domain.OutputSettings{Dir: dir, Store: domain.StoreSQLite, FinalName: "digest.json"}, sampleFinal())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "digest.json"), path)
	assert.FileExists(t, path)
}

func TestOpenRecordStore(t *testing.T) {
	dir := t.TempDir()

	for _, kind := range []domain.StoreKind{domain.StoreJSON, domain.StoreSQLite, domain.StoreMemory} {
		t.Run(string(kind), func(t *testing.T) {
			store, err := openRecordStore(domain.OutputSettings{Dir: dir, Store: kind, FinalName: "result.json"})
			require.NoError(t, err)
			defer store.Close()

			require.NoError(t, store.SaveRecords(context.Background(), "a.pdf", []domain.QueryResult{{Query: "q"}}))
			sets, err := store.ListRecords(context.Background())
			require.NoError(t, err)
			require.Len(t, sets, 1)
			assert.Equal(t, "a.pdf", sets[0].Document)
		})
	}
}
