package cli

import (
	"context"
	"fmt"

	"github.com/custodia-labs/persona-digest/internal/adapters/driven/ai"
	manifestfile "github.com/custodia-labs/persona-digest/internal/adapters/driven/manifest/file"
	"github.com/custodia-labs/persona-digest/internal/adapters/driven/storage/jsonfile"
	"github.com/custodia-labs/persona-digest/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/persona-digest/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/persona-digest/internal/connectors/filesystem"
	"github.com/custodia-labs/persona-digest/internal/core/domain"
	"github.com/custodia-labs/persona-digest/internal/core/ports/driven"
	"github.com/custodia-labs/persona-digest/internal/core/ports/driving"
	"github.com/custodia-labs/persona-digest/internal/core/services"
	"github.com/custodia-labs/persona-digest/internal/normalisers"
	"github.com/custodia-labs/persona-digest/internal/postprocessors"
	"github.com/custodia-labs/persona-digest/internal/scorers/rouge"
)

// serviceScope selects which stages a wired DigestService can run.
type serviceScope int

const (
	// scopeFull wires every stage, including the embedding provider.
	scopeFull serviceScope = iota
	// scopeAggregate only ranks stored records. No embedding provider is
	// created or contacted.
	scopeAggregate
)

// buildDigestService wires a DigestService from settings.
// The returned cleanup releases the worker pool, store and embedding client.
func buildDigestService(ctx context.Context, settings *domain.AppSettings, scope serviceScope) (driving.DigestService, func(), error) {
	var (
		embedding   driven.EmbeddingService
		embedder    *services.Embedder
		synthesizer *services.Synthesizer
	)
	closeEmbedding := func() {
		if embedding != nil {
			embedding.Close()
		}
	}

	if scope == scopeFull {
		var err error
		embedding, err = ai.CreateAndValidateEmbeddingService(ctx, &settings.Embedding)
		if err != nil {
			return nil, nil, err
		}
		embedder = services.NewEmbedder(embedding,
			services.WithBatchSize(settings.Embedding.BatchSize),
			services.WithRateLimit(settings.Embedding.RequestsPerSecond),
		)
		synthesizer = services.NewSynthesizer(
			personaClassifier,
			services.NewMatcher(embedder, settings.Matcher.TopK),
			services.WithScorer(rouge.New()),
		)
	}

	pipeline, err := buildPipeline(settings.Segmenter)
	if err != nil {
		closeEmbedding()
		return nil, nil, err
	}

	store, err := openRecordStore(settings.Output)
	if err != nil {
		closeEmbedding()
		return nil, nil, err
	}

	digest, err := services.NewDigestService(
		filesystem.New(settings.Input.Dir, normalisers.MIMETypeFor),
		normalisers.DefaultRegistry(),
		pipeline,
		embedder,
		synthesizer,
		services.NewAggregator(settings.Ranking, settings.Personas),
		store,
		manifestfile.New(settings.Input.Queries, settings.Input.References),
		settings.Workers,
	)
	if err != nil {
		store.Close()
		closeEmbedding()
		return nil, nil, err
	}

	cleanup := func() {
		digest.Close()
		store.Close()
		closeEmbedding()
	}
	return digest, cleanup, nil
}

func buildPipeline(segmenter domain.SegmenterSettings) (*postprocessors.Pipeline, error) {
	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)
	pipeline, err := postprocessors.BuildPipeline(registry, domain.PipelineConfigFor(segmenter))
	if err != nil {
		return nil, fmt.Errorf("build segmentation pipeline: %w", err)
	}
	return pipeline, nil
}

func openRecordStore(output domain.OutputSettings) (driven.RecordStore, error) {
	switch output.Store {
	case domain.StoreSQLite:
		return sqlite.NewStore(output.Dir)
	case domain.StoreMemory:
		return memory.NewRecordStore(), nil
	default:
		return jsonfile.New(output.Dir, jsonfile.WithFinalName(output.FinalName))
	}
}

// exportFinal writes the final result file for stores that keep it elsewhere.
func exportFinal(ctx context.Context, output domain.OutputSettings, final *domain.FinalResult) (string, error) {
	if output.Store == domain.StoreJSON || output.Store == "" {
		return "", nil
	}
	store, err := jsonfile.New(output.Dir, jsonfile.WithFinalName(output.FinalName))
	if err != nil {
		return "", err
	}
	if err := store.SaveFinal(ctx, final); err != nil {
		return "", err
	}
	return store.FinalPath(), nil
}
