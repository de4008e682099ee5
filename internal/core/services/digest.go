package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/persona-digest/internal/core/domain"
	"github.com/custodia-labs/persona-digest/internal/core/ports/driven"
	"github.com/custodia-labs/persona-digest/internal/core/ports/driving"
	"github.com/custodia-labs/persona-digest/internal/logger"
)

// Ensure DigestService implements the interface.
var _ driving.DigestService = (*DigestService)(nil)

// errTaskAborted marks a query task that ended without a result.
var errTaskAborted = errors.New("query task aborted")

// DigestService runs the persona digest pipeline.
//
// Each document is read, normalised and segmented, then its passages are
// embedded once. Queries are then answered concurrently on a bounded worker
// pool and joined before the document's records are stored. Documents are
// independent; a failing document is reported and skipped.
type DigestService struct {
	source      driven.DocumentSource
	registry    driven.NormaliserRegistry
	pipeline    driven.PostProcessorPipeline
	embedder    *Embedder
	synthesizer *Synthesizer
	aggregator  *Aggregator
	store       driven.RecordStore
	manifests   driven.ManifestStore

	pool            *ants.Pool
	documentWorkers int
}

// NewDigestService creates a digest service.
// The query worker pool lives until Close is called.
func NewDigestService(
	source driven.DocumentSource,
	registry driven.NormaliserRegistry,
	pipeline driven.PostProcessorPipeline,
	embedder *Embedder,
	synthesizer *Synthesizer,
	aggregator *Aggregator,
	store driven.RecordStore,
	manifests driven.ManifestStore,
	workers domain.WorkerSettings,
) (*DigestService, error) {
	queryWorkers := workers.QueryWorkers
	if queryWorkers <= 0 {
		queryWorkers = domain.DefaultAppSettings().Workers.QueryWorkers
	}
	documentWorkers := workers.DocumentWorkers
	if documentWorkers <= 0 {
		documentWorkers = 1
	}

	pool, err := ants.NewPool(queryWorkers)
	if err != nil {
		return nil, fmt.Errorf("create query worker pool: %w", err)
	}

	return &DigestService{
		source:          source,
		registry:        registry,
		pipeline:        pipeline,
		embedder:        embedder,
		synthesizer:     synthesizer,
		aggregator:      aggregator,
		store:           store,
		manifests:       manifests,
		pool:            pool,
		documentWorkers: documentWorkers,
	}, nil
}

// Close releases the query worker pool.
func (s *DigestService) Close() {
	s.pool.Release()
}

// LoadManifest loads the query manifest and attaches reference answers.
// A missing or malformed reference manifest only disables scoring.
func (s *DigestService) LoadManifest(ctx context.Context) (*domain.QueryManifest, error) {
	manifest, err := s.manifests.Queries(ctx)
	if err != nil {
		return nil, fmt.Errorf("load queries: %w", err)
	}

	refs, err := s.manifests.References(ctx)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		logger.Debug("No reference manifest, scoring disabled")
	case err != nil:
		logger.Warn("Ignoring reference manifest: %v", err)
	default:
		manifest.Attach(refs)
		logger.Debug("Loaded %d reference answers", len(refs))
	}

	logger.Info("Loaded %d queries in %d groups", manifest.Len(), len(manifest.Groups))
	return manifest, nil
}

// ProcessDocument answers every query against one document and stores the records.
// Queries that fail are logged and omitted; only document-level failures are returned.
func (s *DigestService) ProcessDocument(ctx context.Context, ref domain.DocumentRef, queries []domain.QuerySpec) ([]domain.QueryResult, error) {
	records, failures, err := s.processDocument(ctx, ref, queries)
	if err != nil {
		return nil, err
	}
	for _, f := range failures {
		logger.Warn("Query %q on %s failed: %v", f.Query, f.Document, f.Err)
	}
	return records, nil
}

func (s *DigestService) processDocument(
	ctx context.Context,
	ref domain.DocumentRef,
	queries []domain.QuerySpec,
) ([]domain.QueryResult, []domain.QueryFailure, error) {
	logger.Section("Document: " + ref.Name)

	raw, err := s.source.Fetch(ctx, ref)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read %s: %w", domain.ErrExtraction, ref.Name, err)
	}

	normalised, err := s.registry.Normalise(ctx, raw)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", domain.ErrExtraction, ref.Name, err)
	}
	doc := normalised.Document
	doc.Name = ref.Name

	passages, err := s.pipeline.Process(ctx, &doc)
	if err != nil {
		return nil, nil, fmt.Errorf("segment %s: %w", ref.Name, err)
	}
	logger.Debug("%s: %d characters, %d passages", ref.Name, len(doc.Content), len(passages))

	vectors, err := s.embedder.Embed(ctx, domain.PassageTexts(passages))
	if err != nil {
		return nil, nil, fmt.Errorf("embed %s: %w", ref.Name, err)
	}

	records, failures := s.answerAll(ctx, ref.Name, queries, passages, vectors)

	if err := s.store.SaveRecords(ctx, ref.Name, records); err != nil {
		return nil, failures, fmt.Errorf("save records for %s: %w", ref.Name, err)
	}
	logger.Info("%s: %d records written", ref.Name, len(records))

	return records, failures, nil
}

// answerAll fans queries out to the worker pool and joins before returning.
// Records keep query order.
func (s *DigestService) answerAll(
	ctx context.Context,
	document string,
	queries []domain.QuerySpec,
	passages []domain.Passage,
	vectors [][]float32,
) ([]domain.QueryResult, []domain.QueryFailure) {
	results := make([]*domain.QueryResult, len(queries))
	errs := make([]error, len(queries))

	var wg sync.WaitGroup
	for i, q := range queries {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			results[i], errs[i] = s.synthesizer.Synthesize(ctx, SynthesisInput{
				Document: document,
				Query:    q,
				Passages: passages,
				Vectors:  vectors,
			})
		}
		if err := s.pool.Submit(task); err != nil {
			wg.Done()
			errs[i] = fmt.Errorf("submit query: %w", err)
		}
	}
	wg.Wait()

	records := make([]domain.QueryResult, 0, len(queries))
	var failures []domain.QueryFailure
	for i, r := range results {
		switch {
		case errs[i] != nil:
			failures = append(failures, domain.QueryFailure{Document: document, Query: queries[i].Query, Err: errs[i]})
		case r == nil:
			failures = append(failures, domain.QueryFailure{Document: document, Query: queries[i].Query, Err: errTaskAborted})
		default:
			records = append(records, *r)
		}
	}
	return records, failures
}

// ProcessAll processes every listed document.
// Returns an error wrapping domain.ErrAllDocumentsFailed only when documents
// were found and none could be processed.
func (s *DigestService) ProcessAll(ctx context.Context, manifest *domain.QueryManifest) (*domain.RunReport, error) {
	refs, err := s.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	report := &domain.RunReport{RunID: uuid.New().String()}
	if len(refs) == 0 {
		logger.Warn("No input documents found")
		return report, nil
	}
	queries := manifest.Queries()
	logger.Info("Run %s: %d documents, %d queries", report.RunID, len(refs), len(queries))

	type outcome struct {
		records  []domain.QueryResult
		failures []domain.QueryFailure
		err      error
	}
	outcomes := make([]outcome, len(refs))

	g := new(errgroup.Group)
	g.SetLimit(s.documentWorkers)
	for i, ref := range refs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				outcomes[i].err = err
				return nil
			}
			records, failures, err := s.processDocument(ctx, ref, queries)
			outcomes[i] = outcome{records: records, failures: failures, err: err}
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for i, o := range outcomes {
		name := refs[i].Name
		report.QueryFailures = append(report.QueryFailures, o.failures...)
		for _, f := range o.failures {
			logger.Warn("Query %q on %s failed: %v", f.Query, f.Document, f.Err)
		}
		if o.err != nil {
			logger.Warn("Skipping %s: %v", name, o.err)
			s.clearRecords(ctx, name)
			report.Failed = append(report.Failed, domain.DocumentFailure{Document: name, Err: o.err})
			errs = append(errs, o.err)
			continue
		}
		report.Processed = append(report.Processed, name)
		report.Records += len(o.records)
	}

	if err := ctx.Err(); err != nil {
		return report, err
	}
	if report.AllFailed() {
		return report, fmt.Errorf("%w: %w", domain.ErrAllDocumentsFailed, errors.Join(errs...))
	}
	return report, nil
}

// clearRecords drops records left by an earlier run for a document that
// failed in this one, so they cannot reach a later aggregation.
func (s *DigestService) clearRecords(ctx context.Context, document string) {
	if err := s.store.DeleteRecords(context.WithoutCancel(ctx), document); err != nil {
		logger.Warn("Could not clear stale records for %s: %v", document, err)
	}
}

// Aggregate ranks every stored record into the final result and stores it.
func (s *DigestService) Aggregate(ctx context.Context, manifest *domain.QueryManifest) (*domain.FinalResult, error) {
	return s.aggregate(ctx, manifest, nil)
}

// aggregate ranks stored records. A non-nil include limits ranking to the
// documents it names.
func (s *DigestService) aggregate(ctx context.Context, manifest *domain.QueryManifest, include map[string]struct{}) (*domain.FinalResult, error) {
	logger.Section("Aggregate")

	sets, err := s.store.ListRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	var records []domain.QueryResult
	documents := 0
	for _, set := range sets {
		if include != nil {
			if _, ok := include[set.Document]; !ok {
				logger.Debug("Ignoring records for %s: not processed in this run", set.Document)
				continue
			}
		}
		records = append(records, set.Records...)
		documents++
	}
	logger.Debug("Ranking %d records from %d documents", len(records), documents)

	result := s.aggregator.Aggregate(records, manifest)
	if err := s.store.SaveFinal(ctx, result); err != nil {
		return nil, fmt.Errorf("save final result: %w", err)
	}
	return result, nil
}

// Run processes every document then aggregates the records this run produced.
// Records stored by earlier runs for other documents are not ranked.
// When every document fails the final result is still written and the
// returned error wraps domain.ErrAllDocumentsFailed.
func (s *DigestService) Run(ctx context.Context) (*domain.RunReport, *domain.FinalResult, error) {
	manifest, err := s.LoadManifest(ctx)
	if err != nil {
		return nil, nil, err
	}

	report, runErr := s.ProcessAll(ctx, manifest)
	if runErr != nil && !errors.Is(runErr, domain.ErrAllDocumentsFailed) {
		return report, nil, runErr
	}

	processed := make(map[string]struct{}, len(report.Processed))
	for _, name := range report.Processed {
		processed[name] = struct{}{}
	}

	final, err := s.aggregate(ctx, manifest, processed)
	if err != nil {
		return report, nil, errors.Join(runErr, err)
	}
	return report, final, runErr
}
