package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/custodia-labs/persona-digest/internal/core/domain"
	"github.com/custodia-labs/persona-digest/internal/core/ports/driven"
	"github.com/custodia-labs/persona-digest/internal/core/ports/driving"
	"github.com/custodia-labs/persona-digest/internal/logger"
)

// reasoningTemplate explains how a record was produced.
const reasoningTemplate = "Used semantic embeddings to match query with document sections for persona '%s'"

// SynthesisInput is everything needed to answer one query against one document.
type SynthesisInput struct {
	Document string
	Query    domain.QuerySpec
	Passages []domain.Passage
	Vectors  [][]float32
}

// Synthesizer builds a QueryResult from a query and a document's passages.
type Synthesizer struct {
	classifier driving.PersonaClassifier
	matcher    *Matcher
	scorer     driven.Scorer
	now        func() time.Time
}

// SynthesizerOption configures a Synthesizer.
type SynthesizerOption func(*Synthesizer)

// WithScorer enables reference-overlap scoring.
func WithScorer(scorer driven.Scorer) SynthesizerOption {
	return func(s *Synthesizer) {
		s.scorer = scorer
	}
}

// WithClock overrides the record timestamp source.
func WithClock(now func() time.Time) SynthesizerOption {
	return func(s *Synthesizer) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSynthesizer creates a synthesizer.
func NewSynthesizer(classifier driving.PersonaClassifier, matcher *Matcher, opts ...SynthesizerOption) *Synthesizer {
	s := &Synthesizer{
		classifier: classifier,
		matcher:    matcher,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize answers the query with the best matching passage.
// A document without passages yields a record with the no-match response
// and a null top score. Scoring failures degrade to zero scores.
func (s *Synthesizer) Synthesize(ctx context.Context, in SynthesisInput) (*domain.QueryResult, error) {
	persona := s.classifier.Classify(in.Query.PersonaHint)

	matches, err := s.matcher.Match(ctx, in.Query.Query, in.Passages, in.Vectors)
	if err != nil {
		return nil, fmt.Errorf("match %q: %w", in.Query.Query, err)
	}

	result := &domain.QueryResult{
		Persona:          persona,
		RelevantSections: make([]string, len(matches)),
		Response:         domain.NoMatchResponse,
		ConfidenceScores: make([]float64, len(matches)),
		Reasoning:        fmt.Sprintf(reasoningTemplate, persona),
		Query:            in.Query.Query,
		Document:         in.Document,
		Timestamp:        s.now().Format(domain.RecordTimeLayout),
	}
	for i, m := range matches {
		result.RelevantSections[i] = m.Text
		result.ConfidenceScores[i] = round3(m.Score)
	}
	if len(matches) > 0 {
		top := round3(matches[0].Score)
		result.Response = matches[0].Text
		result.TopScore = &top
	}

	if in.Query.HasReference && s.scorer != nil {
		scores := s.score(ctx, result.Response, in.Query.Reference)
		result.EvaluationScores = &scores
	}

	return result, nil
}

// score never fails; errors and panics from the scorer yield zero scores.
func (s *Synthesizer) score(ctx context.Context, candidate, reference string) (scores domain.EvaluationScores) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("Scoring panicked: %v", r)
			scores = domain.EvaluationScores{}
		}
	}()

	scores, err := s.scorer.Score(ctx, candidate, reference)
	if err != nil {
		logger.Warn("Scoring failed, using zero scores: %v", fmt.Errorf("%w: %w", domain.ErrScoring, err))
		return domain.EvaluationScores{}
	}
	return scores
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
