// Package rouge scores a response against a reference answer with the
// ROUGE-1, ROUGE-2 and ROUGE-L F-measures.
//
// Text is lower-cased and split into runs of letters and digits before
// n-grams are counted. Scores are rounded to three decimals.
package rouge

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/custodia-labs/persona-digest/internal/core/domain"
	"github.com/custodia-labs/persona-digest/internal/core/ports/driven"
)

// Ensure Scorer implements the interface.
var _ driven.Scorer = (*Scorer)(nil)

// ErrEmptyText is returned when either side has no scorable tokens.
var ErrEmptyText = errors.New("no scorable tokens")

// Scorer computes ROUGE F-measures.
type Scorer struct{}

// New creates a ROUGE scorer.
func New() *Scorer {
	return &Scorer{}
}

// Score returns ROUGE-1, ROUGE-2 and ROUGE-L F-measures of candidate
// against reference.
func (s *Scorer) Score(ctx context.Context, candidate, reference string) (domain.EvaluationScores, error) {
	if err := ctx.Err(); err != nil {
		return domain.EvaluationScores{}, err
	}

	cand := Tokenize(candidate)
	ref := Tokenize(reference)
	if len(cand) == 0 {
		return domain.EvaluationScores{}, fmt.Errorf("%w: candidate: %w", domain.ErrScoring, ErrEmptyText)
	}
	if len(ref) == 0 {
		return domain.EvaluationScores{}, fmt.Errorf("%w: reference: %w", domain.ErrScoring, ErrEmptyText)
	}

	return domain.EvaluationScores{
		Rouge1: round3(ngramF(cand, ref, 1)),
		Rouge2: round3(ngramF(cand, ref, 2)),
		RougeL: round3(lcsF(cand, ref)),
	}, nil
}

// Tokenize lower-cases text and splits it into letter/digit runs.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// ngramF is the F-measure of clipped n-gram overlap.
func ngramF(cand, ref []string, n int) float64 {
	candGrams := ngrams(cand, n)
	refGrams := ngrams(ref, n)

	candTotal, refTotal := 0, 0
	for _, c := range candGrams {
		candTotal += c
	}
	for _, c := range refGrams {
		refTotal += c
	}

	overlap := 0
	for gram, c := range candGrams {
		overlap += min(c, refGrams[gram])
	}

	return fMeasure(overlap, candTotal, refTotal)
}

func ngrams(tokens []string, n int) map[string]int {
	counts := make(map[string]int)
	for i := 0; i+n <= len(tokens); i++ {
		counts[strings.Join(tokens[i:i+n], "\x00")]++
	}
	return counts
}

// lcsF is the F-measure of the longest common subsequence.
func lcsF(cand, ref []string) float64 {
	return fMeasure(lcsLength(cand, ref), len(cand), len(ref))
}

// lcsLength uses two rolling rows of the dynamic-programming table.
func lcsLength(a, b []string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else {
				curr[j] = max(prev[j], curr[j-1])
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func fMeasure(overlap, candTotal, refTotal int) float64 {
	if overlap == 0 || candTotal == 0 || refTotal == 0 {
		return 0
	}
	precision := float64(overlap) / float64(candTotal)
	recall := float64(overlap) / float64(refTotal)
	return 2 * precision * recall / (precision + recall)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
