// Package segmenter splits document text into sentence-aligned passages.
package segmenter

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/persona-digest/internal/core/domain"
)

// DefaultMaxLength is the default character budget of a passage.
const DefaultMaxLength = 300

// DefaultMaxCount is the default cap on passages per document.
const DefaultMaxCount = 200

// sentenceBoundary matches terminal punctuation followed by whitespace.
// The punctuation stays with the sentence it ends.
var sentenceBoundary = regexp.MustCompile(`[.?!]\s+`)

// Processor splits document content into passages of whole sentences.
// It implements the PostProcessor interface.
type Processor struct {
	maxLength int
	maxCount  int
}

// Option configures the segmenter processor.
type Option func(*Processor)

// WithMaxLength sets the passage length budget in characters.
func WithMaxLength(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.maxLength = n
		}
	}
}

// WithMaxCount sets the maximum number of passages produced per document.
func WithMaxCount(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.maxCount = n
		}
	}
}

// New creates a new segmenter processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		maxLength: DefaultMaxLength,
		maxCount:  DefaultMaxCount,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "segmenter"
}

// Process splits the document content into passages.
// Input passages are ignored; this processor creates new passages from document content.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Passage) ([]domain.Passage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	texts := Segment(doc.Content, p.maxLength, p.maxCount)
	passages := make([]domain.Passage, len(texts))
	for i, text := range texts {
		passages[i] = domain.Passage{
			DocumentName: doc.Name,
			Index:        i,
			Text:         text,
		}
	}
	return passages, nil
}

// Segment greedily packs whole sentences into passages of at most maxLength
// characters. A sentence longer than maxLength becomes a passage on its own.
// At most maxCount passages are returned; later text is dropped.
func Segment(text string, maxLength, maxCount int) []string {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	if maxCount <= 0 {
		maxCount = DefaultMaxCount
	}

	passages := []string{}
	var buf strings.Builder
	bufLen := 0

	for _, sentence := range SplitSentences(text) {
		n := utf8.RuneCountInString(sentence)
		switch {
		case bufLen == 0:
			buf.WriteString(sentence)
			bufLen = n
		case bufLen+1+n <= maxLength:
			buf.WriteByte(' ')
			buf.WriteString(sentence)
			bufLen += 1 + n
		default:
			passages = append(passages, buf.String())
			if len(passages) >= maxCount {
				return passages
			}
			buf.Reset()
			buf.WriteString(sentence)
			bufLen = n
		}
	}

	if bufLen > 0 {
		passages = append(passages, buf.String())
	}
	return passages
}

// SplitSentences splits text after '.', '?' or '!' when followed by whitespace.
// Sentences are trimmed and empty sentences are dropped.
func SplitSentences(text string) []string {
	var sentences []string
	start := 0
	for _, loc := range sentenceBoundary.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[start : loc[0]+1]); s != "" {
			sentences = append(sentences, s)
		}
		start = loc[1]
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
