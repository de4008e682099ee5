package services

import (
	"slices"
	"sort"
	"time"

	"github.com/custodia-labs/persona-digest/internal/core/domain"
)

// Aggregator ranks every record of a run into the final result.
type Aggregator struct {
	ranking  domain.RankingSettings
	personas map[string]domain.PersonaJob
	now      func() time.Time
}

// NewAggregator creates an aggregator. Zero ranking fields take their defaults.
func NewAggregator(ranking domain.RankingSettings, personas map[string]domain.PersonaJob) *Aggregator {
	defaults := domain.DefaultAppSettings().Ranking
	if ranking.TopN <= 0 {
		ranking.TopN = defaults.TopN
	}
	if ranking.TitleLength <= 0 {
		ranking.TitleLength = defaults.TitleLength
	}
	if personas == nil {
		personas = domain.DefaultPersonaJobs()
	}
	return &Aggregator{
		ranking:  ranking,
		personas: personas,
		now:      time.Now,
	}
}

// Aggregate ranks records by top score across all documents and keeps the
// best TopN. Records with equal scores keep their input order. Missing top
// scores rank as 0.
func (a *Aggregator) Aggregate(records []domain.QueryResult, manifest *domain.QueryManifest) *domain.FinalResult {
	ranked := slices.Clone(records)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score() > ranked[j].Score()
	})
	if len(ranked) > a.ranking.TopN {
		ranked = ranked[:a.ranking.TopN]
	}

	pj := a.resolvePersona(records, manifest)
	result := &domain.FinalResult{
		Metadata: domain.FinalMetadata{
			InputDocuments:      inputDocuments(records),
			Persona:             pj.Persona,
			JobToBeDone:         pj.Job,
			ProcessingTimestamp: a.now().Format(domain.FinalTimeLayout),
		},
		ExtractedSections:  make([]domain.ExtractedSection, len(ranked)),
		SubsectionAnalysis: make([]domain.SubsectionAnalysis, len(ranked)),
	}

	for i, r := range ranked {
		page := PageNumber(r.Response, r.RelevantSections)
		result.ExtractedSections[i] = domain.ExtractedSection{
			Document:       r.Document,
			SectionTitle:   a.SectionTitle(r.Query),
			ImportanceRank: i + 1,
			PageNumber:     page,
		}
		result.SubsectionAnalysis[i] = domain.SubsectionAnalysis{
			Document:    r.Document,
			RefinedText: r.Response,
			PageNumber:  page,
		}
	}
	return result
}

// SectionTitle builds a section title from the leading characters of a query.
func (a *Aggregator) SectionTitle(query string) string {
	runes := []rune(query)
	if len(runes) > a.ranking.TitleLength {
		runes = runes[:a.ranking.TitleLength]
	}
	return a.ranking.TitlePrefix + string(runes) + a.ranking.TitleSuffix
}

// resolvePersona looks up the group of the first record's query.
func (a *Aggregator) resolvePersona(records []domain.QueryResult, manifest *domain.QueryManifest) domain.PersonaJob {
	if len(records) == 0 {
		return domain.UnknownPersonaJob()
	}
	group, ok := manifest.GroupOf(records[0].Query)
	if !ok {
		return domain.UnknownPersonaJob()
	}
	pj, ok := a.personas[group]
	if !ok {
		return domain.UnknownPersonaJob()
	}
	return pj
}

// PageNumber derives a page number from the position of response within
// sections, ten sections to a page. The first equal section wins; a response
// not in sections is on page 1.
func PageNumber(response string, sections []string) int {
	idx := slices.Index(sections, response)
	if idx < 0 {
		return 1
	}
	return idx/10 + 1
}

func inputDocuments(records []domain.QueryResult) []string {
	docs := make([]string, 0)
	seen := make(map[string]struct{})
	for _, r := range records {
		if _, ok := seen[r.Document]; ok {
			continue
		}
		seen[r.Document] = struct{}{}
		docs = append(docs, r.Document)
	}
	sort.Strings(docs)
	return docs
}
