package domain

// NoMatchResponse is the response text used when a document has no passages.
const NoMatchResponse = "No relevant section found."

// RecordTimeLayout is the timestamp layout of per-document records.
const RecordTimeLayout = "2006-01-02 15:04:05"

// FinalTimeLayout is the ISO-8601 timestamp layout of the final result.
const FinalTimeLayout = "2006-01-02T15:04:05.000000"

// MatchResult is one passage selected for a query.
type MatchResult struct {
	// Score is the cosine similarity between query and passage.
	Score float64

	// Text is the passage text.
	Text string

	// DocumentName is the document the passage came from.
	DocumentName string

	// Index is the passage position within its document.
	Index int
}

// EvaluationScores holds ROUGE F-measures of a response against a reference.
type EvaluationScores struct {
	Rouge1 float64 `json:"rouge-1"`
	Rouge2 float64 `json:"rouge-2"`
	RougeL float64 `json:"rouge-l"`
}

// QueryResult is the record produced for one query against one document.
type QueryResult struct {
	Persona          PersonaLabel `json:"persona"`
	RelevantSections []string     `json:"relevant_sections"`
	Response         string       `json:"response"`
	ConfidenceScores []float64    `json:"confidence_scores"`
	TopScore         *float64     `json:"top_score"`
	Reasoning        string       `json:"reasoning"`
	Query            string       `json:"query"`
	Document         string       `json:"document"`
	Timestamp        string       `json:"timestamp"`

	// Evaluation is present only when a reference answer was supplied.
	*EvaluationScores
}

// HasMatch reports whether the record selected any passage.
func (r *QueryResult) HasMatch() bool {
	return len(r.RelevantSections) > 0
}

// Score returns the top score, treating a missing score as 0.
func (r *QueryResult) Score() float64 {
	if r.TopScore == nil {
		return 0
	}
	return *r.TopScore
}

// DocumentRecords groups the records produced for one document.
type DocumentRecords struct {
	Document string
	Records  []QueryResult
}

// FinalMetadata describes a completed digest.
type FinalMetadata struct {
	InputDocuments      []string `json:"input_documents"`
	Persona             string   `json:"persona"`
	JobToBeDone         string   `json:"job_to_be_done"`
	ProcessingTimestamp string   `json:"processing_timestamp"`
}

// ExtractedSection is one ranked entry of the final result.
type ExtractedSection struct {
	Document       string `json:"document"`
	SectionTitle   string `json:"section_title"`
	ImportanceRank int    `json:"importance_rank"`
	PageNumber     int    `json:"page_number"`
}

// SubsectionAnalysis carries the response text of a ranked entry.
type SubsectionAnalysis struct {
	Document    string `json:"document"`
	RefinedText string `json:"refined_text"`
	PageNumber  int    `json:"page_number"`
}

// FinalResult is the cross-document ranked digest.
type FinalResult struct {
	Metadata           FinalMetadata        `json:"metadata"`
	ExtractedSections  []ExtractedSection   `json:"extracted_sections"`
	SubsectionAnalysis []SubsectionAnalysis `json:"subsection_analysis"`
}
