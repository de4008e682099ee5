package domain

// DocumentFailure records why a document was skipped.
type DocumentFailure struct {
	Document string
	Err      error
}

// QueryFailure records a query whose record could not be produced.
type QueryFailure struct {
	Document string
	Query    string
	Err      error
}

// RunReport summarises a processing run.
type RunReport struct {
	// RunID uniquely identifies the run.
	RunID string

	// Processed lists documents whose records were written.
	Processed []string

	// Failed lists documents that were skipped.
	Failed []DocumentFailure

	// QueryFailures lists individual queries that produced no record.
	QueryFailures []QueryFailure

	// Records is the total number of records written.
	Records int
}

// Total returns the number of documents attempted.
func (r *RunReport) Total() int {
	return len(r.Processed) + len(r.Failed)
}

// AllFailed reports whether documents were attempted and none succeeded.
func (r *RunReport) AllFailed() bool {
	return len(r.Failed) > 0 && len(r.Processed) == 0
}
