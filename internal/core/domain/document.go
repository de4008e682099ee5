package domain

import "time"

// Document represents the extracted text of one input document.
// It is the canonical representation after normalisation.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Name is the input file name (e.g. "report.pdf").
	// Records and the final result refer to documents by this name.
	Name string

	// URI is the original location (file path, URL, etc).
	URI string

	// Title is the human-readable title.
	Title string

	// Content is the full text content after normalisation.
	// This is the complete document text before segmentation.
	Content string

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any

	// CreatedAt is when the document was extracted.
	CreatedAt time.Time
}

// Passage is a contiguous run of whole sentences taken from a document.
// Passages are the unit of matching.
type Passage struct {
	// DocumentName links to the parent Document by name.
	DocumentName string

	// Index is the ordinal position within the document, starting at 0.
	Index int

	// Text is the passage content.
	Text string
}

// PassageTexts returns the text of each passage in order.
func PassageTexts(passages []Passage) []string {
	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Text
	}
	return texts
}
