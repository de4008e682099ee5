package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates no normaliser handles a MIME type.
	ErrUnsupportedType = errors.New("unsupported type")

	// Pipeline Errors.

	// ErrExtraction indicates a document could not be read or its text
	// could not be extracted. The document is skipped.
	ErrExtraction = errors.New("text extraction failed")

	// ErrEmbedding indicates the embedding model failed to produce vectors.
	// Processing of the affected document is aborted.
	ErrEmbedding = errors.New("embedding failed")

	// ErrScoring indicates reference-overlap scoring failed.
	// Scores degrade to zero and the record is still produced.
	ErrScoring = errors.New("scoring failed")

	// ErrManifest indicates a query or reference manifest is missing or malformed.
	ErrManifest = errors.New("invalid manifest")

	// ErrAllDocumentsFailed indicates that no input document could be processed.
	ErrAllDocumentsFailed = errors.New("all documents failed")
)
