// Package domain defines the core business entities for persona-digest.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawDocument: Opaque bytes read from an input document
//   - Document: Extracted text of one input document
//   - Passage: A sentence-aligned unit of a document's text
//   - QuerySpec: A user query with its persona hint and group
//   - QueryResult: The per-query record produced for one document
//   - FinalResult: The cross-document ranked digest
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
