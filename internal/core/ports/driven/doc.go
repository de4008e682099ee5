// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DocumentSource: Lists and reads input documents
//   - Normaliser: Extracts text from raw documents
//   - NormaliserRegistry: Selects appropriate normaliser
//   - PostProcessorPipeline: Splits extracted text into passages
//   - EmbeddingService: Turns text into vectors
//   - RecordStore: Per-document record and final result persistence
//   - ManifestStore: Query and reference manifests
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - Scorer: Reference-overlap scoring. Without it, records carry no evaluation.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
