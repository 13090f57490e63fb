// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - EmbeddingService: Turns one chunk of text into a vector
//   - EmbeddingFactory: Creates an EmbeddingService for a run's API key
//   - DocumentStore: Persists documents and chunk batches
//   - Normaliser: Transforms raw file bytes into a Document
//   - NormaliserRegistry: Selects a normaliser by file extension
//   - PostProcessor: Produces and annotates chunks
//   - PipelineFactory: Builds a chunking pipeline from configuration
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
