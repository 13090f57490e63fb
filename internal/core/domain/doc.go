// Package domain defines the core business entities for docembed.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A text document submitted for ingestion
//   - Chunk: An overlapping text segment with its embedding
//   - RawDocument: Opaque bytes read from a file or upload
//   - IngestionSession: The outcome of one ingestion run
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
