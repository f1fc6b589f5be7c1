// Package domain defines the core entities for pagelens.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Identity: Content-addressed key of an uploaded PDF
//   - Manifest: Durable ingestion record of a document
//   - PageRef: A rendered page that backs one index entry
//   - Evidence / Answer: The result of a retrieval-augmented question
//   - Settings / Limits: Runtime configuration
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
