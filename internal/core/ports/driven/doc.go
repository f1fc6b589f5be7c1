// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Storage
//
//   - ContentStore: Per-document directory layout (original, pages)
//   - ManifestStore: Durable ingestion records
//   - VectorIndex: Exact inner-product index over page vectors
//   - ConfigStore: Application configuration
//
// # Collaborators
//
//   - PageCounter: Counts pages of a PDF without rendering it
//   - Rasterizer: Renders PDF pages to PNG images
//   - PageEmbedder: Maps page images and query text into one vector space
//   - Answerer: Vision model that answers from page images
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
