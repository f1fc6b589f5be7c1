package mcp

import (
	"github.com/custodia-labs/pagelens/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Answer answers questions over indexed pages.
	Answer driving.AnswerService

	// Ingest adds PDFs from the local filesystem.
	Ingest driving.IngestService

	// Stats reports index status.
	Stats driving.StatsService

	// Document lists stored documents and serves page images.
	Document driving.DocumentService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	// Ingest, Stats and Document are optional; their tools are not registered without them.
	return nil
}
