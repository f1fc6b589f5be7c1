// Package tui provides an interactive terminal user interface for pagelens.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/pagelens/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Answer answers questions over the indexed pages.
	Answer driving.AnswerService

	// Document lists stored documents.
	Document driving.DocumentService

	// Stats reports index and model status.
	Stats driving.StatsService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(
	answer driving.AnswerService,
	document driving.DocumentService,
	stats driving.StatsService,
) *Ports {
	return &Ports{
		Answer:   answer,
		Document: document,
		Stats:    stats,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	// Document and Stats are optional; their views show a notice without them.
	return nil
}
