package driving

import (
	"context"

	"github.com/custodia-labs/pagelens/internal/core/domain"
)

// IngestService turns uploaded PDF bytes into indexed pages.
type IngestService interface {
	// Ingest identifies, renders, embeds and indexes a document.
	// Re-ingesting identical bytes returns IsNew=false without touching the index.
	// Limit violations return *domain.PolicyError; other failures *domain.IngestError.
	Ingest(ctx context.Context, data []byte, filename string) (*domain.IngestResult, error)

	// Limits returns the limits Ingest enforces, so callers can reject
	// oversized files before reading them.
	Limits() domain.Limits
}
