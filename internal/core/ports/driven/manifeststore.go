package driven

import (
	"context"

	"github.com/custodia-labs/pagelens/internal/core/domain"
)

// ManifestStore persists one manifest per document.
type ManifestStore interface {
	// Load returns the manifest of id. A missing or unreadable record is
	// reported as absent (false) and never as an error.
	Load(ctx context.Context, id string) (*domain.Manifest, bool)

	// Save atomically replaces the whole record.
	Save(ctx context.Context, m *domain.Manifest) error

	// List returns every readable manifest ordered by DocID.
	List(ctx context.Context) ([]*domain.Manifest, error)

	// Close releases resources.
	Close() error
}
