package driving

import (
	"context"

	"github.com/custodia-labs/pagelens/internal/core/domain"
)

// DocumentService exposes stored documents for display.
type DocumentService interface {
	// List returns every manifest ordered by document ID.
	List(ctx context.Context) ([]*domain.Manifest, error)

	// Get returns one manifest or domain.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.Manifest, error)

	// PageImage returns the rendered image path of a page or domain.ErrNotFound.
	PageImage(ctx context.Context, id string, page int) (string, error)
}
