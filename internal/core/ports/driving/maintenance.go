package driving

import (
	"context"

	"github.com/custodia-labs/pagelens/internal/core/domain"
)

// MaintenanceService clears or rebuilds the index.
type MaintenanceService interface {
	// ClearIndex wipes the index and marks every manifest unindexed.
	// Originals and page images are kept.
	ClearIndex(ctx context.Context) error

	// ReindexAll rebuilds the index from stored originals.
	ReindexAll(ctx context.Context) (*domain.ReindexResult, error)
}
