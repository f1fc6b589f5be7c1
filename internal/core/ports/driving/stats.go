package driving

import (
	"context"

	"github.com/custodia-labs/pagelens/internal/core/domain"
)

// StatsService reports index and runtime status.
type StatsService interface {
	Stats(ctx context.Context) (*domain.Stats, error)
	Health(ctx context.Context) domain.Health
}
