package services

import (
	"context"
	"fmt"
	"runtime"

	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driving"
)

// Ensure StatsService implements the interface.
var _ driving.StatsService = (*StatsService)(nil)

// StatsService reports index and process status.
type StatsService struct {
	p *Pipeline
}

// NewStatsService creates a new stats service.
func NewStatsService(p *Pipeline) *StatsService {
	return &StatsService{p: p}
}

// Stats returns a snapshot of the index and runtime.
func (s *StatsService) Stats(ctx context.Context) (*domain.Stats, error) {
	manifests, err := s.p.ports.Manifests.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list manifests: %w", err)
	}
	docs := 0
	for _, m := range manifests {
		if m.Indexed {
			docs++
		}
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	index := s.p.ports.Index
	return &domain.Stats{
		Documents:    docs,
		Pages:        index.Count(),
		Dimensions:   index.Dimensions(),
		Embedder:     s.p.ports.Embedder.ModelName(),
		Answerer:     s.p.ports.Answerer.ModelName(),
		IndexBackend: index.Backend(),
		IndexType:    index.Type(),
		Device:       runtime.GOOS + "/" + runtime.GOARCH,
		CPUs:         runtime.NumCPU(),
		MemoryBytes:  mem.Sys,
		HeapBytes:    mem.HeapAlloc,
		Limits:       s.p.limits,
	}, nil
}

// Health reports liveness and the indexed page count.
func (s *StatsService) Health(_ context.Context) domain.Health {
	return domain.Health{OK: true, IndexedPages: s.p.ports.Index.Count()}
}
