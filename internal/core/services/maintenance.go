package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driving"
	"github.com/custodia-labs/pagelens/internal/logger"
)

// Ensure MaintenanceService implements the interface.
var _ driving.MaintenanceService = (*MaintenanceService)(nil)

// MaintenanceService clears and rebuilds the index.
type MaintenanceService struct {
	p *Pipeline
}

// NewMaintenanceService creates a new maintenance service.
func NewMaintenanceService(p *Pipeline) *MaintenanceService {
	return &MaintenanceService{p: p}
}

// ClearIndex deletes the persisted index, empties the in-memory index and
// marks every manifest unindexed. Originals and page images are kept.
func (s *MaintenanceService) ClearIndex(ctx context.Context) error {
	p := s.p
	p.maint.Lock()
	defer p.maint.Unlock()
	p.indexMu.Lock()
	defer p.indexMu.Unlock()

	logger.Section("Clear Index")

	if err := p.ports.Index.Reset(ctx); err != nil {
		return fmt.Errorf("reset index: %w", err)
	}

	manifests, err := p.ports.Manifests.List(ctx)
	if err != nil {
		return fmt.Errorf("list manifests: %w", err)
	}

	var errs []error
	for _, m := range manifests {
		if !m.Indexed {
			continue
		}
		m.MarkUnindexed()
		if err := p.ports.Manifests.Save(ctx, m); err != nil {
			errs = append(errs, fmt.Errorf("save manifest %s: %w", m.DocID, err))
		}
	}

	logger.Info("Cleared index, %d manifests reset", len(manifests)-len(errs))
	return errors.Join(errs...)
}

// rebuilt is a document re-added during ReindexAll, pending its manifest flip.
type rebuilt struct {
	id    string
	pages int
}

// ReindexAll rebuilds the index from every stored original. The rebuild
// happens in memory and is persisted once at the end; on failure the
// previously persisted index is reloaded and no manifest is changed.
//
//nolint:gocognit // Orchestration over all documents with rollback
func (s *MaintenanceService) ReindexAll(ctx context.Context) (*domain.ReindexResult, error) {
	start := time.Now()
	p := s.p
	p.maint.Lock()
	defer p.maint.Unlock()
	p.indexMu.Lock()
	defer p.indexMu.Unlock()

	logger.Section("Reindex")

	ids, err := p.ports.Content.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	restore := func(cause error) (*domain.ReindexResult, error) {
		if err := p.ports.Index.Load(ctx); err != nil {
			return nil, errors.Join(cause, fmt.Errorf("restore index: %w", err))
		}
		return nil, cause
	}

	// The rebuild starts from an empty index so entries are never duplicated.
	p.ports.Index.Truncate(0)

	result := &domain.ReindexResult{Skipped: []string{}}
	var done []rebuilt
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return restore(err)
		}
		if !domain.ValidID(id) || !p.ports.Content.HasOriginal(id) {
			logger.Warnw("reindex skip", "doc", id, "reason", "no original")
			result.Skipped = append(result.Skipped, id)
			continue
		}

		numPages, err := p.ports.Counter.PageCount(ctx, p.ports.Content.OriginalPath(id))
		if err != nil {
			return restore(fmt.Errorf("reindex %s: count pages: %w", id, err))
		}
		if numPages > p.limits.MaxPages || numPages < 1 {
			logger.Warnw("reindex skip", "doc", id, "reason", "page limit", "pages", numPages)
			result.Skipped = append(result.Skipped, id)
			continue
		}

		pages, _, err := p.ensurePages(ctx, id, numPages)
		if err != nil {
			return restore(fmt.Errorf("reindex %s: render: %w", id, err))
		}
		vectors, refs, err := p.embedPages(ctx, id, pages)
		if err != nil {
			return restore(fmt.Errorf("reindex %s: embed: %w", id, err))
		}
		if err := p.ports.Index.Add(ctx, vectors, refs); err != nil {
			return restore(fmt.Errorf("reindex %s: add: %w", id, err))
		}

		done = append(done, rebuilt{id: id, pages: len(refs)})
		result.Documents++
		result.Pages += len(refs)
		logger.Debug("Reindexed %s (%d pages)", id, len(refs))
	}

	if err := p.ports.Index.Save(ctx); err != nil {
		return restore(fmt.Errorf("save index: %w", err))
	}

	if err := s.syncManifests(ctx, done); err != nil {
		return nil, err
	}

	result.Elapsed = time.Since(start)
	logger.Infow("reindex complete",
		"documents", result.Documents,
		"pages", result.Pages,
		"skipped", len(result.Skipped),
		"elapsed_ms", result.Elapsed.Milliseconds(),
	)
	return result, nil
}

// syncManifests flips rebuilt documents to indexed and every other manifest to unindexed.
func (s *MaintenanceService) syncManifests(ctx context.Context, done []rebuilt) error {
	p := s.p
	now := p.now()
	backend := p.ports.Index.Backend()
	embedder := p.ports.Embedder.ModelName()

	var errs []error
	seen := make(map[string]bool, len(done))
	for _, d := range done {
		seen[d.id] = true
		m, ok := p.ports.Manifests.Load(ctx, d.id)
		if !ok {
			data, err := p.ports.Content.ReadOriginal(ctx, d.id)
			if err != nil {
				errs = append(errs, fmt.Errorf("read original %s: %w", d.id, err))
				continue
			}
			m = domain.NewManifest(domain.IdentityOf(data), "", now)
		}
		m.MarkIndexed(d.pages, backend, embedder, now)
		if err := p.ports.Manifests.Save(ctx, m); err != nil {
			errs = append(errs, fmt.Errorf("save manifest %s: %w", d.id, err))
		}
	}

	all, err := p.ports.Manifests.List(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("list manifests: %w", err))
		return errors.Join(errs...)
	}
	for _, m := range all {
		if seen[m.DocID] || !m.Indexed {
			continue
		}
		m.MarkUnindexed()
		if err := p.ports.Manifests.Save(ctx, m); err != nil {
			errs = append(errs, fmt.Errorf("save manifest %s: %w", m.DocID, err))
		}
	}
	return errors.Join(errs...)
}
