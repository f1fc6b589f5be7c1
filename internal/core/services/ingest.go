package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driving"
	"github.com/custodia-labs/pagelens/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService turns uploaded PDFs into indexed pages.
type IngestService struct {
	p *Pipeline
}

// NewIngestService creates a new ingest service.
func NewIngestService(p *Pipeline) *IngestService {
	return &IngestService{p: p}
}

// Limits returns the pipeline limits.
func (s *IngestService) Limits() domain.Limits {
	return s.p.Limits()
}

// Ingest runs the ingestion pipeline for one upload. It is idempotent:
// identical bytes are indexed at most once, and a previously interrupted
// ingest resumes from whatever artifacts are already on disk.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (s *IngestService) Ingest(ctx context.Context, data []byte, filename string) (*domain.IngestResult, error) {
	start := time.Now()
	p := s.p

	// 1. Validate
	if len(data) == 0 {
		return nil, &domain.IngestError{
			Stage: domain.StageIdentify,
			Err:   fmt.Errorf("%w: empty upload", domain.ErrInvalidInput),
		}
	}
	if int64(len(data)) > p.limits.MaxUploadBytes {
		return nil, domain.NewTooLargeError(int64(len(data)), p.limits.MaxUploadBytes)
	}

	// 2. Identify
	id := domain.IdentityOf(data)
	fail := func(stage domain.IngestStage, err error) (*domain.IngestResult, error) {
		logger.Warnw("ingest failed", "doc", id.ID, "stage", stage, "err", err)
		return nil, &domain.IngestError{DocID: id.ID, Stage: stage, Err: err}
	}

	p.maint.RLock()
	defer p.maint.RUnlock()
	unlock := p.docs.Lock(id.ID)
	defer unlock()

	logger.Section("Ingest")
	logger.Debug("Document %s (%s, %d bytes)", id.ID, filename, len(data))

	// 3. Already indexed
	manifest, ok := p.ports.Manifests.Load(ctx, id.ID)
	if ok && manifest.Indexed {
		logger.Info("Document %s already indexed (%d pages)", id.ID, manifest.NumPages)
		return &domain.IngestResult{DocID: id.ID, NumPages: manifest.NumPages, IsNew: false}, nil
	}
	if !ok {
		manifest = domain.NewManifest(id, filename, p.now())
	} else if filename != "" {
		manifest.Filename = filename
	}
	manifest.SHA256 = id.SHA256

	// 4. Persist original
	if err := p.ports.Content.EnsureDocDir(ctx, id.ID); err != nil {
		return fail(domain.StagePersist, err)
	}
	if _, err := p.ports.Content.WriteOriginal(ctx, id.ID, data); err != nil {
		return fail(domain.StagePersist, err)
	}
	if err := p.ports.Manifests.Save(ctx, manifest); err != nil {
		return fail(domain.StageManifest, err)
	}

	// 5. Page limit
	numPages, err := p.ports.Counter.PageCount(ctx, p.ports.Content.OriginalPath(id.ID))
	if err != nil {
		return fail(domain.StageCount, err)
	}
	if numPages > p.limits.MaxPages {
		return nil, domain.NewPolicyError("PDF has %d pages (max %d)", numPages, p.limits.MaxPages)
	}
	if numPages < 1 {
		return fail(domain.StageCount, fmt.Errorf("%w: PDF has no pages", domain.ErrInvalidInput))
	}

	// 6. Render
	renderStart := time.Now()
	pages, cached, err := p.ensurePages(ctx, id.ID, numPages)
	if err != nil {
		return fail(domain.StageRender, err)
	}
	if len(pages) > p.limits.MaxPages {
		return nil, domain.NewPolicyError("PDF has %d pages (max %d)", len(pages), p.limits.MaxPages)
	}
	renderElapsed := time.Since(renderStart)

	// 7. Embed
	embedStart := time.Now()
	vectors, refs, err := p.embedPages(ctx, id.ID, pages)
	if err != nil {
		return fail(domain.StageEmbed, err)
	}
	embedElapsed := time.Since(embedStart)

	// 8. Index
	indexStart := time.Now()
	indexed, err := p.appendAndSave(ctx, id.ID, vectors, refs)
	if err != nil {
		return fail(domain.StageIndex, err)
	}
	indexElapsed := time.Since(indexStart)

	// 9. Finalize manifest
	manifest.MarkIndexed(indexed, p.ports.Index.Backend(), p.ports.Embedder.ModelName(), p.now())
	if err := p.ports.Manifests.Save(ctx, manifest); err != nil {
		return fail(domain.StageManifest, err)
	}

	render := fmt.Sprintf("%d", renderElapsed.Milliseconds())
	if cached {
		render = "cached"
	}
	logger.Infow("ingest complete",
		"doc", id.ID,
		"pages", indexed,
		"render_ms", render,
		"embed_ms", embedElapsed.Milliseconds(),
		"index_ms", indexElapsed.Milliseconds(),
		"total_ms", time.Since(start).Milliseconds(),
	)

	return &domain.IngestResult{DocID: id.ID, NumPages: indexed, IsNew: true}, nil
}
