package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
)

// Ports groups the driven adapters a Pipeline orchestrates.
type Ports struct {
	Content    driven.ContentStore
	Manifests  driven.ManifestStore
	Index      driven.VectorIndex
	Embedder   driven.PageEmbedder
	Answerer   driven.Answerer
	Rasterizer driven.Rasterizer
	Counter    driven.PageCounter
}

// Validate checks that every port is set.
func (p Ports) Validate() error {
	var missing []error
	if p.Content == nil {
		missing = append(missing, errors.New("content store is required"))
	}
	if p.Manifests == nil {
		missing = append(missing, errors.New("manifest store is required"))
	}
	if p.Index == nil {
		missing = append(missing, errors.New("vector index is required"))
	}
	if p.Embedder == nil {
		missing = append(missing, errors.New("page embedder is required"))
	}
	if p.Answerer == nil {
		missing = append(missing, errors.New("answerer is required"))
	}
	if p.Rasterizer == nil {
		missing = append(missing, errors.New("rasterizer is required"))
	}
	if p.Counter == nil {
		missing = append(missing, errors.New("page counter is required"))
	}
	return errors.Join(missing...)
}

// Pipeline is the shared state of every service: the driven ports, the
// limits and the locks. It is built once per process.
//
// Lock order: maint, then a document lock, then indexMu.
type Pipeline struct {
	ports  Ports
	limits domain.Limits
	now    func() time.Time

	// maint is held shared by ingests and exclusively by clear/reindex.
	maint sync.RWMutex

	// indexMu covers Add + Save and the rollback of a failed Save.
	indexMu sync.Mutex

	docs *keyedMutex
}

// NewPipeline creates a Pipeline.
func NewPipeline(ports Ports, limits domain.Limits) (*Pipeline, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline ports: %w", err)
	}
	return &Pipeline{
		ports:  ports,
		limits: limits,
		now:    time.Now,
		docs:   newKeyedMutex(),
	}, nil
}

// Limits returns the configured limits.
func (p *Pipeline) Limits() domain.Limits {
	return p.limits
}

// appendAndSave adds the vectors of one document and persists the index.
// When the index already holds entries for docID the add is skipped and the
// existing entry count is returned. A failed save rolls the add back.
func (p *Pipeline) appendAndSave(
	ctx context.Context, docID string, vectors [][]float32, refs []domain.PageRef,
) (int, error) {
	p.indexMu.Lock()
	defer p.indexMu.Unlock()

	if n := p.ports.Index.CountDocument(docID); n > 0 {
		return n, nil
	}

	before := p.ports.Index.Count()
	if err := p.ports.Index.Add(ctx, vectors, refs); err != nil {
		return 0, fmt.Errorf("add vectors: %w", err)
	}
	if err := p.ports.Index.Save(ctx); err != nil {
		p.ports.Index.Truncate(before)
		return 0, fmt.Errorf("save index: %w", err)
	}
	return len(refs), nil
}

// ensurePages returns the rendered page images of a document, reusing an
// existing set when it has exactly numPages images and rendering otherwise.
func (p *Pipeline) ensurePages(ctx context.Context, id string, numPages int) ([]string, bool, error) {
	existing, err := p.ports.Content.ListPages(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("list pages: %w", err)
	}
	if len(existing) == numPages && numPages > 0 {
		return existing, true, nil
	}

	if len(existing) > 0 {
		if err := p.ports.Content.ClearPages(ctx, id); err != nil {
			return nil, false, fmt.Errorf("clear partial pages: %w", err)
		}
	}
	pages, err := p.ports.Rasterizer.Render(
		ctx, p.ports.Content.OriginalPath(id), p.ports.Content.PagesDir(id), p.limits.EffectiveDPI(),
	)
	if err != nil {
		return nil, false, err
	}
	if len(pages) == 0 {
		return nil, false, fmt.Errorf("%w: rendered no pages", domain.ErrInvalidInput)
	}
	return pages, false, nil
}

// embedPages embeds page images and pairs them with their references.
func (p *Pipeline) embedPages(ctx context.Context, id string, pages []string) ([][]float32, []domain.PageRef, error) {
	vectors, err := p.ports.Embedder.EmbedImages(ctx, pages)
	if err != nil {
		return nil, nil, err
	}
	if len(vectors) != len(pages) {
		return nil, nil, fmt.Errorf("%w: got %d vectors for %d pages", domain.ErrCountMismatch, len(vectors), len(pages))
	}
	refs := make([]domain.PageRef, len(pages))
	for i, path := range pages {
		refs[i] = domain.PageRef{DocID: id, PageNum: i + 1, ImagePath: path}
	}
	return vectors, refs, nil
}
