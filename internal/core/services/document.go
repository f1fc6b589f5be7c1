package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driving"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService exposes stored documents and their page images.
type DocumentService struct {
	p *Pipeline
}

// NewDocumentService creates a new document service.
func NewDocumentService(p *Pipeline) *DocumentService {
	return &DocumentService{p: p}
}

// List returns every manifest ordered by document ID.
func (s *DocumentService) List(ctx context.Context) ([]*domain.Manifest, error) {
	return s.p.ports.Manifests.List(ctx)
}

// Get returns one manifest.
func (s *DocumentService) Get(ctx context.Context, id string) (*domain.Manifest, error) {
	if !domain.ValidID(id) {
		return nil, fmt.Errorf("%w: document id %q", domain.ErrInvalidInput, id)
	}
	m, ok := s.p.ports.Manifests.Load(ctx, id)
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	return m, nil
}

// PageImage returns the rendered image path of a page.
func (s *DocumentService) PageImage(ctx context.Context, id string, page int) (string, error) {
	if !domain.ValidID(id) {
		return "", fmt.Errorf("%w: document id %q", domain.ErrInvalidInput, id)
	}
	if page < 1 {
		return "", fmt.Errorf("%w: page must be >= 1", domain.ErrInvalidInput)
	}
	return s.p.ports.Content.PageImage(ctx, id, page)
}
