package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
)

// Ensure ManifestStore implements the interface.
var _ driven.ManifestStore = (*ManifestStore)(nil)

// ManifestStore is an in-memory implementation of driven.ManifestStore.
// Records are copied on the way in and out.
type ManifestStore struct {
	mu        sync.RWMutex
	manifests map[string]domain.Manifest
}

// NewManifestStore creates a new in-memory manifest store.
func NewManifestStore() *ManifestStore {
	return &ManifestStore{
		manifests: make(map[string]domain.Manifest),
	}
}

// Load returns a copy of the manifest of id.
func (s *ManifestStore) Load(_ context.Context, id string) (*domain.Manifest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.manifests[id]
	if !ok {
		return nil, false
	}
	return &m, true
}

// Save replaces the record.
func (s *ManifestStore) Save(_ context.Context, m *domain.Manifest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *m
	if m.IndexedAt != nil {
		at := *m.IndexedAt
		cp.IndexedAt = &at
	}
	s.manifests[m.DocID] = cp
	return nil
}

// List returns every manifest ordered by DocID.
func (s *ManifestStore) List(_ context.Context) ([]*domain.Manifest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Manifest, 0, len(s.manifests))
	for _, m := range s.manifests {
		m := m
		out = append(out, &m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DocID < out[j].DocID })
	return out, nil
}

// Close is a no-op.
func (s *ManifestStore) Close() error {
	return nil
}
