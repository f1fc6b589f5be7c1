package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
	"github.com/custodia-labs/pagelens/internal/logger"
)

// Ensure ManifestStore implements the interface.
var _ driven.ManifestStore = (*ManifestStore)(nil)

// manifestRecord is the on-disk JSON form of a manifest.
type manifestRecord struct {
	DocID        string     `json:"doc_id"`
	Filename     string     `json:"filename"`
	NumPages     int        `json:"num_pages"`
	Indexed      bool       `json:"indexed"`
	CreatedAt    time.Time  `json:"created_at"`
	IndexedAt    *time.Time `json:"indexed_at"`
	SHA256       string     `json:"sha256"`
	IndexBackend string     `json:"index_backend"`
	Embedder     string     `json:"embedder"`
}

func toRecord(m *domain.Manifest) manifestRecord {
	return manifestRecord{
		DocID:        m.DocID,
		Filename:     m.Filename,
		NumPages:     m.NumPages,
		Indexed:      m.Indexed,
		CreatedAt:    m.CreatedAt,
		IndexedAt:    m.IndexedAt,
		SHA256:       m.SHA256,
		IndexBackend: m.IndexBackend,
		Embedder:     m.Embedder,
	}
}

func (r manifestRecord) toDomain() *domain.Manifest {
	return &domain.Manifest{
		DocID:        r.DocID,
		Filename:     r.Filename,
		NumPages:     r.NumPages,
		Indexed:      r.Indexed,
		CreatedAt:    r.CreatedAt,
		IndexedAt:    r.IndexedAt,
		SHA256:       r.SHA256,
		IndexBackend: r.IndexBackend,
		Embedder:     r.Embedder,
	}
}

// ManifestStore keeps manifest.json inside each document directory.
type ManifestStore struct {
	content *ContentStore
}

// NewManifestStore creates a manifest store over the content layout.
func NewManifestStore(content *ContentStore) *ManifestStore {
	return &ManifestStore{content: content}
}

func (s *ManifestStore) path(id string) string {
	return filepath.Join(s.content.DocDir(id), ManifestName)
}

// Load reads manifest.json. Missing and corrupt files are reported as absent.
func (s *ManifestStore) Load(_ context.Context, id string) (*domain.Manifest, bool) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warnw("unreadable manifest", "doc", id, "err", err)
		}
		return nil, false
	}
	var rec manifestRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		logger.Warnw("corrupt manifest", "doc", id, "err", err)
		return nil, false
	}
	if rec.DocID != id {
		logger.Warnw("manifest id mismatch", "doc", id, "found", rec.DocID)
		return nil, false
	}
	return rec.toDomain(), true
}

// Save atomically replaces manifest.json.
func (s *ManifestStore) Save(ctx context.Context, m *domain.Manifest) error {
	if err := s.content.EnsureDocDir(ctx, m.DocID); err != nil {
		return err
	}
	data, err := json.MarshalIndent(toRecord(m), "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := writeAtomic(s.path(m.DocID), data, 0o644); err != nil {
		return fmt.Errorf("save manifest: %w", err)
	}
	return nil
}

// List returns every readable manifest ordered by DocID.
func (s *ManifestStore) List(ctx context.Context) ([]*domain.Manifest, error) {
	ids, err := s.content.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Manifest, 0, len(ids))
	for _, id := range ids {
		if m, ok := s.Load(ctx, id); ok {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DocID < out[j].DocID })
	return out, nil
}

// Close is a no-op.
func (s *ManifestStore) Close() error {
	return nil
}
