package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
)

// Ensure ContentStore implements the interface.
var _ driven.ContentStore = (*ContentStore)(nil)

// File and directory names of the document layout.
const (
	DocsDir      = "docs"
	PagesDirName = "pages"
	OriginalName = "original.pdf"
	ManifestName = "manifest.json"
)

// ContentStore lays documents out under root/docs.
type ContentStore struct {
	root string
}

// NewContentStore creates a content store rooted at root, creating
// root/docs if needed.
func NewContentStore(root string) (*ContentStore, error) {
	if err := os.MkdirAll(filepath.Join(root, DocsDir), 0o755); err != nil {
		return nil, fmt.Errorf("create docs dir: %w", err)
	}
	return &ContentStore{root: root}, nil
}

// Root returns the data directory.
func (s *ContentStore) Root() string {
	return s.root
}

// DocDir returns root/docs/<id>.
func (s *ContentStore) DocDir(id string) string {
	return filepath.Join(s.root, DocsDir, id)
}

// PagesDir returns root/docs/<id>/pages.
func (s *ContentStore) PagesDir(id string) string {
	return filepath.Join(s.DocDir(id), PagesDirName)
}

// OriginalPath returns root/docs/<id>/original.pdf.
func (s *ContentStore) OriginalPath(id string) string {
	return filepath.Join(s.DocDir(id), OriginalName)
}

// EnsureDocDir creates the document directory.
func (s *ContentStore) EnsureDocDir(_ context.Context, id string) error {
	if err := os.MkdirAll(s.DocDir(id), 0o755); err != nil {
		return fmt.Errorf("create doc dir: %w", err)
	}
	return nil
}

// WriteOriginal stores data as original.pdf unless it already exists.
func (s *ContentStore) WriteOriginal(_ context.Context, id string, data []byte) (bool, error) {
	if s.HasOriginal(id) {
		return false, nil
	}
	if err := writeAtomic(s.OriginalPath(id), data, 0o644); err != nil {
		return false, fmt.Errorf("write original: %w", err)
	}
	return true, nil
}

// HasOriginal reports whether original.pdf exists.
func (s *ContentStore) HasOriginal(id string) bool {
	info, err := os.Stat(s.OriginalPath(id))
	return err == nil && info.Mode().IsRegular()
}

// ReadOriginal returns the stored original bytes.
func (s *ContentStore) ReadOriginal(_ context.Context, id string) ([]byte, error) {
	data, err := os.ReadFile(s.OriginalPath(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("original %s: %w", id, domain.ErrNotFound)
	}
	return data, err
}

// ListPages returns page_NNNN.png files in page order.
func (s *ContentStore) ListPages(_ context.Context, id string) ([]string, error) {
	entries, err := os.ReadDir(s.PagesDir(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read pages dir: %w", err)
	}

	var pages []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "page_") || !strings.HasSuffix(name, ".png") {
			continue
		}
		pages = append(pages, filepath.Join(s.PagesDir(id), name))
	}
	// Zero padding makes lexical order page order.
	sort.Strings(pages)
	return pages, nil
}

// ClearPages removes the pages directory.
func (s *ContentStore) ClearPages(_ context.Context, id string) error {
	if err := os.RemoveAll(s.PagesDir(id)); err != nil {
		return fmt.Errorf("clear pages: %w", err)
	}
	return nil
}

// ListDocuments returns document directory names, sorted.
func (s *ContentStore) ListDocuments(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, DocsDir))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read docs dir: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			ids = append(ids, e.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// PageImage returns the path of one rendered page.
func (s *ContentStore) PageImage(_ context.Context, id string, page int) (string, error) {
	path := filepath.Join(s.PagesDir(id), domain.PageFileName(page))
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("page %d of %s: %w", page, id, domain.ErrNotFound)
		}
		return "", err
	}
	return path, nil
}
