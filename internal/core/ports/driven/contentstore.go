package driven

import "context"

// ContentStore owns the per-document on-disk layout: the original bytes
// and the rendered page images. It performs no locking.
type ContentStore interface {
	// Root returns the data directory.
	Root() string

	// DocDir returns the directory of a document.
	DocDir(id string) string

	// PagesDir returns the page image directory of a document.
	PagesDir(id string) string

	// OriginalPath returns the path of the stored original PDF.
	OriginalPath(id string) string

	// EnsureDocDir creates the document directory. Idempotent.
	EnsureDocDir(ctx context.Context, id string) error

	// WriteOriginal stores data unless the original already exists.
	// Reports whether it wrote.
	WriteOriginal(ctx context.Context, id string, data []byte) (bool, error)

	// HasOriginal reports whether the original PDF exists.
	HasOriginal(id string) bool

	// ReadOriginal returns the stored original bytes.
	ReadOriginal(ctx context.Context, id string) ([]byte, error)

	// ListPages returns the rendered page images in page order.
	ListPages(ctx context.Context, id string) ([]string, error)

	// ClearPages removes every rendered page image of a document.
	ClearPages(ctx context.Context, id string) error

	// ListDocuments returns every document directory name, sorted.
	ListDocuments(ctx context.Context) ([]string, error)

	// PageImage returns the path of one rendered page, or domain.ErrNotFound.
	PageImage(ctx context.Context, id string, page int) (string, error)
}
