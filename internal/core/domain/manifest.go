package domain

import "time"

// Manifest is the durable per-document ingestion record.
// It is the single source of truth for whether a document is fully indexed.
type Manifest struct {
	// DocID is the document's Identity.ID.
	DocID string

	// Filename is the most recent upload name for these bytes.
	Filename string

	// NumPages is the rendered page count.
	NumPages int

	// Indexed is true only after every page vector was durably persisted.
	Indexed bool

	// CreatedAt is when the document was first seen.
	CreatedAt time.Time

	// IndexedAt is when the document was last indexed, nil when not indexed.
	IndexedAt *time.Time

	// SHA256 is the full content hash.
	SHA256 string

	// IndexBackend tags the vector index implementation that holds the pages.
	IndexBackend string

	// Embedder tags the embedding model that produced the vectors.
	Embedder string
}

// NewManifest creates an unindexed manifest for a freshly identified document.
func NewManifest(id Identity, filename string, now time.Time) *Manifest {
	return &Manifest{
		DocID:     id.ID,
		Filename:  filename,
		SHA256:    id.SHA256,
		CreatedAt: now.UTC(),
	}
}

// MarkIndexed flips the manifest to indexed.
func (m *Manifest) MarkIndexed(pages int, backend, embedder string, now time.Time) {
	at := now.UTC()
	m.NumPages = pages
	m.Indexed = true
	m.IndexedAt = &at
	m.IndexBackend = backend
	m.Embedder = embedder
}

// MarkUnindexed clears the indexed flag and timestamp. Page count and tags are kept.
func (m *Manifest) MarkUnindexed() {
	m.Indexed = false
	m.IndexedAt = nil
}
