package driven

import (
	"context"

	"github.com/custodia-labs/pagelens/internal/core/domain"
)

// VectorIndex is an ordered collection of (unit vector, page reference) pairs
// searched exhaustively by inner product. Position i of the vectors always
// corresponds to reference i.
type VectorIndex interface {
	// Add appends vectors and their references. Nothing is mutated when the
	// counts differ or any vector disagrees with the index dimension.
	// The first add on an empty index fixes the dimension. Add does not persist.
	Add(ctx context.Context, vectors [][]float32, refs []domain.PageRef) error

	// Search returns the top min(k, Count()) hits by descending score,
	// ties in insertion order. Returns domain.ErrEmptyIndex when empty.
	Search(ctx context.Context, query []float32, k int) ([]domain.Hit, error)

	// Save persists vectors and references as one unit.
	Save(ctx context.Context) error

	// Load replaces the in-memory state with the persisted one.
	// Missing or corrupt files load as an empty index.
	Load(ctx context.Context) error

	// Reset empties the index and deletes the persisted files.
	Reset(ctx context.Context) error

	// Truncate drops every entry at position n and beyond.
	Truncate(n int)

	// CountDocument returns the number of entries referencing docID.
	CountDocument(docID string) int

	// Count returns the number of entries.
	Count() int

	// Dimensions returns the fixed dimension, 0 when empty.
	Dimensions() int

	// Backend tags the implementation (e.g. "flat").
	Backend() string

	// Type tags the similarity metric and layout (e.g. "flat-ip").
	Type() string
}
