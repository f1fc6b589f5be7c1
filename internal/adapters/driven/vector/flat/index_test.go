package flat

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pagelens/internal/core/domain"
)

func ref(doc string, page int) domain.PageRef {
	return domain.PageRef{DocID: doc, PageNum: page, ImagePath: filepath.Join(doc, domain.PageFileName(page))}
}

func TestIndex_AddFixesDimension(t *testing.T) {
	ctx := context.Background()
	x := New(t.TempDir())

	require.NoError(t, x.Add(ctx, [][]float32{{1, 0, 0}, {0, 1, 0}}, []domain.PageRef{ref("a", 1), ref("a", 2)}))
	assert.Equal(t, 2, x.Count())
	assert.Equal(t, 3, x.Dimensions())

	err := x.Add(ctx, [][]float32{{1, 0}}, []domain.PageRef{ref("b", 1)})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 2, x.Count())
}

func TestIndex_AddRejectsWithoutMutation(t *testing.T) {
	ctx := context.Background()
	x := New(t.TempDir())

	err := x.Add(ctx, [][]float32{{1, 0}}, []domain.PageRef{ref("a", 1), ref("a", 2)})
	assert.ErrorIs(t, err, domain.ErrCountMismatch)

	err = x.Add(ctx, [][]float32{{1, 0}, {1, 0, 0}}, []domain.PageRef{ref("a", 1), ref("a", 2)})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	assert.Equal(t, 0, x.Count())
	assert.Equal(t, 0, x.Dimensions())
}

func TestIndex_SearchOrdering(t *testing.T) {
	ctx := context.Background()
	x := New(t.TempDir())

	vectors := [][]float32{
		domain.Normalize([]float32{1, 0}),
		domain.Normalize([]float32{0, 1}),
		domain.Normalize([]float32{1, 1}),
		domain.Normalize([]float32{0, 1}),
	}
	refs := []domain.PageRef{ref("a", 1), ref("a", 2), ref("b", 1), ref("b", 2)}
	require.NoError(t, x.Add(ctx, vectors, refs))

	hits, err := x.Search(ctx, []float32{0, 1}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	// Ties keep insertion order.
	assert.Equal(t, ref("a", 2), hits[0].Ref)
	assert.Equal(t, ref("b", 2), hits[1].Ref)
	assert.Equal(t, ref("b", 1), hits[2].Ref)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
	assert.InDelta(t, 0.7071, hits[2].Score, 1e-4)
}

func TestIndex_SearchKLargerThanCount(t *testing.T) {
	ctx := context.Background()
	x := New(t.TempDir())
	require.NoError(t, x.Add(ctx, [][]float32{{1, 0}, {0, 1}}, []domain.PageRef{ref("a", 1), ref("a", 2)}))

	hits, err := x.Search(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestIndex_SearchErrors(t *testing.T) {
	ctx := context.Background()
	x := New(t.TempDir())

	_, err := x.Search(ctx, []float32{1, 0}, 1)
	assert.ErrorIs(t, err, domain.ErrEmptyIndex)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, x.Add(ctx, [][]float32{{1, 0}}, []domain.PageRef{ref("a", 1)}))

	_, err = x.Search(ctx, []float32{1, 0}, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = x.Search(ctx, []float32{1, 0, 0}, 1)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestIndex_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	x := New(dir)
	vectors := [][]float32{{0.6, 0.8}, {0.8, -0.6}, {0, 1}}
	refs := []domain.PageRef{ref("a", 1), ref("a", 2), ref("b", 1)}
	require.NoError(t, x.Add(ctx, vectors, refs))
	require.NoError(t, x.Save(ctx))

	before, err := x.Search(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)

	y := New(dir)
	require.NoError(t, y.Load(ctx))
	assert.Equal(t, 3, y.Count())
	assert.Equal(t, 2, y.Dimensions())

	after, err := y.Search(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "temp files must not be left behind")
}

func TestIndex_LoadMissingIsEmpty(t *testing.T) {
	x := New(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, x.Load(context.Background()))
	assert.Equal(t, 0, x.Count())
}

func TestIndex_LoadCorruptIsEmpty(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	x := New(dir)
	require.NoError(t, x.Add(ctx, [][]float32{{1, 0}, {0, 1}}, []domain.PageRef{ref("a", 1), ref("a", 2)}))
	require.NoError(t, x.Save(ctx))

	t.Run("count disagreement", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, MetaFile),
			[]byte(`{"version":1,"dim":2,"refs":[{"doc_id":"a","page_num":1,"image_path":"p"}]}`), 0o644))
		y := New(dir)
		require.NoError(t, y.Load(ctx))
		assert.Equal(t, 0, y.Count())
	})

	t.Run("garbage vectors", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, VectorsFile), []byte("garbage"), 0o644))
		y := New(dir)
		require.NoError(t, y.Load(ctx))
		assert.Equal(t, 0, y.Count())
	})
}

func TestIndex_TruncateAndCountDocument(t *testing.T) {
	ctx := context.Background()
	x := New(t.TempDir())
	require.NoError(t, x.Add(ctx, [][]float32{{1, 0}, {0, 1}}, []domain.PageRef{ref("a", 1), ref("a", 2)}))
	require.NoError(t, x.Add(ctx, [][]float32{{1, 1}}, []domain.PageRef{ref("b", 1)}))

	assert.Equal(t, 2, x.CountDocument("a"))
	assert.Equal(t, 1, x.CountDocument("b"))

	x.Truncate(2)
	assert.Equal(t, 2, x.Count())
	assert.Equal(t, 0, x.CountDocument("b"))

	x.Truncate(5)
	assert.Equal(t, 2, x.Count())

	x.Truncate(0)
	assert.Equal(t, 0, x.Count())
	assert.Equal(t, 0, x.Dimensions())

	// Dimension is free again after a full truncate.
	require.NoError(t, x.Add(ctx, [][]float32{{1, 0, 0}}, []domain.PageRef{ref("c", 1)}))
	assert.Equal(t, 3, x.Dimensions())
}

func TestIndex_ResetRemovesFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	x := New(dir)
	require.NoError(t, x.Add(ctx, [][]float32{{1, 0}}, []domain.PageRef{ref("a", 1)}))
	require.NoError(t, x.Save(ctx))

	require.NoError(t, x.Reset(ctx))
	assert.Equal(t, 0, x.Count())
	assert.NoFileExists(t, filepath.Join(dir, VectorsFile))
	assert.NoFileExists(t, filepath.Join(dir, MetaFile))

	// Resetting twice is fine.
	require.NoError(t, x.Reset(ctx))
	assert.Equal(t, "flat", x.Backend())
	assert.Equal(t, "flat-ip", x.Type())
}
