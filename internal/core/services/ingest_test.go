package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pagelens/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/pagelens/internal/core/domain"
)

func TestNewPipeline_RequiresPorts(t *testing.T) {
	_, err := NewPipeline(Ports{}, domain.DefaultLimits())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content store is required")
	assert.Contains(t, err.Error(), "page counter is required")
}

func TestIngest_NewDocument(t *testing.T) {
	h := newHarness(t)
	data := pdfBytes(3, "alpha")
	id := domain.IdentityOf(data)

	res, err := h.ingest.Ingest(context.Background(), data, "alpha.pdf")
	require.NoError(t, err)
	assert.Equal(t, &domain.IngestResult{DocID: id.ID, NumPages: 3, IsNew: true}, res)

	assert.Equal(t, 3, h.index.Count())
	assert.Equal(t, 3, h.index.CountDocument(id.ID))
	assert.Equal(t, int32(domain.DPICap), h.raster.lastDPI.Load())
	assert.FileExists(t, h.content.OriginalPath(id.ID))
	assert.FileExists(t, filepath.Join(h.content.PagesDir(id.ID), "page_0003.png"))

	m := h.manifest(t, id.ID)
	assert.True(t, m.Indexed)
	assert.Equal(t, 3, m.NumPages)
	assert.Equal(t, "alpha.pdf", m.Filename)
	assert.Equal(t, id.SHA256, m.SHA256)
	assert.Equal(t, "flat", m.IndexBackend)
	assert.Equal(t, "fake-clip", m.Embedder)
	require.NotNil(t, m.IndexedAt)

	// The index was persisted.
	reloaded := flat.New(h.index.Dir())
	require.NoError(t, reloaded.Load(context.Background()))
	assert.Equal(t, 3, reloaded.Count())
}

func TestIngest_DuplicateIsNoop(t *testing.T) {
	h := newHarness(t)
	first := h.mustIngest(t, 2, "alpha")

	second, err := h.ingest.Ingest(context.Background(), pdfBytes(2, "alpha"), "renamed.pdf")
	require.NoError(t, err)
	assert.False(t, second.IsNew)
	assert.Equal(t, first.DocID, second.DocID)
	assert.Equal(t, 2, second.NumPages)

	assert.Equal(t, 2, h.index.Count())
	assert.Equal(t, int32(1), h.raster.renders.Load())
	assert.Equal(t, "alpha.pdf", h.manifest(t, first.DocID).Filename)
}

func TestIngest_EmptyUpload(t *testing.T) {
	h := newHarness(t)
	_, err := h.ingest.Ingest(context.Background(), nil, "x.pdf")
	require.Error(t, err)

	var ingestErr *domain.IngestError
	require.True(t, errors.As(err, &ingestErr))
	assert.Equal(t, domain.StageIdentify, ingestErr.Stage)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestIngestService_Limits(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, testLimits(), h.ingest.Limits())
}

func TestIngest_TooLarge(t *testing.T) {
	h := newHarness(t)
	_, err := h.ingest.Ingest(context.Background(), make([]byte, testLimits().MaxUploadBytes+1), "big.pdf")
	require.Error(t, err)

	var policy *domain.PolicyError
	require.True(t, errors.As(err, &policy))
	assert.True(t, errors.Is(err, domain.ErrPolicyRejected))
	assert.Contains(t, policy.Reason, "too large")

	docs, err := h.content.ListDocuments(context.Background())
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestIngest_TooManyPages(t *testing.T) {
	h := newHarness(t)
	data := pdfBytes(testLimits().MaxPages+1, "huge")

	_, err := h.ingest.Ingest(context.Background(), data, "huge.pdf")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrPolicyRejected))

	assert.Equal(t, 0, h.index.Count())
	assert.Equal(t, int32(0), h.raster.renders.Load())
	m := h.manifest(t, domain.IdentityOf(data).ID)
	assert.False(t, m.Indexed)
}

func TestIngest_NotAPDF(t *testing.T) {
	h := newHarness(t)
	_, err := h.ingest.Ingest(context.Background(), []byte("hello"), "notes.pdf")
	require.Error(t, err)

	var ingestErr *domain.IngestError
	require.True(t, errors.As(err, &ingestErr))
	assert.Equal(t, domain.StageCount, ingestErr.Stage)
	assert.NotEmpty(t, ingestErr.DocID)
}

func TestIngest_EmbedFailureThenResume(t *testing.T) {
	h := newHarness(t)
	h.embedder.fail(errBoom)

	_, err := h.ingest.Ingest(context.Background(), pdfBytes(3, "alpha"), "alpha.pdf")
	require.Error(t, err)
	var ingestErr *domain.IngestError
	require.True(t, errors.As(err, &ingestErr))
	assert.Equal(t, domain.StageEmbed, ingestErr.Stage)
	assert.True(t, errors.Is(err, errBoom))

	assert.Equal(t, 0, h.index.Count())
	assert.False(t, h.manifest(t, ingestErr.DocID).Indexed)

	h.embedder.fail(nil)
	res, err := h.ingest.Ingest(context.Background(), pdfBytes(3, "alpha"), "alpha.pdf")
	require.NoError(t, err)
	assert.True(t, res.IsNew)
	assert.Equal(t, 3, h.index.Count())
	// Pages rendered by the failed attempt are reused.
	assert.Equal(t, int32(1), h.raster.renders.Load())
}

func TestIngest_RerendersPartialPages(t *testing.T) {
	h := newHarness(t)
	data := pdfBytes(3, "alpha")
	id := domain.IdentityOf(data).ID

	require.NoError(t, os.MkdirAll(h.content.PagesDir(id), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(h.content.PagesDir(id), domain.PageFileName(1)), []byte("stale"), 0o644))

	res, err := h.ingest.Ingest(context.Background(), data, "alpha.pdf")
	require.NoError(t, err)
	assert.Equal(t, 3, res.NumPages)
	assert.Equal(t, int32(1), h.raster.renders.Load())

	pages, err := h.content.ListPages(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, pages, 3)
	got, err := os.ReadFile(pages[0])
	require.NoError(t, err)
	assert.Equal(t, "alpha:1", string(got))
}

func TestIngest_IndexSaveFailureRollsBack(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	h := newHarnessWithIndex(t, flat.New(blocker))

	_, err := h.ingest.Ingest(context.Background(), pdfBytes(2, "alpha"), "alpha.pdf")
	require.Error(t, err)
	var ingestErr *domain.IngestError
	require.True(t, errors.As(err, &ingestErr))
	assert.Equal(t, domain.StageIndex, ingestErr.Stage)

	assert.Equal(t, 0, h.index.Count())
	assert.False(t, h.manifest(t, ingestErr.DocID).Indexed)
}

func TestIngest_ConcurrentSameDocument(t *testing.T) {
	h := newHarness(t)
	data := pdfBytes(4, "alpha")

	const workers = 8
	var wg sync.WaitGroup
	results := make([]*domain.IngestResult, workers)
	errs := make([]error, workers)
	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = h.ingest.Ingest(context.Background(), data, "alpha.pdf")
		}(i)
	}
	wg.Wait()

	fresh := 0
	for i := range workers {
		require.NoError(t, errs[i])
		assert.Equal(t, 4, results[i].NumPages)
		if results[i].IsNew {
			fresh++
		}
	}
	assert.Equal(t, 1, fresh)
	assert.Equal(t, 4, h.index.Count())
	assert.Equal(t, 0, h.pipeline.docs.size())
}

func TestIngest_ConcurrentDistinctDocuments(t *testing.T) {
	h := newHarness(t)
	tags := []string{"alpha", "beta", "gamma", "delta"}

	var wg sync.WaitGroup
	for _, tag := range tags {
		wg.Add(1)
		go func(tag string) {
			defer wg.Done()
			_, err := h.ingest.Ingest(context.Background(), pdfBytes(2, tag), tag+".pdf")
			assert.NoError(t, err)
		}(tag)
	}
	wg.Wait()

	assert.Equal(t, 8, h.index.Count())
	for _, tag := range tags {
		assert.Equal(t, 2, h.index.CountDocument(domain.IdentityOf(pdfBytes(2, tag)).ID))
	}
}

func TestIngest_ManifestWithoutIndexEntriesIsReindexed(t *testing.T) {
	h := newHarness(t)
	res := h.mustIngest(t, 2, "alpha")

	// A clear keeps pages on disk, so re-ingest only re-embeds.
	require.NoError(t, h.maintenance.ClearIndex(context.Background()))
	again, err := h.ingest.Ingest(context.Background(), pdfBytes(2, "alpha"), "alpha.pdf")
	require.NoError(t, err)
	assert.True(t, again.IsNew)
	assert.Equal(t, res.DocID, again.DocID)
	assert.Equal(t, 2, h.index.Count())
	assert.Equal(t, int32(1), h.raster.renders.Load())
}
