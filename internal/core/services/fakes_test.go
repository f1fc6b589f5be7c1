package services

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pagelens/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/pagelens/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pagelens/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
)

// Test PDFs are plain text of the form "%PDF pages=N tag=T". The fakes read
// the page count and tag from it, and each rendered page holds "T:page".
var fakePDF = regexp.MustCompile(`pages=(\d+) tag=(\w+)`)

func pdfBytes(pages int, tag string) []byte {
	return []byte(fmt.Sprintf("%%PDF pages=%d tag=%s", pages, tag))
}

func parseFakePDF(path string) (int, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, "", err
	}
	m := fakePDF.FindSubmatch(data)
	if m == nil {
		return 0, "", fmt.Errorf("%w: not a test pdf", domain.ErrInvalidInput)
	}
	n, _ := strconv.Atoi(string(m[1]))
	return n, string(m[2]), nil
}

type fakeCounter struct{}

func (fakeCounter) PageCount(_ context.Context, path string) (int, error) {
	n, _, err := parseFakePDF(path)
	return n, err
}

type fakeRasterizer struct {
	renders atomic.Int32
	lastDPI atomic.Int32
}

func (r *fakeRasterizer) Render(_ context.Context, pdfPath, outDir string, dpi int) ([]string, error) {
	r.renders.Add(1)
	r.lastDPI.Store(int32(dpi))
	n, tag, err := parseFakePDF(pdfPath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}
	pages := make([]string, n)
	for i := range pages {
		pages[i] = filepath.Join(outDir, domain.PageFileName(i+1))
		if err := os.WriteFile(pages[i], []byte(fmt.Sprintf("%s:%d", tag, i+1)), 0o644); err != nil {
			return nil, err
		}
	}
	return pages, nil
}

// fakeEmbedder maps content to a unit vector derived from its hash, so a
// query equal to a page's content scores 1 against that page.
type fakeEmbedder struct {
	mu        sync.Mutex
	failWith  error
	textCalls atomic.Int32
}

const fakeDim = 8

func hashVector(s string) []float32 {
	sum := sha256.Sum256([]byte(s))
	v := make([]float32, fakeDim)
	for i := range v {
		v[i] = float32(int(sum[i])-128) + 0.5
	}
	return domain.Normalize(v)
}

func (e *fakeEmbedder) fail(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failWith = err
}

func (e *fakeEmbedder) err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.failWith
}

func (e *fakeEmbedder) EmbedImages(_ context.Context, paths []string) ([][]float32, error) {
	if err := e.err(); err != nil {
		return nil, err
	}
	out := make([][]float32, len(paths))
	for i, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		out[i] = hashVector(string(data))
	}
	return out, nil
}

func (e *fakeEmbedder) EmbedText(_ context.Context, text string) ([]float32, error) {
	e.textCalls.Add(1)
	if err := e.err(); err != nil {
		return nil, err
	}
	return hashVector(text), nil
}

func (e *fakeEmbedder) ModelName() string          { return "fake-clip" }
func (e *fakeEmbedder) Ping(context.Context) error { return nil }
func (e *fakeEmbedder) Close() error               { return nil }

type fakeAnswerer struct {
	mu       sync.Mutex
	question string
	paths    []string
	failWith error
}

func (a *fakeAnswerer) Answer(_ context.Context, question string, paths []string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failWith != nil {
		return "", a.failWith
	}
	a.question = question
	a.paths = append([]string(nil), paths...)
	return fmt.Sprintf("answer to %q from %d pages", question, len(paths)), nil
}

func (a *fakeAnswerer) ModelName() string          { return "fake-vlm" }
func (a *fakeAnswerer) Ping(context.Context) error { return nil }
func (a *fakeAnswerer) Close() error               { return nil }

// harness wires a Pipeline over real file, memory and flat adapters with fake models.
type harness struct {
	root      string
	content   *file.ContentStore
	manifests *memory.ManifestStore
	index     *flat.Index
	raster    *fakeRasterizer
	embedder  *fakeEmbedder
	answerer  *fakeAnswerer
	pipeline  *Pipeline

	ingest      *IngestService
	answer      *AnswerService
	maintenance *MaintenanceService
	stats       *StatsService
	documents   *DocumentService
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testLimits() domain.Limits {
	return domain.Limits{MaxUploadBytes: 1 << 10, MaxPages: 5, MaxDPI: 300}
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithIndex(t, nil)
}

func newHarnessWithIndex(t *testing.T, index *flat.Index) *harness {
	t.Helper()
	root := t.TempDir()
	content, err := file.NewContentStore(root)
	require.NoError(t, err)
	if index == nil {
		index = flat.New(filepath.Join(root, "index"))
	}

	h := &harness{
		root:      root,
		content:   content,
		manifests: memory.NewManifestStore(),
		index:     index,
		raster:    &fakeRasterizer{},
		embedder:  &fakeEmbedder{},
		answerer:  &fakeAnswerer{},
	}
	h.pipeline, err = NewPipeline(Ports{
		Content:    h.content,
		Manifests:  h.manifests,
		Index:      h.index,
		Embedder:   h.embedder,
		Answerer:   h.answerer,
		Rasterizer: h.raster,
		Counter:    fakeCounter{},
	}, testLimits())
	require.NoError(t, err)
	h.pipeline.now = func() time.Time { return fixedNow }

	h.ingest = NewIngestService(h.pipeline)
	h.answer = NewAnswerService(h.pipeline)
	h.maintenance = NewMaintenanceService(h.pipeline)
	h.stats = NewStatsService(h.pipeline)
	h.documents = NewDocumentService(h.pipeline)
	return h
}

func (h *harness) mustIngest(t *testing.T, pages int, tag string) *domain.IngestResult {
	t.Helper()
	res, err := h.ingest.Ingest(context.Background(), pdfBytes(pages, tag), tag+".pdf")
	require.NoError(t, err)
	return res
}

func (h *harness) manifest(t *testing.T, id string) *domain.Manifest {
	t.Helper()
	m, ok := h.manifests.Load(context.Background(), id)
	require.True(t, ok, "manifest %s missing", id)
	return m
}

var errBoom = errors.New("boom")

var (
	_ driven.PageCounter  = fakeCounter{}
	_ driven.Rasterizer   = (*fakeRasterizer)(nil)
	_ driven.PageEmbedder = (*fakeEmbedder)(nil)
	_ driven.Answerer     = (*fakeAnswerer)(nil)
)
