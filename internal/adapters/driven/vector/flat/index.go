package flat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
	"github.com/custodia-labs/pagelens/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// File names inside the index directory.
const (
	VectorsFile = "pages.vec"
	MetaFile    = "pages.meta.json"
)

const (
	backendName = "flat"
	indexType   = "flat-ip"
	metaVersion = 1
)

// meta is the on-disk form of the reference list.
type meta struct {
	Version int              `json:"version"`
	Dim     int              `json:"dim"`
	Refs    []domain.PageRef `json:"refs"`
}

// Index is an in-memory exact inner-product index persisted under dir.
type Index struct {
	mu   sync.RWMutex
	dir  string
	dim  int
	data []float32 // row-major, len == len(refs)*dim
	refs []domain.PageRef
}

// New creates an empty index persisted under dir. Call Load to restore.
func New(dir string) *Index {
	return &Index{dir: dir}
}

// Dir returns the persistence directory.
func (x *Index) Dir() string {
	return x.dir
}

// Add appends vectors with their references.
func (x *Index) Add(_ context.Context, vectors [][]float32, refs []domain.PageRef) error {
	if len(vectors) != len(refs) {
		return fmt.Errorf("%w: %d vectors, %d refs", domain.ErrCountMismatch, len(vectors), len(refs))
	}
	if len(vectors) == 0 {
		return nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	dim := x.dim
	if dim == 0 {
		dim = len(vectors[0])
	}
	if dim == 0 {
		return fmt.Errorf("%w: zero-length vector", domain.ErrInvalidInput)
	}
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("%w: vector %d has %d dims, want %d", domain.ErrDimensionMismatch, i, len(v), dim)
		}
	}

	for _, v := range vectors {
		x.data = append(x.data, v...)
	}
	x.refs = append(x.refs, refs...)
	x.dim = dim
	return nil
}

// Search returns the top min(k, Count()) hits by descending inner product.
func (x *Index) Search(_ context.Context, query []float32, k int) ([]domain.Hit, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be >= 1", domain.ErrInvalidInput)
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	n := len(x.refs)
	if n == 0 {
		return nil, domain.ErrEmptyIndex
	}
	if len(query) != x.dim {
		return nil, fmt.Errorf("%w: query has %d dims, index %d", domain.ErrDimensionMismatch, len(query), x.dim)
	}

	hits := make([]domain.Hit, n)
	for i := 0; i < n; i++ {
		hits[i] = domain.Hit{
			Ref:   x.refs[i],
			Score: domain.Dot(query, x.data[i*x.dim:(i+1)*x.dim]),
		}
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].Score > hits[b].Score })

	if k > n {
		k = n
	}
	return hits[:k:k], nil
}

// Save writes both files through temp files and renames.
func (x *Index) Save(_ context.Context) error {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if err := os.MkdirAll(x.dir, 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}

	var vec bytes.Buffer
	if err := writeVectors(&vec, x.data, len(x.refs), x.dim); err != nil {
		return err
	}
	refs := x.refs
	if refs == nil {
		refs = []domain.PageRef{}
	}
	metaBytes, err := json.Marshal(meta{Version: metaVersion, Dim: x.dim, Refs: refs})
	if err != nil {
		return fmt.Errorf("encode refs: %w", err)
	}

	vecTmp, err := writeTemp(x.dir, VectorsFile, vec.Bytes())
	if err != nil {
		return err
	}
	metaTmp, err := writeTemp(x.dir, MetaFile, metaBytes)
	if err != nil {
		_ = os.Remove(vecTmp)
		return err
	}
	if err := os.Rename(vecTmp, filepath.Join(x.dir, VectorsFile)); err != nil {
		_ = os.Remove(vecTmp)
		_ = os.Remove(metaTmp)
		return fmt.Errorf("commit vectors: %w", err)
	}
	if err := os.Rename(metaTmp, filepath.Join(x.dir, MetaFile)); err != nil {
		_ = os.Remove(metaTmp)
		return fmt.Errorf("commit refs: %w", err)
	}
	return nil
}

// Load replaces the in-memory state with the persisted files. Missing,
// undecodable or disagreeing files load as an empty index.
func (x *Index) Load(_ context.Context) error {
	data, refs, dim, err := x.read()

	x.mu.Lock()
	defer x.mu.Unlock()
	x.data, x.refs, x.dim = nil, nil, 0

	switch {
	case err == nil:
		x.data, x.refs, x.dim = data, refs, dim
		logger.Debug("Loaded index: %d vectors (dim %d)", len(refs), dim)
	case errors.Is(err, os.ErrNotExist):
		logger.Debug("No persisted index in %s", x.dir)
	default:
		logger.Warnw("discarding unreadable index", "dir", x.dir, "err", err)
	}
	return nil
}

func (x *Index) read() ([]float32, []domain.PageRef, int, error) {
	f, err := os.Open(filepath.Join(x.dir, VectorsFile))
	if err != nil {
		return nil, nil, 0, err
	}
	defer f.Close()

	data, count, dim, err := readVectors(f)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("decode vectors: %w", err)
	}

	raw, err := os.ReadFile(filepath.Join(x.dir, MetaFile))
	if err != nil {
		return nil, nil, 0, err
	}
	var m meta
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, 0, fmt.Errorf("decode refs: %w", err)
	}
	if len(m.Refs) != count {
		return nil, nil, 0, fmt.Errorf("%w: %d vectors, %d refs", domain.ErrCountMismatch, count, len(m.Refs))
	}
	if count > 0 && m.Dim != dim {
		return nil, nil, 0, fmt.Errorf("%w: header %d, meta %d", domain.ErrDimensionMismatch, dim, m.Dim)
	}
	if count == 0 {
		return nil, nil, 0, nil
	}
	return data, m.Refs, dim, nil
}

// Reset empties the index and removes the persisted files.
func (x *Index) Reset(_ context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.data, x.refs, x.dim = nil, nil, 0

	var errs []error
	for _, name := range []string{VectorsFile, MetaFile} {
		if err := os.Remove(filepath.Join(x.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Truncate drops every entry at position n and beyond.
func (x *Index) Truncate(n int) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if n < 0 {
		n = 0
	}
	if n >= len(x.refs) {
		return
	}
	x.refs = x.refs[:n]
	x.data = x.data[:n*x.dim]
	if n == 0 {
		x.dim = 0
		x.refs, x.data = nil, nil
	}
}

// CountDocument returns the number of entries referencing docID.
func (x *Index) CountDocument(docID string) int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	n := 0
	for _, r := range x.refs {
		if r.DocID == docID {
			n++
		}
	}
	return n
}

// Count returns the number of entries.
func (x *Index) Count() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.refs)
}

// Dimensions returns the fixed dimension, 0 when empty.
func (x *Index) Dimensions() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.dim
}

// Backend returns "flat".
func (x *Index) Backend() string {
	return backendName
}

// Type returns "flat-ip".
func (x *Index) Type() string {
	return indexType
}

func writeTemp(dir, name string, data []byte) (string, error) {
	f, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp %s: %w", name, err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return "", fmt.Errorf("sync %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	return tmp, nil
}
