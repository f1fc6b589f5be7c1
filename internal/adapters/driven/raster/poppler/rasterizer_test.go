package poppler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pagelens/internal/core/domain"
)

// mockRunner is a test double for CommandRunner. For pdftoppm it creates
// the page files pdftoppm would write.
type mockRunner struct {
	pages  int
	output []byte
	err    error
	calls  [][]string
}

func (m *mockRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	m.calls = append(m.calls, append([]string{name}, args...))
	if m.err != nil {
		return m.output, m.err
	}
	if filepath.Base(name) == "pdftoppm" {
		prefix := args[len(args)-1]
		for i := 1; i <= m.pages; i++ {
			// pdftoppm pads page numbers to the width of the page count.
			name := fmt.Sprintf("%s-%0*d.png", prefix, len(fmt.Sprint(m.pages)), i)
			if err := os.WriteFile(name, []byte("png"), 0o644); err != nil {
				return nil, err
			}
		}
	}
	return m.output, nil
}

func TestRender_RenamesPages(t *testing.T) {
	runner := &mockRunner{pages: 12}
	r := NewWithRunner(runner, "pdftoppm")
	outDir := filepath.Join(t.TempDir(), "doc", "pages")

	pages, err := r.Render(context.Background(), "/in/original.pdf", outDir, 150)
	require.NoError(t, err)
	require.Len(t, pages, 12)
	assert.Equal(t, filepath.Join(outDir, "page_0001.png"), pages[0])
	assert.Equal(t, filepath.Join(outDir, "page_0012.png"), pages[11])
	for _, p := range pages {
		assert.FileExists(t, p)
	}

	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{"pdftoppm", "-png", "-r", "150", "/in/original.pdf"}, runner.calls[0][:5])

	// No temp directories are left next to the pages dir.
	entries, err := os.ReadDir(filepath.Dir(outDir))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRender_ReplacesExistingSet(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "pages")
	require.NoError(t, os.MkdirAll(outDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(outDir, "page_0009.png"), []byte("stale"), 0o644))

	pages, err := NewWithRunner(&mockRunner{pages: 2}, "pdftoppm").Render(context.Background(), "x.pdf", outDir, 100)
	require.NoError(t, err)
	assert.Len(t, pages, 2)
	assert.NoFileExists(t, filepath.Join(outDir, "page_0009.png"))
}

func TestRender_Errors(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "pages")

	_, err := NewWithRunner(&mockRunner{pages: 1}, "pdftoppm").Render(context.Background(), "x.pdf", outDir, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = NewWithRunner(&mockRunner{err: errors.New("exit 1"), output: []byte("Syntax Error")}, "pdftoppm").
		Render(context.Background(), "x.pdf", outDir, 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Syntax Error")

	_, err = NewWithRunner(&mockRunner{err: exec.ErrNotFound}, "pdftoppm").
		Render(context.Background(), "x.pdf", outDir, 100)
	assert.ErrorIs(t, err, domain.ErrRasterizerUnavailable)

	_, err = NewWithRunner(&mockRunner{pages: 0}, "pdftoppm").Render(context.Background(), "x.pdf", outDir, 100)
	assert.Error(t, err)
	assert.NoDirExists(t, outDir)
}

func TestPageCount(t *testing.T) {
	out := []byte("Title:          Report\nPages:          17\nEncrypted:      no\n")
	runner := &mockRunner{output: out}
	r := NewWithRunner(runner, "/opt/poppler/bin/pdftoppm")

	n, err := r.PageCount(context.Background(), "x.pdf")
	require.NoError(t, err)
	assert.Equal(t, 17, n)
	assert.Equal(t, "/opt/poppler/bin/pdfinfo", runner.calls[0][0])

	_, err = NewWithRunner(&mockRunner{output: []byte("garbage")}, "").PageCount(context.Background(), "x.pdf")
	assert.Error(t, err)
}

func TestErrPopplerNotFound(t *testing.T) {
	assert.ErrorIs(t, ErrPopplerNotFound, domain.ErrRasterizerUnavailable)
	assert.Contains(t, InstallInstructions(), "poppler-utils")
	assert.Error(t, CheckAvailable("definitely-not-a-real-binary-name"))
}
