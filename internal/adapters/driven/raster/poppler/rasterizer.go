// Package poppler renders PDF pages to PNG with poppler-utils' pdftoppm and
// counts pages with pdfinfo.
package poppler

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
	"github.com/custodia-labs/pagelens/internal/logger"
)

// Ensure Rasterizer implements the interfaces.
var (
	_ driven.Rasterizer  = (*Rasterizer)(nil)
	_ driven.PageCounter = (*Rasterizer)(nil)
)

// ErrPopplerNotFound is returned when pdftoppm cannot be executed.
var ErrPopplerNotFound = fmt.Errorf("%w: pdftoppm not found (install poppler-utils)", domain.ErrRasterizerUnavailable)

// CommandRunner executes an external command and returns its combined output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Rasterizer shells out to pdftoppm and pdfinfo.
type Rasterizer struct {
	runner   CommandRunner
	pdftoppm string
	pdfinfo  string
}

// New creates a Rasterizer. pdftoppm is the binary name or path; pdfinfo is
// expected next to it.
func New(pdftoppm string) *Rasterizer {
	return NewWithRunner(execRunner{}, pdftoppm)
}

// NewWithRunner creates a Rasterizer with an injected runner.
func NewWithRunner(runner CommandRunner, pdftoppm string) *Rasterizer {
	if pdftoppm == "" {
		pdftoppm = "pdftoppm"
	}
	pdfinfo := "pdfinfo"
	if dir := filepath.Dir(pdftoppm); dir != "." {
		pdfinfo = filepath.Join(dir, "pdfinfo")
	}
	return &Rasterizer{runner: runner, pdftoppm: pdftoppm, pdfinfo: pdfinfo}
}

// CheckAvailable verifies pdftoppm can be found.
func CheckAvailable(pdftoppm string) error {
	if pdftoppm == "" {
		pdftoppm = "pdftoppm"
	}
	if _, err := exec.LookPath(pdftoppm); err != nil {
		return ErrPopplerNotFound
	}
	return nil
}

// InstallInstructions returns platform hints for installing poppler.
func InstallInstructions() string {
	return `pdftoppm is required to render PDF pages.
  macOS:  brew install poppler
  Debian: apt install poppler-utils
  Fedora: dnf install poppler-utils`
}

var renderedPage = regexp.MustCompile(`^page-(\d+)\.png$`)

// Render writes every page of pdfPath into outDir as page_NNNN.png.
// Pages are rendered into a sibling temp directory that replaces outDir
// only once rendering succeeded, so outDir never holds a partial set.
func (r *Rasterizer) Render(ctx context.Context, pdfPath, outDir string, dpi int) ([]string, error) {
	if dpi <= 0 {
		return nil, fmt.Errorf("%w: dpi must be positive", domain.ErrInvalidInput)
	}
	parent := filepath.Dir(outDir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, fmt.Errorf("create render dir: %w", err)
	}
	tmp, err := os.MkdirTemp(parent, ".render-*")
	if err != nil {
		return nil, fmt.Errorf("create render dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	logger.Debug("Rendering %s at %d dpi", pdfPath, dpi)
	out, err := r.runner.Run(ctx, r.pdftoppm, "-png", "-r", strconv.Itoa(dpi), pdfPath, filepath.Join(tmp, "page"))
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, ErrPopplerNotFound
		}
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, strings.TrimSpace(string(out)))
	}

	entries, err := os.ReadDir(tmp)
	if err != nil {
		return nil, fmt.Errorf("read render dir: %w", err)
	}
	var nums []int
	for _, e := range entries {
		m := renderedPage.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		if err := os.Rename(filepath.Join(tmp, e.Name()), filepath.Join(tmp, domain.PageFileName(n))); err != nil {
			return nil, fmt.Errorf("rename page %d: %w", n, err)
		}
		nums = append(nums, n)
	}
	if len(nums) == 0 {
		return nil, errors.New("pdftoppm produced no pages")
	}
	sort.Ints(nums)

	if err := os.RemoveAll(outDir); err != nil {
		return nil, fmt.Errorf("replace pages dir: %w", err)
	}
	if err := os.Rename(tmp, outDir); err != nil {
		return nil, fmt.Errorf("commit pages dir: %w", err)
	}

	pages := make([]string, len(nums))
	for i, n := range nums {
		pages[i] = filepath.Join(outDir, domain.PageFileName(n))
	}
	return pages, nil
}

// PageCount runs pdfinfo and parses its "Pages:" line.
func (r *Rasterizer) PageCount(ctx context.Context, pdfPath string) (int, error) {
	out, err := r.runner.Run(ctx, r.pdfinfo, pdfPath)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return 0, fmt.Errorf("%w: pdfinfo not found", domain.ErrRasterizerUnavailable)
		}
		return 0, fmt.Errorf("pdfinfo: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return parsePages(out)
}

func parsePages(out []byte) (int, error) {
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "Pages:") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Pages:")))
		if err != nil {
			return 0, fmt.Errorf("parse pdfinfo pages %q: %w", line, err)
		}
		return n, nil
	}
	return 0, errors.New("pdfinfo output has no Pages line")
}
