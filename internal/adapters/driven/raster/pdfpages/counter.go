// Package pdfpages counts PDF pages in pure Go with github.com/ledongthuc/pdf.
package pdfpages

import (
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
	"github.com/custodia-labs/pagelens/internal/logger"
)

// Ensure Counter implements the interface.
var _ driven.PageCounter = (*Counter)(nil)

// Counter reads the page tree of a PDF. When the parser rejects a file
// the optional fallback counter is asked instead.
type Counter struct {
	fallback driven.PageCounter
}

// New creates a Counter. fallback may be nil.
func New(fallback driven.PageCounter) *Counter {
	return &Counter{fallback: fallback}
}

// PageCount returns the number of pages of pdfPath.
func (c *Counter) PageCount(ctx context.Context, pdfPath string) (int, error) {
	n, err := count(pdfPath)
	if err == nil {
		return n, nil
	}
	if c.fallback == nil {
		return 0, err
	}
	logger.Debug("pdf parser failed on %s (%v), falling back", pdfPath, err)
	return c.fallback.PageCount(ctx, pdfPath)
}

// count opens pdfPath and reads its page count. The parser panics on some
// malformed inputs; those are reported as invalid input.
func count(pdfPath string) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("%w: malformed PDF: %v", domain.ErrInvalidInput, r)
		}
	}()

	f, reader, err := pdf.Open(pdfPath)
	if err != nil {
		return 0, fmt.Errorf("%w: open PDF: %v", domain.ErrInvalidInput, err)
	}
	defer f.Close()
	return reader.NumPage(), nil
}
