// Package stub provides an answerer that needs no model.
//
// It checks that every evidence image is readable and returns a
// placeholder listing the question and the number of pages. It is the
// fallback when the configured answering model cannot be reached.
package stub

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
)

// Ensure Answerer implements the interface.
var _ driven.Answerer = (*Answerer)(nil)

// ModelName is reported by the stub answerer.
const ModelName = "stub"

// Answerer returns placeholder answers.
type Answerer struct{}

// New creates a stub answerer.
func New() *Answerer {
	return &Answerer{}
}

// Answer validates the evidence images and returns a placeholder.
func (a *Answerer) Answer(_ context.Context, question string, imagePaths []string) (string, error) {
	for _, p := range imagePaths {
		info, err := os.Stat(p)
		if err != nil {
			return "", fmt.Errorf("%w: evidence image %s", domain.ErrNotFound, p)
		}
		if info.IsDir() {
			return "", fmt.Errorf("%w: evidence image %s is a directory", domain.ErrInvalidInput, p)
		}
	}

	return strings.Join([]string{
		"[stub] No answering model is available.",
		"Question: " + question,
		fmt.Sprintf("Evidence pages: %d", len(imagePaths)),
	}, "\n"), nil
}

// ModelName returns "stub".
func (a *Answerer) ModelName() string {
	return ModelName
}

// Ping always succeeds.
func (a *Answerer) Ping(context.Context) error {
	return nil
}

// Close releases resources.
func (a *Answerer) Close() error {
	return nil
}
