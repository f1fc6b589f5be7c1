package stub

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pagelens/internal/core/domain"
)

func TestAnswer(t *testing.T) {
	img := filepath.Join(t.TempDir(), "page_0001.png")
	require.NoError(t, os.WriteFile(img, []byte("x"), 0o600))

	text, err := New().Answer(context.Background(), "what is it?", []string{img})
	require.NoError(t, err)
	assert.Contains(t, text, "Question: what is it?")
	assert.Contains(t, text, "Evidence pages: 1")
}

func TestAnswer_MissingImage(t *testing.T) {
	_, err := New().Answer(context.Background(), "q", []string{filepath.Join(t.TempDir(), "gone.png")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestAnswer_DirectoryIsRejected(t *testing.T) {
	_, err := New().Answer(context.Background(), "q", []string{t.TempDir()})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestStubMetadata(t *testing.T) {
	a := New()
	assert.Equal(t, ModelName, a.ModelName())
	assert.NoError(t, a.Ping(context.Background()))
	assert.NoError(t, a.Close())
}
