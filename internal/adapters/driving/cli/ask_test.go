package cli

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pagelens/internal/core/domain"
)

func TestAskCmd_Flags(t *testing.T) {
	flag := askCmd.Flags().Lookup("top-k")
	require.NotNil(t, flag)
	assert.Equal(t, "k", flag.Shorthand)
	assert.Equal(t, "3", flag.DefValue)
	assert.NotNil(t, askCmd.Flags().Lookup("json"))
}

func TestAskCmd_RequiresQuestion(t *testing.T) {
	_, err := execute("ask")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg(s)")
}

func TestAskCmd_NotConfigured(t *testing.T) {
	_, err := execute("ask", "hello")
	assert.EqualError(t, err, "answer service not configured")
}

func TestAskCmd_Text(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("ask", "how", "long", "is", "the", "warranty?")

	require.NoError(t, err)
	assert.Equal(t, "how long is the warranty?", mocks.answer.question)
	assert.Equal(t, domain.DefaultTopK, mocks.answer.topK)
	assert.Contains(t, out, "The warranty lasts two years.")
	assert.Contains(t, out, "Evidence:")
	assert.Contains(t, out, "[1] 0123456789abcdef page 4 (0.3123)")
	assert.Contains(t, out, "page_0004.png")
}

func TestAskCmd_TopK(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("ask", "-k", "7", "question")
	require.NoError(t, err)
	assert.Equal(t, 7, mocks.answer.topK)
}

func TestAskCmd_TopKOutOfRange(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	for _, k := range []string{"0", "11", "-2"} {
		_, err := execute("ask", "--top-k", k, "question")
		require.Error(t, err, k)
		assert.Contains(t, err.Error(), "--top-k must be between 1 and 10")
	}
	assert.Empty(t, mocks.answer.question)
}

func TestAskCmd_BlankQuestion(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("ask", "   ")
	assert.EqualError(t, err, "question must not be empty")
}

func TestAskCmd_ServiceError(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mocks.answer.err = domain.ErrEmbeddingUnavailable

	_, err := execute("ask", "question")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEmbeddingUnavailable))
}

func TestAskCmd_JSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("ask", "--json", "question")
	require.NoError(t, err)

	var answer struct {
		Answer   string `json:"answer"`
		Evidence []struct {
			DocID string  `json:"doc_id"`
			Page  int     `json:"page"`
			Score float64 `json:"score"`
		} `json:"evidence"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &answer))
	assert.Equal(t, "The warranty lasts two years.", answer.Answer)
	require.Len(t, answer.Evidence, 1)
	assert.Equal(t, 4, answer.Evidence[0].Page)
	assert.InDelta(t, 0.3123, answer.Evidence[0].Score, 1e-6)
}
