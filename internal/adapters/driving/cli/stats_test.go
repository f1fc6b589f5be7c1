package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsCmd_NotConfigured(t *testing.T) {
	_, err := execute("stats")
	assert.EqualError(t, err, "stats service not configured")
}

func TestStatsCmd_Text(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("stats")

	require.NoError(t, err)
	for _, section := range []string{"[Index]", "[Models]", "[Process]", "[Limits]"} {
		assert.Contains(t, out, section)
	}
	assert.Contains(t, out, "Pages:      1,234")
	assert.Contains(t, out, "Dimensions: 512")
	assert.Contains(t, out, "Backend:    flat (inner_product)")
	assert.Contains(t, out, "Memory:     32 MiB")
	assert.Contains(t, out, "Upload:     50 MiB")
	assert.Contains(t, out, "DPI:        180 (effective 180)")
}

func TestStatsCmd_JSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("stats", "--json")
	require.NoError(t, err)

	var stats map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.EqualValues(t, 1234, stats["num_pages_indexed"])
	assert.EqualValues(t, 512, stats["embedding_dim"])
	assert.Equal(t, "ollama:llava", stats["answerer"])
	limits, ok := stats["limits"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 100, limits["max_pages"])
}
