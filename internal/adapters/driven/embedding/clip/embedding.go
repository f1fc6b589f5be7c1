// Package clip provides a page embedder backed by an OpenAI-compatible
// embedding server hosting a CLIP model (for example infinity-emb).
package clip

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/sony/gobreaker"

	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
	"github.com/custodia-labs/pagelens/internal/logger"
)

// Ensure Embedder implements the interface.
var _ driven.PageEmbedder = (*Embedder)(nil)

// Default configuration values.
const (
	DefaultBaseURL   = "http://localhost:7997"
	DefaultModel     = "openai/clip-vit-base-patch32"
	DefaultBatchSize = 16
	DefaultTimeout   = 60 * time.Second
)

// Input modalities understood by the server.
const (
	modalityImage = "image"
	modalityText  = "text"
)

// Config holds configuration for the CLIP embedder.
type Config struct {
	// BaseURL is the embedding server base URL (default: http://localhost:7997).
	BaseURL string

	// Model is the CLIP model name (default: openai/clip-vit-base-patch32).
	Model string

	// BatchSize is the number of images per request (default: 16).
	BatchSize int

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// Embedder embeds page images and query text into the CLIP space.
type Embedder struct {
	client    *http.Client
	baseURL   string
	model     string
	batchSize int
	breaker   *gobreaker.CircuitBreaker
}

// embeddingRequest is the /embeddings request format.
type embeddingRequest struct {
	Model    string   `json:"model"`
	Input    []string `json:"input"`
	Modality string   `json:"modality,omitempty"`
}

// embeddingResponse is the /embeddings response format.
type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewEmbedder creates a new CLIP embedder.
func NewEmbedder(cfg Config) *Embedder {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "clip-embedder",
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warnw("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return &Embedder{
		client:    &http.Client{Timeout: cfg.Timeout},
		baseURL:   cfg.BaseURL,
		model:     cfg.Model,
		batchSize: cfg.BatchSize,
		breaker:   breaker,
	}
}

// EmbedImages returns one normalized vector per PNG path, in order.
func (e *Embedder) EmbedImages(ctx context.Context, paths []string) ([][]float32, error) {
	out := make([][]float32, 0, len(paths))
	for start := 0; start < len(paths); start += e.batchSize {
		end := min(start+e.batchSize, len(paths))

		inputs := make([]string, 0, end-start)
		for _, p := range paths[start:end] {
			uri, err := dataURI(p)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, uri)
		}

		vecs, err := e.embed(ctx, inputs, modalityImage)
		if err != nil {
			return nil, fmt.Errorf("embed images %d-%d: %w", start+1, end, err)
		}
		out = append(out, vecs...)
	}
	if err := sameDimension(out); err != nil {
		return nil, err
	}
	return out, nil
}

// EmbedText returns the normalized vector of a query.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.embed(ctx, []string{text}, modalityText)
	if err != nil {
		return nil, fmt.Errorf("embed text: %w", err)
	}
	return vecs[0], nil
}

// ModelName returns the name of the embedding model.
func (e *Embedder) ModelName() string {
	return e.model
}

// Ping validates the server is reachable by listing its models.
func (e *Embedder) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("clip: failed to create ping request: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("clip: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("clip: server returned status %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("clip: server returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Close releases resources.
func (e *Embedder) Close() error {
	return nil
}

func (e *Embedder) embed(ctx context.Context, inputs []string, modality string) ([][]float32, error) {
	result, err := e.breaker.Execute(func() (interface{}, error) {
		return e.post(ctx, inputs, modality)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if err != nil {
		return nil, err
	}
	return result.([][]float32), nil
}

func (e *Embedder) post(ctx context.Context, inputs []string, modality string) ([][]float32, error) {
	jsonBody, err := json.Marshal(embeddingRequest{
		Model:    e.model,
		Input:    inputs,
		Modality: modality,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: send request: %w", domain.ErrEmbeddingUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("clip error (status %d): %s", resp.StatusCode, string(body))
	}

	var embResp embeddingResponse
	if err := json.Unmarshal(body, &embResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if embResp.Error != nil {
		return nil, fmt.Errorf("clip error: %s", embResp.Error.Message)
	}
	if len(embResp.Data) != len(inputs) {
		return nil, fmt.Errorf("%w: sent %d inputs, got %d embeddings",
			domain.ErrCountMismatch, len(inputs), len(embResp.Data))
	}

	sort.Slice(embResp.Data, func(i, j int) bool {
		return embResp.Data[i].Index < embResp.Data[j].Index
	})

	vecs := make([][]float32, len(embResp.Data))
	for i, d := range embResp.Data {
		v := make([]float32, len(d.Embedding))
		for j, x := range d.Embedding {
			v[j] = float32(x)
		}
		domain.Normalize(v)
		vecs[i] = v
	}
	return vecs, nil
}

func dataURI(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read page image: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data), nil
}

func sameDimension(vecs [][]float32) error {
	for i := 1; i < len(vecs); i++ {
		if len(vecs[i]) != len(vecs[0]) {
			return fmt.Errorf("%w: embedding %d has %d dimensions, expected %d",
				domain.ErrDimensionMismatch, i, len(vecs[i]), len(vecs[0]))
		}
	}
	return nil
}
