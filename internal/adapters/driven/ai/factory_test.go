package ai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pagelens/internal/adapters/driven/embedding/clip"
	ollamallm "github.com/custodia-labs/pagelens/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/pagelens/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/pagelens/internal/adapters/driven/llm/stub"
	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
)

func TestCreateEmbedder(t *testing.T) {
	tests := []struct {
		name        string
		settings    *domain.EmbeddingSettings
		wantErr     bool
		errContains string
	}{
		{
			name:        "nil settings returns error",
			settings:    nil,
			wantErr:     true,
			errContains: "no embedding settings",
		},
		{
			name:     "clip provider creates embedder",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderCLIP, Model: "clip"},
		},
		{
			name:        "ollama cannot embed pages",
			settings:    &domain.EmbeddingSettings{Provider: domain.AIProviderOllama},
			wantErr:     true,
			errContains: "unsupported embedding provider",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbedder(tt.settings)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				assert.Nil(t, svc)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, &clip.Embedder{}, svc)
		})
	}
}

func TestCreateAnswerer(t *testing.T) {
	tests := []struct {
		name        string
		settings    *domain.AnswererSettings
		wantType    driven.Answerer
		errContains string
	}{
		{
			name:        "nil settings",
			errContains: "no answerer settings",
		},
		{
			name:     "ollama",
			settings: &domain.AnswererSettings{Provider: domain.AIProviderOllama},
			wantType: &ollamallm.Answerer{},
		},
		{
			name:     "openai with key",
			settings: &domain.AnswererSettings{Provider: domain.AIProviderOpenAI, APIKey: "k"},
			wantType: &openaillm.Answerer{},
		},
		{
			name:        "openai without key",
			settings:    &domain.AnswererSettings{Provider: domain.AIProviderOpenAI},
			errContains: "requires an API key",
		},
		{
			name:     "stub",
			settings: &domain.AnswererSettings{Provider: domain.AIProviderStub},
			wantType: &stub.Answerer{},
		},
		{
			name:        "clip cannot answer",
			settings:    &domain.AnswererSettings{Provider: domain.AIProviderCLIP},
			errContains: "unsupported answerer provider",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateAnswerer(tt.settings, nil)
			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, svc)
		})
	}
}

func TestCreateAndValidateEmbedder_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := CreateAndValidateEmbedder(&domain.EmbeddingSettings{
		Provider: domain.AIProviderCLIP,
		BaseURL:  srv.URL,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEmbeddingUnavailable))
}

func TestCreateAndValidateEmbedder_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	svc, err := CreateAndValidateEmbedder(&domain.EmbeddingSettings{
		Provider: domain.AIProviderCLIP,
		BaseURL:  srv.URL,
	})
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestCreateAndValidateAnswerer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			_, _ = w.Write([]byte(`{"models":[]}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	svc, err := CreateAndValidateAnswerer(context.Background(), &domain.AnswererSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  srv.URL,
		Model:    "llava",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "llava", svc.ModelName())

	_, err = CreateAndValidateAnswerer(context.Background(), &domain.AnswererSettings{
		Provider: domain.AIProviderOpenAI,
	}, nil)
	assert.True(t, errors.Is(err, domain.ErrAnswererUnavailable))
}

type countingAnswerer struct {
	stub.Answerer
	closed bool
}

func (c *countingAnswerer) ModelName() string { return "real" }

func (c *countingAnswerer) Close() error {
	c.closed = true
	return nil
}

func TestLazyAnswerer_ReadyAfterLoad(t *testing.T) {
	var loads atomic.Int32
	model := &countingAnswerer{}
	l := newLazyAnswerer("real", func(context.Context) (driven.Answerer, error) {
		loads.Add(1)
		return model, nil
	})

	assert.Equal(t, StateUnloaded, l.State())
	assert.Equal(t, "real", l.ModelName())

	_, err := l.Answer(context.Background(), "q", nil)
	require.NoError(t, err)
	_, err = l.Answer(context.Background(), "q", nil)
	require.NoError(t, err)

	assert.Equal(t, StateReady, l.State())
	assert.Equal(t, int32(1), loads.Load())
	require.NoError(t, l.Close())
	assert.True(t, model.closed)
}

func TestLazyAnswerer_FallsBackOnce(t *testing.T) {
	var loads atomic.Int32
	l := newLazyAnswerer("llava", func(context.Context) (driven.Answerer, error) {
		loads.Add(1)
		return nil, domain.ErrAnswererUnavailable
	})

	for range 3 {
		text, err := l.Answer(context.Background(), "q", nil)
		require.NoError(t, err)
		assert.Contains(t, text, "[stub]")
	}

	assert.Equal(t, StateUnavailable, l.State())
	assert.Equal(t, int32(1), loads.Load())
	assert.Equal(t, stub.ModelName, l.ModelName())
	assert.True(t, errors.Is(l.LoadError(), domain.ErrAnswererUnavailable))
	assert.NoError(t, l.Ping(context.Background()))
	assert.NoError(t, l.Close())
}

func TestLazyAnswerer_LoadIgnoresCallerCancellation(t *testing.T) {
	var loadErr error
	var hasDeadline bool
	l := newLazyAnswerer("real", func(ctx context.Context) (driven.Answerer, error) {
		loadErr = ctx.Err()
		_, hasDeadline = ctx.Deadline()
		return &countingAnswerer{}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	active := l.resolve(ctx)

	assert.NoError(t, loadErr)
	assert.True(t, hasDeadline)
	assert.Equal(t, "real", active.ModelName())
	assert.Equal(t, StateReady, l.State())
	assert.NoError(t, l.LoadError())
}

func TestAnswererState_String(t *testing.T) {
	assert.Equal(t, "unloaded", StateUnloaded.String())
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "unavailable", StateUnavailable.String())
	assert.Equal(t, "unknown", AnswererState(9).String())
}
