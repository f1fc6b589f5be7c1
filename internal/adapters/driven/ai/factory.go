// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/pagelens/internal/adapters/driven/embedding/clip"
	ollamallm "github.com/custodia-labs/pagelens/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/pagelens/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/pagelens/internal/adapters/driven/llm/stub"
	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateEmbedder creates the page embedder for the configured provider.
func CreateEmbedder(settings *domain.EmbeddingSettings) (driven.PageEmbedder, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: no embedding settings", domain.ErrEmbeddingUnavailable)
	}

	switch settings.Provider {
	case domain.AIProviderCLIP:
		return clip.NewEmbedder(clip.Config{
			BaseURL:   settings.BaseURL,
			Model:     settings.Model,
			BatchSize: settings.BatchSize,
		}), nil

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateAndValidateEmbedder creates a page embedder and validates connectivity.
func CreateAndValidateEmbedder(settings *domain.EmbeddingSettings) (driven.PageEmbedder, error) {
	svc, err := CreateEmbedder(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'pagelens settings set embedding.provider clip' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Check embedding.base_url",
			domain.ErrEmbeddingUnavailable, err)
	}

	return svc, nil
}

// CreateAnswerer creates the answering model for the configured provider.
// Prompts may be nil, in which case built-in prompts are used.
func CreateAnswerer(settings *domain.AnswererSettings, prompts driven.PromptStore) (driven.Answerer, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: no answerer settings", domain.ErrAnswererUnavailable)
	}
	if !settings.IsConfigured() {
		if settings.Provider.RequiresAPIKey() {
			return nil, fmt.Errorf("%s requires an API key", settings.Provider)
		}
		return nil, fmt.Errorf("unsupported answerer provider: %s", settings.Provider)
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		svc := ollamallm.NewAnswerer(ollamallm.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
		if prompts != nil {
			svc.SetPromptStore(prompts)
		}
		return svc, nil

	case domain.AIProviderOpenAI:
		svc, err := openaillm.NewAnswerer(openaillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
		if err != nil {
			return nil, err
		}
		if prompts != nil {
			svc.SetPromptStore(prompts)
		}
		return svc, nil

	case domain.AIProviderStub:
		return stub.New(), nil

	default:
		return nil, fmt.Errorf("unsupported answerer provider: %s", settings.Provider)
	}
}

// CreateAndValidateAnswerer creates an answerer and validates connectivity.
func CreateAndValidateAnswerer(
	ctx context.Context,
	settings *domain.AnswererSettings,
	prompts driven.PromptStore,
) (driven.Answerer, error) {
	svc, err := CreateAnswerer(settings, prompts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAnswererUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrAnswererUnavailable, err)
	}

	return svc, nil
}
