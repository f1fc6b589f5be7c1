package ai

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/pagelens/internal/adapters/driven/llm/stub"
	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
	"github.com/custodia-labs/pagelens/internal/logger"
)

// Ensure LazyAnswerer implements the interface.
var _ driven.Answerer = (*LazyAnswerer)(nil)

// AnswererState is the load state of a LazyAnswerer.
type AnswererState int

const (
	// StateUnloaded means no load has been attempted yet.
	StateUnloaded AnswererState = iota

	// StateReady means the configured model answered its ping.
	StateReady

	// StateUnavailable means loading failed; the stub answers from now on.
	StateUnavailable
)

// String returns the state name.
func (s AnswererState) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateReady:
		return "ready"
	case StateUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// loadTimeout bounds the one-shot model load.
const loadTimeout = 30 * time.Second

type loadFunc func(ctx context.Context) (driven.Answerer, error)

// LazyAnswerer connects to the configured answering model on first use.
// A failed load is attempted once only and falls back to the stub answerer.
type LazyAnswerer struct {
	mu       sync.Mutex
	state    AnswererState
	model    string
	load     loadFunc
	active   driven.Answerer
	fallback driven.Answerer
	loadErr  error
}

// NewLazyAnswerer creates a lazy answerer for settings.
func NewLazyAnswerer(settings domain.AnswererSettings, prompts driven.PromptStore) *LazyAnswerer {
	return newLazyAnswerer(settings.Model, func(ctx context.Context) (driven.Answerer, error) {
		return CreateAndValidateAnswerer(ctx, &settings, prompts)
	})
}

func newLazyAnswerer(model string, load loadFunc) *LazyAnswerer {
	return &LazyAnswerer{
		model:    model,
		load:     load,
		fallback: stub.New(),
	}
}

// State returns the current load state.
func (l *LazyAnswerer) State() AnswererState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// LoadError returns the error that made the answerer unavailable, if any.
func (l *LazyAnswerer) LoadError() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadErr
}

func (l *LazyAnswerer) resolve(ctx context.Context) driven.Answerer {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.state {
	case StateReady, StateUnavailable:
		return l.active
	}

	// Loaded once per process, independent of the triggering request.
	loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
	defer cancel()

	svc, err := l.load(loadCtx)
	if err != nil {
		logger.Warnw("answering model unavailable, using stub", "model", l.model, "error", err)
		l.state = StateUnavailable
		l.loadErr = err
		l.active = l.fallback
		return l.active
	}

	logger.Infow("answering model ready", "model", svc.ModelName())
	l.state = StateReady
	l.active = svc
	return l.active
}

// Answer loads the model if needed and answers with whichever is active.
func (l *LazyAnswerer) Answer(ctx context.Context, question string, imagePaths []string) (string, error) {
	return l.resolve(ctx).Answer(ctx, question, imagePaths)
}

// ModelName returns the active model, or the configured one before loading.
func (l *LazyAnswerer) ModelName() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.active != nil {
		return l.active.ModelName()
	}
	return l.model
}

// Ping loads the model if needed and pings whichever is active.
func (l *LazyAnswerer) Ping(ctx context.Context) error {
	return l.resolve(ctx).Ping(ctx)
}

// Close releases the loaded model.
func (l *LazyAnswerer) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateReady && l.active != nil {
		return l.active.Close()
	}
	return nil
}
