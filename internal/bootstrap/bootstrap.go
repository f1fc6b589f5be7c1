// Package bootstrap wires the driven adapters into the core services for
// one process.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/pagelens/internal/adapters/driven/ai"
	"github.com/custodia-labs/pagelens/internal/adapters/driven/config/file"
	"github.com/custodia-labs/pagelens/internal/adapters/driven/raster/pdfpages"
	"github.com/custodia-labs/pagelens/internal/adapters/driven/raster/poppler"
	storagefile "github.com/custodia-labs/pagelens/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/pagelens/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/pagelens/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/pagelens/internal/adapters/driving/cli"
	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
	"github.com/custodia-labs/pagelens/internal/core/services"
	"github.com/custodia-labs/pagelens/internal/logger"
)

const (
	// IndexDirName holds pages.vec and pages.meta.json inside the data directory.
	IndexDirName = "index"

	// PromptsDirName holds prompt overrides inside the config directory.
	PromptsDirName = "prompts"
)

// Bootstrapper builds cli.Services from the config directory.
type Bootstrapper struct {
	configDir string
}

// New returns a Bootstrapper reading config.toml from configDir. An empty
// configDir means file.DefaultDir.
func New(configDir string) *Bootstrapper {
	return &Bootstrapper{configDir: configDir}
}

// Func adapts the Bootstrapper to cli.BootstrapFunc.
func (b *Bootstrapper) Func() cli.BootstrapFunc {
	return b.Services
}

// Services opens the stores, loads the index and constructs every service.
func (b *Bootstrapper) Services(opts cli.Options) (*cli.Services, error) {
	configDir := b.configDir
	if configDir == "" {
		dir, err := file.DefaultDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, configDir)

	if opts.SettingsOnly {
		return &cli.Services{Settings: settingsService}, nil
	}

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("resolving settings: %w", err)
	}
	applyDataDir(settings, opts.DataDir)
	logger.Debug("Data directory: %s", settings.DataDir)

	var closers closerStack
	ok := false
	defer func() {
		if !ok {
			if err := closers.Close(); err != nil {
				logger.Warn("closing partially opened stores: %v", err)
			}
		}
	}()

	content, err := storagefile.NewContentStore(settings.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening content store: %w", err)
	}

	manifests, err := openManifests(settings, content, &closers)
	if err != nil {
		return nil, err
	}

	index := flat.New(filepath.Join(settings.DataDir, IndexDirName))
	if err := index.Load(context.Background()); err != nil {
		return nil, fmt.Errorf("loading index: %w", err)
	}

	embedder, err := ai.CreateEmbedder(&settings.Embedding)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	closers.Push(embedder.Close)

	prompts := file.NewPromptStore(filepath.Join(configDir, PromptsDirName))
	answerer := ai.NewLazyAnswerer(settings.Answerer, prompts)
	closers.Push(answerer.Close)

	rasterizer := poppler.New(settings.Pdftoppm)

	pipeline, err := services.NewPipeline(services.Ports{
		Content:    content,
		Manifests:  manifests,
		Index:      index,
		Embedder:   embedder,
		Answerer:   answerer,
		Rasterizer: rasterizer,
		Counter:    pdfpages.New(rasterizer),
	}, settings.Limits)
	if err != nil {
		return nil, err
	}

	logger.Debug("Index: %d pages loaded, manifests: %s", index.Count(), settings.Manifest)

	ok = true
	return &cli.Services{
		Ingest:      services.NewIngestService(pipeline),
		Answer:      services.NewAnswerService(pipeline),
		Stats:       services.NewStatsService(pipeline),
		Maintenance: services.NewMaintenanceService(pipeline),
		Document:    services.NewDocumentService(pipeline),
		Settings:    settingsService,
		Close:       closers.Close,
	}, nil
}

// applyDataDir overrides the data directory. An inbox left at its default
// location follows the new directory.
func applyDataDir(settings *domain.Settings, dataDir string) {
	if dataDir == "" || dataDir == settings.DataDir {
		return
	}
	if settings.WatchDir == filepath.Join(settings.DataDir, "inbox") {
		settings.WatchDir = filepath.Join(dataDir, "inbox")
	}
	settings.DataDir = dataDir
}

func openManifests(settings *domain.Settings, content *storagefile.ContentStore, closers *closerStack) (driven.ManifestStore, error) {
	switch settings.Manifest {
	case domain.ManifestBackendSQLite:
		store, err := sqlite.NewStore(settings.DataDir)
		if err != nil {
			return nil, fmt.Errorf("opening catalog: %w", err)
		}
		closers.Push(store.Close)
		return store.ManifestStore(), nil
	case domain.ManifestBackendFile, "":
		return storagefile.NewManifestStore(content), nil
	default:
		return nil, fmt.Errorf("%w: manifest backend %q", domain.ErrUnsupportedType, settings.Manifest)
	}
}

// closerStack closes resources in reverse order of opening.
type closerStack struct {
	fns []func() error
}

func (c *closerStack) Push(fn func() error) {
	c.fns = append(c.fns, fn)
}

func (c *closerStack) Close() error {
	var errs []error
	for i := len(c.fns) - 1; i >= 0; i-- {
		if err := c.fns[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.fns = nil
	return errors.Join(errs...)
}
