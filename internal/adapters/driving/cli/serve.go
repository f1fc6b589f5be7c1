package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pagelens/internal/adapters/driving/gateway"
	"github.com/custodia-labs/pagelens/internal/adapters/driving/watch"
	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/logger"
)

var (
	serveAddr  string
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the pagelens HTTP API:

  GET  /health               liveness and indexed page count
  GET  /stats                index, model and process details
  POST /ingest               multipart upload, field "file" or "pdf"
  POST /chat                 {"question": "...", "top_k": 3}
  POST /clear                empty the index
  POST /reindex              rebuild the index from stored PDFs
  GET  /pages/{doc}/{page}   rendered page image

Requests are rate limited per client IP. With --watch, PDFs dropped into
the inbox directory are ingested while the server runs.`,
	RunE: runServe,
}

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Ingest PDFs dropped into a directory",
	Long: `Ingests every PDF already in the directory, then watches it and ingests
new or rewritten PDFs once they stop changing. Without an argument the
configured inbox (watch.dir) is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from server.addr)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "also ingest PDFs dropped into the inbox")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if answerService == nil || ingestService == nil || statsService == nil {
		return errors.New("services not configured")
	}
	settings, err := currentSettings()
	if err != nil {
		return err
	}

	addr := settings.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	server, err := gateway.NewServer(&gateway.Ports{
		Answer:      answerService,
		Ingest:      ingestService,
		Stats:       statsService,
		Maintenance: maintenanceService,
		Document:    documentService,
	}, gateway.Config{
		Addr:           addr,
		RateLimitRPS:   settings.Server.RateLimitRPS,
		RateLimitBurst: settings.Server.RateLimitBurst,
		MaxUploadBytes: settings.Limits.MaxUploadBytes,
	})
	if err != nil {
		return err
	}

	if serveWatch {
		w := watch.New(settings.WatchDir, ingestService, watch.Options{})
		go func() {
			if err := w.Run(cmd.Context()); err != nil {
				logger.Error("inbox watcher stopped: %v", err)
			}
		}()
		cmd.Printf("Watching %s for PDFs\n", w.Dir())
	}

	cmd.Printf("pagelens API listening on http://%s\n", addr)
	return server.Run(cmd.Context())
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	var dir string
	if len(args) == 1 {
		dir = args[0]
	} else {
		settings, err := currentSettings()
		if err != nil {
			return err
		}
		dir = settings.WatchDir
	}

	w := watch.New(dir, ingestService, watch.Options{
		OnResult: func(path string, res *domain.IngestResult, err error) {
			printIngestOutcome(cmd, toOutcome(filepath.Base(path), res, err))
		},
	})
	cmd.Printf("Watching %s for PDFs (Ctrl+C to stop)\n", dir)
	return w.Run(cmd.Context())
}

func toOutcome(file string, res *domain.IngestResult, err error) ingestOutcome {
	if err != nil {
		return ingestOutcome{File: file, Error: err.Error()}
	}
	return ingestOutcome{File: file, Result: res}
}

func currentSettings() (*domain.Settings, error) {
	if settingsService == nil {
		return nil, errors.New("settings service not configured")
	}
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return settings, nil
}
