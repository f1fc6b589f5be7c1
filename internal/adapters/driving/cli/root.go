// Package cli provides the pagelens command line interface built on cobra.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pagelens/internal/core/ports/driving"
	"github.com/custodia-labs/pagelens/internal/logger"
)

// version is set by Execute from build flags.
var version = "dev"

// Command annotations controlling bootstrap.
const (
	// skipBootstrap marks commands that run without core services.
	skipBootstrap = "skip-bootstrap"

	// settingsOnly marks commands that need only the settings service, so a
	// broken configuration can still be repaired.
	settingsOnly = "settings-only"
)

// Services holds the driving ports the commands call into.
type Services struct {
	Ingest      driving.IngestService
	Answer      driving.AnswerService
	Stats       driving.StatsService
	Maintenance driving.MaintenanceService
	Document    driving.DocumentService
	Settings    driving.SettingsService

	// Close releases stores opened during bootstrap. Optional.
	Close func() error
}

// Options are the global flags passed to the bootstrap function.
type Options struct {
	DataDir string
	Verbose bool

	// SettingsOnly asks for the settings service alone.
	SettingsOnly bool
}

// BootstrapFunc wires services for a command invocation.
type BootstrapFunc func(Options) (*Services, error)

var (
	ingestService      driving.IngestService
	answerService      driving.AnswerService
	statsService       driving.StatsService
	maintenanceService driving.MaintenanceService
	documentService    driving.DocumentService
	settingsService    driving.SettingsService
	closeServices      func() error

	bootstrap BootstrapFunc

	dataDirFlag string
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "pagelens",
	Short: "Ask questions about your PDFs",
	Long: `pagelens renders every PDF page to an image, embeds the pages with a
multimodal model and answers questions from the most similar pages.

Documents are identified by content, so ingesting the same bytes twice is
a no-op. Originals and page images are kept under the data directory and
the index can be rebuilt from them at any time with 'pagelens reindex'.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setupServices,
	PersistentPostRunE: teardownServices,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "data directory (overrides config and PAGELENS_DATA_DIR)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")
}

// SetBootstrap registers the function that wires services before a command runs.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// SetServices installs services directly.
func SetServices(s *Services) {
	ingestService = s.Ingest
	answerService = s.Answer
	statsService = s.Stats
	maintenanceService = s.Maintenance
	documentService = s.Document
	settingsService = s.Settings
	closeServices = s.Close
}

// Execute runs the root command until it finishes or the process is interrupted.
func Execute(v string) error {
	if v != "" {
		version = v
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func setupServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verboseFlag)

	only := annotated(cmd, settingsOnly)
	if annotated(cmd, skipBootstrap) || bootstrap == nil || servicesReady(only) {
		return nil
	}

	s, err := bootstrap(Options{DataDir: dataDirFlag, Verbose: verboseFlag, SettingsOnly: only})
	if err != nil {
		return err
	}
	SetServices(s)
	return nil
}

func teardownServices(_ *cobra.Command, _ []string) error {
	if closeServices == nil {
		return nil
	}
	err := closeServices()
	closeServices = nil
	return err
}

func servicesReady(settingsOnly bool) bool {
	if settingsOnly {
		return settingsService != nil
	}
	return answerService != nil && settingsService != nil
}

// annotated reports whether cmd or one of its parents carries the annotation.
func annotated(cmd *cobra.Command, name string) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[name] == "true" {
			return true
		}
	}
	return false
}
