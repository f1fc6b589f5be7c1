package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pagelens/internal/adapters/driving/upload"
	"github.com/custodia-labs/pagelens/internal/core/domain"
)

var ingestJSON bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [file.pdf...]",
	Short: "Add PDFs to the index",
	Long: `Renders every page of each PDF, embeds the pages and adds them to the index.

Files are identified by content: ingesting bytes that are already indexed
reports the existing document without touching the index. Limits on upload
size and page count are read from settings.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(ingestCmd)
}

// ingestOutcome is one line of ingest output.
type ingestOutcome struct {
	File   string               `json:"file"`
	Result *domain.IngestResult `json:"result,omitempty"`
	Error  string               `json:"error,omitempty"`
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	outcomes := make([]ingestOutcome, 0, len(args))
	failed := 0
	for _, path := range args {
		out := ingestOutcome{File: path}
		res, err := ingestFile(cmd, path)
		if err != nil {
			failed++
			out.Error = err.Error()
		} else {
			out.Result = res
		}
		outcomes = append(outcomes, out)

		if !ingestJSON {
			printIngestOutcome(cmd, out)
		}
	}

	if ingestJSON {
		data, err := json.MarshalIndent(outcomes, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	return nil
}

func ingestFile(cmd *cobra.Command, path string) (*domain.IngestResult, error) {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return nil, fmt.Errorf("%w: only PDF files are supported", domain.ErrInvalidInput)
	}
	data, err := upload.ReadFile(path, ingestService.Limits().MaxUploadBytes)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", domain.ErrInvalidInput)
	}
	return ingestService.Ingest(cmd.Context(), data, filepath.Base(path))
}

func printIngestOutcome(cmd *cobra.Command, out ingestOutcome) {
	name := filepath.Base(out.File)
	switch {
	case out.Error != "":
		cmd.Printf("  FAILED  %s: %s\n", name, out.Error)
	case out.Result.IsNew:
		cmd.Printf("  added   %s -> %s (%d pages)\n", name, out.Result.DocID, out.Result.NumPages)
	default:
		cmd.Printf("  exists  %s -> %s (%d pages, already indexed)\n", name, out.Result.DocID, out.Result.NumPages)
	}
}
