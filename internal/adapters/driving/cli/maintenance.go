package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the index",
	Long: `Removes every page vector and marks all documents as not indexed.
Original PDFs and rendered page images are kept, so 'pagelens reindex'
restores the index without re-uploading.`,
	RunE: runClear,
}

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the index from stored PDFs",
	Long: `Re-renders and re-embeds every stored document and replaces the index
in one step. Documents that no longer fit the configured limits are skipped.`,
	RunE: runReindex,
}

func init() {
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "do not ask for confirmation")
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(reindexCmd)
}

func runClear(cmd *cobra.Command, _ []string) error {
	if maintenanceService == nil {
		return errors.New("maintenance service not configured")
	}

	if !clearYes {
		cmd.Print("Clear the index? Stored PDFs are kept. [y/N]: ")
		answer := strings.ToLower(readLine(bufio.NewReader(cmd.InOrStdin())))
		if answer != "y" && answer != "yes" {
			cmd.Println("Aborted.")
			return nil
		}
	}

	if err := maintenanceService.ClearIndex(cmd.Context()); err != nil {
		return fmt.Errorf("failed to clear index: %w", err)
	}
	cmd.Println("Index cleared.")
	return nil
}

func runReindex(cmd *cobra.Command, _ []string) error {
	if maintenanceService == nil {
		return errors.New("maintenance service not configured")
	}

	res, err := maintenanceService.ReindexAll(cmd.Context())
	if err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}

	cmd.Printf("Reindexed %d documents (%d pages) in %s\n",
		res.Documents, res.Pages, res.Elapsed.Round(time.Millisecond))
	if len(res.Skipped) > 0 {
		cmd.Printf("Skipped %d documents:\n", len(res.Skipped))
		for _, id := range res.Skipped {
			cmd.Printf("  %s\n", id)
		}
	}
	return nil
}
