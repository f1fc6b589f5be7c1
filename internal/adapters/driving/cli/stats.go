package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index and model status",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output stats as JSON")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if statsService == nil {
		return errors.New("stats service not configured")
	}

	stats, err := statsService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	if statsJSON {
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal stats: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println("[Index]")
	cmd.Printf("  Documents:  %s\n", humanize.Comma(int64(stats.Documents)))
	cmd.Printf("  Pages:      %s\n", humanize.Comma(int64(stats.Pages)))
	if stats.Dimensions > 0 {
		cmd.Printf("  Dimensions: %d\n", stats.Dimensions)
	} else {
		cmd.Println("  Dimensions: (empty index)")
	}
	cmd.Printf("  Backend:    %s (%s)\n", stats.IndexBackend, stats.IndexType)
	cmd.Println()

	cmd.Println("[Models]")
	cmd.Printf("  Embedder:   %s\n", stats.Embedder)
	cmd.Printf("  Answerer:   %s\n", stats.Answerer)
	cmd.Printf("  Device:     %s\n", stats.Device)
	cmd.Println()

	cmd.Println("[Process]")
	cmd.Printf("  CPUs:       %d\n", stats.CPUs)
	cmd.Printf("  Memory:     %s\n", humanize.IBytes(stats.MemoryBytes))
	cmd.Printf("  Heap:       %s\n", humanize.IBytes(stats.HeapBytes))
	cmd.Println()

	cmd.Println("[Limits]")
	cmd.Printf("  Upload:     %s\n", humanize.IBytes(uint64(max(stats.Limits.MaxUploadBytes, 0))))
	cmd.Printf("  Pages:      %d\n", stats.Limits.MaxPages)
	cmd.Printf("  DPI:        %d (effective %d)\n", stats.Limits.MaxDPI, stats.Limits.EffectiveDPI())
	return nil
}
