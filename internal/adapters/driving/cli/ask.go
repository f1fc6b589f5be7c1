package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pagelens/internal/core/domain"
)

var (
	askTopK int
	askJSON bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about indexed PDFs",
	Long: `Embeds the question, retrieves the most similar pages and asks the
answering model, which sees the page images. The pages used are listed as
evidence with their similarity scores.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", domain.DefaultTopK, "number of evidence pages (1-10)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}
	if askTopK < 1 || askTopK > domain.MaxTopK {
		return fmt.Errorf("--top-k must be between 1 and %d", domain.MaxTopK)
	}

	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return errors.New("question must not be empty")
	}

	answer, err := answerService.Answer(cmd.Context(), question, askTopK)
	if err != nil {
		return fmt.Errorf("answer failed: %w", err)
	}

	if askJSON {
		return outputAnswerJSON(cmd, answer)
	}
	outputAnswerText(cmd, answer)
	return nil
}

func outputAnswerJSON(cmd *cobra.Command, answer *domain.Answer) error {
	out := *answer
	out.Evidence = make([]domain.Evidence, len(answer.Evidence))
	for i, ev := range answer.Evidence {
		ev.Score = float32(ev.RoundedScore())
		out.Evidence[i] = ev
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAnswerText(cmd *cobra.Command, answer *domain.Answer) {
	cmd.Println(answer.Text)
	if len(answer.Evidence) == 0 {
		return
	}

	cmd.Println()
	cmd.Println("Evidence:")
	for i, ev := range answer.Evidence {
		cmd.Printf("  [%d] %s page %d (%.4f)\n", i+1, ev.DocID, ev.Page, ev.RoundedScore())
		cmd.Printf("      %s\n", ev.ImagePath)
	}
}
