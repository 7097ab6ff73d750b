package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/athena/internal/core/domain"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the question and answer history",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var historyToggleCmd = &cobra.Command{
	Use:   "toggle <turn-id>",
	Short: "Show or hide the translation of an answer",
	Long: `Toggles the translation of a previous answer. An English answer is
translated into the language the question was asked in; any other answer is
translated into English. Running the command again hides the translation.`,
	Args: cobra.ExactArgs(1),
	RunE: runHistoryToggle,
}

func init() {
	historyCmd.AddCommand(historyToggleCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	turns, err := chatService.History(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	if len(turns) == 0 {
		cmd.Println("No questions asked yet.")
		return nil
	}

	for i := range turns {
		printTurn(cmd, &turns[i])
	}
	return nil
}

func runHistoryToggle(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	turn, err := chatService.ToggleTranslation(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("toggle translation: %w", err)
	}
	printTurn(cmd, turn)
	return nil
}

func printTurn(cmd *cobra.Command, turn *domain.ChatTurn) {
	cmd.Printf("[%s] %s\n", turn.ID, turn.CreatedAt.Format("2006-01-02 15:04"))
	cmd.Printf("  Q (%s): %s\n", turn.QueryLang, turn.Query)
	cmd.Printf("  A (%s): %s\n", turn.ResponseLang, turn.Response)
	if turn.HasTranslation() {
		cmd.Printf("  %s: %s\n", turn.TranslationLang.DisplayName(), *turn.CachedTranslation)
	}
	cmd.Println()
}
