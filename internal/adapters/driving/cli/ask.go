package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askSources []string

var askCmd = &cobra.Command{
	Use:   "ask [question...]",
	Short: "Ask a question about your documents",
	Long: `Answers a question from the indexed documents.

The question may be written in any language. It is translated to English for
retrieval and generation, and the answer is translated back.

Examples:
  athena ask "What is Newton's second law?"
  athena ask --source physics.pdf "ما هو قانون نيوتن الثاني؟"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringSliceVarP(&askSources, "source", "s", nil, "restrict retrieval to these documents")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	question := strings.Join(args, " ")
	turn, err := chatService.Ask(cmd.Context(), question, askSources)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	cmd.Println(turn.Response)
	cmd.Println()
	cmd.Printf("(turn %s, %s; run 'athena history toggle %s' for the translation)\n",
		turn.ID, turn.ResponseLang.DisplayName(), turn.ID)
	return nil
}
