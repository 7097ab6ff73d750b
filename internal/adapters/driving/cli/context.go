package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	contextK        int
	contextMaxChars int
	contextSources  []string
)

var contextCmd = &cobra.Command{
	Use:   "context [query]",
	Short: "Print the context composed for a query",
	Long: `Retrieves the chunks nearest to the query and prints them the way they are
handed to the language model: each block tagged with its source document and
the whole bounded by a character budget.`,
	Args: cobra.ExactArgs(1),
	RunE: runContext,
}

func init() {
	contextCmd.Flags().IntVarP(&contextK, "top-k", "k", 0, "number of chunks to retrieve (0 = settings)")
	contextCmd.Flags().IntVar(&contextMaxChars, "max-chars", 0, "character budget (0 = settings)")
	contextCmd.Flags().StringSliceVarP(&contextSources, "source", "s", nil, "restrict retrieval to these documents")
	rootCmd.AddCommand(contextCmd)
}

func runContext(cmd *cobra.Command, args []string) error {
	if contextService == nil {
		return errors.New("context service not configured")
	}

	k := contextK
	if k <= 0 {
		k = contextDefaults.TopK
	}
	maxChars := contextMaxChars
	if maxChars <= 0 {
		maxChars = contextDefaults.MaxChars
	}

	text, err := contextService.Compose(cmd.Context(), args[0], k, contextSources, maxChars)
	if err != nil {
		return fmt.Errorf("compose context: %w", err)
	}
	if text == "" {
		cmd.Println("No context found.")
		return nil
	}
	cmd.Println(text)
	return nil
}
