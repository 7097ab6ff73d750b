package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/athena/internal/core/domain"
)

const snippetChars = 120

var (
	searchLimit   int
	searchJSON    bool
	searchSources []string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long: `Finds the indexed chunks semantically nearest to the query.
Results are ordered by squared L2 distance between embeddings, nearest first.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (0 = settings)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().StringSliceVarP(&searchSources, "source", "s", nil, "restrict results to these documents")
	rootCmd.AddCommand(searchCmd)
}

type searchResultJSON struct {
	ChunkID  int     `json:"chunk_id"`
	Source   string  `json:"source"`
	Distance float32 `json:"distance"`
	Text     string  `json:"text"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	if contextService == nil {
		return errors.New("context service not configured")
	}

	limit := searchLimit
	if limit <= 0 {
		limit = contextDefaults.TopK
	}

	hits, err := contextService.Retrieve(cmd.Context(), args[0], limit, searchSources)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, hits)
	}
	outputSearchTable(cmd, hits)
	return nil
}

func outputSearchJSON(cmd *cobra.Command, hits []domain.ContextHit) error {
	results := make([]searchResultJSON, len(hits))
	for i, hit := range hits {
		results[i] = searchResultJSON{
			ChunkID:  hit.Chunk.ID,
			Source:   hit.Chunk.SourceID,
			Distance: hit.Distance,
			Text:     hit.Chunk.Text,
		}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, hits []domain.ContextHit) {
	if len(hits) == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, hit := range hits {
		cmd.Printf("  [%d] %s #%d (%.4f)\n", i+1, hit.Chunk.SourceID, hit.Chunk.ID, hit.Distance)
		cmd.Printf("      %s\n", snippet(hit.Chunk.Text))
		cmd.Println()
	}
}

// snippet flattens text to one line of at most snippetChars characters.
func snippet(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= snippetChars {
		return text
	}
	runes := []rune(text)
	return string(runes[:snippetChars]) + "..."
}
