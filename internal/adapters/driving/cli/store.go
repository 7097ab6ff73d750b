package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var resetConfirmed bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index statistics",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List ingested documents",
	Args:  cobra.NoArgs,
	RunE:  runSources,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every indexed document",
	Long: `Removes all chunks, source records, extracted images and stored uploads.
Settings and prompts are kept.`,
	Args: cobra.NoArgs,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVarP(&resetConfirmed, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(resetCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if storeService == nil {
		return errors.New("store service not configured")
	}

	status, err := storeService.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	cmd.Println("Index Status")
	cmd.Println("============")
	cmd.Printf("  Documents: %d\n", status.Sources)
	cmd.Printf("  Chunks: %d (%d retired)\n", status.Chunks, status.RetiredChunks)
	cmd.Printf("  Images: %d\n", status.Images)
	if status.Dimensions > 0 {
		cmd.Printf("  Dimensions: %d\n", status.Dimensions)
	} else {
		cmd.Println("  Dimensions: (empty index)")
	}
	return nil
}

func runSources(cmd *cobra.Command, _ []string) error {
	if storeService == nil {
		return errors.New("store service not configured")
	}

	sources, err := storeService.Sources(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}
	if len(sources) == 0 {
		cmd.Println("No documents ingested.")
		return nil
	}

	for i := range sources {
		src := &sources[i]
		cmd.Printf("  %s\n", src.ID)
		cmd.Printf("      Chunks: %d  Images: %d  Updated: %s\n",
			len(src.ChunkIDs), len(src.Images), src.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runReset(cmd *cobra.Command, _ []string) error {
	if storeService == nil {
		return errors.New("store service not configured")
	}

	if !resetConfirmed {
		cmd.Print("This deletes every indexed document. Continue? [y/N]: ")
		answer := strings.ToLower(readLine(bufio.NewReader(cmd.InOrStdin())))
		if answer != "y" && answer != "yes" {
			cmd.Println("Aborted.")
			return nil
		}
	}

	if err := storeService.Reset(cmd.Context()); err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}
	cmd.Println("Index cleared.")
	return nil
}
