package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/athena/internal/adapters/driving/watch"
	"github.com/custodia-labs/athena/internal/core/domain"
)

var (
	watchDebounce time.Duration
	watchExisting bool
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Index documents as they appear in a folder",
	Long: `Watches a folder and ingests supported files when they are created or
modified. Files already in the folder are ingested first unless
--existing=false is given. Press Ctrl+C to stop.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "quiet period before a changed file is ingested")
	watchCmd.Flags().BoolVar(&watchExisting, "existing", true, "ingest files already in the folder")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return errors.New("ingestion service not configured")
	}

	dir := args[0]
	w := watch.New(ingestionService,
		watch.WithDebounce(watchDebounce),
		watch.WithResultFunc(func(path string, report *domain.IngestReport, err error) {
			if err != nil {
				cmd.Printf("  %s: FAILED: %v\n", path, err)
				return
			}
			printIngestReport(cmd, report)
		}),
	)

	if watchExisting {
		if err := w.IngestExisting(cmd.Context(), dir); err != nil {
			// Individual failures were already reported; keep watching.
			cmd.Printf("Some existing files could not be indexed: %v\n", err)
		}
	}

	if err := w.Run(cmd.Context(), dir); err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}
