package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/athena/internal/core/domain"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Index documents",
	Long: `Extracts the text of each file, splits it into overlapping chunks and
indexes their embeddings. Embedded PDF images are saved alongside.

Files whose content has not changed since the last ingest are skipped.
A changed file replaces its earlier version.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return errors.New("ingestion service not configured")
	}

	var errs []error
	for _, path := range args {
		report, err := ingestionService.IngestFile(cmd.Context(), path)
		if err != nil {
			cmd.Printf("  %s: FAILED: %v\n", path, err)
			errs = append(errs, fmt.Errorf("ingest %s: %w", path, err))
			continue
		}
		printIngestReport(cmd, report)
	}
	return errors.Join(errs...)
}

func printIngestReport(cmd *cobra.Command, report *domain.IngestReport) {
	switch {
	case report.Skipped:
		cmd.Printf("  %s: unchanged, skipped\n", report.SourceID)
	case report.Replaced:
		cmd.Printf("  %s: replaced (%d chunks, %d images)\n", report.SourceID, report.ChunksAdded, report.ImagesFound)
	default:
		cmd.Printf("  %s: indexed (%d chunks, %d images)\n", report.SourceID, report.ChunksAdded, report.ImagesFound)
	}
}
