// Package cmd - batch command
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"censuskit/internal/census"
)

var (
	batchJSON        bool
	batchConcurrency int
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch [files...]",
	Short: "Validate a set of census files concurrently",
	Long: `Run the full standardization path over several census files at once,
bounded by the configured concurrency limit. Each file gets a run ID that
tags all of its log entries, and results are reported per file in input
order.

Examples:
  censusctl batch drop/january.csv drop/february.xlsx
  censusctl batch --json drop/*.csv > reports.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().BoolVar(&batchJSON, "json", false, "output all file reports as JSON")
	batchCmd.Flags().IntVarP(&batchConcurrency, "concurrency", "c", 0, "max files in flight (default from config)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	files := make([]census.BatchFile, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		files = append(files, census.BatchFile{Name: path, Data: data})
	}

	opts, err := standardizerOptions()
	if err != nil {
		return err
	}
	std := census.NewStandardizer(opts)

	batchOpts := census.BatchOptions{
		MaxConcurrent: cfg.Batch.MaxConcurrent,
		MaxWait:       cfg.Batch.MaxWait,
	}
	if batchConcurrency > 0 {
		batchOpts.MaxConcurrent = batchConcurrency
	}

	reports := census.RunBatch(ctx, std, files, batchOpts)

	if batchJSON {
		return printJSON(reports)
	}

	failed := 0
	for _, fr := range reports {
		switch {
		case fr.Error != "":
			failed++
			fmt.Printf("%-40s ERROR %s\n", fr.FileName, fr.Error)
		default:
			fmt.Printf("%-40s %-12s %d issues, %d records (%dms)\n",
				fr.FileName, fr.Report.Status, fr.Report.IssueCount(),
				len(fr.Report.Records), fr.DurationMs)
		}
	}
	fmt.Printf("\n%d files processed, %d failed\n", len(reports), failed)

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(reports))
	}
	return nil
}
