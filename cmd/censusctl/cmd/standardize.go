// Package cmd - standardize command
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"censuskit/internal/census"
)

var standardizeOut string

// standardizeCmd represents the standardize command
var standardizeCmd = &cobra.Command{
	Use:   "standardize [file]",
	Short: "Emit a census file in the canonical column order",
	Long: `Standardize a census file into the fixed seven-column layout
(first_name, last_name, dob, zip, gender, relationship, enrollment_tier).
Values are normalized where possible; rows with issues are still emitted
so nothing silently disappears, with the issues reported on stderr.

Standardization refuses to run when any required column failed to
resolve, since the output would be missing whole columns. Fix the header
mapping first (see inspect) or configure header_overrides.

The output format follows the -o extension: .xlsx writes a workbook,
anything else writes CSV. Without -o, CSV goes to stdout.

Examples:
  censusctl standardize roster.xlsx > clean.csv
  censusctl standardize -o clean.csv roster.xlsx
  censusctl standardize -o clean.xlsx roster.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runStandardize,
}

func init() {
	standardizeCmd.Flags().StringVarP(&standardizeOut, "output", "o", "", "output path (.csv or .xlsx)")
}

func runStandardize(cmd *cobra.Command, args []string) error {
	table, err := readCensusFile(args[0])
	if err != nil {
		return err
	}

	opts, err := standardizerOptions()
	if err != nil {
		return err
	}
	report := census.NewStandardizer(opts).Run(table)

	if report.Records == nil {
		for _, is := range report.Issues {
			fmt.Fprintf(os.Stderr, "[%s] %s: %s\n", is.Code, is.Field.Label(), is.Message)
		}
		return fmt.Errorf("cannot standardize %s: %d required columns unresolved", args[0], len(report.Issues))
	}

	var out []byte
	if strings.EqualFold(filepath.Ext(standardizeOut), ".xlsx") {
		out, err = census.WriteXLSX(report.Records)
	} else {
		out, err = census.WriteCSV(report.Records)
	}
	if err != nil {
		return err
	}

	if standardizeOut == "" {
		if _, err := os.Stdout.Write(out); err != nil {
			return fmt.Errorf("write stdout: %w", err)
		}
	} else {
		if err := os.WriteFile(standardizeOut, out, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", standardizeOut, err)
		}
		fmt.Fprintf(os.Stderr, "Wrote %d records to %s\n", len(report.Records), standardizeOut)
	}

	if report.IssueCount() > 0 {
		fmt.Fprintf(os.Stderr, "Warning: %d issues on %d rows; run validate for details\n",
			report.IssueCount(), len(report.IssueRows))
	}
	return nil
}
