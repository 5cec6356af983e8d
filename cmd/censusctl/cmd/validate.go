// Package cmd - validate command
package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"censuskit/internal/census"
)

var validateJSON bool

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a census file against the rule catalog",
	Long: `Extract a census file, resolve its columns and run every validation
rule: required fields, formats, age plausibility and household tier
reconciliation. Issues carry stable rule codes so downstream tooling can
filter and group them.

Examples:
  censusctl validate roster.csv
  censusctl validate --json roster.xlsx | jq '.issues'`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "output the full report as JSON")
}

func runValidate(cmd *cobra.Command, args []string) error {
	table, err := readCensusFile(args[0])
	if err != nil {
		return err
	}

	opts, err := standardizerOptions()
	if err != nil {
		return err
	}
	report := census.NewStandardizer(opts).Run(table)

	if validateJSON {
		return printJSON(report)
	}

	fmt.Printf("File: %s (%s)\n", args[0], table.Format)
	fmt.Printf("Status: %s\n", report.Status)
	fmt.Printf("Rows: %d data, %d with issues, %d issues total\n",
		len(table.Rows), len(report.IssueRows), report.IssueCount())

	if report.IssueCount() > 0 {
		fmt.Println()
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ROW\tFIELD\tCODE\tMESSAGE\tVALUE")
		for _, is := range report.Issues {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
				is.Row, is.Field.Label(), is.Code, is.Message, is.RawValue)
		}
		w.Flush()
	}
	return nil
}
