// Package cmd - inspect command
package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"censuskit/internal/census"
)

var (
	inspectJSON    bool
	inspectSamples int
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect [file]",
	Short: "Show detected columns, sample values and field resolution",
	Long: `Extract a census file and show each detected column alongside the
logical field it resolved to and its first non-blank values. This is the
view a mapping UI needs to let an operator confirm or correct the
resolution before standardizing.

Examples:
  censusctl inspect roster.xlsx
  censusctl inspect --samples 5 roster.csv
  censusctl inspect --json roster.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "output as JSON")
	inspectCmd.Flags().IntVarP(&inspectSamples, "samples", "n", 0, "sample values per column (default from config)")
}

func runInspect(cmd *cobra.Command, args []string) error {
	table, err := readCensusFile(args[0])
	if err != nil {
		return err
	}

	samples := inspectSamples
	if samples <= 0 {
		samples = cfg.Census.SampleSize
	}
	previews := census.Preview(table, samples)

	overrides, err := fieldOverrides(cfg.Census.HeaderOverrides)
	if err != nil {
		return err
	}
	resolution, headerIssues := census.Resolve(table.Headers, overrides, nil)

	if inspectJSON {
		return printJSON(struct {
			Format     census.Format          `json:"format"`
			Rows       int                    `json:"rows"`
			Columns    []census.HeaderPreview `json:"columns"`
			Resolution census.Resolution      `json:"resolution"`
			Issues     []census.Issue         `json:"issues"`
		}{table.Format, len(table.Rows), previews, resolution, headerIssues})
	}

	fieldByHeader := make(map[string]census.Field, len(resolution))
	for f, h := range resolution {
		fieldByHeader[h] = f
	}

	fmt.Printf("File: %s (%s, %d data rows)\n\n", args[0], table.Format, len(table.Rows))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "COLUMN\tFIELD\tSAMPLES")
	for _, p := range previews {
		field := ""
		if f, ok := fieldByHeader[p.Header]; ok {
			field = string(f)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.Header, field, strings.Join(p.Samples, ", "))
	}
	w.Flush()

	if len(headerIssues) > 0 {
		fmt.Println()
		for _, is := range headerIssues {
			fmt.Printf("[%s] %s: %s\n", is.Code, is.Field.Label(), is.Message)
		}
	}
	return nil
}
