// Package cmd - assign command
package cmd

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"censuskit/internal/census"
	"censuskit/internal/network"
)

var (
	assignMapping   string
	assignDefault   string
	assignThreshold float64
	assignJSON      bool
	assignMembers   bool
)

// assignCmd represents the assign command
var assignCmd = &cobra.Command{
	Use:   "assign [file]",
	Short: "Recommend a primary provider network from member ZIP codes",
	Long: `Map every member row's ZIP through the zip-to-network reference table
and recommend a primary network: the best-covered direct-contract network
when it meets the coverage threshold, MIXED_NETWORK when membership splits
materially across several, and the default wrap network otherwise.

Rows whose ZIP is missing or invalid are excluded from the percentages,
reported in the audit trail and flag the census as incomplete.

Examples:
  censusctl assign --mapping networks.csv roster.csv
  censusctl assign --mapping networks.csv --threshold 0.8 roster.xlsx
  censusctl assign --json --members roster.csv | jq '.member_assignments'`,
	Args: cobra.ExactArgs(1),
	RunE: runAssign,
}

func init() {
	assignCmd.Flags().StringVarP(&assignMapping, "mapping", "m", "", "zip-to-network mapping file (default from config)")
	assignCmd.Flags().StringVar(&assignDefault, "default-network", "", "fallback network for unmapped ZIPs")
	assignCmd.Flags().Float64Var(&assignThreshold, "threshold", 0, "coverage threshold in [0,1]")
	assignCmd.Flags().BoolVar(&assignJSON, "json", false, "output the full result as JSON")
	assignCmd.Flags().BoolVar(&assignMembers, "members", false, "include the per-member audit trail")
}

func runAssign(cmd *cobra.Command, args []string) error {
	table, err := readCensusFile(args[0])
	if err != nil {
		return err
	}

	mappingPath := assignMapping
	if mappingPath == "" {
		mappingPath = cfg.Network.MappingFile
	}
	if mappingPath == "" {
		return fmt.Errorf("no mapping file: pass --mapping or set network.mapping_file")
	}
	f, err := os.Open(mappingPath)
	if err != nil {
		return fmt.Errorf("open mapping %s: %w", mappingPath, err)
	}
	mapping, err := network.LoadMapping(f)
	f.Close()
	if err != nil {
		return err
	}

	settings := assignmentSettings()
	if cmd.Flags().Changed("default-network") {
		settings.DefaultNetwork = assignDefault
	}
	if cmd.Flags().Changed("threshold") {
		settings.CoverageThreshold = assignThreshold
	}

	overrides, err := fieldOverrides(cfg.Census.HeaderOverrides)
	if err != nil {
		return err
	}
	resolution, _ := census.Resolve(table.Headers, overrides, nil)
	zipHeader, ok := resolution[census.FieldZip]
	if !ok {
		return fmt.Errorf("no ZIP column found in %s: check headers with inspect or set a header override", args[0])
	}

	result, err := network.Assign(table.Rows, zipHeader, mapping, settings)
	if err != nil {
		return err
	}

	if assignJSON {
		if !assignMembers {
			trimmed := *result
			trimmed.MemberAssignments = nil
			return printJSON(&trimmed)
		}
		return printJSON(result)
	}

	fmt.Printf("Primary network: %s\n", result.PrimaryNetwork)
	fmt.Printf("Coverage: %.1f%% of %d members (confidence %.2f)\n",
		result.CoveragePercentage*100, result.TotalMembers, result.Confidence())
	if result.FallbackUsed {
		fmt.Println("Fallback: no direct-contract network met the threshold")
	}
	if result.CensusIncomplete {
		fmt.Printf("Census incomplete: %d rows excluded for missing or invalid ZIPs\n", len(result.InvalidRows))
	}
	if result.ReviewRequired {
		fmt.Println("Review required before finalizing this recommendation")
	}

	if len(result.CoverageByNetwork) > 0 {
		names := make([]string, 0, len(result.CoverageByNetwork))
		for n := range result.CoverageByNetwork {
			names = append(names, n)
		}
		sort.Slice(names, func(i, j int) bool {
			a, b := result.CoverageByNetwork[names[i]], result.CoverageByNetwork[names[j]]
			if a != b {
				return a > b
			}
			return names[i] < names[j]
		})

		fmt.Println()
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NETWORK\tCOVERAGE")
		for _, n := range names {
			fmt.Fprintf(w, "%s\t%.1f%%\n", n, result.CoverageByNetwork[n]*100)
		}
		w.Flush()
	}

	if len(result.InvalidRows) > 0 {
		fmt.Println()
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ROW\tZIP\tREASON")
		for _, inv := range result.InvalidRows {
			fmt.Fprintf(w, "%d\t%s\t%s\n", inv.Row, inv.RawZip, inv.Reason)
		}
		w.Flush()
	}

	if assignMembers {
		fmt.Println()
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ROW\tZIP\tNETWORK\tMATCHED")
		for _, m := range result.MemberAssignments {
			fmt.Fprintf(w, "%d\t%s\t%s\t%v\n", m.Row, m.Zip, m.Network, m.Matched)
		}
		w.Flush()
	}
	return nil
}
