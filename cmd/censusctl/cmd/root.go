// Package cmd provides the CLI commands for censusctl.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"censuskit/internal/census"
	"censuskit/internal/config"
	"censuskit/internal/logging"
	"censuskit/internal/network"
)

var (
	cfgFile string
	verbose bool

	cfg = config.Default()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "censusctl",
	Short: "Standardize employer census files and assign provider networks",
	Long: `censusctl ingests employer census files (CSV, XLS, XLSX), maps their
columns onto the canonical census fields, validates every row against the
rule catalog and emits standardized output in a fixed column order.

The assign command additionally recommends a primary provider network from
member ZIP codes and a zip-to-network reference table, with a full
per-member audit trail.

Examples:
  censusctl inspect roster.xlsx
  censusctl validate --json roster.csv
  censusctl standardize -o clean.csv roster.xlsx
  censusctl assign --mapping networks.csv roster.csv
  censusctl batch drop/january.csv drop/february.xlsx`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (TOML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(standardizeCmd)
	rootCmd.AddCommand(assignCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	// An explicitly named config file must exist; the default search is
	// allowed to come up empty.
	if cfgFile != "" {
		if _, err := os.Stat(cfgFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	loaded, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	cfg = loaded

	if verbose {
		cfg.Logging.Level = "debug"
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("censusctl version 0.1.0")
	},
}

// readCensusFile loads a census file and extracts its table, selecting
// the parser from the file extension.
func readCensusFile(path string) (*census.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	table, err := census.Extract(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", path, err)
	}
	return table, nil
}

// standardizerOptions converts census configuration into engine options.
func standardizerOptions() (census.Options, error) {
	overrides, err := fieldOverrides(cfg.Census.HeaderOverrides)
	if err != nil {
		return census.Options{}, err
	}
	return census.Options{
		Overrides: overrides,
		Dicts: census.Dictionaries{
			Gender:       cfg.Census.GenderSynonyms,
			Relationship: cfg.Census.RelationshipSynonyms,
			Tier:         cfg.Census.TierSynonyms,
		},
	}, nil
}

// fieldOverrides resolves configured override keys to logical fields,
// accepting "zip", "first name" and "first_name" spellings alike.
func fieldOverrides(raw map[string]string) (map[census.Field]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	known := make(map[string]census.Field)
	for _, f := range append(census.RequiredFields(), census.FieldHousehold) {
		known[string(f)] = f
	}

	out := make(map[census.Field]string, len(raw))
	for key, header := range raw {
		name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), " ", "_")
		f, ok := known[name]
		if !ok {
			return nil, fmt.Errorf("unknown logical field %q in header_overrides", key)
		}
		out[f] = header
	}
	return out, nil
}

// assignmentSettings builds the network decision inputs from config.
func assignmentSettings() network.Settings {
	return network.Settings{
		DefaultNetwork:    cfg.Network.DefaultNetwork,
		CoverageThreshold: cfg.Network.CoverageThreshold,
	}
}

// printJSON writes indented JSON to stdout for piping into other tools.
func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
