// Package cmd provides CLI command implementations
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/mztabkit/pkg/core"
	"github.com/ChrisMcGann/mztabkit/pkg/reader/mztab"
)

var (
	// Shared reader flags
	encoding  string
	level     string
	maxErrors int
	verbose   bool

	// Flags for validate command
	massTolerance float64
	adductCSV     string

	// Flags for convert command
	inputFile         string
	outputFile        string
	outputFormat      string
	maxRank           int
	reliabilities     string
	requireIdentifier bool
)

var rootCmd = &cobra.Command{
	Use:   "mztabkit",
	Short: "mztabkit - mzTab-M validation and conversion tool",
	Long: `mztabkit reads mzTab-M 2.0 files reporting small molecule identification
and quantification results.

It can:
- Validate a file and report every format, logical and cross check problem
- Convert a file to an SQLite database or a normalized mzTab file
- Filter summary and evidence rows before export
- Summarize the declared entities and table sizes`,
	Version: "1.0.0",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(summarizeCmd)

	for _, c := range []*cobra.Command{validateCmd, convertCmd, summarizeCmd} {
		c.Flags().StringVar(&encoding, "encoding", "", "Input character encoding, e.g. latin1 (default UTF-8)")
		c.Flags().IntVar(&maxErrors, "max-errors", mztab.DefaultMaxErrors, "Abort after this many collected errors")
	}

	// Validate command flags
	validateCmd.Flags().StringVar(&level, "level", "info", "Lowest reported severity: info, warn or error")
	validateCmd.Flags().Float64Var(&massTolerance, "mass-tolerance", 0, "Check reported masses against formula and adduct masses within this ppm (0 = off)")
	validateCmd.Flags().StringVar(&adductCSV, "adducts", "", "Path to CSV of extra adduct groups (name,mass)")
	validateCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print every collected error")

	// Convert command flags
	convertCmd.Flags().StringVarP(&inputFile, "in", "i", "", "Input mzTab file (required)")
	convertCmd.Flags().StringVarP(&outputFile, "out", "o", "", "Output file (required)")
	convertCmd.Flags().StringVarP(&outputFormat, "to", "t", "", "Output format: sqlite or mztab (auto-detect if not specified)")
	convertCmd.Flags().IntVar(&maxRank, "max-rank", 0, "Keep only evidence with rank <= N (0 = no limit)")
	convertCmd.Flags().StringVar(&reliabilities, "reliability", "", "Comma-separated reliability values to keep (e.g. '1,2')")
	convertCmd.Flags().BoolVar(&requireIdentifier, "require-identifier", false, "Drop summary rows without a database identifier")

	convertCmd.MarkFlagRequired("in")
	convertCmd.MarkFlagRequired("out")
}

// readDocument parses path with the shared reader flags. A fatal error is
// returned together with whatever was read before it.
func readDocument(path string, lvl mztab.Level) (*core.MzTab, *mztab.ErrorList, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("input file does not exist: %s", path)
	}
	return mztab.ReadFile(path, mztab.Options{
		Level:     lvl,
		MaxErrors: maxErrors,
		Encoding:  encoding,
	})
}

// printErrors writes collected errors to stderr
func printErrors(errs *mztab.ErrorList) {
	if errs == nil {
		return
	}
	for _, e := range errs.Errors() {
		fmt.Fprintf(os.Stderr, "%s: %v\n", e.Type.Level, e)
	}
}
