package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/mztabkit/pkg/core"
	"github.com/ChrisMcGann/mztabkit/pkg/filter"
	"github.com/ChrisMcGann/mztabkit/pkg/reader/mztab"
	mztabwriter "github.com/ChrisMcGann/mztabkit/pkg/writer/mztab"
	"github.com/ChrisMcGann/mztabkit/pkg/writer/sqlite"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert an mzTab-M file to SQLite or normalized mzTab",
	Long: `Convert an mzTab-M file to an SQLite database, or rewrite it as a normalized
mzTab file, optionally filtering rows first.

Examples:
  # Export to SQLite
  mztabkit convert --in study.mztab --out study.db

  # Keep only top ranked evidence with confident identifications
  mztabkit convert --in study.mztab --out filtered.mztab --max-rank 1 --reliability 1,2`,
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	format, err := detectOutputFormat()
	if err != nil {
		return err
	}

	fmt.Printf("Converting %s to %s...\n", inputFile, outputFile)
	fmt.Printf("Format: %s\n", format)

	// Fatal and error level problems stop the conversion
	doc, errs, err := readDocument(inputFile, mztab.LevelWarn)
	if err != nil {
		printErrors(errs)
		return fmt.Errorf("error reading input file: %w", err)
	}
	if n := len(errs.Filter(mztab.LevelError)); n > 0 {
		printErrors(errs)
		return fmt.Errorf("input has %d errors, run validate for details", n)
	}
	for _, e := range errs.Errors() {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", e)
	}

	filterConfig := &filter.Config{
		MaxRank:           maxRank,
		RequireIdentifier: requireIdentifier,
	}
	if reliabilities != "" {
		filterConfig.Reliabilities = strings.Split(reliabilities, ",")
		for i := range filterConfig.Reliabilities {
			filterConfig.Reliabilities[i] = strings.TrimSpace(filterConfig.Reliabilities[i])
		}
	}
	if filterConfig.Enabled() {
		stats := filterConfig.Apply(doc)
		fmt.Printf("Filtered: %d summary rows, %d evidence rows\n", stats.Summary, stats.Evidence)
		if stats.Refs > 0 {
			fmt.Printf("Pruned %d feature references to filtered evidence\n", stats.Refs)
		}
	}

	switch format {
	case "sqlite":
		err = convertSQLite(doc)
	default:
		err = mztabwriter.WriteFile(outputFile, doc)
	}
	if err != nil {
		return err
	}

	fmt.Printf("\nConversion complete!\n")
	fmt.Printf("Summary: %d, features: %d, evidence: %d rows\n",
		len(doc.SmallMoleculeSummary), len(doc.SmallMoleculeFeature), len(doc.SmallMoleculeEvidence))
	fmt.Printf("Output: %s\n", outputFile)
	return nil
}

// detectOutputFormat resolves --to, falling back to the output extension
func detectOutputFormat() (string, error) {
	format := strings.ToLower(outputFormat)
	if format == "" {
		ext := strings.ToLower(filepath.Ext(outputFile))
		switch ext {
		case ".db", ".sqlite", ".sqlite3":
			format = "sqlite"
		case ".mztab", ".txt", ".tsv":
			format = "mztab"
		default:
			return "", fmt.Errorf("cannot auto-detect format from extension '%s', please specify --to", ext)
		}
	}
	if format != "sqlite" && format != "mztab" {
		return "", fmt.Errorf("invalid output format '%s', must be sqlite or mztab", format)
	}
	return format, nil
}

func convertSQLite(doc *core.MzTab) error {
	writer, err := sqlite.NewWriter(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output database: %w", err)
	}

	if err := writer.WriteMetadata(doc.Metadata); err != nil {
		writer.Close()
		return err
	}

	progress := func() {
		if n := writer.Rows(); n%1000 == 0 {
			fmt.Printf("Processed %d rows...\n", n)
		}
	}
	for _, r := range doc.SmallMoleculeSummary {
		if err := writer.WriteSummary(r); err != nil {
			writer.Close()
			return err
		}
		progress()
	}
	for _, r := range doc.SmallMoleculeFeature {
		if err := writer.WriteFeature(r); err != nil {
			writer.Close()
			return err
		}
		progress()
	}
	for _, r := range doc.SmallMoleculeEvidence {
		if err := writer.WriteEvidence(r); err != nil {
			writer.Close()
			return err
		}
		progress()
	}

	if err := writer.Finalize(); err != nil {
		return fmt.Errorf("failed to finalize database: %w", err)
	}
	return nil
}
