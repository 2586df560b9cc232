package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/mztabkit/pkg/core"
	"github.com/ChrisMcGann/mztabkit/pkg/reader/mztab"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate an mzTab-M file",
	Long: `Validate that an mzTab-M file is properly formatted and internally consistent.

A fatal problem stops the parse and is reported on its own. Otherwise every
collected problem at or above --level is counted, and the command fails if
any were found.

Examples:
  # Report everything
  mztabkit validate study.mztab -v

  # Only errors, and check formula and adduct masses within 5 ppm
  mztabkit validate study.mztab --level error --mass-tolerance 5 --adducts adducts.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	lvl, err := mztab.ParseLevel(level)
	if err != nil {
		return err
	}

	path := args[0]
	fmt.Printf("Validating %s...\n", path)

	doc, errs, err := readDocument(path, lvl)
	if err != nil {
		if errs == nil {
			return err
		}
		printErrors(errs)
		return fmt.Errorf("validation stopped: %w", err)
	}

	if verbose {
		printErrors(errs)
	}

	problems := errs.Len()
	if massTolerance > 0 {
		adducts, err := loadAdducts()
		if err != nil {
			return err
		}
		mismatches := core.CheckNeutralMasses(doc.SmallMoleculeSummary, massTolerance)
		mismatches = append(mismatches, core.CheckEvidenceMasses(doc.SmallMoleculeEvidence, adducts, massTolerance)...)
		for _, m := range mismatches {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", m)
		}
		if lvl <= mztab.LevelWarn {
			problems += len(mismatches)
		}
	}

	fmt.Printf("Summary rows: %d, feature rows: %d, evidence rows: %d\n",
		len(doc.SmallMoleculeSummary), len(doc.SmallMoleculeFeature), len(doc.SmallMoleculeEvidence))
	if problems > 0 {
		if !verbose {
			fmt.Fprintf(os.Stderr, "Use --verbose to list them\n")
		}
		return fmt.Errorf("%d problems at level %s or above", problems, lvl)
	}

	fmt.Printf("No problems found\n")
	return nil
}

// loadAdducts returns the default adduct groups plus those in --adducts
func loadAdducts() (*core.AdductDatabase, error) {
	db := core.DefaultAdductDatabase()
	if adductCSV == "" {
		return db, nil
	}

	f, err := os.Open(adductCSV)
	if err != nil {
		return nil, fmt.Errorf("failed to open adduct CSV: %w", err)
	}
	defer f.Close()

	if err := db.LoadFromCSV(f); err != nil {
		return nil, fmt.Errorf("failed to load adduct CSV: %w", err)
	}
	return db, nil
}
