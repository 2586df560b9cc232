package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/mztabkit/pkg/core"
	"github.com/ChrisMcGann/mztabkit/pkg/reader/mztab"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [file]",
	Short: "Summarize mzTab-M file contents",
	Long:  `Print the declared metadata entities, table row counts and quantification coverage of an mzTab-M file.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSummarize,
}

func runSummarize(cmd *cobra.Command, args []string) error {
	doc, errs, err := readDocument(args[0], mztab.LevelError)
	if err != nil {
		printErrors(errs)
		return fmt.Errorf("error reading input file: %w", err)
	}
	meta := doc.Metadata

	fmt.Printf("mzTab-ID:  %s\n", meta.MzTabID)
	fmt.Printf("Version:   %s\n", meta.Version)
	if meta.Title != "" {
		fmt.Printf("Title:     %s\n", meta.Title)
	}

	fmt.Printf("\nMetadata\n")
	fmt.Printf("  Samples:           %d\n", len(meta.Sample))
	fmt.Printf("  MS runs:           %d\n", len(meta.MsRun))
	fmt.Printf("  Assays:            %d\n", len(meta.Assay))
	fmt.Printf("  Study variables:   %d\n", len(meta.StudyVariable))
	fmt.Printf("  Databases:         %d\n", len(meta.Database))
	fmt.Printf("  CVs:               %d\n", len(meta.CV))
	fmt.Printf("  Confidence scores: %d\n", len(meta.IDConfidenceMeasure))

	fmt.Printf("\nTables\n")
	fmt.Printf("  Summary rows:  %d (%d identified, %d quantified)\n",
		len(doc.SmallMoleculeSummary), identified(doc), quantified(doc))
	fmt.Printf("  Feature rows:  %d\n", len(doc.SmallMoleculeFeature))
	fmt.Printf("  Evidence rows: %d\n", len(doc.SmallMoleculeEvidence))
	if len(doc.Comments) > 0 {
		fmt.Printf("  Comments:      %d\n", len(doc.Comments))
	}

	if n := errs.Len(); n > 0 {
		fmt.Fprintf(os.Stderr, "\n%d errors found, run validate for details\n", n)
	}
	return nil
}

// identified counts summary rows with at least one database identifier
func identified(doc *core.MzTab) int {
	n := 0
	for _, s := range doc.SmallMoleculeSummary {
		for _, id := range s.DatabaseIdentifier {
			if id != core.Null {
				n++
				break
			}
		}
	}
	return n
}

// quantified counts summary rows with at least one assay abundance
func quantified(doc *core.MzTab) int {
	n := 0
	for _, s := range doc.SmallMoleculeSummary {
		for _, v := range s.AbundanceAssay {
			if v != nil {
				n++
				break
			}
		}
	}
	return n
}
