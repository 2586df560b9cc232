// Package mztab provides serialization of mzTab-M documents back to the
// tab separated text format.
package mztab

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/mztabkit/pkg/core"
	parser "github.com/ChrisMcGann/mztabkit/pkg/reader/mztab"
)

// Writer serializes documents to an io.Writer.
type Writer struct {
	w *bufio.Writer
}

// NewWriter creates a writer on w. Call Flush when done.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WriteFile serializes doc to the file at path.
func WriteFile(path string, doc *core.MzTab) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	w := NewWriter(f)
	if err := w.WriteDocument(doc); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	return nil
}

// WriteDocument writes comments, metadata and the three tables of doc.
// Abundance and id confidence columns follow the metadata declaration
// order, which is the order row values are expected in.
func (w *Writer) WriteDocument(doc *core.MzTab) error {
	for _, c := range doc.Comments {
		if err := w.line("COM", c.Text); err != nil {
			return err
		}
	}
	for _, l := range MetadataLines(doc.Metadata) {
		if _, err := w.w.WriteString(l + "\n"); err != nil {
			return fmt.Errorf("failed to write metadata: %w", err)
		}
	}

	meta := doc.Metadata
	if err := w.writeSummary(meta, doc.SmallMoleculeSummary); err != nil {
		return err
	}
	if len(doc.SmallMoleculeFeature) > 0 {
		if err := w.writeFeature(meta, doc.SmallMoleculeFeature); err != nil {
			return err
		}
	}
	if len(doc.SmallMoleculeEvidence) > 0 {
		if err := w.writeEvidence(meta, doc.SmallMoleculeEvidence); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) line(prefix string, fields ...string) error {
	if _, err := w.w.WriteString(prefix + "\t" + strings.Join(fields, "\t") + "\n"); err != nil {
		return fmt.Errorf("failed to write %s line: %w", prefix, err)
	}
	return nil
}

func (w *Writer) blank() error {
	if err := w.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (w *Writer) writeSummary(meta *core.Metadata, rows []*core.SmallMoleculeSummary) error {
	opts := newOptLayout()
	for _, r := range rows {
		opts.collect(r.Opt)
	}

	header := parser.StableColumnNames(parser.SectionSummaryHeader)
	header = append(header, assayColumns(meta)...)
	for _, sv := range meta.StudyVariable {
		header = append(header, parser.AbundanceColumnName(parser.AbundanceStudyVariable, sv.ID))
	}
	for _, sv := range meta.StudyVariable {
		header = append(header, parser.AbundanceColumnName(parser.AbundanceVariationStudyVariable, sv.ID))
	}
	header = append(header, opts.headers...)

	if err := w.blank(); err != nil {
		return err
	}
	if err := w.line("SMH", header...); err != nil {
		return err
	}
	for _, r := range rows {
		fields := []string{
			strconv.Itoa(r.ID),
			intList(r.SMFIDRefs),
			stringList(r.DatabaseIdentifier),
			stringList(r.ChemicalFormula),
			stringList(r.Smiles),
			stringList(r.Inchi),
			stringList(r.ChemicalName),
			stringList(r.URI),
			doubleList(r.TheoreticalNeutralMass),
			stringList(r.AdductIons),
			text(r.Reliability),
			r.BestIDConfidenceMeasure.String(),
			double(r.BestIDConfidenceValue),
		}
		fields = append(fields, measures(r.AbundanceAssay, len(meta.Assay))...)
		fields = append(fields, measures(r.AbundanceStudyVariable, len(meta.StudyVariable))...)
		fields = append(fields, measures(r.AbundanceVariationStudyVariable, len(meta.StudyVariable))...)
		fields = append(fields, opts.values(r.Opt)...)
		if err := w.line("SML", fields...); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeFeature(meta *core.Metadata, rows []*core.SmallMoleculeFeature) error {
	opts := newOptLayout()
	for _, r := range rows {
		opts.collect(r.Opt)
	}

	header := parser.StableColumnNames(parser.SectionFeatureHeader)
	header = append(header, assayColumns(meta)...)
	header = append(header, opts.headers...)

	if err := w.blank(); err != nil {
		return err
	}
	if err := w.line("SFH", header...); err != nil {
		return err
	}
	for _, r := range rows {
		fields := []string{
			strconv.Itoa(r.ID),
			intList(r.SMEIDRefs),
			integer(r.SMEIDRefAmbiguityCode),
			text(r.AdductIon),
			r.Isotopomer.String(),
			double(r.ExpMassToCharge),
			integer(r.Charge),
			double(r.RetentionTimeInSeconds),
			double(r.RetentionTimeInSecondsStart),
			double(r.RetentionTimeInSecondsEnd),
		}
		fields = append(fields, measures(r.AbundanceAssay, len(meta.Assay))...)
		fields = append(fields, opts.values(r.Opt)...)
		if err := w.line("SMF", fields...); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeEvidence(meta *core.Metadata, rows []*core.SmallMoleculeEvidence) error {
	opts := newOptLayout()
	for _, r := range rows {
		opts.collect(r.Opt)
	}

	// id_confidence_measure[n] columns sit between ms_level and rank.
	stable := parser.StableColumnNames(parser.SectionEvidenceHeader)
	header := append([]string(nil), stable[:len(stable)-1]...)
	for _, m := range meta.IDConfidenceMeasure {
		header = append(header, core.ElementRef("id_confidence_measure", m.ID))
	}
	header = append(header, stable[len(stable)-1])
	header = append(header, opts.headers...)

	if err := w.blank(); err != nil {
		return err
	}
	if err := w.line("SEH", header...); err != nil {
		return err
	}
	for _, r := range rows {
		refs := make([]string, len(r.SpectraRef))
		for i, ref := range r.SpectraRef {
			refs[i] = ref.String()
		}
		fields := []string{
			strconv.Itoa(r.ID),
			text(r.EvidenceInputID),
			text(r.DatabaseIdentifier),
			text(r.ChemicalFormula),
			text(r.Smiles),
			text(r.Inchi),
			text(r.ChemicalName),
			text(r.URI),
			r.DerivatizedForm.String(),
			text(r.AdductIon),
			double(r.ExpMassToCharge),
			integer(r.Charge),
			double(r.TheoreticalMassToCharge),
			stringList(refs),
			r.IdentificationMethod.String(),
			r.MsLevel.String(),
		}
		fields = append(fields, measures(r.IDConfidenceMeasure, len(meta.IDConfidenceMeasure))...)
		fields = append(fields, integer(r.Rank))
		fields = append(fields, opts.values(r.Opt)...)
		if err := w.line("SME", fields...); err != nil {
			return err
		}
	}
	return nil
}

func assayColumns(meta *core.Metadata) []string {
	cols := make([]string, len(meta.Assay))
	for i, a := range meta.Assay {
		cols[i] = parser.AbundanceColumnName(parser.AbundanceAssay, a.ID)
	}
	return cols
}

// optLayout is the union of opt columns over all rows of a table, in order
// of first appearance.
type optLayout struct {
	headers []string
	types   map[string]parser.DataType
}

func newOptLayout() *optLayout {
	return &optLayout{types: make(map[string]parser.DataType)}
}

func (l *optLayout) collect(opts []core.OptColumn) {
	for _, o := range opts {
		if _, ok := l.types[o.Identifier]; ok {
			continue
		}
		t := parser.TypeString
		if o.Parameter != nil {
			t = parser.OptColumnType(o.Parameter.CVAccession)
		}
		l.types[o.Identifier] = t
		l.headers = append(l.headers, o.Identifier)
	}
}

// values returns the row's opt values aligned with the layout headers.
func (l *optLayout) values(opts []core.OptColumn) []string {
	byID := make(map[string]string, len(opts))
	for _, o := range opts {
		byID[o.Identifier] = o.Value
	}
	out := make([]string, len(l.headers))
	for i, h := range l.headers {
		v := byID[h]
		if l.types[h] == parser.TypeBoolean {
			switch v {
			case "true":
				v = "1"
			case "false":
				v = "0"
			}
		}
		out[i] = text(v)
	}
	return out
}

func text(s string) string {
	if s == "" {
		return core.Null
	}
	return s
}

func integer(v *int) string {
	if v == nil {
		return core.Null
	}
	return strconv.Itoa(*v)
}

func double(v *float64) string {
	if v == nil {
		return core.Null
	}
	return parser.FormatDouble(*v)
}

func stringList(items []string) string {
	if len(items) == 0 {
		return core.Null
	}
	return strings.Join(items, "|")
}

func intList(items []int) string {
	s := make([]string, len(items))
	for i, v := range items {
		s[i] = strconv.Itoa(v)
	}
	return stringList(s)
}

func doubleList(items []*float64) string {
	s := make([]string, len(items))
	for i, v := range items {
		s[i] = double(v)
	}
	return stringList(s)
}

// measures renders exactly n values, padding missing ones with null.
func measures(values []*float64, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = core.Null
		if i < len(values) {
			out[i] = double(values[i])
		}
	}
	return out
}
