// Package sqlite provides SQLite database export for mzTab-M documents
package sqlite

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ChrisMcGann/mztabkit/pkg/core"
	mztab "github.com/ChrisMcGann/mztabkit/pkg/writer/mztab"
	_ "github.com/mattn/go-sqlite3"
)

// Date format for ExportInfo (ISO 8601)
const exportDateFormat = "2006-01-02"

// Section labels used in the Abundance and OptValue tables
const (
	sectionSummary  = "SML"
	sectionFeature  = "SMF"
	sectionEvidence = "SME"
)

// Writer handles writing an mzTab-M document to an SQLite database file
type Writer struct {
	db           *sql.DB
	outputPath   string
	metadataStmt *sql.Stmt
	summaryStmt  *sql.Stmt
	featureStmt  *sql.Stmt
	evidenceStmt *sql.Stmt
	abundStmt    *sql.Stmt
	idConfStmt   *sql.Stmt
	optStmt      *sql.Stmt
	meta         *core.Metadata
	rows         int
}

// NewWriter creates a new SQLite writer
func NewWriter(outputPath string) (*Writer, error) {
	db, err := sql.Open("sqlite3", outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	w := &Writer{
		db:         db,
		outputPath: outputPath,
		meta:       &core.Metadata{},
	}

	if err := w.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	if err := w.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}

	return w, nil
}

// createTables creates the required database schema
func (w *Writer) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS Metadata (
		Position INTEGER PRIMARY KEY,
		Label TEXT NOT NULL,
		Value TEXT
	);

	CREATE TABLE IF NOT EXISTS SmallMoleculeSummary (
		SML_ID INTEGER PRIMARY KEY,
		SMF_ID_REFS TEXT,
		DatabaseIdentifier TEXT,
		ChemicalFormula TEXT,
		Smiles TEXT,
		Inchi TEXT,
		ChemicalName TEXT,
		URI TEXT,
		TheoreticalNeutralMass TEXT,
		AdductIons TEXT,
		Reliability TEXT,
		BestIdConfidenceMeasure TEXT,
		BestIdConfidenceValue DOUBLE
	);

	CREATE TABLE IF NOT EXISTS SmallMoleculeFeature (
		SMF_ID INTEGER PRIMARY KEY,
		SME_ID_REFS TEXT,
		SME_ID_REF_AmbiguityCode INTEGER,
		AdductIon TEXT,
		Isotopomer TEXT,
		ExpMassToCharge DOUBLE,
		Charge INTEGER,
		RetentionTime DOUBLE,
		RetentionTimeStart DOUBLE,
		RetentionTimeEnd DOUBLE
	);

	CREATE TABLE IF NOT EXISTS SmallMoleculeEvidence (
		SME_ID INTEGER PRIMARY KEY,
		EvidenceInputId TEXT,
		DatabaseIdentifier TEXT,
		ChemicalFormula TEXT,
		Smiles TEXT,
		Inchi TEXT,
		ChemicalName TEXT,
		URI TEXT,
		DerivatizedForm TEXT,
		AdductIon TEXT,
		ExpMassToCharge DOUBLE,
		Charge INTEGER,
		TheoreticalMassToCharge DOUBLE,
		SpectraRef TEXT,
		IdentificationMethod TEXT,
		MsLevel TEXT,
		Rank INTEGER
	);

	CREATE TABLE IF NOT EXISTS Abundance (
		Section TEXT NOT NULL,
		RowId INTEGER NOT NULL,
		Kind TEXT NOT NULL,
		RefId INTEGER NOT NULL,
		Value DOUBLE
	);

	CREATE TABLE IF NOT EXISTS IdConfidence (
		SME_ID INTEGER REFERENCES SmallMoleculeEvidence(SME_ID),
		MeasureId INTEGER NOT NULL,
		Measure TEXT,
		Value DOUBLE
	);

	CREATE TABLE IF NOT EXISTS OptValue (
		Section TEXT NOT NULL,
		RowId INTEGER NOT NULL,
		ColumnName TEXT NOT NULL,
		Value TEXT
	);

	CREATE TABLE IF NOT EXISTS ExportInfo (
		CreationDate TEXT,
		MzTabVersion TEXT,
		MzTabId TEXT,
		NoofRows INTEGER
	);
	`

	_, err := w.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// prepareStatements prepares SQL statements for batch insertion
func (w *Writer) prepareStatements() error {
	stmts := []struct {
		target **sql.Stmt
		name   string
		query  string
	}{
		{&w.metadataStmt, "metadata", `INSERT INTO Metadata (Position, Label, Value) VALUES (?, ?, ?)`},
		{&w.summaryStmt, "summary", `
			INSERT INTO SmallMoleculeSummary (
				SML_ID, SMF_ID_REFS, DatabaseIdentifier, ChemicalFormula, Smiles,
				Inchi, ChemicalName, URI, TheoreticalNeutralMass, AdductIons,
				Reliability, BestIdConfidenceMeasure, BestIdConfidenceValue
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`},
		{&w.featureStmt, "feature", `
			INSERT INTO SmallMoleculeFeature (
				SMF_ID, SME_ID_REFS, SME_ID_REF_AmbiguityCode, AdductIon, Isotopomer,
				ExpMassToCharge, Charge, RetentionTime, RetentionTimeStart, RetentionTimeEnd
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`},
		{&w.evidenceStmt, "evidence", `
			INSERT INTO SmallMoleculeEvidence (
				SME_ID, EvidenceInputId, DatabaseIdentifier, ChemicalFormula, Smiles,
				Inchi, ChemicalName, URI, DerivatizedForm, AdductIon,
				ExpMassToCharge, Charge, TheoreticalMassToCharge, SpectraRef,
				IdentificationMethod, MsLevel, Rank
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`},
		{&w.abundStmt, "abundance", `INSERT INTO Abundance (Section, RowId, Kind, RefId, Value) VALUES (?, ?, ?, ?, ?)`},
		{&w.idConfStmt, "id confidence", `INSERT INTO IdConfidence (SME_ID, MeasureId, Measure, Value) VALUES (?, ?, ?, ?)`},
		{&w.optStmt, "optional column", `INSERT INTO OptValue (Section, RowId, ColumnName, Value) VALUES (?, ?, ?, ?)`},
	}

	for _, s := range stmts {
		stmt, err := w.db.Prepare(s.query)
		if err != nil {
			return fmt.Errorf("failed to prepare %s statement: %w", s.name, err)
		}
		*s.target = stmt
	}

	return nil
}

// WriteDocument writes metadata and all rows of doc
func (w *Writer) WriteDocument(doc *core.MzTab) error {
	if err := w.WriteMetadata(doc.Metadata); err != nil {
		return err
	}
	for _, r := range doc.SmallMoleculeSummary {
		if err := w.WriteSummary(r); err != nil {
			return err
		}
	}
	for _, r := range doc.SmallMoleculeFeature {
		if err := w.WriteFeature(r); err != nil {
			return err
		}
	}
	for _, r := range doc.SmallMoleculeEvidence {
		if err := w.WriteEvidence(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteMetadata stores the MTD section as ordered key/value pairs. It must be
// called before any row is written; abundance columns are resolved against
// the assays and study variables of meta.
func (w *Writer) WriteMetadata(meta *core.Metadata) error {
	w.meta = meta
	for i, line := range mztab.MetadataLines(meta) {
		// MTD \t label \t value
		parts := strings.SplitN(line, "\t", 3)
		if len(parts) != 3 {
			continue
		}
		if _, err := w.metadataStmt.Exec(i+1, parts[1], parts[2]); err != nil {
			return fmt.Errorf("failed to insert metadata %s: %w", parts[1], err)
		}
	}
	return nil
}

// WriteSummary writes a single SML row
func (w *Writer) WriteSummary(r *core.SmallMoleculeSummary) error {
	masses := make([]string, len(r.TheoreticalNeutralMass))
	for i, m := range r.TheoreticalNeutralMass {
		masses[i] = core.Null
		if m != nil {
			masses[i] = strconv.FormatFloat(*m, 'f', -1, 64)
		}
	}

	_, err := w.summaryStmt.Exec(
		r.ID,                             // SML_ID
		intList(r.SMFIDRefs),             // SMF_ID_REFS
		list(r.DatabaseIdentifier),       // DatabaseIdentifier
		list(r.ChemicalFormula),          // ChemicalFormula
		list(r.Smiles),                   // Smiles
		list(r.Inchi),                    // Inchi
		list(r.ChemicalName),             // ChemicalName
		list(r.URI),                      // URI
		list(masses),                     // TheoreticalNeutralMass
		list(r.AdductIons),               // AdductIons
		text(r.Reliability),              // Reliability
		param(r.BestIDConfidenceMeasure), // BestIdConfidenceMeasure
		double(r.BestIDConfidenceValue),  // BestIdConfidenceValue
	)
	if err != nil {
		return fmt.Errorf("failed to insert summary row %d: %w", r.ID, err)
	}

	if err := w.writeAbundance(sectionSummary, r.ID, "assay", assayIDs(w.meta), r.AbundanceAssay); err != nil {
		return err
	}
	svIDs := studyVariableIDs(w.meta)
	if err := w.writeAbundance(sectionSummary, r.ID, "study_variable", svIDs, r.AbundanceStudyVariable); err != nil {
		return err
	}
	if err := w.writeAbundance(sectionSummary, r.ID, "variation_study_variable", svIDs, r.AbundanceVariationStudyVariable); err != nil {
		return err
	}
	if err := w.writeOpt(sectionSummary, r.ID, r.Opt); err != nil {
		return err
	}

	w.rows++
	return nil
}

// WriteFeature writes a single SMF row
func (w *Writer) WriteFeature(r *core.SmallMoleculeFeature) error {
	_, err := w.featureStmt.Exec(
		r.ID,                                  // SMF_ID
		intList(r.SMEIDRefs),                  // SME_ID_REFS
		integer(r.SMEIDRefAmbiguityCode),      // SME_ID_REF_AmbiguityCode
		text(r.AdductIon),                     // AdductIon
		param(r.Isotopomer),                   // Isotopomer
		double(r.ExpMassToCharge),             // ExpMassToCharge
		integer(r.Charge),                     // Charge
		double(r.RetentionTimeInSeconds),      // RetentionTime
		double(r.RetentionTimeInSecondsStart), // RetentionTimeStart
		double(r.RetentionTimeInSecondsEnd),   // RetentionTimeEnd
	)
	if err != nil {
		return fmt.Errorf("failed to insert feature row %d: %w", r.ID, err)
	}

	if err := w.writeAbundance(sectionFeature, r.ID, "assay", assayIDs(w.meta), r.AbundanceAssay); err != nil {
		return err
	}
	if err := w.writeOpt(sectionFeature, r.ID, r.Opt); err != nil {
		return err
	}

	w.rows++
	return nil
}

// WriteEvidence writes a single SME row
func (w *Writer) WriteEvidence(r *core.SmallMoleculeEvidence) error {
	refs := make([]string, len(r.SpectraRef))
	for i, ref := range r.SpectraRef {
		refs[i] = ref.String()
	}

	_, err := w.evidenceStmt.Exec(
		r.ID,                              // SME_ID
		text(r.EvidenceInputID),           // EvidenceInputId
		text(r.DatabaseIdentifier),        // DatabaseIdentifier
		text(r.ChemicalFormula),           // ChemicalFormula
		text(r.Smiles),                    // Smiles
		text(r.Inchi),                     // Inchi
		text(r.ChemicalName),              // ChemicalName
		text(r.URI),                       // URI
		param(r.DerivatizedForm),          // DerivatizedForm
		text(r.AdductIon),                 // AdductIon
		double(r.ExpMassToCharge),         // ExpMassToCharge
		integer(r.Charge),                 // Charge
		double(r.TheoreticalMassToCharge), // TheoreticalMassToCharge
		list(refs),                        // SpectraRef
		param(r.IdentificationMethod),     // IdentificationMethod
		param(r.MsLevel),                  // MsLevel
		integer(r.Rank),                   // Rank
	)
	if err != nil {
		return fmt.Errorf("failed to insert evidence row %d: %w", r.ID, err)
	}

	for i, v := range r.IDConfidenceMeasure {
		if i >= len(w.meta.IDConfidenceMeasure) {
			break
		}
		m := w.meta.IDConfidenceMeasure[i]
		if _, err := w.idConfStmt.Exec(r.ID, m.ID, param(m.Parameter), double(v)); err != nil {
			return fmt.Errorf("failed to insert id confidence of row %d: %w", r.ID, err)
		}
	}
	if err := w.writeOpt(sectionEvidence, r.ID, r.Opt); err != nil {
		return err
	}

	w.rows++
	return nil
}

// writeAbundance stores values positionally against ids, in metadata order
func (w *Writer) writeAbundance(section string, rowID int, kind string, ids []int, values []*float64) error {
	for i, v := range values {
		if i >= len(ids) {
			break
		}
		if _, err := w.abundStmt.Exec(section, rowID, kind, ids[i], double(v)); err != nil {
			return fmt.Errorf("failed to insert abundance of %s row %d: %w", section, rowID, err)
		}
	}
	return nil
}

func (w *Writer) writeOpt(section string, rowID int, opts []core.OptColumn) error {
	for _, o := range opts {
		if _, err := w.optStmt.Exec(section, rowID, o.Identifier, text(o.Value)); err != nil {
			return fmt.Errorf("failed to insert %s of %s row %d: %w", o.Identifier, section, rowID, err)
		}
	}
	return nil
}

// Rows returns the number of table rows written so far
func (w *Writer) Rows() int { return w.rows }

// Finalize writes the export info table and closes the database
func (w *Writer) Finalize() error {
	_, err := w.db.Exec(`
		INSERT INTO ExportInfo (CreationDate, MzTabVersion, MzTabId, NoofRows)
		VALUES (?, ?, ?, ?)
	`, time.Now().Format(exportDateFormat), text(w.meta.Version), text(w.meta.MzTabID), w.rows)
	if err != nil {
		return fmt.Errorf("failed to insert export info: %w", err)
	}

	for _, stmt := range []*sql.Stmt{
		w.metadataStmt, w.summaryStmt, w.featureStmt, w.evidenceStmt,
		w.abundStmt, w.idConfStmt, w.optStmt,
	} {
		if stmt != nil {
			stmt.Close()
		}
	}

	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

// Close closes the database connection (alias for Finalize)
func (w *Writer) Close() error {
	return w.Finalize()
}

func assayIDs(meta *core.Metadata) []int {
	ids := make([]int, len(meta.Assay))
	for i, a := range meta.Assay {
		ids[i] = a.ID
	}
	return ids
}

func studyVariableIDs(meta *core.Metadata) []int {
	ids := make([]int, len(meta.StudyVariable))
	for i, sv := range meta.StudyVariable {
		ids[i] = sv.ID
	}
	return ids
}

// Value helpers map absent values to SQL NULL.

func text(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func param(p *core.Parameter) any {
	if p == nil {
		return nil
	}
	return p.String()
}

func integer(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func double(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func list(items []string) any {
	if len(items) == 0 {
		return nil
	}
	return strings.Join(items, "|")
}

func intList(items []int) any {
	s := make([]string, len(items))
	for i, v := range items {
		s[i] = strconv.Itoa(v)
	}
	return list(s)
}
