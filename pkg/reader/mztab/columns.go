package mztab

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/mztabkit/pkg/core"
)

// DataType is the value type of a column.
type DataType int

const (
	TypeString DataType = iota
	TypeInteger
	TypeDouble
	TypeBoolean
	TypeParam
	TypeIntegerList
	TypeStringList
	TypeDoubleList
	TypeSpectraRef
)

func (t DataType) String() string {
	return [...]string{"String", "Integer", "Double", "Boolean", "Parameter",
		"IntegerList", "StringList", "DoubleList", "SpectraRef"}[t]
}

// Logical positions. Stable columns use their 1-based schema index; the
// other kinds use a base plus the referenced id (or the physical order for
// opt columns), so their position does not depend on the file.
const (
	abundanceAssayBase     = 100000
	abundanceStudyVarBase  = 200000
	abundanceVariationBase = 300000
	idConfidenceBase       = 400000
	optionalBase           = 1000000
)

// Column is a resolved header column. The concrete type is one of
// *StableColumn, *AbundanceColumn, *OptionalColumn or *IDConfidenceColumn.
type Column interface {
	Header() string
	LogicalPosition() int
	Order() int
	DataType() DataType
	IsOptional() bool
	isColumn()
}

type columnBase struct {
	header   string
	logical  int
	order    int
	dataType DataType
	optional bool
}

// Header returns the column name exactly as written in the header line.
func (c *columnBase) Header() string { return c.header }

// LogicalPosition returns the file independent position of the column.
func (c *columnBase) LogicalPosition() int { return c.logical }

// Order returns the 1-based physical order of the column in its header.
func (c *columnBase) Order() int { return c.order }

// DataType returns the value type of the column.
func (c *columnBase) DataType() DataType { return c.dataType }

// IsOptional reports whether the column is outside the stable schema.
func (c *columnBase) IsOptional() bool { return c.optional }

func (c *columnBase) isColumn() {}

// StableColumn is a column whose name and type are fixed for its section.
type StableColumn struct {
	columnBase
	AllowNull bool
}

// Name returns the canonical column name.
func (c *StableColumn) Name() string { return c.header }

// AbundanceKind distinguishes the three abundance column families.
type AbundanceKind int

const (
	AbundanceAssay AbundanceKind = iota
	AbundanceStudyVariable
	AbundanceVariationStudyVariable
)

var abundanceKindNames = map[string]AbundanceKind{
	"assay":                    AbundanceAssay,
	"study_variable":           AbundanceStudyVariable,
	"variation_study_variable": AbundanceVariationStudyVariable,
}

// AbundanceColumnName returns the canonical header of an abundance column.
func AbundanceColumnName(kind AbundanceKind, id int) string {
	switch kind {
	case AbundanceStudyVariable:
		return fmt.Sprintf("abundance_study_variable[%d]", id)
	case AbundanceVariationStudyVariable:
		return fmt.Sprintf("abundance_variation_study_variable[%d]", id)
	}
	return fmt.Sprintf("abundance_assay[%d]", id)
}

// AbundanceColumn holds quantities for one assay or study variable.
type AbundanceColumn struct {
	columnBase
	Kind          AbundanceKind
	Assay         *core.Assay
	StudyVariable *core.StudyVariable
}

// OptScope is the element an opt_ column is attached to.
type OptScope string

const (
	ScopeGlobal        OptScope = "global"
	ScopeAssay         OptScope = kindAssay
	ScopeStudyVariable OptScope = kindStudyVariable
	ScopeMsRun         OptScope = kindMsRun
)

// OptionalColumn is a user defined opt_ column.
type OptionalColumn struct {
	columnBase
	Scope     OptScope
	ScopeID   int // 0 for global columns
	Name      string
	Parameter *core.Parameter // set for opt_*_cv_ columns
}

// IDConfidenceColumn holds scores of one id_confidence_measure.
type IDConfidenceColumn struct {
	columnBase
	Measure *core.IndexedParameter
}

// optTypes lists the CV terms whose opt column values are not strings.
var optTypes = map[string]DataType{
	"MS:1001905":    TypeDouble,  // emPAI value
	"MS:1002217":    TypeBoolean, // decoy peptide
	"PRIDE:0000303": TypeBoolean, // decoy hit
}

// OptColumnType infers the value type of a CV backed opt column.
func OptColumnType(accession string) DataType {
	if t, ok := optTypes[accession]; ok {
		return t
	}
	return TypeString
}

// OptColumnName builds the header of an opt column. A non nil param yields
// the cv_{accession}_{name} form with spaces in the name replaced by '_'.
func OptColumnName(scope OptScope, scopeID int, name string, param *core.Parameter) string {
	s := string(scope)
	if scope != ScopeGlobal {
		s = core.ElementRef(string(scope), scopeID)
	}
	if param != nil {
		name = "cv_" + param.CVAccession + "_" + strings.ReplaceAll(param.Name, " ", "_")
	}
	return "opt_" + s + "_" + name
}

var (
	optColumnRe    = regexp.MustCompile(`^opt_(global|assay\[(\d+)\]|study_variable\[(\d+)\]|ms_run\[(\d+)\])_(.+)$`)
	cvOptRe        = regexp.MustCompile(`^cv_([^_:]+:[^_]+)_(.+)$`)
	abundanceRe    = regexp.MustCompile(`^(?:([A-Za-z]+)_)?abundance_(assay|study_variable|variation_study_variable)\[(\d+)\]$`)
	idConfidenceRe = regexp.MustCompile(`^id_confidence_measure\[(\d+)\]$`)
)

// stableDef declares one stable column of a section.
type stableDef struct {
	name      string
	dataType  DataType
	allowNull bool
}

// tableSchema is the version specific description of one table section.
type tableSchema struct {
	header    Section
	data      Section
	prefix    string
	stable    []stableDef
	abundance map[AbundanceKind]bool
	idConf    bool
	quantUnit string
}

const (
	colSMLID                   = "SML_ID"
	colSMFIDRefs               = "SMF_ID_REFS"
	colDatabaseIdentifier      = "database_identifier"
	colChemicalFormula         = "chemical_formula"
	colSmiles                  = "smiles"
	colInchi                   = "inchi"
	colChemicalName            = "chemical_name"
	colURI                     = "uri"
	colTheoreticalNeutralMass  = "theoretical_neutral_mass"
	colAdductIons              = "adduct_ions"
	colReliability             = "reliability"
	colBestIDConfidenceMeasure = "best_id_confidence_measure"
	colBestIDConfidenceValue   = "best_id_confidence_value"

	colSMFID                 = "SMF_ID"
	colSMEIDRefs             = "SME_ID_REFS"
	colSMEIDRefAmbiguityCode = "SME_ID_REF_ambiguity_code"
	colAdductIon             = "adduct_ion"
	colIsotopomer            = "isotopomer"
	colExpMassToCharge       = "exp_mass_to_charge"
	colCharge                = "charge"
	colRetentionTime         = "retention_time_in_seconds"
	colRetentionTimeStart    = "retention_time_in_seconds_start"
	colRetentionTimeEnd      = "retention_time_in_seconds_end"

	colSMEID                   = "SME_ID"
	colEvidenceInputID         = "evidence_input_id"
	colDerivatizedForm         = "derivatized_form"
	colTheoreticalMassToCharge = "theoretical_mass_to_charge"
	colSpectraRef              = "spectra_ref"
	colIdentificationMethod    = "identification_method"
	colMsLevel                 = "ms_level"
	colRank                    = "rank"
)

var summarySchema = &tableSchema{
	header: SectionSummaryHeader,
	data:   SectionSummary,
	prefix: "SML",
	stable: []stableDef{
		{colSMLID, TypeInteger, false},
		{colSMFIDRefs, TypeIntegerList, true},
		{colDatabaseIdentifier, TypeStringList, true},
		{colChemicalFormula, TypeStringList, true},
		{colSmiles, TypeStringList, true},
		{colInchi, TypeStringList, true},
		{colChemicalName, TypeStringList, true},
		{colURI, TypeStringList, true},
		{colTheoreticalNeutralMass, TypeDoubleList, true},
		{colAdductIons, TypeStringList, true},
		{colReliability, TypeString, true},
		{colBestIDConfidenceMeasure, TypeParam, true},
		{colBestIDConfidenceValue, TypeDouble, true},
	},
	abundance: map[AbundanceKind]bool{
		AbundanceAssay:                  true,
		AbundanceStudyVariable:          true,
		AbundanceVariationStudyVariable: true,
	},
	quantUnit: "small_molecule-quantification_unit",
}

var featureSchema = &tableSchema{
	header: SectionFeatureHeader,
	data:   SectionFeature,
	prefix: "SMF",
	stable: []stableDef{
		{colSMFID, TypeInteger, false},
		{colSMEIDRefs, TypeIntegerList, true},
		{colSMEIDRefAmbiguityCode, TypeInteger, true},
		{colAdductIon, TypeString, true},
		{colIsotopomer, TypeParam, true},
		{colExpMassToCharge, TypeDouble, false},
		{colCharge, TypeInteger, false},
		{colRetentionTime, TypeDouble, true},
		{colRetentionTimeStart, TypeDouble, true},
		{colRetentionTimeEnd, TypeDouble, true},
	},
	abundance: map[AbundanceKind]bool{AbundanceAssay: true},
	quantUnit: "small_molecule_feature-quantification_unit",
}

var evidenceSchema = &tableSchema{
	header: SectionEvidenceHeader,
	data:   SectionEvidence,
	prefix: "SME",
	stable: []stableDef{
		{colSMEID, TypeInteger, false},
		{colEvidenceInputID, TypeString, false},
		{colDatabaseIdentifier, TypeString, false},
		{colChemicalFormula, TypeString, true},
		{colSmiles, TypeString, true},
		{colInchi, TypeString, true},
		{colChemicalName, TypeString, true},
		{colURI, TypeString, true},
		{colDerivatizedForm, TypeParam, true},
		{colAdductIon, TypeString, true},
		{colExpMassToCharge, TypeDouble, false},
		{colCharge, TypeInteger, false},
		{colTheoreticalMassToCharge, TypeDouble, false},
		{colSpectraRef, TypeSpectraRef, false},
		{colIdentificationMethod, TypeParam, false},
		{colMsLevel, TypeParam, false},
		{colRank, TypeInteger, false},
	},
	abundance: map[AbundanceKind]bool{},
	idConf:    true,
}

// schemaFor returns the schema of a header or data section.
func schemaFor(s Section) (*tableSchema, bool) {
	switch s.Header() {
	case SectionSummaryHeader:
		return summarySchema, true
	case SectionFeatureHeader:
		return featureSchema, true
	case SectionEvidenceHeader:
		return evidenceSchema, true
	}
	return nil, false
}

// StableColumnNames returns the stable column names of a section in schema
// order.
func StableColumnNames(s Section) []string {
	schema, ok := schemaFor(s)
	if !ok {
		return nil
	}
	names := make([]string, len(schema.stable))
	for i, c := range schema.stable {
		names[i] = c.name
	}
	return names
}

func (s *tableSchema) stableIndex(name string) (int, bool) {
	for i, c := range s.stable {
		if c.name == name {
			return i, true
		}
	}
	return 0, false
}

// ColumnFactory is the column schema built from one header line, keyed by
// logical position.
type ColumnFactory struct {
	section  Section
	columns  map[int]Column
	stable   map[int]*StableColumn
	optional map[int]Column
	byHeader map[string]Column
}

func newColumnFactory(section Section) *ColumnFactory {
	return &ColumnFactory{
		section:  section,
		columns:  make(map[int]Column),
		stable:   make(map[int]*StableColumn),
		optional: make(map[int]Column),
		byHeader: make(map[string]Column),
	}
}

// Section returns the header section the factory was built for.
func (f *ColumnFactory) Section() Section { return f.section }

// Len returns the number of columns.
func (f *ColumnFactory) Len() int { return len(f.columns) }

// Column looks a column up by logical position.
func (f *ColumnFactory) Column(logical int) (Column, bool) {
	c, ok := f.columns[logical]
	return c, ok
}

// ByHeader looks a column up by its header text.
func (f *ColumnFactory) ByHeader(header string) (Column, bool) {
	c, ok := f.byHeader[header]
	return c, ok
}

// Columns returns all columns ordered by logical position.
func (f *ColumnFactory) Columns() []Column {
	return sortedColumns(f.columns)
}

// StableColumns returns the stable columns ordered by logical position.
func (f *ColumnFactory) StableColumns() []*StableColumn {
	keys := make([]int, 0, len(f.stable))
	for k := range f.stable {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	out := make([]*StableColumn, len(keys))
	for i, k := range keys {
		out[i] = f.stable[k]
	}
	return out
}

// OptionalColumns returns the abundance, opt and id confidence columns
// ordered by logical position.
func (f *ColumnFactory) OptionalColumns() []Column {
	return sortedColumns(f.optional)
}

func (f *ColumnFactory) add(c Column) bool {
	if _, dup := f.byHeader[c.Header()]; dup {
		return false
	}
	if _, dup := f.columns[c.LogicalPosition()]; dup {
		return false
	}
	f.columns[c.LogicalPosition()] = c
	f.byHeader[c.Header()] = c
	if sc, ok := c.(*StableColumn); ok {
		f.stable[c.LogicalPosition()] = sc
	} else {
		f.optional[c.LogicalPosition()] = c
	}
	return true
}

func sortedColumns(m map[int]Column) []Column {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	out := make([]Column, len(keys))
	for i, k := range keys {
		out[i] = m[k]
	}
	return out
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
