package core

import "fmt"

// OptColumn is one value of an opt_ column, stringified.
type OptColumn struct {
	Identifier string
	Parameter  *Parameter
	Value      string
}

// SpectraRef points to a spectrum inside an ms run.
type SpectraRef struct {
	MsRun     *MsRun
	Reference string
}

func (r SpectraRef) String() string {
	id := 0
	if r.MsRun != nil {
		id = r.MsRun.ID
	}
	return fmt.Sprintf("ms_run[%d]:%s", id, r.Reference)
}

// SmallMoleculeSummary is one SML row. Abundance slices are indexed like
// Metadata.Assay and Metadata.StudyVariable; a nil entry is a null value or
// a column the header did not carry.
type SmallMoleculeSummary struct {
	ID                              int
	SMFIDRefs                       []int
	DatabaseIdentifier              []string
	ChemicalFormula                 []string
	Smiles                          []string
	Inchi                           []string
	ChemicalName                    []string
	URI                             []string
	TheoreticalNeutralMass          []*float64
	AdductIons                      []string
	Reliability                     string
	BestIDConfidenceMeasure         *Parameter
	BestIDConfidenceValue           *float64
	AbundanceAssay                  []*float64
	AbundanceStudyVariable          []*float64
	AbundanceVariationStudyVariable []*float64
	Opt                             []OptColumn
}

// SmallMoleculeFeature is one SMF row.
type SmallMoleculeFeature struct {
	ID                          int
	SMEIDRefs                   []int
	SMEIDRefAmbiguityCode       *int
	AdductIon                   string
	Isotopomer                  *Parameter
	ExpMassToCharge             *float64
	Charge                      *int
	RetentionTimeInSeconds      *float64
	RetentionTimeInSecondsStart *float64
	RetentionTimeInSecondsEnd   *float64
	AbundanceAssay              []*float64
	Opt                         []OptColumn
}

// SmallMoleculeEvidence is one SME row. IDConfidenceMeasure is indexed like
// Metadata.IDConfidenceMeasure.
type SmallMoleculeEvidence struct {
	ID                      int
	EvidenceInputID         string
	DatabaseIdentifier      string
	ChemicalFormula         string
	Smiles                  string
	Inchi                   string
	ChemicalName            string
	URI                     string
	DerivatizedForm         *Parameter
	AdductIon               string
	ExpMassToCharge         *float64
	Charge                  *int
	TheoreticalMassToCharge *float64
	SpectraRef              []SpectraRef
	IdentificationMethod    *Parameter
	MsLevel                 *Parameter
	IDConfidenceMeasure     []*float64
	Rank                    *int
	Opt                     []OptColumn
}

// Comment is a COM line with its position in the file.
type Comment struct {
	Line int
	Text string
}

// MzTab is a complete parsed document.
type MzTab struct {
	Metadata              *Metadata
	SmallMoleculeSummary  []*SmallMoleculeSummary
	SmallMoleculeFeature  []*SmallMoleculeFeature
	SmallMoleculeEvidence []*SmallMoleculeEvidence
	Comments              []Comment
}

// NewMzTab returns an empty document with initialised metadata.
func NewMzTab() *MzTab {
	return &MzTab{Metadata: &Metadata{}}
}
