package core

import "fmt"

// Metadata is the root aggregate of the MTD section.
type Metadata struct {
	Version     string
	MzTabID     string
	Title       string
	Description string

	SampleProcessing     []*SampleProcessing
	Instrument           []*Instrument
	Software             []*Software
	Publication          []*Publication
	Contact              []*Contact
	URI                  []*IndexedURI
	ExternalStudyURI     []*IndexedURI
	QuantificationMethod *Parameter
	Sample               []*Sample
	MsRun                []*MsRun
	Assay                []*Assay
	StudyVariable        []*StudyVariable
	Custom               []*IndexedParameter
	CV                   []*CV
	Database             []*Database
	DerivatizationAgent  []*IndexedParameter

	SmallMoleculeQuantificationUnit        *Parameter
	SmallMoleculeFeatureQuantificationUnit *Parameter
	SmallMoleculeIdentificationReliability *Parameter
	IDConfidenceMeasure                    []*IndexedParameter

	ColunitSmallMolecule         []ColumnParameter
	ColunitSmallMoleculeFeature  []ColumnParameter
	ColunitSmallMoleculeEvidence []ColumnParameter
}

// ElementRef formats an indexed element reference such as "assay[2]".
func ElementRef(kind string, id int) string {
	return fmt.Sprintf("%s[%d]", kind, id)
}

// SampleProcessing describes one sample preparation step.
type SampleProcessing struct {
	ID         int
	Parameters []*Parameter
}

// Instrument describes a mass spectrometer configuration.
type Instrument struct {
	ID       int
	Name     *Parameter
	Source   *Parameter
	Analyzer []*Parameter
	Detector *Parameter
}

// Software used to produce the results.
type Software struct {
	ID        int
	Parameter *Parameter
	Setting   []string
}

// PublicationItem is one "type:accession" reference of a publication.
type PublicationItem struct {
	Type      string // pubmed, doi or uri
	Accession string
}

func (p PublicationItem) String() string {
	return p.Type + ":" + p.Accession
}

// Publication groups references to the same publication.
type Publication struct {
	ID    int
	Items []PublicationItem
}

// Contact is a person responsible for the data.
type Contact struct {
	ID          int
	Name        string
	Affiliation string
	Email       string
	ORCID       string
}

// IndexedURI is a numbered uri or external_study_uri entry.
type IndexedURI struct {
	ID    int
	Value string
}

// IndexedParameter is a numbered parameter entry such as custom[1] or
// id_confidence_measure[2].
type IndexedParameter struct {
	ID        int
	Parameter *Parameter
}

// Sample is a biological sample.
type Sample struct {
	ID          int
	Name        string
	Species     []*Parameter
	Tissue      []*Parameter
	CellType    []*Parameter
	Disease     []*Parameter
	Description string
	Custom      []*Parameter
}

// MsRun is one mass spectrometry run (usually a raw file).
type MsRun struct {
	ID                  int
	Name                string
	Location            string
	Instrument          *Instrument
	Format              *Parameter
	IDFormat            *Parameter
	FragmentationMethod []*Parameter
	ScanPolarity        []*Parameter
	Hash                string
	HashMethod          *Parameter
}

// Assay is the application of a measurement to a sample.
type Assay struct {
	ID          int
	Name        string
	Custom      []*Parameter
	ExternalURI string
	Sample      *Sample
	MsRuns      []*MsRun
}

// StudyVariable groups assays sharing an experimental factor.
type StudyVariable struct {
	ID                int
	Name              string
	Assays            []*Assay
	AverageFunction   *Parameter
	VariationFunction *Parameter
	Description       string
	Factors           []*Parameter
}

// CV declares a controlled vocabulary used in the file.
type CV struct {
	ID       int
	Label    string
	FullName string
	Version  string
	URI      string
}

// Database is a reference database used for identification.
type Database struct {
	ID        int
	Parameter *Parameter
	Prefix    string
	Version   string
	URI       string
}

// ColumnParameter assigns a unit to a table column via colunit-*.
type ColumnParameter struct {
	ColumnName string
	Parameter  *Parameter
}

// SetIndexedParam stores p at the 1-based position idx of list, growing it as
// needed. Positions that were never set stay nil.
func SetIndexedParam(list []*Parameter, idx int, p *Parameter) []*Parameter {
	for len(list) < idx {
		list = append(list, nil)
	}
	list[idx-1] = p
	return list
}
