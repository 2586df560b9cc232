package mztab

import (
	"github.com/ChrisMcGann/mztabkit/pkg/core"
)

// Element kinds as they appear in metadata labels and references.
const (
	kindSampleProcessing = "sample_processing"
	kindInstrument       = "instrument"
	kindSoftware         = "software"
	kindPublication      = "publication"
	kindContact          = "contact"
	kindURI              = "uri"
	kindExternalStudyURI = "external_study_uri"
	kindSample           = "sample"
	kindMsRun            = "ms_run"
	kindAssay            = "assay"
	kindStudyVariable    = "study_variable"
	kindCustom           = "custom"
	kindCV               = "cv"
	kindDatabase         = "database"
	kindDerivatization   = "derivatization_agent"
	kindIDConfidence     = "id_confidence_measure"
)

// PendingColUnit is a colunit-* metadata entry waiting for its table header.
type PendingColUnit struct {
	Line    int
	Section Section // header section the unit applies to
	Label   string
	Value   string
}

// Context holds every indexed element declared so far in one document. It is
// shared by the metadata, header and data line parsers of a parse session.
// Newly created elements are also appended to the owning Metadata.
type Context struct {
	meta *core.Metadata

	SampleProcessing     *Registry[core.SampleProcessing]
	Instruments          *Registry[core.Instrument]
	Software             *Registry[core.Software]
	Publications         *Registry[core.Publication]
	Contacts             *Registry[core.Contact]
	URIs                 *Registry[core.IndexedURI]
	ExternalStudyURIs    *Registry[core.IndexedURI]
	Samples              *Registry[core.Sample]
	MsRuns               *Registry[core.MsRun]
	Assays               *Registry[core.Assay]
	StudyVariables       *Registry[core.StudyVariable]
	Customs              *Registry[core.IndexedParameter]
	CVs                  *Registry[core.CV]
	Databases            *Registry[core.Database]
	DerivatizationAgents *Registry[core.IndexedParameter]
	IDConfidenceMeasures *Registry[core.IndexedParameter]

	colUnits []PendingColUnit
}

// NewContext creates an empty context bound to meta.
func NewContext(meta *core.Metadata) *Context {
	c := &Context{meta: meta}
	c.SampleProcessing = newRegistry(kindSampleProcessing,
		func(id int) *core.SampleProcessing { return &core.SampleProcessing{ID: id} },
		func(v *core.SampleProcessing) { meta.SampleProcessing = append(meta.SampleProcessing, v) })
	c.Instruments = newRegistry(kindInstrument,
		func(id int) *core.Instrument { return &core.Instrument{ID: id} },
		func(v *core.Instrument) { meta.Instrument = append(meta.Instrument, v) })
	c.Software = newRegistry(kindSoftware,
		func(id int) *core.Software { return &core.Software{ID: id} },
		func(v *core.Software) { meta.Software = append(meta.Software, v) })
	c.Publications = newRegistry(kindPublication,
		func(id int) *core.Publication { return &core.Publication{ID: id} },
		func(v *core.Publication) { meta.Publication = append(meta.Publication, v) })
	c.Contacts = newRegistry(kindContact,
		func(id int) *core.Contact { return &core.Contact{ID: id} },
		func(v *core.Contact) { meta.Contact = append(meta.Contact, v) })
	c.URIs = newRegistry(kindURI,
		func(id int) *core.IndexedURI { return &core.IndexedURI{ID: id} },
		func(v *core.IndexedURI) { meta.URI = append(meta.URI, v) })
	c.ExternalStudyURIs = newRegistry(kindExternalStudyURI,
		func(id int) *core.IndexedURI { return &core.IndexedURI{ID: id} },
		func(v *core.IndexedURI) { meta.ExternalStudyURI = append(meta.ExternalStudyURI, v) })
	c.Samples = newRegistry(kindSample,
		func(id int) *core.Sample { return &core.Sample{ID: id} },
		func(v *core.Sample) { meta.Sample = append(meta.Sample, v) })
	c.MsRuns = newRegistry(kindMsRun,
		func(id int) *core.MsRun { return &core.MsRun{ID: id} },
		func(v *core.MsRun) { meta.MsRun = append(meta.MsRun, v) })
	c.Assays = newRegistry(kindAssay,
		func(id int) *core.Assay { return &core.Assay{ID: id} },
		func(v *core.Assay) { meta.Assay = append(meta.Assay, v) })
	c.StudyVariables = newRegistry(kindStudyVariable,
		func(id int) *core.StudyVariable { return &core.StudyVariable{ID: id} },
		func(v *core.StudyVariable) { meta.StudyVariable = append(meta.StudyVariable, v) })
	c.Customs = newRegistry(kindCustom,
		func(id int) *core.IndexedParameter { return &core.IndexedParameter{ID: id} },
		func(v *core.IndexedParameter) { meta.Custom = append(meta.Custom, v) })
	c.CVs = newRegistry(kindCV,
		func(id int) *core.CV { return &core.CV{ID: id} },
		func(v *core.CV) { meta.CV = append(meta.CV, v) })
	c.Databases = newRegistry(kindDatabase,
		func(id int) *core.Database { return &core.Database{ID: id} },
		func(v *core.Database) { meta.Database = append(meta.Database, v) })
	c.DerivatizationAgents = newRegistry(kindDerivatization,
		func(id int) *core.IndexedParameter { return &core.IndexedParameter{ID: id} },
		func(v *core.IndexedParameter) { meta.DerivatizationAgent = append(meta.DerivatizationAgent, v) })
	c.IDConfidenceMeasures = newRegistry(kindIDConfidence,
		func(id int) *core.IndexedParameter { return &core.IndexedParameter{ID: id} },
		func(v *core.IndexedParameter) { meta.IDConfidenceMeasure = append(meta.IDConfidenceMeasure, v) })
	return c
}

// Metadata returns the document the context populates.
func (c *Context) Metadata() *core.Metadata { return c.meta }

// SetAssaySample links assay[assayID] to an already declared sample.
func (c *Context) SetAssaySample(assayID, sampleID int) (*core.Assay, error) {
	sample, err := c.Samples.Require(sampleID)
	if err != nil {
		return nil, err
	}
	assay, err := c.Assays.Upsert(assayID)
	if err != nil {
		return nil, err
	}
	assay.Sample = sample
	return assay, nil
}

// SetAssayMsRuns links assay[assayID] to already declared ms runs,
// replacing any previous links.
func (c *Context) SetAssayMsRuns(assayID int, msRunIDs []int) (*core.Assay, error) {
	runs := make([]*core.MsRun, 0, len(msRunIDs))
	for _, id := range msRunIDs {
		run, err := c.MsRuns.Require(id)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	assay, err := c.Assays.Upsert(assayID)
	if err != nil {
		return nil, err
	}
	assay.MsRuns = runs
	return assay, nil
}

// SetStudyVariableAssays links study_variable[svID] to already declared
// assays, replacing any previous links.
func (c *Context) SetStudyVariableAssays(svID int, assayIDs []int) (*core.StudyVariable, error) {
	assays := make([]*core.Assay, 0, len(assayIDs))
	for _, id := range assayIDs {
		assay, err := c.Assays.Require(id)
		if err != nil {
			return nil, err
		}
		assays = append(assays, assay)
	}
	sv, err := c.StudyVariables.Upsert(svID)
	if err != nil {
		return nil, err
	}
	sv.Assays = assays
	return sv, nil
}

// SetMsRunInstrument links ms_run[msRunID] to an already declared instrument.
func (c *Context) SetMsRunInstrument(msRunID, instrumentID int) (*core.MsRun, error) {
	inst, err := c.Instruments.Require(instrumentID)
	if err != nil {
		return nil, err
	}
	run, err := c.MsRuns.Upsert(msRunID)
	if err != nil {
		return nil, err
	}
	run.Instrument = inst
	return run, nil
}

// AddColUnit records a colunit entry to be resolved once the header of
// section is known.
func (c *Context) AddColUnit(u PendingColUnit) {
	c.colUnits = append(c.colUnits, u)
}

// ColUnits returns the pending colunit entries for a header section.
func (c *Context) ColUnits(section Section) []PendingColUnit {
	var out []PendingColUnit
	for _, u := range c.colUnits {
		if u.Section == section {
			out = append(out, u)
		}
	}
	return out
}

// AddColumnUnit appends a resolved column unit to the metadata list of the
// given header section.
func (c *Context) AddColumnUnit(section Section, cp core.ColumnParameter) {
	switch section {
	case SectionSummaryHeader:
		c.meta.ColunitSmallMolecule = append(c.meta.ColunitSmallMolecule, cp)
	case SectionFeatureHeader:
		c.meta.ColunitSmallMoleculeFeature = append(c.meta.ColunitSmallMoleculeFeature, cp)
	case SectionEvidenceHeader:
		c.meta.ColunitSmallMoleculeEvidence = append(c.meta.ColunitSmallMoleculeEvidence, cp)
	}
}
