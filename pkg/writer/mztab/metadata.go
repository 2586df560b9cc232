package mztab

import (
	"fmt"
	"strings"

	"github.com/ChrisMcGann/mztabkit/pkg/core"
)

// mtdLines accumulates MTD lines, skipping empty values.
type mtdLines []string

func (m *mtdLines) add(label, value string) {
	if value == "" {
		return
	}
	*m = append(*m, "MTD\t"+label+"\t"+value)
}

func (m *mtdLines) param(label string, p *core.Parameter) {
	if p != nil {
		m.add(label, p.String())
	}
}

// indexed writes label[1..n] for each non nil parameter of list.
func (m *mtdLines) indexed(label string, list []*core.Parameter) {
	for i, p := range list {
		m.param(fmt.Sprintf("%s[%d]", label, i+1), p)
	}
}

func refList(kind string, ids []int) string {
	refs := make([]string, len(ids))
	for i, id := range ids {
		refs[i] = core.ElementRef(kind, id)
	}
	return strings.Join(refs, "|")
}

// MetadataLines renders meta as MTD lines in canonical order. Elements are
// written before anything that references them, so the output parses
// without forward reference errors.
func MetadataLines(meta *core.Metadata) []string {
	var m mtdLines
	m.add("mzTab-version", meta.Version)
	m.add("mzTab-ID", meta.MzTabID)
	m.add("title", meta.Title)
	m.add("description", meta.Description)

	for _, sp := range meta.SampleProcessing {
		if len(sp.Parameters) > 0 {
			m.add(core.ElementRef("sample_processing", sp.ID), core.ParamListString(sp.Parameters))
		}
	}
	for _, inst := range meta.Instrument {
		el := core.ElementRef("instrument", inst.ID)
		m.param(el+"-name", inst.Name)
		m.param(el+"-source", inst.Source)
		m.indexed(el+"-analyzer", inst.Analyzer)
		m.param(el+"-detector", inst.Detector)
	}
	for _, sw := range meta.Software {
		el := core.ElementRef("software", sw.ID)
		m.param(el, sw.Parameter)
		for i, s := range sw.Setting {
			m.add(fmt.Sprintf("%s-setting[%d]", el, i+1), s)
		}
	}
	for _, pub := range meta.Publication {
		items := make([]string, len(pub.Items))
		for i, it := range pub.Items {
			items[i] = it.String()
		}
		m.add(core.ElementRef("publication", pub.ID), strings.Join(items, "|"))
	}
	for _, c := range meta.Contact {
		el := core.ElementRef("contact", c.ID)
		m.add(el+"-name", c.Name)
		m.add(el+"-affiliation", c.Affiliation)
		m.add(el+"-email", c.Email)
		m.add(el+"-orcid", c.ORCID)
	}
	for _, u := range meta.URI {
		m.add(core.ElementRef("uri", u.ID), u.Value)
	}
	for _, u := range meta.ExternalStudyURI {
		m.add(core.ElementRef("external_study_uri", u.ID), u.Value)
	}
	m.param("quantification_method", meta.QuantificationMethod)

	for _, s := range meta.Sample {
		el := core.ElementRef("sample", s.ID)
		m.add(el, s.Name)
		m.indexed(el+"-species", s.Species)
		m.indexed(el+"-tissue", s.Tissue)
		m.indexed(el+"-cell_type", s.CellType)
		m.indexed(el+"-disease", s.Disease)
		m.add(el+"-description", s.Description)
		m.indexed(el+"-custom", s.Custom)
	}
	for _, run := range meta.MsRun {
		el := core.ElementRef("ms_run", run.ID)
		m.add(el, run.Name)
		m.add(el+"-location", run.Location)
		if run.Instrument != nil {
			m.add(el+"-instrument_ref", core.ElementRef("instrument", run.Instrument.ID))
		}
		m.param(el+"-format", run.Format)
		m.param(el+"-id_format", run.IDFormat)
		m.indexed(el+"-fragmentation_method", run.FragmentationMethod)
		m.indexed(el+"-scan_polarity", run.ScanPolarity)
		m.add(el+"-hash", run.Hash)
		m.param(el+"-hash_method", run.HashMethod)
	}
	for _, a := range meta.Assay {
		el := core.ElementRef("assay", a.ID)
		m.add(el, a.Name)
		m.indexed(el+"-custom", a.Custom)
		m.add(el+"-external_uri", a.ExternalURI)
		if a.Sample != nil {
			m.add(el+"-sample_ref", core.ElementRef("sample", a.Sample.ID))
		}
		ids := make([]int, len(a.MsRuns))
		for i, run := range a.MsRuns {
			ids[i] = run.ID
		}
		m.add(el+"-ms_run_ref", refList("ms_run", ids))
	}
	for _, sv := range meta.StudyVariable {
		el := core.ElementRef("study_variable", sv.ID)
		m.add(el, sv.Name)
		ids := make([]int, len(sv.Assays))
		for i, a := range sv.Assays {
			ids[i] = a.ID
		}
		m.add(el+"-assay_refs", refList("assay", ids))
		m.param(el+"-average_function", sv.AverageFunction)
		m.param(el+"-variation_function", sv.VariationFunction)
		m.add(el+"-description", sv.Description)
		if len(sv.Factors) > 0 {
			m.add(el+"-factors", core.ParamListString(sv.Factors))
		}
	}
	for _, c := range meta.Custom {
		m.param(core.ElementRef("custom", c.ID), c.Parameter)
	}
	for _, cv := range meta.CV {
		el := core.ElementRef("cv", cv.ID)
		m.add(el+"-label", cv.Label)
		m.add(el+"-full_name", cv.FullName)
		m.add(el+"-version", cv.Version)
		m.add(el+"-uri", cv.URI)
	}
	for _, db := range meta.Database {
		el := core.ElementRef("database", db.ID)
		m.param(el, db.Parameter)
		m.add(el+"-prefix", db.Prefix)
		m.add(el+"-version", db.Version)
		m.add(el+"-uri", db.URI)
	}
	for _, d := range meta.DerivatizationAgent {
		m.param(core.ElementRef("derivatization_agent", d.ID), d.Parameter)
	}

	m.param("small_molecule-quantification_unit", meta.SmallMoleculeQuantificationUnit)
	m.param("small_molecule_feature-quantification_unit", meta.SmallMoleculeFeatureQuantificationUnit)
	m.param("small_molecule-identification_reliability", meta.SmallMoleculeIdentificationReliability)
	for _, idc := range meta.IDConfidenceMeasure {
		m.param(core.ElementRef("id_confidence_measure", idc.ID), idc.Parameter)
	}

	colunits := []struct {
		label string
		units []core.ColumnParameter
	}{
		{"colunit-small_molecule", meta.ColunitSmallMolecule},
		{"colunit-small_molecule_feature", meta.ColunitSmallMoleculeFeature},
		{"colunit-small_molecule_evidence", meta.ColunitSmallMoleculeEvidence},
	}
	for _, cu := range colunits {
		for _, u := range cu.units {
			if u.Parameter != nil {
				m.add(cu.label, u.ColumnName+"="+u.Parameter.String())
			}
		}
	}
	return m
}
