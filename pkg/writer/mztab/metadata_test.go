package mztab

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ChrisMcGann/mztabkit/pkg/core"
	parser "github.com/ChrisMcGann/mztabkit/pkg/reader/mztab"
)

// everyElement declares at least one instance of every metadata element and
// sub element, with two assays and two study variables.
var everyElement = []string{
	"MTD\tmzTab-version\t2.0.0-M",
	"MTD\tmzTab-ID\tMTBL-2024-0003",
	"MTD\ttitle\tEvery metadata element",
	"MTD\tdescription\tMetadata exercising each element kind",
	"MTD\tsample_processing[1]\t[MSIO, MSIO:0000148, high-performance liquid chromatography, ]|[MSIO, MSIO:0000146, centrifugation, ]",
	"MTD\tsample_processing[2]\t[MSIO, MSIO:0000141, metabolite extraction, ]",
	"MTD\tinstrument[1]-name\t[MS, MS:1000449, LTQ Orbitrap, ]",
	"MTD\tinstrument[1]-source\t[MS, MS:1000073, electrospray ionization, ]",
	"MTD\tinstrument[1]-analyzer[1]\t[MS, MS:1000484, orbitrap, ]",
	"MTD\tinstrument[1]-analyzer[2]\t[MS, MS:1000264, ion trap, ]",
	"MTD\tinstrument[1]-detector\t[MS, MS:1000624, inductive detector, ]",
	"MTD\tsoftware[1]\t[MS, MS:1002879, Progenesis QI, 3.0]",
	"MTD\tsoftware[1]-setting[1]\tFragment tolerance = 0.1 Da",
	"MTD\tsoftware[1]-setting[2]\tParent tolerance = 10 ppm",
	"MTD\tpublication[1]\tpubmed:21063943|doi:10.1007/978-1-60761-987-1_6",
	"MTD\tcontact[1]-name\tJane Doe",
	"MTD\tcontact[1]-affiliation\tExample Institute",
	"MTD\tcontact[1]-email\tjane.doe@example.org",
	"MTD\tcontact[1]-orcid\thttps://orcid.org/0000-0002-1825-0097",
	"MTD\turi[1]\thttps://www.ebi.ac.uk/metabolights/MTBLS1",
	"MTD\texternal_study_uri[1]\thttps://www.ebi.ac.uk/metabolights/MTBLS2",
	"MTD\tquantification_method\t[MS, MS:1001834, LC-MS label-free quantitation analysis, ]",
	"MTD\tsample[1]\tPlasma 1",
	"MTD\tsample[1]-species[1]\t[NCBITaxon, NCBITaxon:9606, Homo sapiens (Human), ]",
	"MTD\tsample[1]-tissue[1]\t[BTO, BTO:0000131, blood plasma, ]",
	"MTD\tsample[1]-cell_type[1]\t[CL, CL:0000000, cell, ]",
	"MTD\tsample[1]-disease[1]\t[DOID, DOID:9352, type 2 diabetes mellitus, ]",
	"MTD\tsample[1]-description\tFasting plasma",
	"MTD\tsample[1]-custom[1]\t[MS, MS:1000031, instrument model, Orbitrap]",
	"MTD\tsample[2]\tPlasma 2",
	"MTD\tms_run[1]\tRun 1",
	"MTD\tms_run[1]-location\tfile:///data/run1.mzML",
	"MTD\tms_run[1]-instrument_ref\tinstrument[1]",
	"MTD\tms_run[1]-format\t[MS, MS:1000584, mzML format, ]",
	"MTD\tms_run[1]-id_format\t[MS, MS:1000768, Thermo nativeID format, ]",
	"MTD\tms_run[1]-fragmentation_method[1]\t[MS, MS:1000133, CID, ]",
	"MTD\tms_run[1]-fragmentation_method[2]\t[MS, MS:1000422, HCD, ]",
	"MTD\tms_run[1]-scan_polarity[1]\t[MS, MS:1000130, positive scan, ]",
	"MTD\tms_run[1]-hash\tde9f2c7fd25e1b3afad3e85a0bd17d9b100db4b3",
	"MTD\tms_run[1]-hash_method\t[MS, MS:1000569, SHA-1, ]",
	"MTD\tms_run[2]-location\tnull",
	"MTD\tms_run[2]-scan_polarity[1]\t[MS, MS:1000129, negative scan, ]",
	"MTD\tassay[1]\tControl assay",
	"MTD\tassay[1]-custom[1]\t[MS, MS:1000031, instrument model, Orbitrap]",
	"MTD\tassay[1]-external_uri\thttps://www.ebi.ac.uk/metabolights/MTBLS1/assay1",
	"MTD\tassay[1]-sample_ref\tsample[1]",
	"MTD\tassay[1]-ms_run_ref\tms_run[1]|ms_run[2]",
	"MTD\tassay[2]\tTreated assay",
	"MTD\tassay[2]-sample_ref\tsample[2]",
	"MTD\tassay[2]-ms_run_ref\tms_run[2]",
	"MTD\tstudy_variable[1]\tControl",
	"MTD\tstudy_variable[1]-assay_refs\tassay[1]",
	"MTD\tstudy_variable[1]-average_function\t[MS, MS:1002883, median, ]",
	"MTD\tstudy_variable[1]-variation_function\t[MS, MS:1002885, standard error, ]",
	"MTD\tstudy_variable[1]-description\tControl group",
	"MTD\tstudy_variable[1]-factors\t[EFO, EFO:0000408, disease, healthy]|[EFO, EFO:0000246, age, 40]",
	"MTD\tstudy_variable[2]\tTreated",
	"MTD\tstudy_variable[2]-assay_refs\tassay[1]|assay[2]",
	"MTD\tstudy_variable[2]-description\tTreated group",
	"MTD\tcustom[1]\t[MS, MS:1000031, instrument model, Orbitrap]",
	"MTD\tcv[1]-label\tMS",
	"MTD\tcv[1]-full_name\tPSI-MS controlled vocabulary",
	"MTD\tcv[1]-version\t4.1.138",
	"MTD\tcv[1]-uri\thttps://raw.githubusercontent.com/HUPO-PSI/psi-ms-CV/master/psi-ms.obo",
	"MTD\tcv[2]-label\tUO",
	"MTD\tcv[2]-full_name\tUnit Ontology",
	"MTD\tcv[2]-version\t2023-05-25",
	"MTD\tcv[2]-uri\thttp://purl.obolibrary.org/obo/uo.owl",
	"MTD\tdatabase[1]\t[MIRIAM, MIR:00100079, HMDB, ]",
	"MTD\tdatabase[1]-prefix\thmdb",
	"MTD\tdatabase[1]-version\t5.0",
	"MTD\tdatabase[1]-uri\thttps://hmdb.ca/",
	"MTD\tdatabase[2]\t[, , no database, null]",
	"MTD\tdatabase[2]-prefix\tnull",
	"MTD\tdatabase[2]-version\tUnknown",
	"MTD\tdatabase[2]-uri\tnull",
	"MTD\tderivatization_agent[1]\t[XLMOD, XLMOD:07934, N-methyl-N-t-butyldimethylsilyltrifluoroacetamide, ]",
	"MTD\tsmall_molecule-quantification_unit\t[PRIDE, PRIDE:0000330, Arbitrary quantification unit, ]",
	"MTD\tsmall_molecule_feature-quantification_unit\t[PRIDE, PRIDE:0000330, Arbitrary quantification unit, ]",
	"MTD\tsmall_molecule-identification_reliability\t[MS, MS:1002955, hr-ms compound identification confidence level, ]",
	"MTD\tid_confidence_measure[1]\t[MS, MS:1002890, fragmentation score, ]",
	"MTD\tid_confidence_measure[2]\t[MS, MS:1002889, number of matched peaks, ]",
}

// parseMetadata applies MTD lines to a fresh context, failing on any
// fatal or collected error.
func parseMetadata(t *testing.T, lines []string) *core.Metadata {
	t.Helper()
	ctx := parser.NewContext(&core.Metadata{})
	errs := parser.NewErrorList(parser.LevelInfo, 0)
	p := parser.NewMetadataParser(ctx, errs)
	for i, line := range lines {
		if err := p.Parse(i+1, line); err != nil {
			t.Fatalf("Parse(%q) error = %v", line, err)
		}
	}
	for _, e := range errs.Errors() {
		t.Errorf("collected error: %v", e)
	}
	return ctx.Metadata()
}

func TestMetadataRoundTrip(t *testing.T) {
	want := parseMetadata(t, everyElement)

	counts := []struct {
		kind string
		n    int
	}{
		{"sample_processing", len(want.SampleProcessing)},
		{"instrument", len(want.Instrument)},
		{"software", len(want.Software)},
		{"publication", len(want.Publication)},
		{"contact", len(want.Contact)},
		{"uri", len(want.URI)},
		{"external_study_uri", len(want.ExternalStudyURI)},
		{"sample", len(want.Sample)},
		{"ms_run", len(want.MsRun)},
		{"assay", len(want.Assay)},
		{"study_variable", len(want.StudyVariable)},
		{"custom", len(want.Custom)},
		{"cv", len(want.CV)},
		{"database", len(want.Database)},
		{"derivatization_agent", len(want.DerivatizationAgent)},
		{"id_confidence_measure", len(want.IDConfidenceMeasure)},
	}
	for _, c := range counts {
		if c.n == 0 {
			t.Errorf("no %s parsed", c.kind)
		}
	}

	lines := MetadataLines(want)
	got := parseMetadata(t, lines)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if again := MetadataLines(got); !cmp.Equal(lines, again) {
		t.Errorf("MetadataLines() is not stable:\n%s", cmp.Diff(lines, again))
	}
}
