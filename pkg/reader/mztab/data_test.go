package mztab

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ChrisMcGann/mztabkit/pkg/core"
)

// fixtureParsers returns line parsers for the three fixture headers sharing
// one context and error list.
func fixtureParsers(t *testing.T, errs *ErrorList) (*SummaryLineParser, *FeatureLineParser, *EvidenceLineParser) {
	t.Helper()
	ctx, _ := newTestContext(t, fixtureMetadata(t)...)

	smh := parsedHeader(t, ctx, errs, SectionSummaryHeader, fixturePrefixed(t, "SMH")[0])
	sfh := parsedHeader(t, ctx, errs, SectionFeatureHeader, fixturePrefixed(t, "SFH")[0])
	seh := parsedHeader(t, ctx, errs, SectionEvidenceHeader, fixturePrefixed(t, "SEH")[0])

	sml, err := NewSummaryLineParser(smh, ctx, errs)
	if err != nil {
		t.Fatal(err)
	}
	smf, err := NewFeatureLineParser(sfh, ctx, errs)
	if err != nil {
		t.Fatal(err)
	}
	sme, err := NewEvidenceLineParser(seh, ctx, errs)
	if err != nil {
		t.Fatal(err)
	}
	return sml, smf, sme
}

func TestSummaryLineParser(t *testing.T) {
	errs := NewErrorList(LevelInfo, 0)
	sml, _, _ := fixtureParsers(t, errs)

	got, err := sml.Parse(60, fixturePrefixed(t, "SML")[0])
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !errs.IsEmpty() {
		t.Errorf("unexpected errors:%s", errorSummary(errs))
	}

	want := &core.SmallMoleculeSummary{
		ID:                              1,
		SMFIDRefs:                       []int{1},
		DatabaseIdentifier:              []string{"hmdb:HMDB0000122"},
		ChemicalFormula:                 []string{"C6H12O6"},
		Smiles:                          []string{"OC[C@H]1OC(O)[C@H](O)[C@@H](O)[C@@H]1O"},
		Inchi:                           []string{"InChI=1S/C6H12O6/c7-1-2-3(8)4(9)5(10)6(11)12-2/h2-11H,1H2/t2-,3-,4+,5-,6?/m1/s1"},
		ChemicalName:                    []string{"D-Glucose"},
		URI:                             []string{"https://hmdb.ca/metabolites/HMDB0000122"},
		TheoreticalNeutralMass:          []*float64{f64(180.0634)},
		AdductIons:                      []string{"[M+H]1+"},
		Reliability:                     "2",
		BestIDConfidenceMeasure:         core.NewCVParam("MS", "MS:1002890", "fragmentation score", ""),
		BestIDConfidenceValue:           f64(0.95),
		AbundanceAssay:                  []*float64{f64(1234.5)},
		AbundanceStudyVariable:          []*float64{f64(1234.5)},
		AbundanceVariationStudyVariable: []*float64{nil},
		Opt: []core.OptColumn{{
			Identifier: "opt_global_cv_MS:1002217_decoy_peptide",
			Parameter:  core.NewCVParam("MS", "MS:1002217", "decoy peptide", ""),
			Value:      "false",
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestSummaryNullInMandatoryField(t *testing.T) {
	errs := NewErrorList(LevelInfo, 0)
	sml, _, _ := fixtureParsers(t, errs)

	row, err := sml.Parse(60, withField(fixturePrefixed(t, "SML")[0], 1, "null"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if row.ID != 0 {
		t.Errorf("ID = %d, want 0", row.ID)
	}
	if errs.Count(ErrNull) != 1 {
		t.Errorf("errors = %s, want one NULL", errorSummary(errs))
	}
	if row.ChemicalName[0] != "D-Glucose" {
		t.Errorf("remaining fields not parsed: %v", row.ChemicalName)
	}
}

func TestSummaryFieldCountMismatch(t *testing.T) {
	tests := []struct {
		name string
		line func(string) string
	}{
		{"short", func(l string) string { return join("SML", "1", "1", "hmdb:HMDB0000122") }},
		{"long", func(l string) string { return l + "\textra" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := NewErrorList(LevelInfo, 0)
			sml, _, _ := fixtureParsers(t, errs)
			row, err := sml.Parse(60, tt.line(fixturePrefixed(t, "SML")[0]))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if errs.Count(ErrCountMatch) != 1 {
				t.Errorf("errors = %s, want one CountMatch", errorSummary(errs))
			}
			if row.ID != 1 || len(row.DatabaseIdentifier) != 1 {
				t.Errorf("leading fields not parsed: %+v", row)
			}
		})
	}
}

func TestSummaryListCountMismatch(t *testing.T) {
	errs := NewErrorList(LevelInfo, 0)
	sml, _, _ := fixtureParsers(t, errs)

	line := fixturePrefixed(t, "SML")[0]
	line = withField(line, 3, "hmdb:HMDB0000122|chebi:4167")
	line = withField(line, 4, "C6H12O6|C6H12O6")
	line = withField(line, 9, "180.0634|180.0634|180.0634")
	if _, err := sml.Parse(60, line); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	// smiles, inchi, chemical_name and uri hold one entry, mass holds three.
	if got := errs.Count(ErrListCountMismatch); got != 5 {
		t.Errorf("ListCountMismatch errors = %d, want 5:%s", got, errorSummary(errs))
	}
}

func TestSummaryFieldErrors(t *testing.T) {
	tests := []struct {
		name  string
		pos   int
		value string
		want  *ErrorType
	}{
		{"integer", 1, "one", ErrInteger},
		{"integer list", 2, "1|x", ErrStringList},
		{"double", 13, "high", ErrDouble},
		{"param", 12, "[MS, MS:1002890, ]", ErrParam},
		{"abundance", 14, "n/a", ErrDouble},
		{"boolean opt", 17, "yes", ErrBoolean},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := NewErrorList(LevelInfo, 0)
			sml, _, _ := fixtureParsers(t, errs)
			if _, err := sml.Parse(60, withField(fixturePrefixed(t, "SML")[0], tt.pos, tt.value)); err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if errs.Len() != 1 || errs.Count(tt.want) != 1 {
				t.Errorf("errors = %s, want one %s", errorSummary(errs), tt.want.Name)
			}
		})
	}
}

func TestSummaryOverflowIsFatal(t *testing.T) {
	errs := NewErrorList(LevelInfo, 1)
	sml, _, _ := fixtureParsers(t, errs)

	line := fixturePrefixed(t, "SML")[0]
	line = withField(line, 1, "null")
	line = withField(line, 13, "high")
	_, err := sml.Parse(60, line)
	if !errors.Is(err, ErrTooManyErrors) {
		t.Errorf("Parse() error = %v, want ErrTooManyErrors", err)
	}
}

func TestOptionalValueStringification(t *testing.T) {
	errs := NewErrorList(LevelInfo, 0)
	ctx, _ := newTestContext(t, fixtureMetadata(t)...)
	h := parsedHeader(t, ctx, errs, SectionSummaryHeader,
		summaryHeader("opt_global_cv_MS:1001905_emPAI_value", "opt_assay[1]_note", "opt_global_cv_PRIDE:0000303_decoy_hit"))
	sml, err := NewSummaryLineParser(h, ctx, errs)
	if err != nil {
		t.Fatal(err)
	}

	fields := []string{"SML", "1"}
	for i := 2; i <= 16; i++ {
		fields = append(fields, "null")
	}
	fields = append(fields, "1.50", "free text", "1")
	row, err := sml.Parse(60, join(fields...))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	var got []string
	for _, o := range row.Opt {
		got = append(got, o.Identifier+"="+o.Value)
	}
	want := []string{
		"opt_global_cv_MS:1001905_emPAI_value=1.5",
		"opt_assay[1]_note=free text",
		"opt_global_cv_PRIDE:0000303_decoy_hit=true",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("opt values mismatch (-want +got):\n%s\nerrors:%s", diff, errorSummary(errs))
	}
}

func TestDataLineWrongPrefix(t *testing.T) {
	errs := NewErrorList(LevelInfo, 0)
	sml, _, _ := fixtureParsers(t, errs)
	_, err := sml.Parse(60, fixturePrefixed(t, "SMF")[0])
	if !IsType(err, ErrLinePrefix) {
		t.Errorf("Parse() error = %v, want LinePrefix", err)
	}
}

func TestNewDataLineParserNeedsHeader(t *testing.T) {
	ctx, errs := newTestContext(t, fixtureMetadata(t)...)
	h, err := NewHeaderParser(SectionSummaryHeader, ctx, errs)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewSummaryLineParser(h, ctx, errs); err == nil {
		t.Error("NewSummaryLineParser() with an unparsed header expected error")
	}
	sfh := parsedHeader(t, ctx, errs, SectionFeatureHeader, fixturePrefixed(t, "SFH")[0])
	if _, err := NewSummaryLineParser(sfh, ctx, errs); err == nil {
		t.Error("NewSummaryLineParser() with an SFH header expected error")
	}
}

func TestFeatureLineParser(t *testing.T) {
	errs := NewErrorList(LevelInfo, 0)
	_, smf, _ := fixtureParsers(t, errs)

	got, err := smf.Parse(70, fixturePrefixed(t, "SMF")[1])
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := &core.SmallMoleculeFeature{
		ID:                     2,
		SMEIDRefs:              []int{2},
		AdductIon:              "[M+H]1+",
		ExpMassToCharge:        f64(91.039),
		Charge:                 intPtr(1),
		RetentionTimeInSeconds: f64(64),
		AbundanceAssay:         []*float64{f64(88.25)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}

	// charge is mandatory
	if _, err := smf.Parse(71, withField(fixturePrefixed(t, "SMF")[1], 7, "null")); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if errs.Count(ErrNull) != 1 {
		t.Errorf("errors = %s, want one NULL", errorSummary(errs))
	}
}

func TestEvidenceLineParser(t *testing.T) {
	errs := NewErrorList(LevelInfo, 0)
	_, _, sme := fixtureParsers(t, errs)

	row, err := sme.Parse(80, fixturePrefixed(t, "SME")[0])
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !errs.IsEmpty() {
		t.Fatalf("unexpected errors:%s", errorSummary(errs))
	}
	if len(row.SpectraRef) != 1 || row.SpectraRef[0].MsRun == nil || row.SpectraRef[0].MsRun.ID != 1 {
		t.Errorf("SpectraRef = %v", row.SpectraRef)
	}
	if got := row.SpectraRef[0].String(); got != "ms_run[1]:controllerType=0 controllerNumber=1 scan=42" {
		t.Errorf("SpectraRef.String() = %q", got)
	}
	if diff := cmp.Diff([]*float64{f64(0.95)}, row.IDConfidenceMeasure); diff != "" {
		t.Errorf("IDConfidenceMeasure mismatch (-want +got):\n%s", diff)
	}
	if row.Rank == nil || *row.Rank != 1 || row.MsLevel.Value != "2" {
		t.Errorf("rank %v, ms level %v", row.Rank, row.MsLevel)
	}
}

func TestEvidenceChecks(t *testing.T) {
	tests := []struct {
		name  string
		pos   int
		value string
		want  *ErrorType
	}{
		{"rank below one", 18, "0", ErrValueRange},
		{"undeclared ms run", 14, "ms_run[3]:scan=1", ErrMsRunNotDefined},
		{"malformed spectra ref", 14, "scan=1", ErrSpectraRef},
		{"null identification method", 15, "null", ErrNull},
		{"accession without namespace", 16, "[MS, 1000511, ms level, 2]", ErrParamAccession},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := NewErrorList(LevelInfo, 0)
			_, _, sme := fixtureParsers(t, errs)
			if _, err := sme.Parse(80, withField(fixturePrefixed(t, "SME")[0], tt.pos, tt.value)); err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if errs.Len() != 1 || errs.Count(tt.want) != 1 {
				t.Errorf("errors = %s, want one %s", errorSummary(errs), tt.want.Name)
			}
		})
	}
}

func TestMeasuresFollowMetadataOrder(t *testing.T) {
	lines := append(fixtureMetadata(t),
		"MTD\tassay[2]\tAssay 2",
		"MTD\tassay[2]-sample_ref\tsample[1]",
		"MTD\tassay[2]-ms_run_ref\tms_run[1]",
		"MTD\tid_confidence_measure[2]\t[MS, MS:1002889, number of matched peaks, ]")
	ctx, _ := newTestContext(t, lines...)
	errs := NewErrorList(LevelInfo, 0)

	sfh := join(append(append([]string{"SFH"}, StableColumnNames(SectionFeatureHeader)...),
		"abundance_assay[2]", "abundance_assay[1]")...)
	smf, err := NewFeatureLineParser(parsedHeader(t, ctx, errs, SectionFeatureHeader, sfh), ctx, errs)
	if err != nil {
		t.Fatal(err)
	}
	feature, err := smf.Parse(70, join("SMF", "1", "1", "null", "[M+H]1+", "null", "181.0707", "1", "120.5", "null", "null", "222", "111"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if diff := cmp.Diff([]*float64{f64(111), f64(222)}, feature.AbundanceAssay); diff != "" {
		t.Errorf("AbundanceAssay mismatch (-want +got):\n%s", diff)
	}

	seh := parsedHeader(t, ctx, errs, SectionEvidenceHeader,
		evidenceHeader("id_confidence_measure[2]", "id_confidence_measure[1]"))
	sme, err := NewEvidenceLineParser(seh, ctx, errs)
	if err != nil {
		t.Fatal(err)
	}
	// stable fields of the fixture row, then rank, then the two scores
	items := strings.Split(fixturePrefixed(t, "SME")[0], Tab)
	fields := append(append([]string(nil), items[:17]...), items[18], "7", "0.25")
	evidence, err := sme.Parse(80, join(fields...))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if diff := cmp.Diff([]*float64{f64(0.25), f64(7)}, evidence.IDConfidenceMeasure); diff != "" {
		t.Errorf("IDConfidenceMeasure mismatch (-want +got):\n%s", diff)
	}
}
