package core

import (
	"math"
	"strings"
	"testing"
)

func TestParseAdduct(t *testing.T) {
	const glucose = 180.0633881
	db := DefaultAdductDatabase()

	tests := []struct {
		adduct     string
		wantCharge int
		wantMZ     float64
		wantErr    bool
	}{
		{adduct: "[M+H]1+", wantCharge: 1, wantMZ: 181.0706646},
		{adduct: "[M+H]+", wantCharge: 1, wantMZ: 181.0706646},
		{adduct: "[M-H]1-", wantCharge: -1, wantMZ: 179.0561116},
		{adduct: "[M+2H]2+", wantCharge: 2, wantMZ: 91.0389705},
		{adduct: "[2M+Na]1+", wantCharge: 1, wantMZ: 383.1159969},
		{adduct: "[M+H-H2O]1+", wantCharge: 1, wantMZ: 163.0600999},
		{adduct: "[M+NH4]1+", wantCharge: 1, wantMZ: 198.0971137},
		{adduct: "[M+ACN+H]1+", wantCharge: 1, wantMZ: 222.0972137},
		{adduct: "M+H", wantErr: true},
		{adduct: "[M+H]", wantErr: true},
		{adduct: "[M+Xx]1+", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.adduct, func(t *testing.T) {
			a, err := db.ParseAdduct(tt.adduct)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAdduct() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if a.Charge != tt.wantCharge {
				t.Errorf("Charge = %d, want %d", a.Charge, tt.wantCharge)
			}
			if got := a.MassToCharge(glucose); math.Abs(got-tt.wantMZ) > 1e-4 {
				t.Errorf("MassToCharge() = %.7f, want %.7f", got, tt.wantMZ)
			}
		})
	}
}

func TestAdductDatabaseLoadFromCSV(t *testing.T) {
	db := NewAdductDatabase()
	if err := db.LoadFromCSV(strings.NewReader("name,mass\nBuf, 99.5\n\n")); err != nil {
		t.Fatalf("LoadFromCSV() error = %v", err)
	}
	if m, ok := db.GetMass("Buf"); !ok || m != 99.5 {
		t.Errorf("GetMass(Buf) = %v, %v", m, ok)
	}

	for _, in := range []string{"name,mass\nBuf\n", "name,mass\nBuf,heavy\n"} {
		if err := db.LoadFromCSV(strings.NewReader(in)); err == nil {
			t.Errorf("LoadFromCSV(%q) expected error", in)
		}
	}
}

func TestCheckEvidenceMasses(t *testing.T) {
	good := 181.0707
	bad := 182.0
	plus := 1
	rows := []*SmallMoleculeEvidence{
		{ID: 1, ChemicalFormula: "C6H12O6", AdductIon: "[M+H]1+", TheoreticalMassToCharge: &good},
		{ID: 2, ChemicalFormula: "C6H12O6", AdductIon: "[M+H]1+", TheoreticalMassToCharge: &bad},
		{ID: 3, AdductIon: "[M+H]1+", TheoreticalMassToCharge: &bad},
		{ID: 4, ChemicalFormula: "C6H12O6", AdductIon: "M+H", TheoreticalMassToCharge: &bad},
		{ID: 5, ChemicalFormula: "C6H12O6", Charge: &plus, TheoreticalMassToCharge: &good},
		{ID: 6, ChemicalFormula: "C6H12O6", Charge: &plus, TheoreticalMassToCharge: &bad},
		{ID: 7, ChemicalFormula: "C6H12O6", TheoreticalMassToCharge: &bad},
	}

	got := CheckEvidenceMasses(rows, DefaultAdductDatabase(), 5)
	if len(got) != 2 {
		t.Fatalf("CheckEvidenceMasses() returned %d mismatches, want 2: %v", len(got), got)
	}
	for i, id := range []int{2, 6} {
		if got[i].Section != "SME" || got[i].RowID != id {
			t.Errorf("mismatch %d = %+v, want SME %d", i, got[i], id)
		}
	}
}
