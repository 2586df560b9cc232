package core

import (
	"math"
	"testing"
)

func TestMonoisotopicMass(t *testing.T) {
	tests := []struct {
		name      string
		formula   string
		wantMass  float64
		tolerance float64
		wantErr   bool
	}{
		{
			name:      "glucose",
			formula:   "C6H12O6",
			wantMass:  180.06339,
			tolerance: 0.0001,
		},
		{
			name:      "water",
			formula:   "H2O",
			wantMass:  18.010565,
			tolerance: 0.0001,
		},
		{
			name:      "two letter elements",
			formula:   "NaCl",
			wantMass:  57.958622,
			tolerance: 0.0001,
		},
		{
			name:      "repeated element",
			formula:   "CH3CH2OH",
			wantMass:  46.041865,
			tolerance: 0.0001,
		},
		{
			name:    "unknown element",
			formula: "C6Xx2",
			wantErr: true,
		},
		{
			name:    "lowercase start",
			formula: "c6h6",
			wantErr: true,
		},
		{
			name:    "empty",
			formula: "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MonoisotopicMass(tt.formula)
			if (err != nil) != tt.wantErr {
				t.Fatalf("MonoisotopicMass() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if math.Abs(got-tt.wantMass) > tt.tolerance {
				t.Errorf("MonoisotopicMass() = %.6f, want %.6f (within %.6f)", got, tt.wantMass, tt.tolerance)
			}
		})
	}
}

func TestMassToCharge(t *testing.T) {
	tests := []struct {
		name   string
		mass   float64
		charge int
		want   float64
	}{
		{"neutral", 180.06339, 0, 180.06339},
		{"protonated", 180.06339, 1, 181.070666},
		{"doubly protonated", 180.06339, 2, 91.038971},
		{"deprotonated", 180.06339, -1, 179.056114},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MassToCharge(tt.mass, tt.charge)
			if math.Abs(got-tt.want) > 0.00001 {
				t.Errorf("MassToCharge() = %.6f, want %.6f", got, tt.want)
			}
		})
	}
}

func TestCheckNeutralMasses(t *testing.T) {
	good := 180.06339
	bad := 181.0
	rows := []*SmallMoleculeSummary{
		{
			ID:                     1,
			ChemicalFormula:        []string{"C6H12O6"},
			TheoreticalNeutralMass: []*float64{&good},
		},
		{
			ID:                     2,
			ChemicalFormula:        []string{"C6H12O6", "null"},
			TheoreticalNeutralMass: []*float64{&bad, &bad},
		},
		{
			ID:                     3,
			ChemicalFormula:        []string{"C6H12O6"},
			TheoreticalNeutralMass: []*float64{nil},
		},
	}

	got := CheckNeutralMasses(rows, 5)
	if len(got) != 1 {
		t.Fatalf("CheckNeutralMasses() returned %d mismatches, want 1: %v", len(got), got)
	}
	if got[0].Section != "SML" || got[0].RowID != 2 || got[0].Index != 0 {
		t.Errorf("mismatch = %+v, want SML 2 index 0", got[0])
	}
	if got[0].PPM <= 5 {
		t.Errorf("mismatch ppm = %.2f, want > 5", got[0].PPM)
	}
}
