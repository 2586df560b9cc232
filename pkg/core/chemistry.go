package core

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"
)

// Proton mass for charge calculations
const ProtonMass = 1.00727646688

// ElementMasses maps element symbols to their most abundant isotope mass
var ElementMasses = map[string]float64{
	"H":  1.00782503207,
	"D":  2.0141017778,
	"C":  12.0000000000,
	"N":  14.0030740048,
	"O":  15.99491461956,
	"S":  31.97207100,
	"P":  30.97376163,
	"F":  18.99840322,
	"Cl": 34.96885268,
	"Br": 78.9183371,
	"I":  126.904473,
	"Na": 22.9897692809,
	"K":  38.96370668,
	"Li": 7.01600455,
	"Mg": 23.9850417,
	"Ca": 39.96259098,
	"Fe": 55.9349375,
	"Cu": 62.9295975,
	"Zn": 63.9291422,
	"Se": 79.9165213,
	"Si": 27.9769265325,
	"B":  11.0093054,
}

// ParseFormula counts atoms per element in a chemical formula such as
// "C6H12O6". Whitespace is ignored; an element may appear more than once.
func ParseFormula(formula string) (map[string]int, error) {
	counts := make(map[string]int)
	runes := []rune(strings.TrimSpace(formula))
	if len(runes) == 0 {
		return nil, fmt.Errorf("empty formula")
	}

	for i := 0; i < len(runes); {
		r := runes[i]
		if unicode.IsSpace(r) {
			i++
			continue
		}
		if !unicode.IsUpper(r) {
			return nil, fmt.Errorf("invalid formula '%s': unexpected '%c' at %d", formula, r, i)
		}

		symbol := string(r)
		i++
		if i < len(runes) && unicode.IsLower(runes[i]) {
			symbol += string(runes[i])
			i++
		}
		if _, ok := ElementMasses[symbol]; !ok {
			return nil, fmt.Errorf("invalid formula '%s': unknown element %s", formula, symbol)
		}

		n := 0
		for i < len(runes) && unicode.IsDigit(runes[i]) {
			n = n*10 + int(runes[i]-'0')
			i++
		}
		if n == 0 {
			n = 1
		}
		counts[symbol] += n
	}

	return counts, nil
}

// MonoisotopicMass computes the neutral monoisotopic mass of a formula
func MonoisotopicMass(formula string) (float64, error) {
	counts, err := ParseFormula(formula)
	if err != nil {
		return 0, err
	}

	// Sum in a fixed order so results are reproducible
	symbols := make([]string, 0, len(counts))
	for s := range counts {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	mass := 0.0
	for _, s := range symbols {
		mass += float64(counts[s]) * ElementMasses[s]
	}
	return mass, nil
}

// MassToCharge converts a neutral mass to m/z for a protonated (charge > 0)
// or deprotonated (charge < 0) ion.
func MassToCharge(neutralMass float64, charge int) float64 {
	if charge == 0 {
		return neutralMass
	}
	z := math.Abs(float64(charge))
	if charge > 0 {
		return (neutralMass + z*ProtonMass) / z
	}
	return (neutralMass - z*ProtonMass) / z
}

// PPMError returns the deviation of observed from expected in parts per million
func PPMError(observed, expected float64) float64 {
	if expected == 0 {
		return math.Inf(1)
	}
	return (observed - expected) / expected * 1e6
}

// MassMismatch reports a row whose reported mass disagrees with the mass
// computed from its chemical formula.
type MassMismatch struct {
	Section  string // SML or SME
	RowID    int
	Index    int // 0-based position within the row's lists
	Formula  string
	Reported float64
	Computed float64
	PPM      float64
}

func (m MassMismatch) String() string {
	return fmt.Sprintf("%s %d: formula %s mass %.6f differs from reported %.6f (%.2f ppm)",
		m.Section, m.RowID, m.Formula, m.Computed, m.Reported, m.PPM)
}

// CheckNeutralMasses compares theoretical_neutral_mass against the formula
// mass for each summary row. Entries with a null formula or mass, or with a
// formula that cannot be parsed, are skipped.
func CheckNeutralMasses(rows []*SmallMoleculeSummary, tolerancePPM float64) []MassMismatch {
	var out []MassMismatch
	for _, row := range rows {
		for i, formula := range row.ChemicalFormula {
			if i >= len(row.TheoreticalNeutralMass) || row.TheoreticalNeutralMass[i] == nil {
				continue
			}
			if formula == "" || formula == Null {
				continue
			}
			computed, err := MonoisotopicMass(formula)
			if err != nil {
				continue
			}
			reported := *row.TheoreticalNeutralMass[i]
			ppm := PPMError(reported, computed)
			if math.Abs(ppm) > tolerancePPM {
				out = append(out, MassMismatch{
					Section:  "SML",
					RowID:    row.ID,
					Index:    i,
					Formula:  formula,
					Reported: reported,
					Computed: computed,
					PPM:      ppm,
				})
			}
		}
	}
	return out
}
