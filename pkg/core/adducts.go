package core

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ElectronMass is removed once per positive charge
const ElectronMass = 0.00054857990946

var (
	adductRe     = regexp.MustCompile(`^\[(\d*)M((?:[+-]\d*[A-Za-z][A-Za-z0-9]*)*)\](\d*)([+-])$`)
	adductTermRe = regexp.MustCompile(`([+-])(\d*)([A-Za-z][A-Za-z0-9]*)`)
)

// Adduct is a parsed adduct ion such as [M+H]1+ or [2M+Na]1+
type Adduct struct {
	Name      string
	Multimer  int     // n in [nM...]
	MassShift float64 // net mass of the added and lost groups
	Charge    int     // signed
}

// MassToCharge returns the m/z of the adduct of a neutral molecule
func (a *Adduct) MassToCharge(neutralMass float64) float64 {
	mass := float64(a.Multimer)*neutralMass + a.MassShift - float64(a.Charge)*ElectronMass
	if a.Charge == 0 {
		return mass
	}
	return mass / math.Abs(float64(a.Charge))
}

// AdductDatabase stores masses of named groups used in adduct notation
// that are not plain formulas, e.g. ACN or FA.
type AdductDatabase struct {
	groups map[string]float64 // name -> neutral mass
}

// NewAdductDatabase creates an empty adduct group database
func NewAdductDatabase() *AdductDatabase {
	return &AdductDatabase{
		groups: make(map[string]float64),
	}
}

// LoadFromCSV loads groups from a CSV file (format: name,mass)
func (db *AdductDatabase) LoadFromCSV(r io.Reader) error {
	scanner := bufio.NewScanner(r)

	// Skip header line
	scanner.Scan()

	lineNum := 1
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Split(line, ",")
		if len(parts) < 2 {
			return fmt.Errorf("line %d: invalid format, expected at least 2 comma-separated fields", lineNum)
		}

		name := strings.TrimSpace(parts[0])
		massStr := strings.TrimSpace(parts[1])

		mass, err := strconv.ParseFloat(massStr, 64)
		if err != nil {
			return fmt.Errorf("line %d: invalid mass value '%s': %w", lineNum, massStr, err)
		}

		db.groups[name] = mass
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading CSV: %w", err)
	}

	return nil
}

// GetMass returns the mass of a named group
func (db *AdductDatabase) GetMass(name string) (float64, bool) {
	mass, ok := db.groups[name]
	return mass, ok
}

// Add adds or updates a group
func (db *AdductDatabase) Add(name string, mass float64) {
	db.groups[name] = mass
}

// ParseAdduct parses adduct notation like "[M+H]1+", "[2M+Na]+" or
// "[M+H-H2O]1+". Group names are looked up in the database first and
// otherwise read as chemical formulas.
func (db *AdductDatabase) ParseAdduct(s string) (*Adduct, error) {
	s = strings.TrimSpace(s)
	m := adductRe.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("invalid adduct format '%s', expected e.g. '[M+H]1+'", s)
	}

	a := &Adduct{Name: s, Multimer: 1, Charge: 1}
	if m[1] != "" {
		a.Multimer, _ = strconv.Atoi(m[1])
	}
	if m[3] != "" {
		a.Charge, _ = strconv.Atoi(m[3])
	}
	if m[4] == "-" {
		a.Charge = -a.Charge
	}

	for _, term := range adductTermRe.FindAllStringSubmatch(m[2], -1) {
		count := 1
		if term[2] != "" {
			count, _ = strconv.Atoi(term[2])
		}

		mass, ok := db.GetMass(term[3])
		if !ok {
			var err error
			mass, err = MonoisotopicMass(term[3])
			if err != nil {
				return nil, fmt.Errorf("invalid adduct '%s': %w", s, err)
			}
		}

		if term[1] == "-" {
			mass = -mass
		}
		a.MassShift += float64(count) * mass
	}

	return a, nil
}

// CheckEvidenceMasses compares theoretical_mass_to_charge against the m/z
// computed from chemical formula and adduct ion. Without an adduct ion the
// row's charge is used and a [M+zH] or [M-zH] ion is assumed. Rows lacking
// the values, or with values that cannot be parsed, are skipped.
func CheckEvidenceMasses(rows []*SmallMoleculeEvidence, db *AdductDatabase, tolerancePPM float64) []MassMismatch {
	var out []MassMismatch
	for _, row := range rows {
		if row.ChemicalFormula == "" || row.TheoreticalMassToCharge == nil {
			continue
		}
		neutral, err := MonoisotopicMass(row.ChemicalFormula)
		if err != nil {
			continue
		}

		var computed float64
		switch {
		case row.AdductIon != "" && row.AdductIon != Null:
			adduct, err := db.ParseAdduct(row.AdductIon)
			if err != nil {
				continue
			}
			computed = adduct.MassToCharge(neutral)
		case row.Charge != nil:
			computed = MassToCharge(neutral, *row.Charge)
		default:
			continue
		}

		reported := *row.TheoreticalMassToCharge
		ppm := PPMError(reported, computed)
		if math.Abs(ppm) > tolerancePPM {
			out = append(out, MassMismatch{
				Section:  "SME",
				RowID:    row.ID,
				Formula:  row.ChemicalFormula,
				Reported: reported,
				Computed: computed,
				PPM:      ppm,
			})
		}
	}
	return out
}

// DefaultAdductDatabase returns an AdductDatabase pre-loaded with the
// solvent and acid groups common in LC-MS adduct notation
func DefaultAdductDatabase() *AdductDatabase {
	db := NewAdductDatabase()

	db.Add("ACN", 41.026549)     // acetonitrile C2H3N
	db.Add("MeOH", 32.026215)    // methanol CH4O
	db.Add("IsoProp", 60.057515) // isopropanol C3H8O
	db.Add("DMSO", 78.013936)    // C2H6OS
	db.Add("FA", 46.005479)      // formic acid CH2O2
	db.Add("Hac", 60.021129)     // acetic acid C2H4O2
	db.Add("TFA", 113.992864)    // trifluoroacetic acid C2HF3O2

	return db
}
