package sqlite

import (
	"database/sql"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	parser "github.com/ChrisMcGann/mztabkit/pkg/reader/mztab"
)

func exportFixture(t *testing.T) *sql.DB {
	t.Helper()
	doc, errs, err := parser.ReadFile(filepath.Join("..", "..", "reader", "mztab", "testdata", "minimal.mztab"), parser.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !errs.IsEmpty() {
		t.Fatalf("fixture has %d errors", errs.Len())
	}

	path := filepath.Join(t.TempDir(), "out.db")
	w, err := NewWriter(path)
	if err != nil {
		if strings.Contains(err.Error(), "CGO_ENABLED=0") {
			t.Skip("sqlite3 driver needs cgo")
		}
		t.Fatalf("NewWriter() error = %v", err)
	}
	if err := w.WriteDocument(doc); err != nil {
		t.Fatalf("WriteDocument() error = %v", err)
	}
	if w.Rows() != 6 {
		t.Errorf("Rows() = %d, want 6", w.Rows())
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestWriteDocument(t *testing.T) {
	db := exportFixture(t)

	counts := []struct {
		query string
		want  int
	}{
		{"SELECT COUNT(*) FROM SmallMoleculeSummary", 2},
		{"SELECT COUNT(*) FROM SmallMoleculeFeature", 2},
		{"SELECT COUNT(*) FROM SmallMoleculeEvidence", 2},
		// 2 SML rows x 3 abundance columns + 2 SMF rows x 1
		{"SELECT COUNT(*) FROM Abundance", 8},
		{"SELECT COUNT(*) FROM IdConfidence", 2},
		{"SELECT COUNT(*) FROM OptValue WHERE Section = 'SML'", 2},
		{"SELECT COUNT(*) FROM Metadata WHERE Label LIKE 'colunit-%'", 1},
		{"SELECT NoofRows FROM ExportInfo", 6},
	}
	for _, c := range counts {
		t.Run(c.query, func(t *testing.T) {
			var got int
			if err := db.QueryRow(c.query).Scan(&got); err != nil {
				t.Fatalf("query error = %v", err)
			}
			if got != c.want {
				t.Errorf("got %d, want %d", got, c.want)
			}
		})
	}
}

func TestWriteDocumentValues(t *testing.T) {
	db := exportFixture(t)

	var name, formula string
	var mass sql.NullString
	var smiles sql.NullString
	err := db.QueryRow(`SELECT ChemicalName, ChemicalFormula, TheoreticalNeutralMass, Smiles
		FROM SmallMoleculeSummary WHERE SML_ID = 2`).Scan(&name, &formula, &mass, &smiles)
	if err != nil {
		t.Fatal(err)
	}
	if name != "L-Lactic acid" || formula != "C3H6O3" || mass.String != "90.0317" {
		t.Errorf("SML 2 = %q %q %q", name, formula, mass.String)
	}
	if smiles.Valid {
		t.Errorf("Smiles = %q, want NULL", smiles.String)
	}

	var ref string
	if err := db.QueryRow("SELECT SpectraRef FROM SmallMoleculeEvidence WHERE SME_ID = 1").Scan(&ref); err != nil {
		t.Fatal(err)
	}
	if ref != "ms_run[1]:controllerType=0 controllerNumber=1 scan=42" {
		t.Errorf("SpectraRef = %q", ref)
	}

	rows, err := db.Query("SELECT Kind, RefId FROM Abundance WHERE Section = 'SML' AND RowId = 1 ORDER BY rowid")
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()
	var got []string
	for rows.Next() {
		var kind string
		var id int
		if err := rows.Scan(&kind, &id); err != nil {
			t.Fatal(err)
		}
		got = append(got, kind+"["+strconv.Itoa(id)+"]")
	}
	want := []string{"assay[1]", "study_variable[1]", "variation_study_variable[1]"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("abundance columns mismatch (-want +got):\n%s", diff)
	}
}
