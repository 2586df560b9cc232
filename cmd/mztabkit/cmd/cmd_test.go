package cmd

import (
	"path/filepath"
	"testing"

	"github.com/ChrisMcGann/mztabkit/pkg/reader/mztab"
)

var fixture = filepath.Join("..", "..", "..", "pkg", "reader", "mztab", "testdata", "minimal.mztab")

func TestDetectOutputFormat(t *testing.T) {
	tests := []struct {
		out     string
		to      string
		want    string
		wantErr bool
	}{
		{out: "study.db", want: "sqlite"},
		{out: "study.SQLITE", want: "sqlite"},
		{out: "study.mztab", want: "mztab"},
		{out: "study.out", to: "MzTab", want: "mztab"},
		{out: "study.out", wantErr: true},
		{out: "study.db", to: "csv", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.out+"/"+tt.to, func(t *testing.T) {
			outputFile, outputFormat = tt.out, tt.to
			got, err := detectOutputFormat()
			if (err != nil) != tt.wantErr {
				t.Fatalf("detectOutputFormat() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("detectOutputFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateAndConvert(t *testing.T) {
	rootCmd.SetArgs([]string{"validate", fixture, "--mass-tolerance", "5"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("validate error = %v", err)
	}

	out := filepath.Join(t.TempDir(), "filtered.mztab")
	rootCmd.SetArgs([]string{"convert", "--in", fixture, "--out", out, "--max-rank", "1", "--reliability", "2"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("convert error = %v", err)
	}

	doc, errs, err := mztab.ReadFile(out, mztab.Options{})
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !errs.IsEmpty() {
		t.Errorf("converted file has %d errors", errs.Len())
	}
	if len(doc.SmallMoleculeSummary) != 2 {
		t.Errorf("summary rows = %d, want 2", len(doc.SmallMoleculeSummary))
	}

	rootCmd.SetArgs([]string{"summarize", out})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("summarize error = %v", err)
	}
}

func TestValidateMissingFile(t *testing.T) {
	rootCmd.SetArgs([]string{"validate", filepath.Join(t.TempDir(), "missing.mztab")})
	if err := rootCmd.Execute(); err == nil {
		t.Error("validate of a missing file expected error")
	}
}
