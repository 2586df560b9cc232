package mztab

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ChrisMcGann/mztabkit/pkg/core"
)

func TestRegistryUpsertReusesElement(t *testing.T) {
	meta := &core.Metadata{}
	ctx := NewContext(meta)

	for i := 0; i < 3; i++ {
		assay, err := ctx.Assays.Upsert(1)
		if err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
		assay.Name = fmt.Sprintf("assay %d", i)
		if got := ctx.Assays.Len(); got != 1 {
			t.Errorf("Len() after upsert %d = %d, want 1", i, got)
		}
	}
	if len(meta.Assay) != 1 {
		t.Fatalf("metadata holds %d assays, want 1", len(meta.Assay))
	}
	if meta.Assay[0].Name != "assay 2" {
		t.Errorf("assay name = %q, want %q", meta.Assay[0].Name, "assay 2")
	}
}

func TestMetadataUpsertKeepsSize(t *testing.T) {
	labels := []struct {
		label  string
		values [2]string
		size   func(*Context) int
	}{
		{"ms_run[%d]-location", [2]string{"file:///a.mzML", "file:///b.mzML"}, func(c *Context) int { return c.MsRuns.Len() }},
		{"sample[%d]-description", [2]string{"first", "second"}, func(c *Context) int { return c.Samples.Len() }},
		{"assay[%d]-name", [2]string{"first", "second"}, func(c *Context) int { return c.Assays.Len() }},
		{"study_variable[%d]-description", [2]string{"first", "second"}, func(c *Context) int { return c.StudyVariables.Len() }},
		{"instrument[%d]-name", [2]string{"[MS, MS:1000449, LTQ Orbitrap, ]", "[MS, MS:1001742, LTQ Orbitrap Velos, ]"}, func(c *Context) int { return c.Instruments.Len() }},
		{"contact[%d]-name", [2]string{"Jane", "John"}, func(c *Context) int { return c.Contacts.Len() }},
		{"cv[%d]-version", [2]string{"1.0", "2.0"}, func(c *Context) int { return c.CVs.Len() }},
		{"database[%d]-version", [2]string{"1.0", "2.0"}, func(c *Context) int { return c.Databases.Len() }},
	}

	for _, tt := range labels {
		for _, id := range []int{1, 2, 7} {
			label := fmt.Sprintf(tt.label, id)
			t.Run(label, func(t *testing.T) {
				ctx, _ := newTestContext(t, join("MTD", label, tt.values[0]))
				before := tt.size(ctx)
				p := NewMetadataParser(ctx, NewErrorList(LevelInfo, 0))
				if err := p.Parse(2, join("MTD", label, tt.values[1])); err != nil {
					t.Fatalf("Parse() error = %v", err)
				}
				if after := tt.size(ctx); after != before || after != 1 {
					t.Errorf("size before %d, after %d, want 1", before, after)
				}
			})
		}
	}
}

func TestRegistryRequire(t *testing.T) {
	ctx := NewContext(&core.Metadata{})
	for _, id := range []int{3, 1, 2} {
		if _, err := ctx.MsRuns.Upsert(id); err != nil {
			t.Fatalf("Upsert(%d) error = %v", id, err)
		}
	}
	if diff := cmp.Diff([]int{3, 1, 2}, ctx.MsRuns.IDs()); diff != "" {
		t.Errorf("IDs() mismatch (-want +got):\n%s", diff)
	}

	if run, err := ctx.MsRuns.Require(2); err != nil || run.ID != 2 {
		t.Errorf("Require(2) = %v, %v", run, err)
	}

	_, err := ctx.MsRuns.Require(4)
	var ref *UndefinedRefError
	if !errors.As(err, &ref) || ref.Kind != kindMsRun || ref.ID != 4 {
		t.Errorf("Require(4) error = %v, want UndefinedRefError for ms_run[4]", err)
	}

	_, err = ctx.MsRuns.Require(0)
	var inv *InvalidIDError
	if !errors.As(err, &inv) {
		t.Errorf("Require(0) error = %v, want InvalidIDError", err)
	}

	if _, err := ctx.MsRuns.Add(1, &core.MsRun{ID: 1}); err == nil {
		t.Error("Add() of an existing id expected error")
	}
}

func TestContextSettersRequireTargets(t *testing.T) {
	ctx := NewContext(&core.Metadata{})

	if _, err := ctx.SetAssayMsRuns(1, []int{1}); err == nil {
		t.Fatal("SetAssayMsRuns() with an undeclared ms_run expected error")
	}
	if ctx.Assays.Len() != 0 {
		t.Errorf("failed SetAssayMsRuns() created %d assays", ctx.Assays.Len())
	}

	if _, err := ctx.MsRuns.Upsert(1); err != nil {
		t.Fatal(err)
	}
	if _, err := ctx.MsRuns.Upsert(2); err != nil {
		t.Fatal(err)
	}
	assay, err := ctx.SetAssayMsRuns(1, []int{2, 1})
	if err != nil {
		t.Fatalf("SetAssayMsRuns() error = %v", err)
	}
	if len(assay.MsRuns) != 2 || assay.MsRuns[0].ID != 2 {
		t.Errorf("assay ms runs = %v", assay.MsRuns)
	}

	sv, err := ctx.SetStudyVariableAssays(1, []int{1})
	if err != nil {
		t.Fatalf("SetStudyVariableAssays() error = %v", err)
	}
	if sv.Assays[0] != assay {
		t.Error("study variable does not reference the registered assay")
	}
}
