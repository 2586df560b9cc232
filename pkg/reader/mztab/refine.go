package mztab

import (
	"strings"

	"github.com/ChrisMcGann/mztabkit/pkg/core"
)

// noDatabase is the database name used for identifications without one.
const noDatabase = "no database"

// Refine checks the completed metadata section for mandatory entries. Every
// problem is recorded in the error list; the returned error is only set when
// the list overflows.
func (p *MetadataParser) Refine() error {
	r := refiner{errs: p.errs}
	meta := p.meta

	if meta.Version == "" {
		r.missing("mzTab-version")
	}
	if meta.MzTabID == "" {
		r.missing("mzTab-ID")
	}
	if len(meta.Software) == 0 {
		r.missing("software[1]")
	}
	if meta.QuantificationMethod == nil {
		r.missing("quantification_method")
	}

	if len(meta.MsRun) == 0 {
		r.missing("ms_run[1]")
	}
	for _, run := range meta.MsRun {
		if run.Location == "" {
			r.add(ErrMsRunIncomplete, run.ID, "location")
		}
		if len(run.ScanPolarity) == 0 {
			r.add(ErrMsRunIncomplete, run.ID, "scan_polarity[1]")
		}
	}

	if len(meta.Assay) == 0 {
		r.missing("assay[1]")
	}
	for _, assay := range meta.Assay {
		if len(assay.MsRuns) == 0 {
			r.add(ErrAssayMsRunRef, assay.ID)
		}
	}

	if len(meta.StudyVariable) == 0 {
		r.missing("study_variable[1]")
	}
	for _, sv := range meta.StudyVariable {
		if sv.Name == "" {
			r.add(ErrStudyVariableIncomplete, sv.ID, "name")
		}
		if sv.Description == "" {
			r.add(ErrStudyVariableIncomplete, sv.ID, "description")
		}
		if len(meta.Assay) > 0 && len(sv.Assays) == 0 {
			r.add(ErrStudyVariableIncomplete, sv.ID, "assay_refs")
		}
	}

	if len(meta.CV) == 0 {
		r.missing("cv[1]")
	}
	for _, cv := range meta.CV {
		if cv.Label == "" {
			r.add(ErrCVIncomplete, cv.ID, "label")
		}
		if cv.FullName == "" {
			r.add(ErrCVIncomplete, cv.ID, "full_name")
		}
		if cv.Version == "" {
			r.add(ErrCVIncomplete, cv.ID, "version")
		}
		if cv.URI == "" {
			r.add(ErrCVIncomplete, cv.ID, "uri")
		}
	}

	if len(meta.Database) == 0 {
		r.missing("database[1]")
	}
	for _, db := range meta.Database {
		if db.Parameter == nil {
			r.missing(core.ElementRef(kindDatabase, db.ID))
		}
		if db.Version == "" {
			r.add(ErrDatabaseIncomplete, db.ID, "version")
		}
		if db.URI == "" && !isNoDatabase(db.Parameter) {
			r.add(ErrDatabaseIncomplete, db.ID, "uri")
		}
	}

	if meta.SmallMoleculeQuantificationUnit == nil {
		r.missing("small_molecule-quantification_unit")
	}
	if meta.SmallMoleculeFeatureQuantificationUnit == nil {
		r.missing("small_molecule_feature-quantification_unit")
	}
	if len(meta.IDConfidenceMeasure) == 0 {
		r.missing("id_confidence_measure[1]")
	}

	return r.err
}

func isNoDatabase(p *core.Parameter) bool {
	return p != nil && strings.EqualFold(strings.TrimSpace(p.Name), noDatabase)
}

// refiner accumulates document level errors and remembers the first
// overflow.
type refiner struct {
	errs *ErrorList
	err  error
}

func (r *refiner) add(t *ErrorType, values ...any) {
	if r.err != nil {
		return
	}
	r.err = r.errs.Add(newError(t, -1, values...))
}

func (r *refiner) missing(name string) {
	r.add(ErrMissingMetadata, name)
}
