package mztab

import (
	"fmt"
	"strings"

	"github.com/ChrisMcGann/mztabkit/pkg/core"
)

// HeaderParser resolves the header line of one table section into a
// ColumnFactory and PositionMapping.
type HeaderParser struct {
	ctx     *Context
	errs    *ErrorList
	schema  *tableSchema
	factory *ColumnFactory
	mapping *PositionMapping
	line    int
}

// NewHeaderParser creates a parser for the header of section (SMH, SFH or
// SEH).
func NewHeaderParser(section Section, ctx *Context, errs *ErrorList) (*HeaderParser, error) {
	if !section.IsHeader() {
		return nil, fmt.Errorf("section %s is not a table header", section.Prefix())
	}
	schema, _ := schemaFor(section)
	return &HeaderParser{ctx: ctx, errs: errs, schema: schema}, nil
}

// Section returns the header section handled by the parser.
func (p *HeaderParser) Section() Section { return p.schema.header }

// Factory returns the column schema, nil before Parse succeeded.
func (p *HeaderParser) Factory() *ColumnFactory { return p.factory }

// Mapping returns the physical to logical mapping, nil before Parse
// succeeded.
func (p *HeaderParser) Mapping() *PositionMapping { return p.mapping }

// Line returns the line number of the parsed header.
func (p *HeaderParser) Line() int { return p.line }

// Parse tokenizes and resolves a header line.
func (p *HeaderParser) Parse(lineNumber int, line string) error {
	return p.ParseItems(lineNumber, SplitLine(line))
}

// ParseItems resolves a tokenized header line. Unknown columns and
// references to undeclared elements are fatal.
func (p *HeaderParser) ParseItems(lineNumber int, items []string) error {
	p.line = lineNumber
	prefix := p.schema.header.Prefix()
	if len(items) == 0 || items[0] != prefix {
		got := ""
		if len(items) > 0 {
			got = items[0]
		}
		return newError(ErrLinePrefix, lineNumber, got)
	}

	factory := newColumnFactory(p.schema.header)
	consumed := 0
	for pos := 1; pos < len(items); pos++ {
		token := strings.TrimSpace(items[pos])
		if token == "" {
			if err := p.errs.Add(newError(ErrStableColumn, lineNumber, token, p.schema.header)); err != nil {
				return err
			}
			continue
		}
		col, err := p.resolve(token, pos)
		if err != nil {
			return err
		}
		if !factory.add(col) {
			return newError(ErrDuplicateColumn, lineNumber, token, p.schema.header)
		}
		consumed++
	}

	if consumed != len(items)-1 {
		if err := p.errs.Add(newError(ErrHeaderTokenCount, lineNumber, len(items)-1, consumed)); err != nil {
			return err
		}
	}

	p.factory = factory
	p.mapping = NewPositionMapping(factory, items)
	return nil
}

// resolve turns one header token at physical position order into a column.
func (p *HeaderParser) resolve(token string, order int) (Column, error) {
	if idx, ok := p.schema.stableIndex(token); ok {
		def := p.schema.stable[idx]
		return &StableColumn{
			columnBase: columnBase{header: token, logical: idx + 1, order: order, dataType: def.dataType},
			AllowNull:  def.allowNull,
		}, nil
	}
	if m := abundanceRe.FindStringSubmatch(token); m != nil {
		// the optional prefix must name this section, e.g. SML_abundance_assay[1]
		if m[1] != "" && m[1] != p.schema.prefix {
			return nil, newError(ErrStableColumn, p.line, token, p.schema.header)
		}
		return p.resolveAbundance(token, order, abundanceKindNames[m[2]], atoi(m[3]))
	}
	if m := idConfidenceRe.FindStringSubmatch(token); m != nil {
		if !p.schema.idConf {
			return nil, newError(ErrStableColumn, p.line, token, p.schema.header)
		}
		id := atoi(m[1])
		measure, err := p.ctx.IDConfidenceMeasures.Require(id)
		if err != nil {
			return nil, asParseError(err, p.line, token)
		}
		return &IDConfidenceColumn{
			columnBase: columnBase{header: token, logical: idConfidenceBase + id, order: order, dataType: TypeDouble, optional: true},
			Measure:    measure,
		}, nil
	}
	if strings.HasPrefix(token, "opt_") {
		return p.resolveOptional(token, order)
	}
	return nil, newError(ErrStableColumn, p.line, token, p.schema.header)
}

func (p *HeaderParser) resolveAbundance(token string, order int, kind AbundanceKind, id int) (Column, error) {
	if !p.schema.abundance[kind] {
		return nil, newError(ErrStableColumn, p.line, token, p.schema.header)
	}
	col := &AbundanceColumn{
		columnBase: columnBase{header: token, order: order, dataType: TypeDouble, optional: true},
		Kind:       kind,
	}
	var err error
	switch kind {
	case AbundanceAssay:
		col.logical = abundanceAssayBase + id
		col.Assay, err = p.ctx.Assays.Require(id)
	case AbundanceStudyVariable:
		col.logical = abundanceStudyVarBase + id
		col.StudyVariable, err = p.ctx.StudyVariables.Require(id)
	case AbundanceVariationStudyVariable:
		col.logical = abundanceVariationBase + id
		col.StudyVariable, err = p.ctx.StudyVariables.Require(id)
	}
	if err != nil {
		return nil, asParseError(err, p.line, token)
	}
	return col, nil
}

func (p *HeaderParser) resolveOptional(token string, order int) (Column, error) {
	m := optColumnRe.FindStringSubmatch(token)
	if m == nil {
		return nil, newError(ErrOptionalColumn, p.line, token)
	}
	col := &OptionalColumn{
		columnBase: columnBase{header: token, logical: optionalBase + order, order: order, dataType: TypeString, optional: true},
		Name:       m[5],
	}

	var err error
	switch {
	case m[1] == "global":
		col.Scope = ScopeGlobal
	case m[2] != "":
		col.Scope, col.ScopeID = ScopeAssay, atoi(m[2])
		_, err = p.ctx.Assays.Require(col.ScopeID)
	case m[3] != "":
		col.Scope, col.ScopeID = ScopeStudyVariable, atoi(m[3])
		_, err = p.ctx.StudyVariables.Require(col.ScopeID)
	case m[4] != "":
		col.Scope, col.ScopeID = ScopeMsRun, atoi(m[4])
		_, err = p.ctx.MsRuns.Require(col.ScopeID)
	}
	if err != nil {
		return nil, asParseError(err, p.line, token)
	}

	if cv := cvOptRe.FindStringSubmatch(col.Name); cv != nil {
		accession := cv[1]
		label := accession[:strings.Index(accession, ":")]
		col.Parameter = core.NewCVParam(label, accession, strings.ReplaceAll(cv[2], "_", " "), "")
		col.dataType = OptColumnType(accession)
	}
	return col, nil
}

// Refine checks that every mandatory column is present. Missing columns are
// fatal. Column units declared in metadata for this section are resolved
// against the header afterwards.
func (p *HeaderParser) Refine() error {
	if p.factory == nil {
		return fmt.Errorf("%s header has not been parsed", p.schema.header.Prefix())
	}
	section := p.schema.header
	meta := p.ctx.Metadata()

	for _, def := range p.schema.stable {
		if _, ok := p.factory.ByHeader(def.name); !ok {
			return newError(ErrMissingStableColumn, p.line, def.name, section)
		}
	}

	if p.schema.abundance[AbundanceAssay] {
		for _, assay := range p.ctx.Assays.All() {
			if _, ok := p.factory.Column(abundanceAssayBase + assay.ID); !ok {
				return newError(ErrMissingAbundance, p.line, AbundanceColumnName(AbundanceAssay, assay.ID), section)
			}
		}
	}
	if p.schema.abundance[AbundanceStudyVariable] {
		for _, sv := range p.ctx.StudyVariables.All() {
			if _, ok := p.factory.Column(abundanceStudyVarBase + sv.ID); !ok {
				return newError(ErrMissingAbundance, p.line, AbundanceColumnName(AbundanceStudyVariable, sv.ID), section)
			}
			if _, ok := p.factory.Column(abundanceVariationBase + sv.ID); !ok {
				return newError(ErrMissingAbundance, p.line, AbundanceColumnName(AbundanceVariationStudyVariable, sv.ID), section)
			}
		}
	}

	if p.schema.quantUnit != "" {
		unit := meta.SmallMoleculeQuantificationUnit
		if p.schema.header == SectionFeatureHeader {
			unit = meta.SmallMoleculeFeatureQuantificationUnit
		}
		if unit == nil {
			if err := p.errs.Add(newError(ErrMissingQuantUnit, p.line, p.schema.quantUnit, section)); err != nil {
				return err
			}
		}
	}

	if p.schema.idConf {
		last := 0
		for _, m := range meta.IDConfidenceMeasure {
			col, ok := p.factory.Column(idConfidenceBase + m.ID)
			if !ok {
				return newError(ErrMissingIDConfidence, p.line, m.ID, section)
			}
			if col.Order() < last {
				if err := p.errs.Add(newError(ErrColumnOrder, p.line, col.Header(), section)); err != nil {
					return err
				}
			}
			last = col.Order()
		}
	}

	return p.resolveColumnUnits()
}

// resolveColumnUnits attaches pending colunit entries of this section to
// their columns.
func (p *HeaderParser) resolveColumnUnits() error {
	for _, u := range p.ctx.ColUnits(p.schema.header) {
		column, param, err := ParseColumnUnit(u.Value)
		if err != nil {
			// Already reported while parsing the metadata line.
			continue
		}
		if _, ok := p.factory.ByHeader(column); !ok {
			if err := p.errs.Add(newError(ErrColUnitColumn, u.Line, u.Label, column, p.schema.header)); err != nil {
				return err
			}
			continue
		}
		p.ctx.AddColumnUnit(p.schema.header, core.ColumnParameter{ColumnName: column, Parameter: param})
	}
	return nil
}
