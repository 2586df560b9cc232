package mztab

import "github.com/ChrisMcGann/mztabkit/pkg/core"

// SummaryLineParser decodes SML lines.
type SummaryLineParser struct {
	dataLineParser
}

// NewSummaryLineParser creates a parser for SML lines described by the
// already parsed and refined SMH header h.
func NewSummaryLineParser(h *HeaderParser, ctx *Context, errs *ErrorList) (*SummaryLineParser, error) {
	base, err := newDataLineParser(SectionSummary, h, ctx, errs)
	if err != nil {
		return nil, err
	}
	return &SummaryLineParser{dataLineParser: base}, nil
}

// Parse tokenizes and decodes one SML line.
func (p *SummaryLineParser) Parse(lineNumber int, line string) (*core.SmallMoleculeSummary, error) {
	return p.ParseItems(lineNumber, SplitLine(line))
}

// ParseItems decodes a tokenized SML line. Field problems are recorded in the
// error list; the returned error is fatal.
func (p *SummaryLineParser) ParseItems(lineNumber int, items []string) (*core.SmallMoleculeSummary, error) {
	if err := p.begin(lineNumber, items); err != nil {
		return nil, err
	}
	row := &core.SmallMoleculeSummary{}
	p.each(items, func(col Column, value string) {
		switch c := col.(type) {
		case *StableColumn:
			p.stable(row, c, value)
		case *AbundanceColumn:
			v := p.measure(c, value)
			switch c.Kind {
			case AbundanceAssay:
				row.AbundanceAssay = place(row.AbundanceAssay, p.ctx.Assays, c.Assay.ID, v)
			case AbundanceStudyVariable:
				row.AbundanceStudyVariable = place(row.AbundanceStudyVariable, p.ctx.StudyVariables, c.StudyVariable.ID, v)
			case AbundanceVariationStudyVariable:
				row.AbundanceVariationStudyVariable = place(row.AbundanceVariationStudyVariable, p.ctx.StudyVariables, c.StudyVariable.ID, v)
			}
		case *OptionalColumn:
			row.Opt = append(row.Opt, p.optional(c, value))
		}
	})
	if p.err == nil {
		p.checkListCounts(row)
	}
	if err := p.fail(); err != nil {
		return nil, err
	}
	return row, nil
}

func (p *SummaryLineParser) stable(row *core.SmallMoleculeSummary, c *StableColumn, value string) {
	name, null := c.Name(), c.AllowNull
	switch name {
	case colSMLID:
		if v := p.integer(name, null, value); v != nil {
			row.ID = *v
		}
	case colSMFIDRefs:
		row.SMFIDRefs = p.integerList(name, null, value)
	case colDatabaseIdentifier:
		row.DatabaseIdentifier = p.stringList(name, null, value)
	case colChemicalFormula:
		row.ChemicalFormula = p.stringList(name, null, value)
	case colSmiles:
		row.Smiles = p.stringList(name, null, value)
	case colInchi:
		row.Inchi = p.stringList(name, null, value)
	case colChemicalName:
		row.ChemicalName = p.stringList(name, null, value)
	case colURI:
		row.URI = p.stringList(name, null, value)
	case colTheoreticalNeutralMass:
		row.TheoreticalNeutralMass = p.doubleList(name, null, value)
	case colAdductIons:
		row.AdductIons = p.stringList(name, null, value)
	case colReliability:
		row.Reliability = p.text(name, null, value)
	case colBestIDConfidenceMeasure:
		row.BestIDConfidenceMeasure = p.param(name, null, value)
	case colBestIDConfidenceValue:
		row.BestIDConfidenceValue = p.double(name, null, value)
	}
}

// checkListCounts verifies that the per identification lists have one entry
// per database identifier.
func (p *SummaryLineParser) checkListCounts(row *core.SmallMoleculeSummary) {
	want := len(row.DatabaseIdentifier)
	lists := []struct {
		name string
		n    int
	}{
		{colChemicalFormula, len(row.ChemicalFormula)},
		{colSmiles, len(row.Smiles)},
		{colInchi, len(row.Inchi)},
		{colChemicalName, len(row.ChemicalName)},
		{colURI, len(row.URI)},
		{colTheoreticalNeutralMass, len(row.TheoreticalNeutralMass)},
	}
	for _, l := range lists {
		if l.n > 0 && l.n != want {
			p.record(newError(ErrListCountMismatch, p.line, l.name, l.n, want))
		}
	}
}
