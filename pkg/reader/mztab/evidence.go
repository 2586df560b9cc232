package mztab

import "github.com/ChrisMcGann/mztabkit/pkg/core"

// EvidenceLineParser decodes SME lines.
type EvidenceLineParser struct {
	dataLineParser
}

// NewEvidenceLineParser creates a parser for SME lines described by the SEH
// header h.
func NewEvidenceLineParser(h *HeaderParser, ctx *Context, errs *ErrorList) (*EvidenceLineParser, error) {
	base, err := newDataLineParser(SectionEvidence, h, ctx, errs)
	if err != nil {
		return nil, err
	}
	return &EvidenceLineParser{dataLineParser: base}, nil
}

// Parse tokenizes and decodes one SME line.
func (p *EvidenceLineParser) Parse(lineNumber int, line string) (*core.SmallMoleculeEvidence, error) {
	return p.ParseItems(lineNumber, SplitLine(line))
}

// ParseItems decodes a tokenized SME line. Confidence values are stored in
// id_confidence_measure declaration order.
func (p *EvidenceLineParser) ParseItems(lineNumber int, items []string) (*core.SmallMoleculeEvidence, error) {
	if err := p.begin(lineNumber, items); err != nil {
		return nil, err
	}
	row := &core.SmallMoleculeEvidence{}
	p.each(items, func(col Column, value string) {
		switch c := col.(type) {
		case *StableColumn:
			p.stable(row, c, value)
		case *IDConfidenceColumn:
			row.IDConfidenceMeasure = place(row.IDConfidenceMeasure, p.ctx.IDConfidenceMeasures, c.Measure.ID, p.measure(c, value))
		case *OptionalColumn:
			row.Opt = append(row.Opt, p.optional(c, value))
		}
	})
	if err := p.fail(); err != nil {
		return nil, err
	}
	return row, nil
}

func (p *EvidenceLineParser) stable(row *core.SmallMoleculeEvidence, c *StableColumn, value string) {
	name, null := c.Name(), c.AllowNull
	switch name {
	case colSMEID:
		if v := p.integer(name, null, value); v != nil {
			row.ID = *v
		}
	case colEvidenceInputID:
		row.EvidenceInputID = p.text(name, null, value)
	case colDatabaseIdentifier:
		row.DatabaseIdentifier = p.text(name, null, value)
	case colChemicalFormula:
		row.ChemicalFormula = p.text(name, null, value)
	case colSmiles:
		row.Smiles = p.text(name, null, value)
	case colInchi:
		row.Inchi = p.text(name, null, value)
	case colChemicalName:
		row.ChemicalName = p.text(name, null, value)
	case colURI:
		row.URI = p.text(name, null, value)
	case colDerivatizedForm:
		row.DerivatizedForm = p.param(name, null, value)
	case colAdductIon:
		row.AdductIon = p.text(name, null, value)
	case colExpMassToCharge:
		row.ExpMassToCharge = p.double(name, null, value)
	case colCharge:
		row.Charge = p.integer(name, null, value)
	case colTheoreticalMassToCharge:
		row.TheoreticalMassToCharge = p.double(name, null, value)
	case colSpectraRef:
		row.SpectraRef = p.spectraRefs(name, null, value)
	case colIdentificationMethod:
		row.IdentificationMethod = p.param(name, null, value)
	case colMsLevel:
		row.MsLevel = p.param(name, null, value)
	case colRank:
		row.Rank = p.integer(name, null, value)
		p.checkRange(name, row.Rank, 1)
	}
}
