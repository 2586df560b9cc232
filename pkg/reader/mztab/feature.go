package mztab

import "github.com/ChrisMcGann/mztabkit/pkg/core"

// FeatureLineParser decodes SMF lines.
type FeatureLineParser struct {
	dataLineParser
}

// NewFeatureLineParser creates a parser for SMF lines described by the SFH
// header h.
func NewFeatureLineParser(h *HeaderParser, ctx *Context, errs *ErrorList) (*FeatureLineParser, error) {
	base, err := newDataLineParser(SectionFeature, h, ctx, errs)
	if err != nil {
		return nil, err
	}
	return &FeatureLineParser{dataLineParser: base}, nil
}

// Parse tokenizes and decodes one SMF line.
func (p *FeatureLineParser) Parse(lineNumber int, line string) (*core.SmallMoleculeFeature, error) {
	return p.ParseItems(lineNumber, SplitLine(line))
}

// ParseItems decodes a tokenized SMF line.
func (p *FeatureLineParser) ParseItems(lineNumber int, items []string) (*core.SmallMoleculeFeature, error) {
	if err := p.begin(lineNumber, items); err != nil {
		return nil, err
	}
	row := &core.SmallMoleculeFeature{}
	p.each(items, func(col Column, value string) {
		switch c := col.(type) {
		case *StableColumn:
			p.stable(row, c, value)
		case *AbundanceColumn:
			row.AbundanceAssay = place(row.AbundanceAssay, p.ctx.Assays, c.Assay.ID, p.measure(c, value))
		case *OptionalColumn:
			row.Opt = append(row.Opt, p.optional(c, value))
		}
	})
	if err := p.fail(); err != nil {
		return nil, err
	}
	return row, nil
}

func (p *FeatureLineParser) stable(row *core.SmallMoleculeFeature, c *StableColumn, value string) {
	name, null := c.Name(), c.AllowNull
	switch name {
	case colSMFID:
		if v := p.integer(name, null, value); v != nil {
			row.ID = *v
		}
	case colSMEIDRefs:
		row.SMEIDRefs = p.integerList(name, null, value)
	case colSMEIDRefAmbiguityCode:
		row.SMEIDRefAmbiguityCode = p.integer(name, null, value)
	case colAdductIon:
		row.AdductIon = p.text(name, null, value)
	case colIsotopomer:
		row.Isotopomer = p.param(name, null, value)
	case colExpMassToCharge:
		row.ExpMassToCharge = p.double(name, null, value)
	case colCharge:
		row.Charge = p.integer(name, null, value)
	case colRetentionTime:
		row.RetentionTimeInSeconds = p.double(name, null, value)
	case colRetentionTimeStart:
		row.RetentionTimeInSecondsStart = p.double(name, null, value)
	case colRetentionTimeEnd:
		row.RetentionTimeInSecondsEnd = p.double(name, null, value)
	}
}
