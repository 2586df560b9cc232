package mztab

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/mztabkit/pkg/core"
)

// dataLineParser holds what the SML, SMF and SME line parsers share: the
// resolved header, the error list and the field converters that report
// into it.
type dataLineParser struct {
	section Section
	ctx     *Context
	errs    *ErrorList
	factory *ColumnFactory
	mapping *PositionMapping
	line    int

	// err is the first error returned by errs.Add while parsing the
	// current line. Once set the list is full and the line is abandoned.
	err error
}

func newDataLineParser(section Section, h *HeaderParser, ctx *Context, errs *ErrorList) (dataLineParser, error) {
	if h == nil || h.Factory() == nil || h.Mapping() == nil {
		return dataLineParser{}, fmt.Errorf("%s lines need a parsed %s header", section.Prefix(), section.Header().Prefix())
	}
	if h.Section() != section.Header() {
		return dataLineParser{}, fmt.Errorf("%s header cannot be used for %s lines", h.Section().Prefix(), section.Prefix())
	}
	return dataLineParser{
		section: section,
		ctx:     ctx,
		errs:    errs,
		factory: h.Factory(),
		mapping: h.Mapping(),
	}, nil
}

// begin validates the prefix and the field count of a data line. Only a wrong
// prefix is fatal; a field count mismatch is recorded and the fields that do
// line up are still decoded.
func (p *dataLineParser) begin(lineNumber int, items []string) error {
	p.line = lineNumber
	p.err = nil
	if len(items) == 0 || items[0] != p.section.Prefix() {
		got := ""
		if len(items) > 0 {
			got = items[0]
		}
		return newError(ErrLinePrefix, lineNumber, got)
	}
	if len(items)-1 != p.mapping.Columns() {
		p.record(newError(ErrCountMatch, lineNumber, len(items)-1, p.section, p.mapping.Columns()))
	}
	return p.err
}

// each calls fn for every physical field that maps to a header column.
func (p *dataLineParser) each(items []string, fn func(col Column, value string)) {
	n := min(len(items)-1, p.mapping.Columns())
	for pos := 1; pos <= n && p.err == nil; pos++ {
		logical, ok := p.mapping.Logical(pos)
		if !ok {
			continue
		}
		col, ok := p.factory.Column(logical)
		if !ok {
			continue
		}
		fn(col, strings.TrimSpace(items[pos]))
	}
}

// place stores v in the slot reg assigns to id. values is sized to every
// declared element on first use so that slot i always belongs to the i-th
// element in metadata order, whatever the header column order.
func place[T any](values []*float64, reg *Registry[T], id int, v *float64) []*float64 {
	if values == nil {
		values = make([]*float64, reg.Len())
	}
	if i, ok := reg.Index(id); ok && i < len(values) {
		values[i] = v
	}
	return values
}

func (p *dataLineParser) record(e *Error) {
	if p.err == nil {
		p.err = p.errs.Add(e)
	}
}

// null reports whether value is null, recording an error when the column
// does not accept nulls.
func (p *dataLineParser) null(name string, allowNull bool, value string) bool {
	if !IsNull(value) {
		return false
	}
	if !allowNull {
		p.record(newError(ErrNull, p.line, name))
	}
	return true
}

func (p *dataLineParser) text(name string, allowNull bool, value string) string {
	if p.null(name, allowNull, value) {
		return ""
	}
	return value
}

func (p *dataLineParser) integer(name string, allowNull bool, value string) *int {
	if p.null(name, allowNull, value) {
		return nil
	}
	v, err := ParseInteger(value)
	if err != nil {
		p.record(newError(ErrInteger, p.line, name, value))
		return nil
	}
	return v
}

func (p *dataLineParser) double(name string, allowNull bool, value string) *float64 {
	if p.null(name, allowNull, value) {
		return nil
	}
	v, err := ParseDouble(value)
	if err != nil {
		p.record(newError(ErrDouble, p.line, name, value))
		return nil
	}
	return v
}

func (p *dataLineParser) boolean(name string, allowNull bool, value string) *bool {
	if p.null(name, allowNull, value) {
		return nil
	}
	v, err := ParseBoolean(value)
	if err != nil {
		p.record(newError(ErrBoolean, p.line, name, value))
		return nil
	}
	return v
}

func (p *dataLineParser) param(name string, allowNull bool, value string) *core.Parameter {
	if p.null(name, allowNull, value) {
		return nil
	}
	v, err := ParseParam(value)
	if err != nil {
		p.record(newError(ErrParam, p.line, name, value))
		return nil
	}
	if v.IsCV() && !HasNamespace(v.CVAccession) {
		p.record(newError(ErrParamAccession, p.line, name, v.CVAccession))
	}
	return v
}

func (p *dataLineParser) integerList(name string, allowNull bool, value string) []int {
	if p.null(name, allowNull, value) {
		return nil
	}
	v, err := ParseIntegerList(value, Bar)
	if err != nil {
		p.record(newError(ErrStringList, p.line, name, value, Bar))
		return nil
	}
	return v
}

func (p *dataLineParser) stringList(name string, allowNull bool, value string) []string {
	if p.null(name, allowNull, value) {
		return nil
	}
	v, err := ParseStringList(value, Bar)
	if err != nil {
		p.record(newError(ErrStringList, p.line, name, value, Bar))
		return nil
	}
	return v
}

func (p *dataLineParser) doubleList(name string, allowNull bool, value string) []*float64 {
	if p.null(name, allowNull, value) {
		return nil
	}
	v, err := ParseDoubleList(value, Bar)
	if err != nil {
		p.record(newError(ErrStringList, p.line, name, value, Bar))
		return nil
	}
	return v
}

// spectraRefs parses and resolves spectra references. References to an
// undeclared ms_run are reported and dropped.
func (p *dataLineParser) spectraRefs(name string, allowNull bool, value string) []core.SpectraRef {
	if p.null(name, allowNull, value) {
		return nil
	}
	raw, err := ParseSpectraRefs(value)
	if err != nil {
		p.record(newError(ErrSpectraRef, p.line, name, value))
		return nil
	}
	out := make([]core.SpectraRef, 0, len(raw))
	for _, r := range raw {
		run, ok := p.ctx.MsRuns.Get(r.MsRunID)
		if !ok {
			p.record(newError(ErrMsRunNotDefined, p.line, r.MsRunID, name))
			continue
		}
		out = append(out, core.SpectraRef{MsRun: run, Reference: r.Reference})
	}
	return out
}

// measure decodes an abundance or id confidence value.
func (p *dataLineParser) measure(col Column, value string) *float64 {
	return p.double(col.Header(), true, value)
}

// optional decodes an opt_ value into its uniform string form.
func (p *dataLineParser) optional(col *OptionalColumn, value string) core.OptColumn {
	opt := core.OptColumn{Identifier: col.Header(), Parameter: col.Parameter}
	switch col.DataType() {
	case TypeDouble:
		if v := p.double(col.Header(), true, value); v != nil {
			opt.Value = FormatDouble(*v)
		}
	case TypeBoolean:
		if v := p.boolean(col.Header(), true, value); v != nil {
			opt.Value = strconv.FormatBool(*v)
		}
	default:
		opt.Value = p.text(col.Header(), true, value)
	}
	return opt
}

// FormatDouble renders v the way mzTab writes doubles: shortest decimal
// form, with NaN, INF and -INF spelled out.
func FormatDouble(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "INF"
	case math.IsInf(v, -1):
		return "-INF"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// fail returns the overflow error, if any, for the current line.
func (p *dataLineParser) fail() error { return p.err }

// checkRange records a value range problem for an integer field.
func (p *dataLineParser) checkRange(name string, v *int, minimum int) {
	if v != nil && *v < minimum {
		p.record(newError(ErrValueRange, p.line, name, *v, fmt.Sprintf("must be >= %d", minimum)))
	}
}
