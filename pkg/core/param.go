// Package core provides the in-memory model of an mzTab-M document: metadata,
// indexed entities, parameters and the three small molecule tables.
package core

import (
	"strconv"
	"strings"
)

// Null is the placeholder mzTab uses for a value that is intentionally absent.
const Null = "null"

// Parameter is a controlled vocabulary term (CVLabel and CVAccession set) or a
// user defined term (both empty).
type Parameter struct {
	CVLabel     string
	CVAccession string
	Name        string
	Value       string
}

// NewCVParam creates a controlled vocabulary parameter.
func NewCVParam(label, accession, name, value string) *Parameter {
	return &Parameter{CVLabel: label, CVAccession: accession, Name: name, Value: value}
}

// NewUserParam creates a user parameter with no vocabulary reference.
func NewUserParam(name, value string) *Parameter {
	return &Parameter{Name: name, Value: value}
}

// IsCV reports whether the parameter references a controlled vocabulary.
func (p *Parameter) IsCV() bool {
	return p.CVLabel != "" || p.CVAccession != ""
}

// String returns the bracketed mzTab form "[label, accession, name, value]".
func (p *Parameter) String() string {
	if p == nil {
		return Null
	}
	name := p.Name
	if strings.Contains(name, ",") {
		name = strconv.Quote(name)
	}
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(p.CVLabel)
	b.WriteString(", ")
	b.WriteString(p.CVAccession)
	b.WriteString(", ")
	b.WriteString(name)
	b.WriteString(", ")
	b.WriteString(p.Value)
	b.WriteByte(']')
	return b.String()
}

// ParamListString joins parameters with the mzTab list separator.
func ParamListString(params []*Parameter) string {
	if len(params) == 0 {
		return Null
	}
	parts := make([]string, 0, len(params))
	for _, p := range params {
		if p != nil {
			parts = append(parts, p.String())
		}
	}
	return strings.Join(parts, "|")
}
