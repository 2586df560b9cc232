// Package mztab parses and validates mzTab-M 2.0 documents.
//
// Parsing is a single forward pass. Metadata lines populate a Context; each
// table header builds a ColumnFactory and PositionMapping from that context;
// data lines are decoded through the mapping of their section's header.
// Recoverable problems are appended to an ErrorList, problems that make the
// rest of the file meaningless are returned as errors.
package mztab

import (
	"strings"
)

// Section identifies the kind of a line by its prefix.
type Section int

const (
	SectionUnknown Section = iota
	SectionComment
	SectionMetadata
	SectionSummaryHeader
	SectionSummary
	SectionFeatureHeader
	SectionFeature
	SectionEvidenceHeader
	SectionEvidence
)

var sectionPrefixes = map[string]Section{
	"COM": SectionComment,
	"MTD": SectionMetadata,
	"SMH": SectionSummaryHeader,
	"SML": SectionSummary,
	"SFH": SectionFeatureHeader,
	"SMF": SectionFeature,
	"SEH": SectionEvidenceHeader,
	"SME": SectionEvidence,
}

// Prefix returns the line prefix of the section, or "" for SectionUnknown.
func (s Section) Prefix() string {
	for p, sec := range sectionPrefixes {
		if sec == s {
			return p
		}
	}
	return ""
}

func (s Section) String() string {
	switch s {
	case SectionComment:
		return "comment"
	case SectionMetadata:
		return "metadata"
	case SectionSummaryHeader, SectionSummary:
		return "small molecule summary"
	case SectionFeatureHeader, SectionFeature:
		return "small molecule feature"
	case SectionEvidenceHeader, SectionEvidence:
		return "small molecule evidence"
	}
	return "unknown"
}

// IsHeader reports whether s is a table header section.
func (s Section) IsHeader() bool {
	return s == SectionSummaryHeader || s == SectionFeatureHeader || s == SectionEvidenceHeader
}

// IsData reports whether s is a table data section.
func (s Section) IsData() bool {
	return s == SectionSummary || s == SectionFeature || s == SectionEvidence
}

// Header returns the header section belonging to a data section (or s itself
// when s is already a header).
func (s Section) Header() Section {
	switch s {
	case SectionSummary:
		return SectionSummaryHeader
	case SectionFeature:
		return SectionFeatureHeader
	case SectionEvidence:
		return SectionEvidenceHeader
	}
	return s
}

// Tab is the field delimiter of mzTab lines.
const Tab = "\t"

// SplitLine splits a raw line into fields. The first and last field are
// trimmed of surrounding whitespace (including a trailing carriage return).
func SplitLine(line string) []string {
	items := strings.Split(line, Tab)
	items[0] = strings.TrimSpace(items[0])
	last := len(items) - 1
	items[last] = strings.TrimSpace(items[last])
	return items
}

// Classify returns the section of a tokenized line. An unrecognised prefix
// yields SectionUnknown and, when errs is not nil, a LinePrefix error.
func Classify(items []string, lineNumber int, errs *ErrorList) (Section, error) {
	if len(items) > 0 {
		if s, ok := sectionPrefixes[items[0]]; ok {
			return s, nil
		}
	}
	if errs == nil {
		return SectionUnknown, nil
	}
	prefix := ""
	if len(items) > 0 {
		prefix = items[0]
	}
	return SectionUnknown, errs.Add(newError(ErrLinePrefix, lineNumber, prefix))
}
