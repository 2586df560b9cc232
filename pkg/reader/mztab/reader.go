package mztab

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/ChrisMcGann/mztabkit/pkg/core"
)

// Options configures a Reader.
type Options struct {
	// Level is the lowest severity kept in the error list.
	Level Level
	// MaxErrors caps the error list; <= 0 selects DefaultMaxErrors.
	MaxErrors int
	// Encoding is a charset label such as "latin1". Empty means UTF-8.
	Encoding string
}

// maxLineSize bounds a single line; SML lines of large studies exceed the
// bufio default.
const maxLineSize = 16 * 1024 * 1024

// Table sections in the order they must appear.
var tableOrder = map[Section]int{
	SectionSummaryHeader:  1,
	SectionFeatureHeader:  2,
	SectionEvidenceHeader: 3,
}

// rowRefs remembers the row ids referenced by one data line.
type rowRefs struct {
	line int
	id   int
	refs []int
}

// Reader parses a complete mzTab document from a stream.
type Reader struct {
	scanner *bufio.Scanner
	lineNum int

	errs    *ErrorList
	ctx     *Context
	doc     *core.MzTab
	meta    *MetadataParser
	refined bool

	current  int // tableOrder of the section being read, 0 while in metadata
	headers  map[Section]*HeaderParser
	summary  *SummaryLineParser
	feature  *FeatureLineParser
	evidence *EvidenceLineParser

	ids     map[Section]map[int]bool
	smlRefs []rowRefs
	smfRefs []rowRefs
}

// NewReader creates a reader over r. A non UTF-8 Encoding is decoded with
// the matching charset.
func NewReader(r io.Reader, opts Options) (*Reader, error) {
	if opts.Encoding != "" && !isUTF8(opts.Encoding) {
		decoded, err := charset.NewReaderLabel(opts.Encoding, r)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s decoder: %w", opts.Encoding, err)
		}
		r = decoded
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	doc := core.NewMzTab()
	errs := NewErrorList(opts.Level, opts.MaxErrors)
	ctx := NewContext(doc.Metadata)
	return &Reader{
		scanner: scanner,
		errs:    errs,
		ctx:     ctx,
		doc:     doc,
		meta:    NewMetadataParser(ctx, errs),
		headers: make(map[Section]*HeaderParser),
		ids: map[Section]map[int]bool{
			SectionSummary:  {},
			SectionFeature:  {},
			SectionEvidence: {},
		},
	}, nil
}

func isUTF8(label string) bool {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "utf-8", "utf8":
		return true
	}
	return false
}

// ReadFile opens and parses the mzTab file at path.
func ReadFile(path string, opts Options) (*core.MzTab, *ErrorList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	r, err := NewReader(f, opts)
	if err != nil {
		return nil, nil, err
	}
	doc, err := r.Read()
	return doc, r.Errors(), err
}

// Errors returns the aggregated errors collected so far.
func (r *Reader) Errors() *ErrorList { return r.errs }

// Context returns the parser context of the document.
func (r *Reader) Context() *Context { return r.ctx }

// Read consumes the whole stream. The returned error is fatal; the
// document parsed up to that point is still returned.
func (r *Reader) Read() (*core.MzTab, error) {
	for r.scanner.Scan() {
		r.lineNum++
		line := r.scanner.Text()
		if r.lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := r.parseLine(line); err != nil {
			return r.doc, err
		}
	}
	if err := r.scanner.Err(); err != nil {
		return r.doc, fmt.Errorf("failed to read line %d: %w", r.lineNum+1, err)
	}
	return r.doc, r.finish()
}

func (r *Reader) parseLine(line string) error {
	items := SplitLine(line)
	section, err := Classify(items, r.lineNum, r.errs)
	if err != nil {
		return err
	}

	switch {
	case section == SectionComment:
		r.doc.Comments = append(r.doc.Comments, core.Comment{Line: r.lineNum, Text: strings.Join(items[1:], Tab)})
	case section == SectionMetadata:
		if r.current > 0 {
			return newError(ErrSectionOrder, r.lineNum, section.Prefix(), r.currentSection())
		}
		return r.meta.ParseItems(r.lineNum, items)
	case section.IsHeader():
		if err := r.refineMetadata(); err != nil {
			return err
		}
		return r.parseHeader(section, items)
	case section.IsData():
		if err := r.refineMetadata(); err != nil {
			return err
		}
		return r.parseData(section, items)
	}
	return nil
}

func (r *Reader) currentSection() Section {
	for s, order := range tableOrder {
		if order == r.current {
			return s
		}
	}
	return SectionMetadata
}

func (r *Reader) refineMetadata() error {
	if r.refined {
		return nil
	}
	r.refined = true
	return r.meta.Refine()
}

func (r *Reader) parseHeader(section Section, items []string) error {
	if _, dup := r.headers[section]; dup {
		return newError(ErrDuplicateHeader, r.lineNum, section.Prefix())
	}
	if tableOrder[section] < r.current {
		return newError(ErrSectionOrder, r.lineNum, section.Prefix(), r.currentSection())
	}

	h, err := NewHeaderParser(section, r.ctx, r.errs)
	if err != nil {
		return err
	}
	if err := h.ParseItems(r.lineNum, items); err != nil {
		return err
	}
	if err := h.Refine(); err != nil {
		return err
	}
	r.headers[section] = h
	r.current = tableOrder[section]

	switch section {
	case SectionSummaryHeader:
		r.summary, err = NewSummaryLineParser(h, r.ctx, r.errs)
	case SectionFeatureHeader:
		r.feature, err = NewFeatureLineParser(h, r.ctx, r.errs)
	case SectionEvidenceHeader:
		r.evidence, err = NewEvidenceLineParser(h, r.ctx, r.errs)
	}
	return err
}

func (r *Reader) parseData(section Section, items []string) error {
	header := section.Header()
	if _, ok := r.headers[header]; !ok {
		return newError(ErrHeaderLineMissing, r.lineNum, section.Prefix(), header.Prefix())
	}
	if tableOrder[header] != r.current {
		return newError(ErrSectionOrder, r.lineNum, section.Prefix(), r.currentSection())
	}

	switch section {
	case SectionSummary:
		row, err := r.summary.ParseItems(r.lineNum, items)
		if err != nil {
			return err
		}
		r.doc.SmallMoleculeSummary = append(r.doc.SmallMoleculeSummary, row)
		r.smlRefs = append(r.smlRefs, rowRefs{line: r.lineNum, id: row.ID, refs: row.SMFIDRefs})
		return r.checkID(section, row.ID)
	case SectionFeature:
		row, err := r.feature.ParseItems(r.lineNum, items)
		if err != nil {
			return err
		}
		r.doc.SmallMoleculeFeature = append(r.doc.SmallMoleculeFeature, row)
		r.smfRefs = append(r.smfRefs, rowRefs{line: r.lineNum, id: row.ID, refs: row.SMEIDRefs})
		return r.checkID(section, row.ID)
	case SectionEvidence:
		row, err := r.evidence.ParseItems(r.lineNum, items)
		if err != nil {
			return err
		}
		r.doc.SmallMoleculeEvidence = append(r.doc.SmallMoleculeEvidence, row)
		return r.checkID(section, row.ID)
	}
	return nil
}

// checkID records a row id and reports it when already used in the section.
// Rows without an id were reported by the line parser.
func (r *Reader) checkID(section Section, id int) error {
	if id == 0 {
		return nil
	}
	if r.ids[section][id] {
		return r.errs.Add(newError(ErrDuplicateID, r.lineNum, section.Prefix(), id))
	}
	r.ids[section][id] = true
	return nil
}

// finish runs the checks that need the whole document.
func (r *Reader) finish() error {
	if err := r.refineMetadata(); err != nil {
		return err
	}
	if _, ok := r.headers[SectionSummaryHeader]; !ok {
		if err := r.errs.Add(newError(ErrNoSummarySection, -1)); err != nil {
			return err
		}
	}
	if _, ok := r.headers[SectionFeatureHeader]; ok {
		if err := r.checkRowRefs(SectionSummary, SectionFeature, r.smlRefs); err != nil {
			return err
		}
	}
	if _, ok := r.headers[SectionEvidenceHeader]; ok {
		if err := r.checkRowRefs(SectionFeature, SectionEvidence, r.smfRefs); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reader) checkRowRefs(from, to Section, rows []rowRefs) error {
	for _, row := range rows {
		for _, ref := range row.refs {
			if r.ids[to][ref] {
				continue
			}
			if err := r.errs.Add(newError(ErrRowReference, row.line, from.Prefix(), row.id, to.Prefix(), ref)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Read parses a complete document from r.
func Read(r io.Reader, opts Options) (*core.MzTab, *ErrorList, error) {
	reader, err := NewReader(r, opts)
	if err != nil {
		return nil, nil, err
	}
	doc, err := reader.Read()
	return doc, reader.Errors(), err
}
