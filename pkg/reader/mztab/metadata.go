package mztab

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/mztabkit/pkg/core"
)

// SupportedVersion is the mzTab-version this package implements.
const SupportedVersion = "2.0.0-M"

// defineLabelRe matches element([id])(-sub([subid]))(-property).
var defineLabelRe = regexp.MustCompile(`^([A-Za-z_]+)(?:\[(\d+)\])?(?:-([A-Za-z_]+)(?:\[(\d+)\])?)?(?:-([A-Za-z_]+))?$`)

// defineLabel is a decomposed MTD define label.
type defineLabel struct {
	raw      string
	element  string
	id       int
	hasID    bool
	sub      string
	subID    int
	hasSubID bool
	property string
}

func parseDefineLabel(s string) (defineLabel, bool) {
	m := defineLabelRe.FindStringSubmatch(s)
	if m == nil {
		return defineLabel{}, false
	}
	l := defineLabel{raw: s, element: m[1], sub: m[3], property: m[5]}
	if m[2] != "" {
		l.id, _ = strconv.Atoi(m[2])
		l.hasID = true
	}
	if m[4] != "" {
		l.subID, _ = strconv.Atoi(m[4])
		l.hasSubID = true
	}
	return l, true
}

// elementHandler applies one MTD line for a given element kind.
type elementHandler func(p *MetadataParser, l defineLabel, value string) error

// metadataElements is the closed set of metadata elements.
var metadataElements = map[string]elementHandler{
	"mzTab":                  (*MetadataParser).parseMzTab,
	"title":                  (*MetadataParser).parseTitle,
	"description":            (*MetadataParser).parseDescription,
	kindSampleProcessing:     (*MetadataParser).parseSampleProcessing,
	kindInstrument:           (*MetadataParser).parseInstrument,
	kindSoftware:             (*MetadataParser).parseSoftware,
	kindPublication:          (*MetadataParser).parsePublication,
	kindContact:              (*MetadataParser).parseContact,
	kindURI:                  (*MetadataParser).parseURI,
	kindExternalStudyURI:     (*MetadataParser).parseExternalStudyURI,
	"quantification_method":  (*MetadataParser).parseQuantificationMethod,
	"small_molecule":         (*MetadataParser).parseSmallMolecule,
	"small_molecule_feature": (*MetadataParser).parseSmallMoleculeFeature,
	kindMsRun:                (*MetadataParser).parseMsRun,
	kindSample:               (*MetadataParser).parseSample,
	kindAssay:                (*MetadataParser).parseAssay,
	kindStudyVariable:        (*MetadataParser).parseStudyVariable,
	kindCustom:               (*MetadataParser).parseCustom,
	kindCV:                   (*MetadataParser).parseCV,
	kindDatabase:             (*MetadataParser).parseDatabase,
	kindDerivatization:       (*MetadataParser).parseDerivatizationAgent,
	kindIDConfidence:         (*MetadataParser).parseIDConfidenceMeasure,
	"colunit":                (*MetadataParser).parseColunit,
}

// indexedSubs lists, per element, the sub elements that take an index such
// as instrument[1]-analyzer[2]. Any other sub element given an index is
// rejected.
var indexedSubs = map[string]map[string]bool{
	kindInstrument: {"analyzer": true},
	kindSoftware:   {"setting": true},
	kindMsRun:      {"fragmentation_method": true, "scan_polarity": true},
	kindSample:     {"species": true, "tissue": true, "cell_type": true, "disease": true, "custom": true},
	kindAssay:      {"custom": true},
}

// MetadataParser consumes the MTD lines of one document.
type MetadataParser struct {
	ctx  *Context
	meta *core.Metadata
	errs *ErrorList
	line int
}

// NewMetadataParser creates a parser populating ctx and its metadata.
func NewMetadataParser(ctx *Context, errs *ErrorList) *MetadataParser {
	return &MetadataParser{ctx: ctx, meta: ctx.Metadata(), errs: errs}
}

// Parse tokenizes and applies one MTD line.
func (p *MetadataParser) Parse(lineNumber int, line string) error {
	return p.ParseItems(lineNumber, SplitLine(line))
}

// ParseItems applies an already tokenized MTD line. The returned error is
// fatal; recoverable problems go to the error list.
func (p *MetadataParser) ParseItems(lineNumber int, items []string) error {
	p.line = lineNumber
	if len(items) != 3 || items[0] != "MTD" {
		return newError(ErrMTDLine, lineNumber, len(items), strings.Join(items, Tab))
	}

	label, ok := parseDefineLabel(strings.TrimSpace(items[1]))
	if !ok {
		return newError(ErrMTDDefineLabel, lineNumber, items[1])
	}
	handler, ok := metadataElements[label.element]
	if !ok {
		return newError(ErrMTDElement, lineNumber, label.element, label.raw)
	}
	if label.property != "" {
		return p.unsupported(label)
	}
	if label.hasSubID && !indexedSubs[label.element][label.sub] {
		return p.unsupported(label)
	}
	if label.hasID && label.id <= 0 {
		return newError(ErrInvalidID, lineNumber, label.id, label.raw)
	}
	if label.hasSubID && label.subID <= 0 {
		return newError(ErrInvalidID, lineNumber, label.subID, label.raw)
	}
	return handler(p, label, strings.TrimSpace(items[2]))
}

func (p *MetadataParser) unsupported(l defineLabel) error {
	return newError(ErrMTDProperty, p.line, l.raw)
}

func (p *MetadataParser) fail(err error, l defineLabel) error {
	return asParseError(err, p.line, l.raw)
}

// add records a recoverable problem on the current line.
func (p *MetadataParser) add(t *ErrorType, values ...any) error {
	return p.errs.Add(newError(t, p.line, values...))
}

// indexed checks the label has an element id.
func (p *MetadataParser) indexed(l defineLabel) error {
	if !l.hasID {
		return newError(ErrMTDDefineLabel, p.line, l.raw)
	}
	return nil
}

// plain checks the label has neither id nor sub element.
func (p *MetadataParser) plain(l defineLabel) error {
	if l.hasID || l.sub != "" {
		return p.unsupported(l)
	}
	return nil
}

// subIndexed checks the sub element carries an index.
func (p *MetadataParser) subIndexed(l defineLabel) error {
	if !l.hasSubID {
		return newError(ErrMTDDefineLabel, p.line, l.raw)
	}
	return nil
}

// param converts a parameter value, recording format problems. A nil
// parameter with a nil error means the value was null or malformed.
func (p *MetadataParser) param(l defineLabel, value string) (*core.Parameter, error) {
	v, err := ParseParam(value)
	if err != nil {
		return nil, p.add(ErrParam, l.raw, value)
	}
	if v == nil {
		return nil, p.add(ErrNull, l.raw)
	}
	if v.CVAccession != "" && !HasNamespace(v.CVAccession) {
		if err := p.add(ErrParamAccession, l.raw, v.CVAccession); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (p *MetadataParser) paramList(l defineLabel, value string) ([]*core.Parameter, error) {
	v, err := ParseParamList(value, Bar)
	if err != nil {
		return nil, p.add(ErrParamList, l.raw, value)
	}
	if v == nil {
		return nil, p.add(ErrNull, l.raw)
	}
	for _, param := range v {
		if param.CVAccession != "" && !HasNamespace(param.CVAccession) {
			if err := p.add(ErrParamAccession, l.raw, param.CVAccession); err != nil {
				return nil, err
			}
		}
	}
	return v, nil
}

func (p *MetadataParser) uri(l defineLabel, value string) (string, error) {
	v, err := ParseURI(value)
	if err != nil {
		return "", p.add(ErrURI, l.raw, value)
	}
	if v == "" {
		return "", p.add(ErrNull, l.raw)
	}
	return v, nil
}

func (p *MetadataParser) text(l defineLabel, value string) (string, error) {
	if IsNull(value) {
		return "", p.add(ErrNull, l.raw)
	}
	return value, nil
}

// reference parses a single "kind[n]" value.
func (p *MetadataParser) reference(l defineLabel, value, kind string) (int, bool, error) {
	ref, err := ParseIndexedElement(value, kind)
	if err != nil {
		return 0, false, p.add(ErrIndexedElement, l.raw, value, kind)
	}
	return ref.ID, true, nil
}

// references parses a list of "kind[n]" values.
func (p *MetadataParser) references(l defineLabel, value, kind string) ([]int, bool, error) {
	refs, err := ParseIndexedElementList(value, kind)
	if err != nil {
		return nil, false, p.add(ErrIndexedElement, l.raw, value, kind)
	}
	ids := make([]int, len(refs))
	for i, r := range refs {
		ids[i] = r.ID
	}
	return ids, true, nil
}

func (p *MetadataParser) parseMzTab(l defineLabel, value string) error {
	if l.hasID {
		return p.unsupported(l)
	}
	switch l.sub {
	case "version":
		if p.meta.Version != "" {
			return newError(ErrDuplicateDefine, p.line, l.raw)
		}
		v, err := p.text(l, value)
		if err != nil || v == "" {
			return err
		}
		p.meta.Version = v
		if !strings.HasPrefix(v, "2.") {
			return p.add(ErrVersion, v)
		}
		return nil
	case "ID":
		if p.meta.MzTabID != "" {
			return newError(ErrDuplicateDefine, p.line, l.raw)
		}
		v, err := p.text(l, value)
		if err != nil {
			return err
		}
		p.meta.MzTabID = v
		return nil
	}
	return p.unsupported(l)
}

func (p *MetadataParser) parseTitle(l defineLabel, value string) error {
	if err := p.plain(l); err != nil {
		return err
	}
	if p.meta.Title != "" {
		return newError(ErrDuplicateDefine, p.line, l.raw)
	}
	v, err := p.text(l, value)
	p.meta.Title = v
	return err
}

func (p *MetadataParser) parseDescription(l defineLabel, value string) error {
	if err := p.plain(l); err != nil {
		return err
	}
	if p.meta.Description != "" {
		return newError(ErrDuplicateDefine, p.line, l.raw)
	}
	v, err := p.text(l, value)
	p.meta.Description = v
	return err
}

func (p *MetadataParser) parseSampleProcessing(l defineLabel, value string) error {
	if err := p.indexed(l); err != nil {
		return err
	}
	if l.sub != "" {
		return p.unsupported(l)
	}
	params, err := p.paramList(l, value)
	if err != nil || params == nil {
		return err
	}
	sp, err := p.ctx.SampleProcessing.Upsert(l.id)
	if err != nil {
		return p.fail(err, l)
	}
	sp.Parameters = params
	return nil
}

func (p *MetadataParser) parseInstrument(l defineLabel, value string) error {
	if err := p.indexed(l); err != nil {
		return err
	}
	switch l.sub {
	case "name", "source", "detector", "analyzer":
	default:
		return p.unsupported(l)
	}
	if l.sub == "analyzer" {
		if err := p.subIndexed(l); err != nil {
			return err
		}
	}
	param, err := p.param(l, value)
	if err != nil || param == nil {
		return err
	}
	inst, err := p.ctx.Instruments.Upsert(l.id)
	if err != nil {
		return p.fail(err, l)
	}
	switch l.sub {
	case "name":
		inst.Name = param
	case "source":
		inst.Source = param
	case "detector":
		inst.Detector = param
	case "analyzer":
		inst.Analyzer = core.SetIndexedParam(inst.Analyzer, l.subID, param)
	}
	return nil
}

func (p *MetadataParser) parseSoftware(l defineLabel, value string) error {
	if err := p.indexed(l); err != nil {
		return err
	}
	switch l.sub {
	case "":
		param, err := p.param(l, value)
		if err != nil || param == nil {
			return err
		}
		sw, err := p.ctx.Software.Upsert(l.id)
		if err != nil {
			return p.fail(err, l)
		}
		sw.Parameter = param
		return nil
	case "setting":
		if err := p.subIndexed(l); err != nil {
			return err
		}
		v, err := p.text(l, value)
		if err != nil || v == "" {
			return err
		}
		sw, err := p.ctx.Software.Upsert(l.id)
		if err != nil {
			return p.fail(err, l)
		}
		for len(sw.Setting) < l.subID {
			sw.Setting = append(sw.Setting, "")
		}
		sw.Setting[l.subID-1] = v
		return nil
	}
	return p.unsupported(l)
}

func (p *MetadataParser) parsePublication(l defineLabel, value string) error {
	if err := p.indexed(l); err != nil {
		return err
	}
	if l.sub != "" {
		return p.unsupported(l)
	}
	items, err := ParsePublicationItems(value)
	if err != nil {
		return p.add(ErrPublication, l.raw, value)
	}
	pub, err := p.ctx.Publications.Upsert(l.id)
	if err != nil {
		return p.fail(err, l)
	}
	pub.Items = items
	return nil
}

func (p *MetadataParser) parseContact(l defineLabel, value string) error {
	if err := p.indexed(l); err != nil {
		return err
	}
	switch l.sub {
	case "name", "affiliation", "email", "orcid":
	default:
		return p.unsupported(l)
	}
	v, err := p.text(l, value)
	if err != nil || v == "" {
		return err
	}
	if l.sub == "email" && !IsEmail(v) {
		return p.add(ErrEmail, l.raw, v)
	}
	contact, err := p.ctx.Contacts.Upsert(l.id)
	if err != nil {
		return p.fail(err, l)
	}
	switch l.sub {
	case "name":
		contact.Name = v
	case "affiliation":
		contact.Affiliation = v
	case "email":
		contact.Email = v
	case "orcid":
		contact.ORCID = v
	}
	return nil
}

func (p *MetadataParser) parseURI(l defineLabel, value string) error {
	return p.indexedURI(l, value, p.ctx.URIs)
}

func (p *MetadataParser) parseExternalStudyURI(l defineLabel, value string) error {
	return p.indexedURI(l, value, p.ctx.ExternalStudyURIs)
}

func (p *MetadataParser) indexedURI(l defineLabel, value string, reg *Registry[core.IndexedURI]) error {
	if err := p.indexed(l); err != nil {
		return err
	}
	if l.sub != "" {
		return p.unsupported(l)
	}
	v, err := p.uri(l, value)
	if err != nil || v == "" {
		return err
	}
	u, err := reg.Upsert(l.id)
	if err != nil {
		return p.fail(err, l)
	}
	u.Value = v
	return nil
}

func (p *MetadataParser) parseQuantificationMethod(l defineLabel, value string) error {
	if err := p.plain(l); err != nil {
		return err
	}
	param, err := p.param(l, value)
	if err != nil || param == nil {
		return err
	}
	p.meta.QuantificationMethod = param
	return nil
}

func (p *MetadataParser) parseSmallMolecule(l defineLabel, value string) error {
	if l.hasID || l.hasSubID {
		return p.unsupported(l)
	}
	var target **core.Parameter
	switch l.sub {
	case "quantification_unit":
		target = &p.meta.SmallMoleculeQuantificationUnit
	case "identification_reliability":
		target = &p.meta.SmallMoleculeIdentificationReliability
	default:
		return p.unsupported(l)
	}
	param, err := p.param(l, value)
	if err != nil || param == nil {
		return err
	}
	*target = param
	return nil
}

func (p *MetadataParser) parseSmallMoleculeFeature(l defineLabel, value string) error {
	if l.hasID || l.hasSubID || l.sub != "quantification_unit" {
		return p.unsupported(l)
	}
	param, err := p.param(l, value)
	if err != nil || param == nil {
		return err
	}
	p.meta.SmallMoleculeFeatureQuantificationUnit = param
	return nil
}

func (p *MetadataParser) parseMsRun(l defineLabel, value string) error {
	if err := p.indexed(l); err != nil {
		return err
	}
	switch l.sub {
	case "", "name":
		v, err := p.text(l, value)
		if err != nil || v == "" {
			return err
		}
		run, err := p.ctx.MsRuns.Upsert(l.id)
		if err != nil {
			return p.fail(err, l)
		}
		run.Name = v
		return nil
	case "location":
		if IsNull(value) {
			// Unknown location is allowed.
			run, err := p.ctx.MsRuns.Upsert(l.id)
			if err != nil {
				return p.fail(err, l)
			}
			run.Location = core.Null
			return nil
		}
		v, err := p.uri(l, value)
		if err != nil || v == "" {
			return err
		}
		run, err := p.ctx.MsRuns.Upsert(l.id)
		if err != nil {
			return p.fail(err, l)
		}
		run.Location = v
		return nil
	case "instrument_ref":
		id, ok, err := p.reference(l, value, kindInstrument)
		if !ok {
			return err
		}
		if _, err := p.ctx.SetMsRunInstrument(l.id, id); err != nil {
			return p.fail(err, l)
		}
		return nil
	case "hash":
		v, err := p.text(l, value)
		if err != nil || v == "" {
			return err
		}
		run, err := p.ctx.MsRuns.Upsert(l.id)
		if err != nil {
			return p.fail(err, l)
		}
		run.Hash = v
		return nil
	case "format", "id_format", "hash_method":
		param, err := p.param(l, value)
		if err != nil || param == nil {
			return err
		}
		run, err := p.ctx.MsRuns.Upsert(l.id)
		if err != nil {
			return p.fail(err, l)
		}
		switch l.sub {
		case "format":
			run.Format = param
		case "id_format":
			run.IDFormat = param
		default:
			run.HashMethod = param
		}
		return nil
	case "fragmentation_method", "scan_polarity":
		var params []*core.Parameter
		if l.hasSubID {
			param, err := p.param(l, value)
			if err != nil || param == nil {
				return err
			}
			params = []*core.Parameter{param}
		} else {
			list, err := p.paramList(l, value)
			if err != nil || list == nil {
				return err
			}
			params = list
		}
		run, err := p.ctx.MsRuns.Upsert(l.id)
		if err != nil {
			return p.fail(err, l)
		}
		target := &run.FragmentationMethod
		if l.sub == "scan_polarity" {
			target = &run.ScanPolarity
		}
		if l.hasSubID {
			*target = core.SetIndexedParam(*target, l.subID, params[0])
		} else {
			*target = params
		}
		return nil
	}
	return p.unsupported(l)
}

func (p *MetadataParser) parseSample(l defineLabel, value string) error {
	if err := p.indexed(l); err != nil {
		return err
	}
	switch l.sub {
	case "", "name", "description":
		v, err := p.text(l, value)
		if err != nil || v == "" {
			return err
		}
		sample, err := p.ctx.Samples.Upsert(l.id)
		if err != nil {
			return p.fail(err, l)
		}
		if l.sub == "description" {
			sample.Description = v
		} else {
			sample.Name = v
		}
		return nil
	case "species", "tissue", "cell_type", "disease", "custom":
		if err := p.subIndexed(l); err != nil {
			return err
		}
		param, err := p.param(l, value)
		if err != nil || param == nil {
			return err
		}
		sample, err := p.ctx.Samples.Upsert(l.id)
		if err != nil {
			return p.fail(err, l)
		}
		switch l.sub {
		case "species":
			sample.Species = core.SetIndexedParam(sample.Species, l.subID, param)
		case "tissue":
			sample.Tissue = core.SetIndexedParam(sample.Tissue, l.subID, param)
		case "cell_type":
			sample.CellType = core.SetIndexedParam(sample.CellType, l.subID, param)
		case "disease":
			sample.Disease = core.SetIndexedParam(sample.Disease, l.subID, param)
		default:
			sample.Custom = core.SetIndexedParam(sample.Custom, l.subID, param)
		}
		return nil
	}
	return p.unsupported(l)
}

func (p *MetadataParser) parseAssay(l defineLabel, value string) error {
	if err := p.indexed(l); err != nil {
		return err
	}
	switch l.sub {
	case "", "name":
		v, err := p.text(l, value)
		if err != nil || v == "" {
			return err
		}
		assay, err := p.ctx.Assays.Upsert(l.id)
		if err != nil {
			return p.fail(err, l)
		}
		assay.Name = v
		return nil
	case "custom":
		if err := p.subIndexed(l); err != nil {
			return err
		}
		param, err := p.param(l, value)
		if err != nil || param == nil {
			return err
		}
		assay, err := p.ctx.Assays.Upsert(l.id)
		if err != nil {
			return p.fail(err, l)
		}
		assay.Custom = core.SetIndexedParam(assay.Custom, l.subID, param)
		return nil
	case "external_uri":
		v, err := p.uri(l, value)
		if err != nil || v == "" {
			return err
		}
		assay, err := p.ctx.Assays.Upsert(l.id)
		if err != nil {
			return p.fail(err, l)
		}
		assay.ExternalURI = v
		return nil
	case "sample_ref":
		id, ok, err := p.reference(l, value, kindSample)
		if !ok {
			return err
		}
		if _, err := p.ctx.SetAssaySample(l.id, id); err != nil {
			return p.fail(err, l)
		}
		return nil
	case "ms_run_ref":
		ids, ok, err := p.references(l, value, kindMsRun)
		if !ok {
			return err
		}
		if _, err := p.ctx.SetAssayMsRuns(l.id, ids); err != nil {
			return p.fail(err, l)
		}
		return nil
	}
	return p.unsupported(l)
}

func (p *MetadataParser) parseStudyVariable(l defineLabel, value string) error {
	if err := p.indexed(l); err != nil {
		return err
	}
	switch l.sub {
	case "", "name", "description":
		v, err := p.text(l, value)
		if err != nil || v == "" {
			return err
		}
		sv, err := p.ctx.StudyVariables.Upsert(l.id)
		if err != nil {
			return p.fail(err, l)
		}
		if l.sub == "description" {
			sv.Description = v
		} else {
			sv.Name = v
		}
		return nil
	case "assay_refs":
		ids, ok, err := p.references(l, value, kindAssay)
		if !ok {
			return err
		}
		if _, err := p.ctx.SetStudyVariableAssays(l.id, ids); err != nil {
			return p.fail(err, l)
		}
		return nil
	case "average_function", "variation_function":
		param, err := p.param(l, value)
		if err != nil || param == nil {
			return err
		}
		sv, err := p.ctx.StudyVariables.Upsert(l.id)
		if err != nil {
			return p.fail(err, l)
		}
		if l.sub == "average_function" {
			sv.AverageFunction = param
		} else {
			sv.VariationFunction = param
		}
		return nil
	case "factors":
		params, err := p.paramList(l, value)
		if err != nil || params == nil {
			return err
		}
		sv, err := p.ctx.StudyVariables.Upsert(l.id)
		if err != nil {
			return p.fail(err, l)
		}
		sv.Factors = params
		return nil
	}
	return p.unsupported(l)
}

func (p *MetadataParser) parseCustom(l defineLabel, value string) error {
	return p.indexedParam(l, value, p.ctx.Customs)
}

func (p *MetadataParser) parseDerivatizationAgent(l defineLabel, value string) error {
	return p.indexedParam(l, value, p.ctx.DerivatizationAgents)
}

func (p *MetadataParser) parseIDConfidenceMeasure(l defineLabel, value string) error {
	return p.indexedParam(l, value, p.ctx.IDConfidenceMeasures)
}

func (p *MetadataParser) indexedParam(l defineLabel, value string, reg *Registry[core.IndexedParameter]) error {
	if err := p.indexed(l); err != nil {
		return err
	}
	if l.sub != "" {
		return p.unsupported(l)
	}
	param, err := p.param(l, value)
	if err != nil || param == nil {
		return err
	}
	ip, err := reg.Upsert(l.id)
	if err != nil {
		return p.fail(err, l)
	}
	ip.Parameter = param
	return nil
}

func (p *MetadataParser) parseCV(l defineLabel, value string) error {
	if err := p.indexed(l); err != nil {
		return err
	}
	switch l.sub {
	case "label", "full_name", "version", "uri":
	default:
		return p.unsupported(l)
	}
	var v string
	var err error
	if l.sub == "uri" {
		v, err = p.uri(l, value)
	} else {
		v, err = p.text(l, value)
	}
	if err != nil || v == "" {
		return err
	}
	cv, err := p.ctx.CVs.Upsert(l.id)
	if err != nil {
		return p.fail(err, l)
	}
	switch l.sub {
	case "label":
		cv.Label = v
	case "full_name":
		cv.FullName = v
	case "version":
		cv.Version = v
	case "uri":
		cv.URI = v
	}
	return nil
}

func (p *MetadataParser) parseDatabase(l defineLabel, value string) error {
	if err := p.indexed(l); err != nil {
		return err
	}
	switch l.sub {
	case "":
		param, err := p.param(l, value)
		if err != nil || param == nil {
			return err
		}
		db, err := p.ctx.Databases.Upsert(l.id)
		if err != nil {
			return p.fail(err, l)
		}
		db.Parameter = param
		return nil
	case "prefix", "version":
		// A null prefix is allowed for databases without identifiers.
		v := strings.TrimSpace(value)
		if v == "" {
			return p.add(ErrNull, l.raw)
		}
		db, err := p.ctx.Databases.Upsert(l.id)
		if err != nil {
			return p.fail(err, l)
		}
		if l.sub == "prefix" {
			db.Prefix = v
		} else {
			db.Version = v
		}
		return nil
	case "uri":
		if IsNull(value) {
			db, err := p.ctx.Databases.Upsert(l.id)
			if err != nil {
				return p.fail(err, l)
			}
			db.URI = core.Null
			return nil
		}
		v, err := p.uri(l, value)
		if err != nil || v == "" {
			return err
		}
		db, err := p.ctx.Databases.Upsert(l.id)
		if err != nil {
			return p.fail(err, l)
		}
		db.URI = v
		return nil
	}
	return p.unsupported(l)
}

var colunitSections = map[string]Section{
	"small_molecule":          SectionSummaryHeader,
	"small_molecule_feature":  SectionFeatureHeader,
	"small_molecule_evidence": SectionEvidenceHeader,
}

func (p *MetadataParser) parseColunit(l defineLabel, value string) error {
	if l.hasID || l.hasSubID {
		return p.unsupported(l)
	}
	section, ok := colunitSections[l.sub]
	if !ok {
		return p.unsupported(l)
	}
	if _, _, err := ParseColumnUnit(value); err != nil {
		return p.add(ErrColUnit, l.raw, value)
	}
	p.ctx.AddColUnit(PendingColUnit{Line: p.line, Section: section, Label: l.raw, Value: value})
	return nil
}
