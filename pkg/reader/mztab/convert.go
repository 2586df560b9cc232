package mztab

import (
	"errors"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/ChrisMcGann/mztabkit/pkg/core"
)

// List separators used by mzTab fields.
const (
	Bar   = "|"
	Comma = ","
)

// errMalformed is returned by the converters for values that cannot be
// parsed. Line parsers turn it into a located format error.
var errMalformed = errors.New("malformed value")

// IsNull reports whether s is empty or the null placeholder.
func IsNull(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, core.Null)
}

// ParseInteger converts s to an int. A null value yields (nil, nil).
func ParseInteger(s string) (*int, error) {
	if IsNull(s) {
		return nil, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil, errMalformed
	}
	return &v, nil
}

// ParseDouble converts s to a float64. NaN and INF are accepted.
func ParseDouble(s string) (*float64, error) {
	if IsNull(s) {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil, errMalformed
	}
	return &v, nil
}

// ParseBoolean accepts only "0" and "1".
func ParseBoolean(s string) (*bool, error) {
	if IsNull(s) {
		return nil, nil
	}
	switch strings.TrimSpace(s) {
	case "0":
		v := false
		return &v, nil
	case "1":
		v := true
		return &v, nil
	}
	return nil, errMalformed
}

// ParseParam parses "[label, accession, name, value]". The name may contain
// commas when quoted. A value without brackets is taken as the name of a user
// parameter.
func ParseParam(s string) (*core.Parameter, error) {
	s = strings.TrimSpace(s)
	if IsNull(s) {
		return nil, nil
	}
	if !strings.HasPrefix(s, "[") {
		if strings.ContainsAny(s, "[]") {
			return nil, errMalformed
		}
		return core.NewUserParam(s, ""), nil
	}
	if !strings.HasSuffix(s, "]") {
		return nil, errMalformed
	}
	inner := s[1 : len(s)-1]

	first := strings.Index(inner, ",")
	if first < 0 {
		return nil, errMalformed
	}
	second := strings.Index(inner[first+1:], ",")
	if second < 0 {
		return nil, errMalformed
	}
	second += first + 1
	last := strings.LastIndex(inner, ",")
	if last <= second {
		return nil, errMalformed
	}

	p := &core.Parameter{
		CVLabel:     strings.TrimSpace(inner[:first]),
		CVAccession: strings.TrimSpace(inner[first+1 : second]),
		Name:        unquote(strings.TrimSpace(inner[second+1 : last])),
		Value:       strings.TrimSpace(inner[last+1:]),
	}
	if p.Name == "" {
		return nil, errMalformed
	}
	if (p.CVLabel == "") != (p.CVAccession == "") {
		return nil, errMalformed
	}
	return p, nil
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		if u, err := strconv.Unquote(s); err == nil {
			return u
		}
		return s[1 : len(s)-1]
	}
	return s
}

// HasNamespace reports whether a CV accession carries a "PREFIX:" namespace.
func HasNamespace(accession string) bool {
	i := strings.Index(accession, ":")
	return i > 0 && i < len(accession)-1
}

// ParseParamList parses parameters separated by sep.
func ParseParamList(s, sep string) ([]*core.Parameter, error) {
	if IsNull(s) {
		return nil, nil
	}
	var out []*core.Parameter
	for _, item := range strings.Split(s, sep) {
		if strings.TrimSpace(item) == "" {
			continue
		}
		p, err := ParseParam(item)
		if err != nil {
			return nil, err
		}
		if p != nil {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil, errMalformed
	}
	return out, nil
}

// ParseStringList splits s on sep and trims the items. Items may be the null
// placeholder but not empty.
func ParseStringList(s, sep string) ([]string, error) {
	if IsNull(s) {
		return nil, nil
	}
	var out []string
	for _, item := range strings.Split(s, sep) {
		item = strings.TrimSpace(item)
		if item == "" {
			return nil, errMalformed
		}
		out = append(out, item)
	}
	return out, nil
}

// ParseIntegerList parses integers separated by sep. Null items are not
// allowed.
func ParseIntegerList(s, sep string) ([]int, error) {
	items, err := ParseStringList(s, sep)
	if err != nil || items == nil {
		return nil, err
	}
	out := make([]int, 0, len(items))
	for _, item := range items {
		v, err := ParseInteger(item)
		if err != nil || v == nil {
			return nil, errMalformed
		}
		out = append(out, *v)
	}
	return out, nil
}

// ParseDoubleList parses doubles separated by sep; null items become nil.
func ParseDoubleList(s, sep string) ([]*float64, error) {
	items, err := ParseStringList(s, sep)
	if err != nil || items == nil {
		return nil, err
	}
	out := make([]*float64, 0, len(items))
	for _, item := range items {
		v, err := ParseDouble(item)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ParseURI parses s and returns its canonical ASCII form. A null value yields
// ("", nil).
func ParseURI(s string) (string, error) {
	s = strings.TrimSpace(s)
	if IsNull(s) {
		return "", nil
	}
	if strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return "", errMalformed
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", errMalformed
	}
	return u.String(), nil
}

var indexedElementRe = regexp.MustCompile(`^(\w+)\[(\d+)\]$`)

// IndexedRef is a parsed "kind[id]" reference.
type IndexedRef struct {
	Kind string
	ID   int
}

// ParseIndexedElement parses "kind[id]" and checks the kind.
func ParseIndexedElement(s, kind string) (IndexedRef, error) {
	m := indexedElementRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil || m[1] != kind {
		return IndexedRef{}, errMalformed
	}
	id, err := strconv.Atoi(m[2])
	if err != nil || id <= 0 {
		return IndexedRef{}, errMalformed
	}
	return IndexedRef{Kind: kind, ID: id}, nil
}

// ParseIndexedElementList parses a list of references of the same kind. Both
// '|' and ',' are accepted as separators.
func ParseIndexedElementList(s, kind string) ([]IndexedRef, error) {
	if IsNull(s) {
		return nil, errMalformed
	}
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' })
	if len(fields) == 0 {
		return nil, errMalformed
	}
	out := make([]IndexedRef, 0, len(fields))
	for _, f := range fields {
		ref, err := ParseIndexedElement(f, kind)
		if err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, nil
}

var spectraRefRe = regexp.MustCompile(`^ms_run\[(\d+)\]:(\S.*)$`)

// RawSpectraRef is a spectra reference before its ms_run is resolved.
type RawSpectraRef struct {
	MsRunID   int
	Reference string
}

// ParseSpectraRefs parses "ms_run[n]:reference" items separated by '|'.
func ParseSpectraRefs(s string) ([]RawSpectraRef, error) {
	if IsNull(s) {
		return nil, nil
	}
	var out []RawSpectraRef
	for _, item := range strings.Split(s, Bar) {
		m := spectraRefRe.FindStringSubmatch(strings.TrimSpace(item))
		if m == nil {
			return nil, errMalformed
		}
		id, err := strconv.Atoi(m[1])
		if err != nil || id <= 0 {
			return nil, errMalformed
		}
		out = append(out, RawSpectraRef{MsRunID: id, Reference: strings.TrimSpace(m[2])})
	}
	return out, nil
}

// ParsePublicationItems parses "pubmed:1|doi:10.1/x|uri:http://..." lists.
func ParsePublicationItems(s string) ([]core.PublicationItem, error) {
	if IsNull(s) {
		return nil, errMalformed
	}
	var out []core.PublicationItem
	for _, item := range strings.Split(s, Bar) {
		item = strings.TrimSpace(item)
		i := strings.Index(item, ":")
		if i <= 0 || i == len(item)-1 {
			return nil, errMalformed
		}
		typ := strings.ToLower(strings.TrimSpace(item[:i]))
		switch typ {
		case "pubmed", "doi", "uri":
		default:
			return nil, errMalformed
		}
		out = append(out, core.PublicationItem{Type: typ, Accession: strings.TrimSpace(item[i+1:])})
	}
	return out, nil
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// IsEmail reports whether s looks like an email address.
func IsEmail(s string) bool {
	return emailRe.MatchString(strings.TrimSpace(s))
}

// ParseColumnUnit parses the "column_name=[param]" value of a colunit line.
func ParseColumnUnit(s string) (string, *core.Parameter, error) {
	i := strings.Index(s, "=")
	if i <= 0 {
		return "", nil, errMalformed
	}
	column := strings.TrimSpace(s[:i])
	raw := strings.TrimSpace(s[i+1:])
	if column == "" || !strings.HasPrefix(raw, "[") {
		return "", nil, errMalformed
	}
	p, err := ParseParam(raw)
	if err != nil || p == nil {
		return "", nil, errMalformed
	}
	return column, p, nil
}
