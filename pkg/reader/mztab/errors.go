package mztab

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Level is the severity of a parser error.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "Info"
	case LevelWarn:
		return "Warn"
	default:
		return "Error"
	}
}

// ParseLevel converts a level name (case insensitive) to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelError, fmt.Errorf("unknown level '%s', must be info, warn or error", s)
}

// Category groups error types.
type Category string

const (
	CategoryFormat     Category = "Format"
	CategoryLogical    Category = "Logical"
	CategoryCrossCheck Category = "CrossCheck"
)

// ErrorType describes one kind of problem. Templates use {0}, {1}, ... for
// the values of an Error.
type ErrorType struct {
	Code     int
	Name     string
	Category Category
	Level    Level
	Template string
}

func newType(code int, name string, cat Category, level Level, template string) *ErrorType {
	return &ErrorType{Code: code, Name: name, Category: cat, Level: level, Template: template}
}

// Format errors.
var (
	ErrLinePrefix       = newType(1001, "LinePrefix", CategoryFormat, LevelError, "Line does not start with a known prefix: {0}. Expected one of COM, MTD, SMH, SML, SFH, SMF, SEH, SME.")
	ErrCountMatch       = newType(1002, "CountMatch", CategoryFormat, LevelError, "Line has {0} fields but the {1} header declares {2} columns.")
	ErrIndexedElement   = newType(1003, "IndexedElement", CategoryFormat, LevelError, "Invalid indexed element reference \"{1}\" in {0}; expected {2}[n].")
	ErrAbundanceColumn  = newType(1004, "AbundanceColumn", CategoryFormat, LevelError, "Invalid abundance column \"{0}\".")
	ErrOptionalColumn   = newType(1005, "OptionalColumn", CategoryFormat, LevelError, "Invalid optional column \"{0}\"; expected opt_{global|assay[n]|study_variable[n]|ms_run[n]}_name.")
	ErrStableColumn     = newType(1006, "StableColumn", CategoryFormat, LevelError, "Column \"{0}\" is not valid in the {1} section.")
	ErrMTDLine          = newType(1007, "MTDLine", CategoryFormat, LevelError, "Metadata line must have 3 fields (MTD, label, value) but has {0}: {1}")
	ErrMTDDefineLabel   = newType(1008, "MTDDefineLabel", CategoryFormat, LevelError, "Invalid metadata define label \"{0}\".")
	ErrMTDElement       = newType(1009, "MTDElement", CategoryFormat, LevelError, "Unknown metadata element \"{0}\" in label \"{1}\".")
	ErrMTDProperty      = newType(1010, "MTDProperty", CategoryFormat, LevelError, "Unsupported metadata property in label \"{0}\".")
	ErrParam            = newType(1011, "Param", CategoryFormat, LevelError, "Field \"{0}\" value \"{1}\" is not a valid parameter [label, accession, name, value].")
	ErrParamList        = newType(1012, "ParamList", CategoryFormat, LevelError, "Field \"{0}\" value \"{1}\" is not a valid parameter list.")
	ErrStringList       = newType(1013, "StringList", CategoryFormat, LevelError, "Field \"{0}\" value \"{1}\" is not a valid list separated by '{2}'.")
	ErrInteger          = newType(1014, "Integer", CategoryFormat, LevelError, "Field \"{0}\" value \"{1}\" is not a valid integer.")
	ErrDouble           = newType(1015, "Double", CategoryFormat, LevelError, "Field \"{0}\" value \"{1}\" is not a valid double.")
	ErrBoolean          = newType(1016, "Boolean", CategoryFormat, LevelError, "Field \"{0}\" value \"{1}\" is not a valid boolean; expected 0 or 1.")
	ErrURI              = newType(1017, "URI", CategoryFormat, LevelError, "Field \"{0}\" value \"{1}\" is not a valid URI.")
	ErrSpectraRef       = newType(1018, "SpectraRef", CategoryFormat, LevelError, "Field \"{0}\" value \"{1}\" is not a valid spectra reference ms_run[n]:reference.")
	ErrPublication      = newType(1019, "Publication", CategoryFormat, LevelError, "Publication \"{0}\" value \"{1}\" must be a '|' separated list of pubmed:, doi: or uri: items.")
	ErrEmail            = newType(1020, "Email", CategoryFormat, LevelError, "Field \"{0}\" value \"{1}\" is not a valid email address.")
	ErrColUnit          = newType(1021, "ColUnit", CategoryFormat, LevelError, "Column unit \"{0}\" value \"{1}\" must be column_name=[label, accession, name, value].")
	ErrParamAccession   = newType(1022, "ParamAccessionNotNamespaced", CategoryFormat, LevelWarn, "Parameter accession \"{1}\" in field \"{0}\" has no namespace prefix (e.g. MS:).")
	ErrDuplicateColumn  = newType(1023, "DuplicateColumn", CategoryFormat, LevelError, "Column \"{0}\" is declared more than once in the {1} header.")
	ErrHeaderTokenCount = newType(1024, "HeaderTokenCount", CategoryFormat, LevelError, "Header has {0} columns but only {1} were recognised.")
	ErrVersion          = newType(1025, "Version", CategoryFormat, LevelError, "mzTab-version \"{0}\" is not supported; expected 2.0.0-M.")
	ErrColumnOrder      = newType(1026, "ColumnOrder", CategoryFormat, LevelWarn, "Column \"{0}\" is out of order in the {1} header; id_confidence_measure columns follow metadata order.")
)

// Logical errors.
var (
	ErrNull                    = newType(2001, "NULL", CategoryLogical, LevelError, "Field \"{0}\" must not be null.")
	ErrSampleNotDefined        = newType(2002, "SampleNotDefined", CategoryLogical, LevelError, "sample[{0}] referenced by \"{1}\" is not defined in metadata.")
	ErrAssayNotDefined         = newType(2003, "AssayNotDefined", CategoryLogical, LevelError, "assay[{0}] referenced by \"{1}\" is not defined in metadata.")
	ErrMsRunNotDefined         = newType(2004, "MsRunNotDefined", CategoryLogical, LevelError, "ms_run[{0}] referenced by \"{1}\" is not defined in metadata.")
	ErrInstrumentNotDefined    = newType(2005, "InstrumentNotDefined", CategoryLogical, LevelError, "instrument[{0}] referenced by \"{1}\" is not defined in metadata.")
	ErrStudyVariableNotDefined = newType(2006, "StudyVariableNotDefined", CategoryLogical, LevelError, "study_variable[{0}] referenced by \"{1}\" is not defined in metadata.")
	ErrIDConfidenceNotDefined  = newType(2007, "IdConfidenceMeasureNotDefined", CategoryLogical, LevelError, "id_confidence_measure[{0}] referenced by \"{1}\" is not defined in metadata.")
	ErrDuplicateDefine         = newType(2008, "DuplicationDefine", CategoryLogical, LevelError, "Metadata \"{0}\" is defined more than once.")
	ErrDuplicateID             = newType(2009, "DuplicationID", CategoryLogical, LevelError, "{0} ID {1} is used by more than one row.")
	ErrHeaderLineMissing       = newType(2010, "HeaderLineMissing", CategoryLogical, LevelError, "{0} line appears before its {1} header line.")
	ErrSectionOrder            = newType(2011, "SectionOrder", CategoryLogical, LevelError, "{0} line is not allowed after the {1} section.")
	ErrNoSummarySection        = newType(2012, "NoSmallMoleculeSummary", CategoryLogical, LevelError, "The file has no small molecule summary (SMH/SML) section.")
	ErrColUnitColumn           = newType(2013, "ColUnitColumnMissing", CategoryLogical, LevelError, "Column unit \"{0}\" refers to column \"{1}\" which is not in the {2} header.")
	ErrListCountMismatch       = newType(2014, "ListCountMismatch", CategoryLogical, LevelError, "Column \"{0}\" has {1} entries but database_identifier has {2}.")
	ErrInvalidID               = newType(2015, "InvalidID", CategoryLogical, LevelError, "Index {0} in \"{1}\" must be a positive integer.")
	ErrRowReference            = newType(2016, "RowReference", CategoryLogical, LevelError, "{0} {1} references {2} {3} which does not exist.")
	ErrValueRange              = newType(2017, "ValueRange", CategoryLogical, LevelError, "Field \"{0}\" value \"{1}\" is out of range: {2}.")
	ErrDuplicateHeader         = newType(2018, "DuplicateHeader", CategoryLogical, LevelError, "The {0} header line appears more than once.")
)

// Cross-check (mandatory completeness) errors.
var (
	ErrMissingMetadata         = newType(3001, "MissingMandatoryMetadata", CategoryCrossCheck, LevelError, "Mandatory metadata \"{0}\" is missing.")
	ErrMissingStableColumn     = newType(3002, "StableColumn", CategoryCrossCheck, LevelError, "Mandatory column \"{0}\" is missing from the {1} header.")
	ErrMissingAbundance        = newType(3003, "AbundanceColumnMissing", CategoryCrossCheck, LevelError, "Column \"{0}\" is required by metadata but missing from the {1} header.")
	ErrMissingIDConfidence     = newType(3004, "IdConfidenceColumnMissing", CategoryCrossCheck, LevelError, "Column \"id_confidence_measure[{0}]\" is required by metadata but missing from the {1} header.")
	ErrMissingQuantUnit        = newType(3005, "QuantificationUnitMissing", CategoryCrossCheck, LevelError, "Metadata \"{0}\" must be defined when the {1} section is present.")
	ErrAssayMsRunRef           = newType(3006, "AssayMsRunRefMissing", CategoryCrossCheck, LevelError, "assay[{0}]-ms_run_ref is missing.")
	ErrStudyVariableIncomplete = newType(3007, "StudyVariableIncomplete", CategoryCrossCheck, LevelError, "study_variable[{0}]-{1} is missing.")
	ErrMsRunIncomplete         = newType(3008, "MsRunIncomplete", CategoryCrossCheck, LevelError, "ms_run[{0}]-{1} is missing.")
	ErrCVIncomplete            = newType(3009, "CVIncomplete", CategoryCrossCheck, LevelError, "cv[{0}]-{1} is missing.")
	ErrDatabaseIncomplete      = newType(3010, "DatabaseIncomplete", CategoryCrossCheck, LevelError, "database[{0}]-{1} is missing.")
)

// Error is one located parser problem.
type Error struct {
	Type   *ErrorType
	Line   int // 1-based, -1 when the problem concerns the whole document
	Values []string
}

// newError builds an Error, stringifying values.
func newError(t *ErrorType, line int, values ...any) *Error {
	vs := make([]string, len(values))
	for i, v := range values {
		vs[i] = fmt.Sprint(v)
	}
	return &Error{Type: t, Line: line, Values: vs}
}

// Message renders the type template with the error values.
func (e *Error) Message() string {
	msg := e.Type.Template
	for i, v := range e.Values {
		msg = strings.ReplaceAll(msg, "{"+strconv.Itoa(i)+"}", v)
	}
	return msg
}

func (e *Error) Error() string {
	if e.Line < 0 {
		return fmt.Sprintf("[%s-%d] %s", e.Type.Category, e.Type.Code, e.Message())
	}
	return fmt.Sprintf("[%s-%d] line %d: %s", e.Type.Category, e.Type.Code, e.Line, e.Message())
}

// Is matches errors of the same type, so callers can use
// errors.Is(err, &Error{Type: ErrAssayNotDefined}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Type == e.Type
}

// IsType reports whether err is (or wraps) a parser error of type t.
func IsType(err error, t *ErrorType) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Type == t
	}
	return false
}

// ErrTooManyErrors is returned once an ErrorList reaches its capacity.
var ErrTooManyErrors = errors.New("too many errors")

// DefaultMaxErrors is the default capacity of an ErrorList.
const DefaultMaxErrors = 300

// ErrorList collects non-fatal errors in the order they are found. Errors
// below the list's level are dropped.
type ErrorList struct {
	level  Level
	max    int
	errors []*Error
}

// NewErrorList creates a list keeping errors at or above level. max <= 0
// selects DefaultMaxErrors.
func NewErrorList(level Level, max int) *ErrorList {
	if max <= 0 {
		max = DefaultMaxErrors
	}
	return &ErrorList{level: level, max: max}
}

// Add appends e. It returns ErrTooManyErrors when the list is already full.
func (l *ErrorList) Add(e *Error) error {
	if e.Type.Level < l.level {
		return nil
	}
	if len(l.errors) >= l.max {
		return fmt.Errorf("%w: more than %d errors", ErrTooManyErrors, l.max)
	}
	l.errors = append(l.errors, e)
	return nil
}

// Len returns the number of collected errors.
func (l *ErrorList) Len() int { return len(l.errors) }

// IsEmpty reports whether no error was collected.
func (l *ErrorList) IsEmpty() bool { return len(l.errors) == 0 }

// Errors returns the collected errors.
func (l *ErrorList) Errors() []*Error { return l.errors }

// Count returns the number of collected errors of type t.
func (l *ErrorList) Count(t *ErrorType) int {
	n := 0
	for _, e := range l.errors {
		if e.Type == t {
			n++
		}
	}
	return n
}

// Filter returns the collected errors at or above level.
func (l *ErrorList) Filter(level Level) []*Error {
	var out []*Error
	for _, e := range l.errors {
		if e.Type.Level >= level {
			out = append(out, e)
		}
	}
	return out
}

// UndefinedRefError is returned by the parser context when a reference names
// an indexed element that has not been declared yet.
type UndefinedRefError struct {
	Kind string
	ID   int
}

func (e *UndefinedRefError) Error() string {
	return fmt.Sprintf("%s[%d] is not defined", e.Kind, e.ID)
}

// refErrorType maps an element kind to its not-defined error type.
func refErrorType(kind string) *ErrorType {
	switch kind {
	case kindSample:
		return ErrSampleNotDefined
	case kindAssay:
		return ErrAssayNotDefined
	case kindMsRun:
		return ErrMsRunNotDefined
	case kindInstrument:
		return ErrInstrumentNotDefined
	case kindStudyVariable:
		return ErrStudyVariableNotDefined
	case kindIDConfidence:
		return ErrIDConfidenceNotDefined
	}
	return ErrIndexedElement
}

// asParseError converts context errors into located parser errors.
func asParseError(err error, line int, label string) error {
	var ref *UndefinedRefError
	if errors.As(err, &ref) {
		return newError(refErrorType(ref.Kind), line, ref.ID, label)
	}
	var inv *InvalidIDError
	if errors.As(err, &inv) {
		return newError(ErrInvalidID, line, inv.ID, label)
	}
	return err
}
