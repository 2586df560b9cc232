package mztab

import (
	"os"
	"strings"
	"testing"

	"github.com/ChrisMcGann/mztabkit/pkg/core"
)

const fixturePath = "testdata/minimal.mztab"

// fixtureLines returns the non blank lines of the test document.
func fixtureLines(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(fixturePath)
	if err != nil {
		t.Fatalf("failed to read fixture: %v", err)
	}
	var lines []string
	for _, l := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// fixturePrefixed returns the fixture lines starting with prefix.
func fixturePrefixed(t *testing.T, prefix string) []string {
	t.Helper()
	var out []string
	for _, l := range fixtureLines(t) {
		if strings.HasPrefix(l, prefix+Tab) {
			out = append(out, l)
		}
	}
	if len(out) == 0 {
		t.Fatalf("fixture has no %s lines", prefix)
	}
	return out
}

// fixtureMetadata returns the MTD lines of the fixture, without those whose
// label starts with one of skip.
func fixtureMetadata(t *testing.T, skip ...string) []string {
	t.Helper()
	var out []string
next:
	for _, l := range fixturePrefixed(t, "MTD") {
		label := strings.Split(l, Tab)[1]
		for _, s := range skip {
			if strings.HasPrefix(label, s) {
				continue next
			}
		}
		out = append(out, l)
	}
	return out
}

// newTestContext applies MTD lines to a fresh context and fails the test on
// a fatal error.
func newTestContext(t *testing.T, lines ...string) (*Context, *ErrorList) {
	t.Helper()
	errs := NewErrorList(LevelInfo, 0)
	ctx := NewContext(&core.Metadata{})
	p := NewMetadataParser(ctx, errs)
	for i, line := range lines {
		if err := p.Parse(i+1, line); err != nil {
			t.Fatalf("Parse(%q) error = %v", line, err)
		}
	}
	return ctx, errs
}

// parsedHeader parses and refines a header line, failing on any fatal error.
func parsedHeader(t *testing.T, ctx *Context, errs *ErrorList, section Section, line string) *HeaderParser {
	t.Helper()
	h, err := NewHeaderParser(section, ctx, errs)
	if err != nil {
		t.Fatalf("NewHeaderParser() error = %v", err)
	}
	if err := h.Parse(100, line); err != nil {
		t.Fatalf("Parse(%q) error = %v", line, err)
	}
	if err := h.Refine(); err != nil {
		t.Fatalf("Refine() error = %v", err)
	}
	return h
}

// join builds a tab separated line.
func join(fields ...string) string {
	return strings.Join(fields, Tab)
}

// withField returns line with the field at physical position pos replaced.
func withField(line string, pos int, value string) string {
	items := strings.Split(line, Tab)
	items[pos] = value
	return strings.Join(items, Tab)
}

func f64(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }

func errorSummary(errs *ErrorList) string {
	var b strings.Builder
	for _, e := range errs.Errors() {
		b.WriteString("\n\t")
		b.WriteString(e.Error())
	}
	return b.String()
}
