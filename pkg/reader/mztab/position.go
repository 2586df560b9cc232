package mztab

import (
	"sort"
	"strings"
)

// PositionMapping maps the physical positions of one header line to the
// logical positions of its columns. It is built once per header and never
// modified afterwards.
type PositionMapping struct {
	toLogical  map[int]int
	toPhysical map[int]int
	columns    int
}

// NewPositionMapping maps every physical position of headers whose token is
// a column of f. headers is the tokenized header line including its prefix
// at index 0.
func NewPositionMapping(f *ColumnFactory, headers []string) *PositionMapping {
	m := &PositionMapping{
		toLogical:  make(map[int]int),
		toPhysical: make(map[int]int),
	}
	if len(headers) > 0 {
		m.columns = len(headers) - 1
	}
	for pos := 1; pos < len(headers); pos++ {
		col, ok := f.ByHeader(strings.TrimSpace(headers[pos]))
		if !ok {
			continue
		}
		m.toLogical[pos] = col.LogicalPosition()
		m.toPhysical[col.LogicalPosition()] = pos
	}
	return m
}

// Logical returns the logical position of the column at physical position p.
func (m *PositionMapping) Logical(p int) (int, bool) {
	l, ok := m.toLogical[p]
	return l, ok
}

// Physical returns the physical position of the column with logical
// position l.
func (m *PositionMapping) Physical(l int) (int, bool) {
	p, ok := m.toPhysical[l]
	return p, ok
}

// Len returns the number of mapped columns.
func (m *PositionMapping) Len() int { return len(m.toLogical) }

// Columns returns the number of columns in the header line, prefix excluded.
func (m *PositionMapping) Columns() int { return m.columns }

// PhysicalPositions returns the mapped physical positions in ascending order.
func (m *PositionMapping) PhysicalPositions() []int {
	out := make([]int, 0, len(m.toLogical))
	for p := range m.toLogical {
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}
