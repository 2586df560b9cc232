// Package filter provides row filtering of mzTab-M documents before export
package filter

import (
	"strings"

	"github.com/ChrisMcGann/mztabkit/pkg/core"
)

// Config holds filtering configuration
type Config struct {
	MaxRank           int      // Keep only evidence with rank <= MaxRank (0 = no limit)
	Reliabilities     []string // Keep only summary rows with these reliability values (nil = all)
	RequireIdentifier bool     // Drop summary rows without a database identifier
}

// Stats counts the rows removed by Apply
type Stats struct {
	Summary  int
	Evidence int
	Refs     int // SME_ID_REFS entries pruned from features
}

// Enabled reports whether any filter is configured
func (c *Config) Enabled() bool {
	return c.MaxRank > 0 || len(c.Reliabilities) > 0 || c.RequireIdentifier
}

// Apply applies all configured filters to doc in place
func (c *Config) Apply(doc *core.MzTab) Stats {
	var stats Stats

	// Filter evidence first so feature references can be pruned
	if c.MaxRank > 0 {
		removed := c.filterByRank(doc)
		stats.Evidence = len(removed)
		stats.Refs = pruneEvidenceRefs(doc, removed)
	}

	if len(c.Reliabilities) > 0 || c.RequireIdentifier {
		stats.Summary = c.filterSummary(doc)
	}

	return stats
}

// filterByRank removes evidence ranked below MaxRank and returns the removed ids.
// Rows without a rank are kept.
func (c *Config) filterByRank(doc *core.MzTab) map[int]bool {
	removed := make(map[int]bool)
	var kept []*core.SmallMoleculeEvidence
	for _, e := range doc.SmallMoleculeEvidence {
		if e.Rank != nil && *e.Rank > c.MaxRank {
			removed[e.ID] = true
			continue
		}
		kept = append(kept, e)
	}
	doc.SmallMoleculeEvidence = kept
	return removed
}

// pruneEvidenceRefs drops feature references to removed evidence rows
func pruneEvidenceRefs(doc *core.MzTab, removed map[int]bool) int {
	if len(removed) == 0 {
		return 0
	}

	pruned := 0
	for _, f := range doc.SmallMoleculeFeature {
		var refs []int
		for _, id := range f.SMEIDRefs {
			if removed[id] {
				pruned++
				continue
			}
			refs = append(refs, id)
		}
		f.SMEIDRefs = refs
	}
	return pruned
}

// filterSummary keeps summary rows matching the reliability and identifier filters
func (c *Config) filterSummary(doc *core.MzTab) int {
	var kept []*core.SmallMoleculeSummary
	for _, s := range doc.SmallMoleculeSummary {
		if len(c.Reliabilities) > 0 && !matchesReliability(s.Reliability, c.Reliabilities) {
			continue
		}
		if c.RequireIdentifier && !hasIdentifier(s) {
			continue
		}
		kept = append(kept, s)
	}

	removed := len(doc.SmallMoleculeSummary) - len(kept)
	doc.SmallMoleculeSummary = kept
	return removed
}

// matchesReliability checks if a reliability value is in the allowed list
func matchesReliability(reliability string, allowed []string) bool {
	if reliability == "" {
		return false
	}

	for _, r := range allowed {
		if strings.EqualFold(strings.TrimSpace(r), reliability) {
			return true
		}
	}
	return false
}

// hasIdentifier reports whether any database identifier is set
func hasIdentifier(s *core.SmallMoleculeSummary) bool {
	for _, id := range s.DatabaseIdentifier {
		if id != "" && id != core.Null {
			return true
		}
	}
	return false
}
