package models

import (
	"fmt"
	"sort"
	"strings"
)

// Category classifies a translation diagnostic.
type Category string

const (
	CategoryMissingResource     Category = "missing_resource"
	CategoryApproximation       Category = "approximation"
	CategoryUnsupportedFn       Category = "unsupported_fn"
	CategoryContextStripped     Category = "context_stripped"
	CategoryTimeSigIgnored      Category = "time_sig_ignored"
	CategoryHomoNotExpanded     Category = "homo_not_expanded"
	CategoryStructuralViolation Category = "structural_invariant_violation"
)

// Diagnostic is a non-fatal translation finding.
// Grammar and Rule are 0 when the finding is not tied to a rule.
type Diagnostic struct {
	Category Category `json:"category"`
	Message  string   `json:"message"`
	Grammar  int      `json:"grammar,omitempty"`
	Rule     int      `json:"rule,omitempty"`
}

func (d Diagnostic) String() string {
	loc := ""
	if d.Grammar != 0 {
		loc = fmt.Sprintf("gram#%d", d.Grammar)
		if d.Rule != 0 {
			loc += fmt.Sprintf("[%d]", d.Rule)
		}
		loc += " "
	}
	return fmt.Sprintf("[%s] %s%s", d.Category, loc, d.Message)
}

// Diagnostics is an ordered list of findings.
type Diagnostics []Diagnostic

// Filter returns the diagnostics of one category, in order.
func (ds Diagnostics) Filter(c Category) Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if d.Category == c {
			out = append(out, d)
		}
	}
	return out
}

// CategoryCount is a category with its number of occurrences.
type CategoryCount struct {
	Category Category
	Count    int
}

// Counts returns per-category counts, most frequent first, ties in first-seen order.
func (ds Diagnostics) Counts() []CategoryCount {
	var counts []CategoryCount
	pos := map[Category]int{}
	for _, d := range ds {
		i, ok := pos[d.Category]
		if !ok {
			pos[d.Category] = len(counts)
			counts = append(counts, CategoryCount{Category: d.Category})
			i = len(counts) - 1
		}
		counts[i].Count++
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts
}

// Summary is a short per-category overview.
func (ds Diagnostics) Summary() string {
	if len(ds) == 0 {
		return "No warnings."
	}
	lines := []string{fmt.Sprintf("%d warning(s):", len(ds))}
	for _, c := range ds.Counts() {
		lines = append(lines, fmt.Sprintf("  %s: %d", c.Category, c.Count))
	}
	return strings.Join(lines, "\n")
}

// Report lists every diagnostic followed by the per-category summary.
func (ds Diagnostics) Report() string {
	if len(ds) == 0 {
		return "No warnings."
	}
	lines := []string{fmt.Sprintf("=== %d warning(s) ===", len(ds))}
	for _, d := range ds {
		lines = append(lines, d.String())
	}
	lines = append(lines, "", "--- Summary ---")
	for _, c := range ds.Counts() {
		lines = append(lines, fmt.Sprintf("  %s: %d", c.Category, c.Count))
	}
	return strings.Join(lines, "\n")
}
