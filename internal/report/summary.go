// Package report aggregates verdicts into a batch summary and renders it.
// Rendering is a pure function of the summary value; no I/O happens here.
package report

import (
	"fmt"
	"sort"
	"strings"

	"watchdog/pkg/contracts/domain"
)

// Summarize computes the run summary from verdicts: total/clean/flagged
// counts, a per-rule failure tally, the pass rate, and the gate decision.
// The gate passes only when zero rows are flagged.
func Summarize(runID string, verdicts []domain.Verdict) domain.Summary {
	s := domain.Summary{
		RunID:        runID,
		TotalRows:    len(verdicts),
		RuleFailures: make(map[string]int),
	}
	for _, v := range verdicts {
		if len(v.Violations) == 0 {
			s.CleanRows++
			continue
		}
		s.FlaggedRows++
		for _, viol := range v.Violations {
			s.RuleFailures[viol.Rule]++
		}
	}
	if s.TotalRows > 0 {
		s.PassRate = float64(s.CleanRows) / float64(s.TotalRows) * 100
	}
	s.Passed = s.FlaggedRows == 0
	return s
}

// RenderText renders a summary as console text. Rule tallies are sorted by
// name for stable output.
func RenderText(s domain.Summary) string {
	var b strings.Builder
	gate := "PASS"
	if !s.Passed {
		gate = "FAIL"
	}
	fmt.Fprintf(&b, "Quarantine gate: %s\n", gate)
	fmt.Fprintf(&b, "  total rows:   %d\n", s.TotalRows)
	fmt.Fprintf(&b, "  clean rows:   %d\n", s.CleanRows)
	fmt.Fprintf(&b, "  flagged rows: %d\n", s.FlaggedRows)
	fmt.Fprintf(&b, "  pass rate:    %.1f%%\n", s.PassRate)
	if len(s.RuleFailures) > 0 {
		fmt.Fprintf(&b, "  failures by rule:\n")
		names := make([]string, 0, len(s.RuleFailures))
		for name := range s.RuleFailures {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "    %-24s %d\n", name, s.RuleFailures[name])
		}
	}
	return b.String()
}
