// Package meta aggregates scan results: it flattens issues across tools,
// tallies severities, and computes the score and pass/fail signal.
package meta

import "github.com/pxkundu/awdx/internal/types"

// Summary is the aggregate view of one run.
type Summary struct {
	Report *types.Report
	// Issues holds every issue in tool order, then in each tool's own
	// order. Identical issues from different tools are all kept.
	Issues []types.Issue
	Counts map[types.Severity]int
	Score  int
}

// Aggregate flattens and counts the report's issues.
func Aggregate(r *types.Report) *Summary {
	s := &Summary{
		Report: r,
		Counts: make(map[types.Severity]int, len(types.Severities)),
	}
	for _, sev := range types.Severities {
		s.Counts[sev] = 0
	}
	for _, res := range r.Results {
		for _, iss := range res.Issues {
			s.Issues = append(s.Issues, iss)
			s.Counts[iss.Severity]++
		}
	}
	s.Score = Score(s.Counts)
	return s
}

// Total returns the number of issues across all tools.
func (s *Summary) Total() int {
	return len(s.Issues)
}

// Blocking reports whether any HIGH or CRITICAL issue exists, regardless
// of the score.
func (s *Summary) Blocking() bool {
	return s.Counts[types.SeverityCritical]+s.Counts[types.SeverityHigh] > 0
}

// ExitCode is the automation contract: 1 when blocking, 0 otherwise.
func (s *Summary) ExitCode() int {
	if s.Blocking() {
		return 1
	}
	return 0
}

// CriticalIssues returns every HIGH or CRITICAL issue in aggregate order.
func (s *Summary) CriticalIssues() []types.Issue {
	var out []types.Issue
	for _, iss := range s.Issues {
		if iss.Severity.Blocking() {
			out = append(out, iss)
		}
	}
	return out
}

// FailedTools returns the results of tools that could not run.
func (s *Summary) FailedTools() []types.ScanResult {
	var out []types.ScanResult
	for _, res := range s.Report.Results {
		if !res.Success {
			out = append(out, res)
		}
	}
	return out
}
