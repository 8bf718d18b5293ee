package meta

import "github.com/pxkundu/awdx/internal/types"

// MaxScore is the score of a run with no issues.
const MaxScore = 100

// severityPenalty is subtracted from MaxScore once per issue.
var severityPenalty = map[types.Severity]int{
	types.SeverityCritical: 20,
	types.SeverityHigh:     10,
	types.SeverityMedium:   5,
	types.SeverityLow:      2,
	types.SeverityInfo:     1,
}

// Penalty returns the score deduction for one issue of severity s.
func Penalty(s types.Severity) int {
	return severityPenalty[s]
}

// Score computes the security score from per-severity counts, floored at 0.
func Score(counts map[types.Severity]int) int {
	score := MaxScore
	for sev, n := range counts {
		score -= severityPenalty[sev] * n
	}
	return max(score, 0)
}
