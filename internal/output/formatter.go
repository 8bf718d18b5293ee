// Package output formats scan summaries for the terminal (ANSI), Markdown,
// JSON, SARIF, and HTML, and reports per-tool progress while a scan runs.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/pxkundu/awdx/internal/meta"
	"github.com/pxkundu/awdx/internal/types"
)

// ToolVersion is the awdx-scan version stamped into reports.
var ToolVersion = "dev"

// Formatter is the interface for outputting scan summaries.
type Formatter interface {
	Format(w io.Writer, s *meta.Summary) error
}

// Formats lists the accepted --format values.
var Formats = []string{"terminal", "markdown", "json", "sarif", "html"}

// New returns the formatter for the named format.
func New(format string, noColor bool) (Formatter, error) {
	switch strings.ToLower(format) {
	case "", "terminal":
		return &TerminalFormatter{NoColor: noColor}, nil
	case "markdown", "md":
		return &MarkdownFormatter{}, nil
	case "json":
		return &JSONFormatter{}, nil
	case "sarif":
		return &SARIFFormatter{}, nil
	case "html":
		return &HTMLFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

// status classifies one tool result.
type status int

const (
	statusPassed status = iota
	statusIssues
	statusFailed
)

func statusOf(res types.ScanResult) status {
	switch {
	case !res.Success:
		return statusFailed
	case len(res.Issues) > 0:
		return statusIssues
	default:
		return statusPassed
	}
}

// countBySeverity tallies one tool's issues.
func countBySeverity(issues []types.Issue) map[types.Severity]int {
	counts := map[types.Severity]int{}
	for _, iss := range issues {
		counts[iss.Severity]++
	}
	return counts
}

// severityBreakdown renders "1 HIGH | 2 LOW", most urgent first.
func severityBreakdown(issues []types.Issue) string {
	counts := countBySeverity(issues)
	var parts []string
	for _, sev := range types.Severities {
		if c := counts[sev]; c > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", c, sev))
		}
	}
	return strings.Join(parts, " | ")
}
