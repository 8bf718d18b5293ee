package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/pxkundu/awdx/internal/meta"
	"github.com/pxkundu/awdx/internal/types"
)

// ANSI color codes
const (
	reset     = "\033[0m"
	bold      = "\033[1m"
	dim       = "\033[2m"
	underline = "\033[4m"
	red       = "\033[31m"
	green     = "\033[32m"
	yellow    = "\033[33m"
	blue      = "\033[34m"
	cyan      = "\033[36m"
)

const (
	lineWidth    = 72
	toolWidth    = 20
	statusWidth  = 8
	previewWidth = 60
)

// TerminalFormatter prints the run summary table and the overall verdict.
// Verbose adds the HIGH and CRITICAL issues under the table.
type TerminalFormatter struct {
	NoColor bool
	Verbose bool
}

func (f *TerminalFormatter) color(code, text string) string {
	if f.NoColor {
		return text
	}
	return code + text + reset
}

func (f *TerminalFormatter) Format(w io.Writer, s *meta.Summary) error {
	if os.Getenv("NO_COLOR") != "" {
		f.NoColor = true
	}

	f.printHeader(w, s)
	f.printTable(w, s)
	f.printFailures(w, s)
	if f.Verbose {
		f.printCritical(w, s)
	}
	f.printVerdict(w, s)
	return nil
}

func (f *TerminalFormatter) separator() string {
	return strings.Repeat("─", lineWidth)
}

func (f *TerminalFormatter) sectionHeader(title string) string {
	prefix := "── " + title + " "
	remaining := max(lineWidth-utf8.RuneCountInString(prefix), 0)
	return prefix + strings.Repeat("─", remaining)
}

func (f *TerminalFormatter) printHeader(w io.Writer, s *meta.Summary) {
	sep := f.separator()
	r := s.Report
	fmt.Fprintf(w, "\n%s\n", f.color(dim, sep))
	fmt.Fprintf(w, "  %s\n", f.color(bold, "AWDX SECURITY SCAN SUMMARY"))

	parts := []string{
		fmt.Sprintf("Mode: %s", r.Mode),
		fmt.Sprintf("%d tools", len(r.Results)),
	}
	if r.Duration > 0 {
		parts = append(parts, fmt.Sprintf("%.2fs", r.Duration.Seconds()))
	}
	parts = append(parts, fmt.Sprintf("Score: %d/%d", s.Score, meta.MaxScore))
	fmt.Fprintf(w, "  %s\n", strings.Join(parts, "  ·  "))
	fmt.Fprintf(w, "%s\n", f.color(dim, sep))
}

func (f *TerminalFormatter) printTable(w io.Writer, s *meta.Summary) {
	fmt.Fprintf(w, "\n  %s\n", f.color(bold, fmt.Sprintf("%-*s %-*s %6s %9s",
		toolWidth, "TOOL", statusWidth, "STATUS", "ISSUES", "TIME")))

	for _, res := range s.Report.Results {
		name := fmt.Sprintf("%-*s", toolWidth, truncate(strings.ToUpper(res.ToolName), toolWidth))
		issues := "N/A"
		if res.Success {
			issues = fmt.Sprintf("%d", len(res.Issues))
		}
		fmt.Fprintf(w, "  %s %s %6s %9s\n",
			f.color(cyan, name),
			f.statusCell(res),
			issues,
			f.color(dim, fmt.Sprintf("%.2fs", res.ScanTime.Seconds())),
		)
	}
}

func (f *TerminalFormatter) statusCell(res types.ScanResult) string {
	var label, code string
	switch statusOf(res) {
	case statusFailed:
		label, code = "FAILED", red+bold
	case statusIssues:
		label, code = "ISSUES", yellow
	default:
		label, code = "PASSED", green
	}
	return f.color(code, fmt.Sprintf("%-*s", statusWidth, label))
}

func (f *TerminalFormatter) printFailures(w io.Writer, s *meta.Summary) {
	failed := s.FailedTools()
	if len(failed) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", f.color(bold, f.sectionHeader("FAILED TOOLS")))
	for _, res := range failed {
		fmt.Fprintf(w, "  %s %s %s\n",
			f.color(red+bold, "✖"),
			f.color(bold, strings.ToUpper(res.ToolName)),
			f.color(dim, truncate(res.ErrorMessage, previewWidth)),
		)
	}
}

func (f *TerminalFormatter) printCritical(w io.Writer, s *meta.Summary) {
	critical := s.CriticalIssues()
	if len(critical) == 0 {
		return
	}
	title := fmt.Sprintf("HIGH/CRITICAL (%d)", len(critical))
	fmt.Fprintf(w, "\n%s\n", f.color(bold, f.sectionHeader(title)))
	for _, iss := range critical {
		fmt.Fprintf(w, "\n    %s %s %s\n",
			f.severityIcon(iss.Severity),
			f.color(bold, truncate(iss.Description, previewWidth)),
			f.color(cyan+underline, iss.Location()),
		)
		if iss.CodeSnippet != "" {
			fmt.Fprintf(w, "      %s %s\n", f.color(dim, "│"), f.color(dim, truncate(iss.CodeSnippet, previewWidth)))
		}
		if iss.FixSuggestion != "" {
			fmt.Fprintf(w, "      %s %s\n", f.color(dim, "│"), f.color(yellow, iss.FixSuggestion))
		}
	}
}

func (f *TerminalFormatter) printVerdict(w io.Writer, s *meta.Summary) {
	blocking := s.Counts[types.SeverityCritical] + s.Counts[types.SeverityHigh]
	fmt.Fprintln(w)
	switch {
	case blocking > 0:
		fmt.Fprintf(w, "  %s\n", f.color(red+bold, fmt.Sprintf("CRITICAL: %d high/critical issues found!", blocking)))
		fmt.Fprintf(w, "  %s\n", f.color(red, "Not ready for production deployment"))
	case s.Total() > 0:
		fmt.Fprintf(w, "  %s\n", f.color(yellow, fmt.Sprintf("%d issues found (low/medium severity)", s.Total())))
		fmt.Fprintf(w, "  %s\n", f.color(green, "Ready for production with recommendations"))
	default:
		fmt.Fprintf(w, "  %s\n", f.color(green+bold, "All security scans passed!"))
		fmt.Fprintf(w, "  %s\n", f.color(green, "Ready for production deployment"))
	}
	fmt.Fprintf(w, "%s\n", f.color(dim, f.separator()))
}

func (f *TerminalFormatter) severityIcon(sev types.Severity) string {
	switch sev {
	case types.SeverityCritical:
		return f.color(red+bold, "✖")
	case types.SeverityHigh:
		return f.color(red, "▲")
	case types.SeverityMedium:
		return f.color(yellow, "■")
	case types.SeverityLow:
		return f.color(blue, "●")
	case types.SeverityInfo:
		return f.color(cyan, "○")
	default:
		return "?"
	}
}

func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\t", " ")
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	r := []rune(s)
	return string(r[:maxLen-3]) + "..."
}
