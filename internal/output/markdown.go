package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/pxkundu/awdx/internal/meta"
	"github.com/pxkundu/awdx/internal/types"
)

// maxIssuesPerTool bounds the per-tool issue list. The critical section is
// never truncated.
const maxIssuesPerTool = 10

// generatedLayout is the timestamp format of the report header.
const generatedLayout = "2006-01-02 15:04:05"

// MarkdownFormatter renders the full report. Output depends only on the
// summary, so identical input yields identical bytes.
type MarkdownFormatter struct{}

func (f *MarkdownFormatter) Format(w io.Writer, s *meta.Summary) error {
	var b strings.Builder
	f.writeHeader(&b, s)
	f.writeExecutiveSummary(&b, s)
	f.writeToolSections(&b, s)
	f.writeCritical(&b, s)
	f.writeRecommendations(&b, s)
	fmt.Fprintf(&b, "\n---\n*Generated by AWDX Security Scanner v%s*\n", strings.TrimPrefix(ToolVersion, "v"))
	_, err := io.WriteString(w, b.String())
	return err
}

func (f *MarkdownFormatter) writeHeader(b *strings.Builder, s *meta.Summary) {
	r := s.Report
	b.WriteString("# 🔒 AWDX Security Scan Report\n")
	fmt.Fprintf(b, "**Generated**: %s  \n", r.StartedAt.Format(generatedLayout))
	fmt.Fprintf(b, "**Scan Mode**: %s  \n", r.Mode)
	fmt.Fprintf(b, "**Total Scan Time**: %.2f seconds  \n", r.Duration.Seconds())
	if r.Root != "" {
		fmt.Fprintf(b, "**Project**: `%s`  \n", r.Root)
	}
	b.WriteString("\n")
}

func (f *MarkdownFormatter) writeExecutiveSummary(b *strings.Builder, s *meta.Summary) {
	b.WriteString("## 📊 Executive Summary\n\n")
	fmt.Fprintf(b, "**Security Score**: %d/100\n\n", s.Score)
	b.WriteString("| Severity | Count |\n")
	b.WriteString("|----------|-------|\n")
	for _, sev := range types.Severities {
		fmt.Fprintf(b, "| %s %s | %d |\n", severityEmoji(sev), severityLabel(sev), s.Counts[sev])
	}
	b.WriteString("\n## 🛠️ Scan Results\n\n")
}

func (f *MarkdownFormatter) writeToolSections(b *strings.Builder, s *meta.Summary) {
	for _, res := range s.Report.Results {
		fmt.Fprintf(b, "### %s - %s\n", strings.ToUpper(res.ToolName), markdownStatus(res))
		fmt.Fprintf(b, "**Scan time**: %.2fs  \n", res.ScanTime.Seconds())
		fmt.Fprintf(b, "**Issues found**: %d  \n", len(res.Issues))
		if !res.Success && res.ErrorMessage != "" {
			fmt.Fprintf(b, "**Error**: %s  \n", singleLine(res.ErrorMessage))
		}

		if len(res.Issues) > 0 {
			b.WriteString("\n**Issues:**\n")
			shown := res.Issues[:min(len(res.Issues), maxIssuesPerTool)]
			for _, iss := range shown {
				fmt.Fprintf(b, "- **%s**: %s\n", iss.Severity, iss.Description)
				if iss.FilePath != "" {
					fmt.Fprintf(b, "  - File: `%s`", iss.FilePath)
					if iss.Line > 0 {
						fmt.Fprintf(b, ":%d", iss.Line)
					}
					b.WriteString("\n")
				}
				if iss.FixSuggestion != "" {
					fmt.Fprintf(b, "  - Fix: %s\n", iss.FixSuggestion)
				}
			}
			if rest := len(res.Issues) - len(shown); rest > 0 {
				fmt.Fprintf(b, "  - ... and %d more issues\n", rest)
			}
		}
		b.WriteString("\n")
	}
}

func (f *MarkdownFormatter) writeCritical(b *strings.Builder, s *meta.Summary) {
	critical := s.CriticalIssues()
	if len(critical) == 0 {
		return
	}
	b.WriteString("## 🚨 Critical Issues Requiring Immediate Attention\n\n")
	for _, iss := range critical {
		fmt.Fprintf(b, "### %s: %s\n", iss.Severity, iss.Description)
		fmt.Fprintf(b, "**File**: `%s`", iss.FilePath)
		if iss.Line > 0 {
			fmt.Fprintf(b, ":%d", iss.Line)
		}
		b.WriteString("\n")
		if iss.CodeSnippet != "" {
			fmt.Fprintf(b, "```python\n%s\n```\n", iss.CodeSnippet)
		}
		if iss.FixSuggestion != "" {
			fmt.Fprintf(b, "**Fix**: %s\n", iss.FixSuggestion)
		}
		b.WriteString("\n")
	}
}

func (f *MarkdownFormatter) writeRecommendations(b *strings.Builder, s *meta.Summary) {
	b.WriteString("## 🚀 Recommendations\n\n")
	if s.Counts[types.SeverityCritical] > 0 {
		b.WriteString("- 🚨 **URGENT**: Fix critical security vulnerabilities before deployment\n")
	}
	if s.Counts[types.SeverityHigh] > 0 {
		b.WriteString("- ⚠️ **HIGH PRIORITY**: Address high severity issues\n")
	}
	if s.Counts[types.SeverityMedium] > 0 {
		b.WriteString("- 📋 **MEDIUM PRIORITY**: Review and fix medium severity issues\n")
	}
	if failed := s.FailedTools(); len(failed) > 0 {
		names := make([]string, 0, len(failed))
		for _, res := range failed {
			names = append(names, res.ToolName)
		}
		fmt.Fprintf(b, "- 🔧 **TOOLING**: Re-run after fixing failed scans (%s)\n", strings.Join(names, ", "))
	}
	if s.Total() == 0 {
		b.WriteString("- ✅ **All clear**: No security issues found!\n")
	}
}

func markdownStatus(res types.ScanResult) string {
	switch statusOf(res) {
	case statusFailed:
		return "❌ FAILED"
	case statusIssues:
		return "⚠️ ISSUES FOUND"
	default:
		return "✅ PASSED"
	}
}

func severityEmoji(sev types.Severity) string {
	switch sev {
	case types.SeverityCritical:
		return "🔴"
	case types.SeverityHigh:
		return "🟠"
	case types.SeverityMedium:
		return "🟡"
	case types.SeverityLow:
		return "🔵"
	default:
		return "ℹ️"
	}
}

// severityLabel is the title-cased severity name used in the summary table.
func severityLabel(sev types.Severity) string {
	name := sev.String()
	return name[:1] + strings.ToLower(name[1:])
}

func singleLine(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "\n", " ")), " ")
}
