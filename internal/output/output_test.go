package output_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pxkundu/awdx/internal/meta"
	"github.com/pxkundu/awdx/internal/output"
	"github.com/pxkundu/awdx/internal/scanner"
	"github.com/pxkundu/awdx/internal/types"
)

var startedAt = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func summaryOf(mode types.Mode, results ...types.ScanResult) *meta.Summary {
	return meta.Aggregate(&types.Report{
		Mode:      mode,
		Root:      "/work/project",
		StartedAt: startedAt,
		Duration:  3210 * time.Millisecond,
		Results:   results,
	})
}

func passed(tool string) types.ScanResult {
	return types.ScanResult{ToolName: tool, Success: true, ScanTime: 120 * time.Millisecond}
}

func withIssues(tool string, issues ...types.Issue) types.ScanResult {
	res := passed(tool)
	res.Issues = issues
	return res
}

func highIssue(i int) types.Issue {
	return types.Issue{
		RuleID:        "B602",
		Severity:      types.SeverityHigh,
		Category:      types.CategorySecurityVulnerability,
		Description:   fmt.Sprintf("shell=True call %d", i),
		FilePath:      "src/app/run.py",
		Line:          i + 1,
		CodeSnippet:   "subprocess.call(cmd, shell=True)",
		FixSuggestion: "See: https://bandit.readthedocs.io/en/latest/plugins/b602.html",
	}
}

func passwordIssue() types.Issue {
	return types.Issue{
		RuleID:        "SECRET_006",
		Severity:      types.SeverityHigh,
		Category:      types.CategoryHardcodedSecret,
		Description:   "Potential Hardcoded Password found",
		FilePath:      "src/app/settings.py",
		Line:          3,
		CodeSnippet:   `password = "hunter2hunter2"`,
		FixSuggestion: "Move to environment variables or secure configuration",
	}
}

func format(t *testing.T, f output.Formatter, s *meta.Summary) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, s))
	return buf.String()
}

func TestMarkdownFormatterHeaderAndScore(t *testing.T) {
	s := summaryOf(types.ModeQuick,
		passed("bandit"),
		passed("safety"),
		withIssues("secret_scanner", passwordIssue()),
		passed("injection_scanner"),
	)
	out := format(t, &output.MarkdownFormatter{}, s)

	require.Contains(t, out, "# 🔒 AWDX Security Scan Report")
	require.Contains(t, out, "**Generated**: 2025-03-14 09:30:00")
	require.Contains(t, out, "**Scan Mode**: Quick")
	require.Contains(t, out, "**Total Scan Time**: 3.21 seconds")
	require.Contains(t, out, "**Security Score**: 90/100")
	require.Contains(t, out, "| 🟠 High | 1 |")
	require.Contains(t, out, "| 🔴 Critical | 0 |")
	require.Contains(t, out, "### BANDIT - ✅ PASSED")
	require.Contains(t, out, "### SECRET_SCANNER - ⚠️ ISSUES FOUND")
	require.Contains(t, out, "- **HIGH**: Potential Hardcoded Password found")
	require.Contains(t, out, "  - File: `src/app/settings.py`:3")
	require.Contains(t, out, "## 🚨 Critical Issues Requiring Immediate Attention")
	require.Equal(t, 1, strings.Count(out, "### HIGH: "))
	require.Contains(t, out, "```python\npassword = \"hunter2hunter2\"\n```")
	require.Contains(t, out, "- ⚠️ **HIGH PRIORITY**: Address high severity issues")
	require.NotContains(t, out, "All clear")
	require.Contains(t, out, "*Generated by AWDX Security Scanner v")
}

func TestMarkdownFormatterTruncatesToolSections(t *testing.T) {
	issues := make([]types.Issue, 15)
	for i := range issues {
		issues[i] = highIssue(i)
	}
	s := summaryOf(types.ModeComprehensive, withIssues("bandit", issues...))
	out := format(t, &output.MarkdownFormatter{}, s)

	toolSection := out[strings.Index(out, "### BANDIT"):strings.Index(out, "## 🚨")]
	require.Equal(t, 10, strings.Count(toolSection, "- **HIGH**:"))
	require.Contains(t, toolSection, "  - ... and 5 more issues")
	require.Contains(t, toolSection, "**Issues found**: 15")

	critical := out[strings.Index(out, "## 🚨"):]
	require.Equal(t, 15, strings.Count(critical, "### HIGH: "), "critical section is never truncated")
	require.Contains(t, critical, "shell=True call 14")
}

func TestMarkdownFormatterFailedTool(t *testing.T) {
	failed := types.Failed("safety", 2*time.Second, "safety not found. Install with: pip install safety")
	s := summaryOf(types.ModeQuick, passed("bandit"), failed)
	out := format(t, &output.MarkdownFormatter{}, s)

	require.Contains(t, out, "### SAFETY - ❌ FAILED")
	require.Contains(t, out, "**Error**: safety not found. Install with: pip install safety")
	require.Contains(t, out, "**TOOLING**")
	require.Contains(t, out, "**Security Score**: 100/100")
	require.Contains(t, out, "- ✅ **All clear**: No security issues found!")
}

func TestMarkdownFormatterNoIssues(t *testing.T) {
	s := summaryOf(types.ModeComprehensive, passed("bandit"), passed("mypy"))
	out := format(t, &output.MarkdownFormatter{}, s)

	require.Contains(t, out, "**Scan Mode**: Comprehensive")
	require.NotContains(t, out, "Critical Issues Requiring Immediate Attention")
	require.Contains(t, out, "- ✅ **All clear**: No security issues found!")
}

func TestMarkdownFormatterRecommendations(t *testing.T) {
	crit := highIssue(0)
	crit.Severity = types.SeverityCritical
	med := highIssue(1)
	med.Severity = types.SeverityMedium
	s := summaryOf(types.ModeComprehensive, withIssues("bandit", crit, med))
	out := format(t, &output.MarkdownFormatter{}, s)

	require.Contains(t, out, "**URGENT**")
	require.Contains(t, out, "**MEDIUM PRIORITY**")
	require.NotContains(t, out, "**HIGH PRIORITY**")
	require.Contains(t, out, "### CRITICAL: shell=True call 0")
	require.NotContains(t, out, "### MEDIUM: ")
}

func TestMarkdownFormatterDeterministic(t *testing.T) {
	s := summaryOf(types.ModeQuick, withIssues("secret_scanner", passwordIssue()), passed("bandit"))
	first := format(t, &output.MarkdownFormatter{}, s)
	second := format(t, &output.MarkdownFormatter{}, s)
	require.Equal(t, first, second)
}

func TestTerminalFormatterTable(t *testing.T) {
	failed := types.Failed("safety", time.Second, "safety timed out after 5m0s")
	s := summaryOf(types.ModeQuick,
		passed("bandit"),
		failed,
		withIssues("secret_scanner", passwordIssue()),
	)
	out := format(t, &output.TerminalFormatter{NoColor: true}, s)

	require.Contains(t, out, "AWDX SECURITY SCAN SUMMARY")
	require.Contains(t, out, "Score: 90/100")
	require.Contains(t, out, "BANDIT")
	require.Contains(t, out, "PASSED")
	require.Contains(t, out, "FAILED")
	require.Contains(t, out, "N/A")
	require.Contains(t, out, "ISSUES")
	require.Contains(t, out, "safety timed out after 5m0s")
	require.Contains(t, out, "CRITICAL: 1 high/critical issues found!")
	require.Contains(t, out, "Not ready for production deployment")
	require.NotContains(t, out, "\033[")
}

func TestTerminalFormatterVerdicts(t *testing.T) {
	low := highIssue(0)
	low.Severity = types.SeverityLow

	out := format(t, &output.TerminalFormatter{NoColor: true},
		summaryOf(types.ModeQuick, withIssues("flake8", low, low)))
	require.Contains(t, out, "2 issues found (low/medium severity)")
	require.Contains(t, out, "Ready for production with recommendations")

	out = format(t, &output.TerminalFormatter{NoColor: true}, summaryOf(types.ModeQuick, passed("bandit")))
	require.Contains(t, out, "All security scans passed!")
}

func TestTerminalFormatterVerbose(t *testing.T) {
	s := summaryOf(types.ModeQuick, withIssues("secret_scanner", passwordIssue()))

	out := format(t, &output.TerminalFormatter{NoColor: true, Verbose: true}, s)
	require.Contains(t, out, "HIGH/CRITICAL (1)")
	require.Contains(t, out, "src/app/settings.py:3")
	require.Contains(t, out, "Move to environment variables")

	out = format(t, &output.TerminalFormatter{NoColor: true}, s)
	require.NotContains(t, out, "HIGH/CRITICAL")
}

func TestTerminalFormatterColor(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	out := format(t, &output.TerminalFormatter{}, summaryOf(types.ModeQuick, passed("bandit")))
	require.Contains(t, out, "\033[")

	t.Setenv("NO_COLOR", "1")
	out = format(t, &output.TerminalFormatter{}, summaryOf(types.ModeQuick, passed("bandit")))
	require.NotContains(t, out, "\033[")
}

func TestJSONFormatter(t *testing.T) {
	s := summaryOf(types.ModeQuick, withIssues("secret_scanner", passwordIssue()), passed("bandit"))
	out := format(t, &output.JSONFormatter{}, s)

	var decoded struct {
		Mode     string         `json:"mode"`
		Score    int            `json:"security_score"`
		Total    int            `json:"total_issues"`
		Counts   map[string]int `json:"severity_counts"`
		Blocking bool           `json:"blocking"`
		ExitCode int            `json:"exit_code"`
		Results  []struct {
			ToolName string        `json:"tool_name"`
			ScanTime float64       `json:"scan_time"`
			Issues   []types.Issue `json:"issues"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Equal(t, "Quick", decoded.Mode)
	require.Equal(t, 90, decoded.Score)
	require.Equal(t, 1, decoded.Total)
	require.Equal(t, 1, decoded.Counts["HIGH"])
	require.Equal(t, 0, decoded.Counts["CRITICAL"])
	require.True(t, decoded.Blocking)
	require.Equal(t, 1, decoded.ExitCode)
	require.Len(t, decoded.Results, 2)
	require.Equal(t, "secret_scanner", decoded.Results[0].ToolName)
	require.InDelta(t, 0.12, decoded.Results[0].ScanTime, 0.001)
	require.Equal(t, types.SeverityHigh, decoded.Results[0].Issues[0].Severity)
}

func TestSARIFFormatter(t *testing.T) {
	dep := types.Issue{
		RuleID:      "58755",
		Severity:    types.SeverityHigh,
		Category:    types.CategoryDependencyVulnerability,
		Description: "Vulnerable dependency: requests 2.19.0 (CVE-2023-32681)",
		FilePath:    types.DependencyManifest,
	}
	noRule := types.Issue{
		Severity:    types.SeverityLow,
		Category:    types.CategoryResourceExhaustion,
		Description: "subprocess.run without timeout protection",
		FilePath:    "src/awdx/ai_engine/exec.py",
		Line:        4,
	}
	s := summaryOf(types.ModeComprehensive,
		withIssues("secret_scanner", passwordIssue(), passwordIssue()),
		withIssues("safety", dep),
		withIssues("custom_security", noRule),
		types.Failed("mypy", time.Second, "mypy not found"),
	)
	out := format(t, &output.SARIFFormatter{}, s)

	var log struct {
		Version string `json:"version"`
		Runs    []struct {
			Tool struct {
				Driver struct {
					Name  string `json:"name"`
					Rules []struct {
						ID string `json:"id"`
					} `json:"rules"`
				} `json:"driver"`
			} `json:"tool"`
			Invocations []struct {
				ExecutionSuccessful bool `json:"executionSuccessful"`
			} `json:"invocations"`
			Results []struct {
				RuleID    string `json:"ruleId"`
				Level     string `json:"level"`
				Locations []struct {
					PhysicalLocation struct {
						Region struct {
							StartLine int `json:"startLine"`
						} `json:"region"`
					} `json:"physicalLocation"`
				} `json:"locations"`
			} `json:"results"`
		} `json:"runs"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &log))
	require.Equal(t, "2.1.0", log.Version)
	require.Len(t, log.Runs, 4)

	secrets := log.Runs[0]
	require.Equal(t, "secret_scanner", secrets.Tool.Driver.Name)
	require.Len(t, secrets.Tool.Driver.Rules, 1, "rules are unique per run")
	require.Len(t, secrets.Results, 2)
	require.Equal(t, "error", secrets.Results[0].Level)

	require.Empty(t, log.Runs[1].Results[0].Locations, "symbolic locations are omitted")
	require.Equal(t, 4, log.Runs[2].Results[0].Locations[0].PhysicalLocation.Region.StartLine)
	require.Equal(t, types.CategoryResourceExhaustion, log.Runs[2].Results[0].RuleID)
	require.Equal(t, "note", log.Runs[2].Results[0].Level)
	require.False(t, log.Runs[3].Invocations[0].ExecutionSuccessful)
	require.Empty(t, log.Runs[3].Results)
}

func TestHTMLFormatter(t *testing.T) {
	evil := passwordIssue()
	evil.Description = "Potential <script>alert(1)</script> found"
	s := summaryOf(types.ModeQuick, withIssues("secret_scanner", evil))
	out := format(t, &output.HTMLFormatter{}, s)

	require.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	require.Contains(t, out, "<title>AWDX Security Scan Report (90/100)</title>")
	require.Contains(t, out, "<h1>")
	require.Contains(t, out, "<table>")
	require.Contains(t, out, "<code>src/app/settings.py</code>")
	require.NotContains(t, out, "<script>")
}

func TestNewFormatter(t *testing.T) {
	for _, name := range output.Formats {
		f, err := output.New(name, true)
		require.NoError(t, err, name)
		require.NotNil(t, f)
	}
	f, err := output.New("", false)
	require.NoError(t, err)
	require.IsType(t, &output.TerminalFormatter{}, f)

	_, err = output.New("xml", false)
	require.ErrorContains(t, err, `unknown format "xml"`)
}

type namedTool struct{ name, title string }

func (n namedTool) Name() string  { return n.name }
func (n namedTool) Title() string { return n.title }
func (n namedTool) Run(context.Context, *scanner.Project) (types.ScanResult, error) {
	return types.ScanResult{ToolName: n.name, Success: true}, nil
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	p := output.NewProgress(&buf, false, true)

	bandit := namedTool{"bandit", "Security Vulnerabilities"}
	p.ToolStarted(bandit, 0, 3)
	p.ToolFinished(bandit, passed("bandit"), 0, 3)

	secrets := namedTool{"secret_scanner", "Secret Detection"}
	low := passwordIssue()
	low.Severity = types.SeverityLow
	p.ToolStarted(secrets, 1, 3)
	p.ToolFinished(secrets, withIssues("secret_scanner", passwordIssue(), low, low), 1, 3)

	safety := namedTool{"safety", "Dependency Vulnerabilities"}
	p.ToolStarted(safety, 2, 3)
	p.ToolFinished(safety, types.Failed("safety", 0, "safety not found. Install with: pip install safety"), 2, 3)

	out := buf.String()
	require.Contains(t, out, "[1/3] Security Vulnerabilities: No issues found")
	require.Contains(t, out, "[2/3] Secret Detection: 1 HIGH | 2 LOW")
	require.Contains(t, out, "[3/3] Dependency Vulnerabilities: Scan failed")
	require.Contains(t, out, "Error: safety not found. Install with: pip install safety")
}
