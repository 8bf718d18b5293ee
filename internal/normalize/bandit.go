// Package normalize translates the raw output of each external analyzer
// into the common Issue schema. Normalizers are pure functions: they never
// touch the filesystem or the process, and malformed input never aborts
// parsing of the remainder.
package normalize

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pxkundu/awdx/internal/types"
)

type banditJSON struct {
	Results []struct {
		Code          string `json:"code"`
		Filename      string `json:"filename"`
		IssueSeverity string `json:"issue_severity"`
		IssueText     string `json:"issue_text"`
		IssueCWE      struct {
			ID any `json:"id"`
		} `json:"issue_cwe"`
		LineNumber int    `json:"line_number"`
		MoreInfo   string `json:"more_info"`
		TestID     string `json:"test_id"`
	} `json:"results"`
}

// Bandit parses a bandit JSON report. Severity is copied from bandit's own
// HIGH/MEDIUM/LOW classification; anything else becomes LOW.
func Bandit(data []byte) ([]types.Issue, error) {
	var doc banditJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing bandit report: %w", err)
	}

	out := make([]types.Issue, 0, len(doc.Results))
	for _, r := range doc.Results {
		out = append(out, types.Issue{
			RuleID:        r.TestID,
			Severity:      banditSeverity(r.IssueSeverity),
			Category:      types.CategorySecurityVulnerability,
			Description:   firstNonEmpty(r.IssueText, "Unknown issue"),
			FilePath:      cleanPath(r.Filename),
			Line:          safeLine(r.LineNumber),
			CodeSnippet:   strings.TrimRight(r.Code, "\n"),
			FixSuggestion: "See: " + r.MoreInfo,
			CWE:           cweID(r.IssueCWE.ID),
		})
	}
	return out, nil
}

func banditSeverity(s string) types.Severity {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HIGH":
		return types.SeverityHigh
	case "MEDIUM":
		return types.SeverityMedium
	default:
		return types.SeverityLow
	}
}

// cweID renders a CWE reference that may arrive as a number or a string.
func cweID(v any) string {
	switch t := v.(type) {
	case float64:
		if t > 0 {
			return fmt.Sprintf("CWE-%d", int(t))
		}
	case string:
		t = strings.TrimSpace(t)
		if t == "" {
			return ""
		}
		if strings.HasPrefix(strings.ToUpper(t), "CWE-") {
			return t
		}
		return "CWE-" + t
	}
	return ""
}

func cleanPath(p string) string {
	p = filepath.ToSlash(strings.TrimSpace(p))
	return strings.TrimPrefix(p, "./")
}

func safeLine(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}
