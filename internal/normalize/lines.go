package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pxkundu/awdx/internal/types"
)

// flake8Line matches "path:line:col: CODE message".
var flake8Line = regexp.MustCompile(`^(.+?):(\d+):(\d+):\s*([A-Z]+\d+)\b\s*(.*)$`)

// Flake8 parses line-oriented lint output. Pyflakes codes (F*, undefined or
// unused symbols) and severe syntax/control codes (E9*, W6*) are MEDIUM;
// everything else is LOW. Lines that do not match are skipped.
func Flake8(output string) []types.Issue {
	var out []types.Issue
	for _, line := range splitLines(output) {
		m := flake8Line.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		lineNum, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		code := m[4]
		out = append(out, types.Issue{
			RuleID:        code,
			Severity:      flake8Severity(code),
			Category:      types.CategoryCodeQuality,
			Description:   strings.TrimSpace(code + " " + m[5]),
			FilePath:      cleanPath(m[1]),
			Line:          lineNum,
			FixSuggestion: "See flake8 documentation for this error code",
		})
	}
	return out
}

func flake8Severity(code string) types.Severity {
	switch {
	case strings.HasPrefix(code, "F"):
		return types.SeverityMedium
	case strings.HasPrefix(code, "E9"), strings.HasPrefix(code, "W6"):
		return types.SeverityMedium
	default:
		return types.SeverityLow
	}
}

// mypyLine matches "path:line[:col]: error: message [code]".
var mypyLine = regexp.MustCompile(`^(.+?):(\d+)(?::\d+)?:\s*error:\s*(.*?)(?:\s+\[([a-z0-9-]+)\])?\s*$`)

// Mypy parses type-checker output into advisory LOW issues. Notes, warnings,
// and the trailing summary line are skipped.
func Mypy(output string) []types.Issue {
	var out []types.Issue
	for _, line := range splitLines(output) {
		m := mypyLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		lineNum, err := strconv.Atoi(m[2])
		if err != nil || m[3] == "" {
			continue
		}
		out = append(out, types.Issue{
			RuleID:        m[4],
			Severity:      types.SeverityLow,
			Category:      types.CategoryTypeSafety,
			Description:   m[3],
			FilePath:      cleanPath(m[1]),
			Line:          lineNum,
			FixSuggestion: "Add proper type hints",
		})
	}
	return out
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Split(s, "\n")
}
