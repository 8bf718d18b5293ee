// Package types defines the shared data structures (Severity, Issue,
// ScanResult, Report) used across the runner, normalizers, detectors,
// scanner, meta, and output packages to prevent import cycles.
package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Severity represents the urgency of an issue. The numeric order is the
// total order used for sorting and scoring: Critical is highest.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// Severities lists every level from most to least urgent.
var Severities = []Severity{
	SeverityCritical,
	SeverityHigh,
	SeverityMedium,
	SeverityLow,
	SeverityInfo,
}

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "CRITICAL"
	case SeverityHigh:
		return "HIGH"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityLow:
		return "LOW"
	case SeverityInfo:
		return "INFO"
	default:
		return "UNKNOWN"
	}
}

// Blocking reports whether an issue of this severity fails the run.
func (s Severity) Blocking() bool {
	return s >= SeverityHigh
}

// MarshalJSON encodes the severity as its name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts either the name or the numeric level.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		sev, err := ParseSeverity(name)
		if err != nil {
			return err
		}
		*s = sev
		return nil
	}
	n, err := strconv.Atoi(string(data))
	if err != nil || n < int(SeverityInfo) || n > int(SeverityCritical) {
		return fmt.Errorf("invalid severity %s", data)
	}
	*s = Severity(n)
	return nil
}

// ParseSeverity converts a string to a Severity level.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CRITICAL":
		return SeverityCritical, nil
	case "HIGH":
		return SeverityHigh, nil
	case "MEDIUM":
		return SeverityMedium, nil
	case "LOW":
		return SeverityLow, nil
	case "INFO":
		return SeverityInfo, nil
	default:
		return SeverityInfo, fmt.Errorf("unknown severity: %q", s)
	}
}

// Issue categories produced by the built-in tools and detectors.
const (
	CategorySecurityVulnerability   = "SECURITY_VULNERABILITY"
	CategoryDependencyVulnerability = "DEPENDENCY_VULNERABILITY"
	CategoryHardcodedSecret         = "HARDCODED_SECRET"
	CategoryInjection               = "INJECTION_VULNERABILITY"
	CategoryCodeQuality             = "CODE_QUALITY"
	CategoryTypeSafety              = "TYPE_SAFETY"
	CategoryCommandInjection        = "COMMAND_INJECTION"
	CategoryResourceExhaustion      = "RESOURCE_EXHAUSTION"
	CategoryConfigurationSecret     = "CONFIGURATION_SECRET"
)

// Issue is one normalized finding. Severity and Description are always set;
// Line is 0 when the finding has no single line.
type Issue struct {
	RuleID        string   `json:"rule_id,omitempty"`
	Severity      Severity `json:"severity"`
	Category      string   `json:"category"`
	Description   string   `json:"description"`
	FilePath      string   `json:"file_path,omitempty"`
	Line          int      `json:"line_number,omitempty"`
	CodeSnippet   string   `json:"code_snippet,omitempty"`
	FixSuggestion string   `json:"fix_suggestion,omitempty"`
	CWE           string   `json:"cwe_id,omitempty"`
}

// DependencyManifest is the symbolic location of dependency findings, which
// do not map to a single source file.
const DependencyManifest = "dependency manifest"

// HasFile reports whether FilePath names a file rather than a symbolic
// location.
func (i Issue) HasFile() bool {
	return i.FilePath != "" && i.FilePath != DependencyManifest
}

// Location renders "path" or "path:line".
func (i Issue) Location() string {
	if i.Line > 0 {
		return fmt.Sprintf("%s:%d", i.FilePath, i.Line)
	}
	return i.FilePath
}

// ScanResult is the outcome of running one tool or detector. Success=false
// means the tool could not be trusted to have examined the codebase.
type ScanResult struct {
	ToolName     string        `json:"tool_name"`
	Success      bool          `json:"success"`
	Issues       []Issue       `json:"issues"`
	ScanTime     time.Duration `json:"-"`
	ExitCode     int           `json:"exit_code"`
	RawOutput    string        `json:"raw_output"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

// FailedExitCode marks internal failures: timeout, missing binary, or an
// unexpected error inside the tool adapter.
const FailedExitCode = -1

// Failed builds a ScanResult for a tool that could not run.
func Failed(tool string, elapsed time.Duration, msg string) ScanResult {
	return ScanResult{
		ToolName:     tool,
		Success:      false,
		ScanTime:     elapsed,
		ExitCode:     FailedExitCode,
		ErrorMessage: msg,
	}
}

// MarshalJSON serializes ScanTime as seconds.
func (r ScanResult) MarshalJSON() ([]byte, error) {
	type Alias ScanResult
	return json.Marshal(struct {
		Alias
		ScanTime float64 `json:"scan_time"`
	}{
		Alias:    Alias(r),
		ScanTime: r.ScanTime.Seconds(),
	})
}

// Mode selects which tools run.
type Mode int

const (
	ModeComprehensive Mode = iota
	ModeQuick
)

func (m Mode) String() string {
	if m == ModeQuick {
		return "Quick"
	}
	return "Comprehensive"
}

// Report is the state of one run: the ordered results plus timing. It is
// created fresh per invocation and never persisted.
type Report struct {
	Mode      Mode          `json:"-"`
	Root      string        `json:"root"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"-"`
	Results   []ScanResult  `json:"results"`
}

// Result returns the result recorded for the named tool.
func (r *Report) Result(tool string) (ScanResult, bool) {
	for _, res := range r.Results {
		if res.ToolName == tool {
			return res, true
		}
	}
	return ScanResult{}, false
}

// MarshalJSON adds the mode name and the duration in seconds.
func (r Report) MarshalJSON() ([]byte, error) {
	type Alias Report
	return json.Marshal(struct {
		Alias
		Mode     string  `json:"mode"`
		Duration float64 `json:"duration_seconds"`
	}{
		Alias:    Alias(r),
		Mode:     r.Mode.String(),
		Duration: r.Duration.Seconds(),
	})
}
