package output

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/pxkundu/awdx/internal/meta"
	"github.com/pxkundu/awdx/internal/types"
)

// SARIFFormatter outputs issues in SARIF 2.1.0 format for GitHub Code Scanning.
// Each tool that ran becomes its own SARIF run.
type SARIFFormatter struct{}

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool        sarifTool         `json:"tool"`
	Invocations []sarifInvocation `json:"invocations"`
	Results     []sarifResult     `json:"results"`
	Properties  map[string]any    `json:"properties,omitempty"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string              `json:"id"`
	Name             string              `json:"name"`
	ShortDescription sarifMessage        `json:"shortDescription"`
	Help             *sarifMessage       `json:"help,omitempty"`
	DefaultConfig    sarifDefaultConfig  `json:"defaultConfiguration"`
	Properties       sarifRuleProperties `json:"properties"`
}

type sarifDefaultConfig struct {
	Level string `json:"level"`
}

type sarifRuleProperties struct {
	Tags []string `json:"tags,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifInvocation struct {
	ExecutionSuccessful bool                `json:"executionSuccessful"`
	ExitCode            int                 `json:"exitCode"`
	Notifications       []sarifNotification `json:"toolExecutionNotifications,omitempty"`
}

type sarifNotification struct {
	Level   string       `json:"level"`
	Message sarifMessage `json:"message"`
}

type sarifResult struct {
	RuleID     string          `json:"ruleId"`
	RuleIndex  int             `json:"ruleIndex"`
	Level      string          `json:"level"`
	Message    sarifMessage    `json:"message"`
	Locations  []sarifLocation `json:"locations,omitempty"`
	Properties map[string]any  `json:"properties,omitempty"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int           `json:"startLine"`
	Snippet   *sarifMessage `json:"snippet,omitempty"`
}

func (f *SARIFFormatter) Format(w io.Writer, s *meta.Summary) error {
	runs := make([]sarifRun, 0, len(s.Report.Results))
	for _, res := range s.Report.Results {
		runs = append(runs, sarifRunFor(res))
	}

	log := sarifLog{
		Schema:  "https://docs.oasis-open.org/sarif/sarif/v2.1.0/sarif-schema-2.1.0.json",
		Version: "2.1.0",
		Runs:    runs,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(log)
}

func sarifRunFor(res types.ScanResult) sarifRun {
	ruleIndex := map[string]int{}
	rules := []sarifRule{}
	results := []sarifResult{}

	for _, iss := range res.Issues {
		id := sarifRuleID(iss)
		if _, ok := ruleIndex[id]; !ok {
			ruleIndex[id] = len(rules)
			rule := sarifRule{
				ID:               id,
				Name:             id,
				ShortDescription: sarifMessage{Text: iss.Description},
				DefaultConfig:    sarifDefaultConfig{Level: severityToLevel(iss.Severity)},
				Properties:       sarifRuleProperties{Tags: sarifTags(iss)},
			}
			if iss.FixSuggestion != "" {
				rule.Help = &sarifMessage{Text: iss.FixSuggestion}
			}
			rules = append(rules, rule)
		}

		region := sarifRegion{StartLine: max(iss.Line, 1)}
		if iss.CodeSnippet != "" {
			region.Snippet = &sarifMessage{Text: iss.CodeSnippet}
		}
		r := sarifResult{
			RuleID:     id,
			RuleIndex:  ruleIndex[id],
			Level:      severityToLevel(iss.Severity),
			Message:    sarifMessage{Text: iss.Description},
			Properties: map[string]any{"severity": iss.Severity.String()},
		}
		// Symbolic locations are not URI references.
		if iss.HasFile() {
			r.Locations = []sarifLocation{{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{URI: iss.FilePath},
					Region:           region,
				},
			}}
		}
		if iss.FixSuggestion != "" {
			r.Properties["fix"] = iss.FixSuggestion
		}
		results = append(results, r)
	}

	inv := sarifInvocation{ExecutionSuccessful: res.Success, ExitCode: res.ExitCode}
	if !res.Success && res.ErrorMessage != "" {
		inv.Notifications = []sarifNotification{{
			Level:   "error",
			Message: sarifMessage{Text: res.ErrorMessage},
		}}
	}

	return sarifRun{
		Tool: sarifTool{Driver: sarifDriver{
			Name:           res.ToolName,
			Version:        ToolVersion,
			InformationURI: "https://github.com/pxkundu/awdx",
			Rules:          rules,
		}},
		Invocations: []sarifInvocation{inv},
		Results:     results,
		Properties:  map[string]any{"duration_ms": res.ScanTime.Milliseconds()},
	}
}

// sarifRuleID falls back to the category for issues without a rule ID.
func sarifRuleID(iss types.Issue) string {
	if iss.RuleID != "" {
		return iss.RuleID
	}
	return iss.Category
}

func sarifTags(iss types.Issue) []string {
	tags := []string{"security", strings.ToLower(iss.Category)}
	if iss.CWE != "" {
		tags = append(tags, iss.CWE)
	}
	return tags
}

func severityToLevel(sev types.Severity) string {
	switch sev {
	case types.SeverityCritical, types.SeverityHigh:
		return "error"
	case types.SeverityMedium:
		return "warning"
	case types.SeverityLow:
		return "note"
	default:
		return "none"
	}
}
