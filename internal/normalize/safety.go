package normalize

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pxkundu/awdx/internal/types"
)

// DependencyManifest is the location reported for every safety finding.
const DependencyManifest = types.DependencyManifest

type safetyJSON struct {
	Vulnerabilities []struct {
		PackageName     string `json:"package_name"`
		AnalyzedVersion string `json:"analyzed_version"`
		VulnerabilityID string `json:"vulnerability_id"`
		CVE             string `json:"CVE"`
		Advisory        string `json:"advisory"`
		MoreInfoURL     string `json:"more_info_url"`
		FixedVersions   any    `json:"fixed_versions"`
	} `json:"vulnerabilities"`
}

// Safety parses the dependency auditor's JSON output. Output that does not
// start with a JSON object means the tool printed no structured report and
// yields zero issues without error; a JSON object that fails to decode
// yields zero issues and an error the caller may log.
func Safety(output string) ([]types.Issue, error) {
	trimmed := strings.TrimSpace(output)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, nil
	}

	var doc safetyJSON
	if err := json.Unmarshal([]byte(trimmed), &doc); err != nil {
		return nil, fmt.Errorf("parsing safety report: %w", err)
	}

	out := make([]types.Issue, 0, len(doc.Vulnerabilities))
	for _, v := range doc.Vulnerabilities {
		fix := "Update to version " + firstNonEmpty(v.MoreInfoURL, "latest")
		if fixed := stringList(v.FixedVersions); len(fixed) > 0 {
			fix = fmt.Sprintf("Update %s to %s", v.PackageName, strings.Join(fixed, ", "))
		}
		desc := fmt.Sprintf("Vulnerable dependency: %s %s", v.PackageName, v.AnalyzedVersion)
		if v.CVE != "" {
			desc += " (" + v.CVE + ")"
		}
		out = append(out, types.Issue{
			RuleID:        v.VulnerabilityID,
			Severity:      types.SeverityHigh,
			Category:      types.CategoryDependencyVulnerability,
			Description:   strings.TrimSpace(desc),
			FilePath:      DependencyManifest,
			CodeSnippet:   strings.TrimSpace(v.Advisory),
			FixSuggestion: fix,
		})
	}
	return out, nil
}

func stringList(v any) []string {
	switch t := v.(type) {
	case string:
		if t != "" {
			return []string{t}
		}
	case []any:
		var out []string
		for _, e := range t {
			if s, ok := e.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
