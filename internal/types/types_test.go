package types_test

import (
	"encoding/json"
	"sort"
	"testing"
	"time"

	"github.com/pxkundu/awdx/internal/types"
	"github.com/stretchr/testify/require"
)

func TestSeverityString(t *testing.T) {
	tests := []struct {
		sev  types.Severity
		want string
	}{
		{types.SeverityCritical, "CRITICAL"},
		{types.SeverityHigh, "HIGH"},
		{types.SeverityMedium, "MEDIUM"},
		{types.SeverityLow, "LOW"},
		{types.SeverityInfo, "INFO"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, tt.sev.String())
	}
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		input string
		want  types.Severity
		err   bool
	}{
		{"CRITICAL", types.SeverityCritical, false},
		{"high", types.SeverityHigh, false},
		{"Medium", types.SeverityMedium, false},
		{"  low  ", types.SeverityLow, false},
		{"INFO", types.SeverityInfo, false},
		{"invalid", types.SeverityInfo, true},
	}
	for _, tt := range tests {
		got, err := types.ParseSeverity(tt.input)
		if tt.err {
			require.Error(t, err)
		} else {
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		}
	}
}

func TestSeverityOrderSortsByUrgency(t *testing.T) {
	sevs := []types.Severity{types.SeverityLow, types.SeverityCritical, types.SeverityInfo, types.SeverityHigh, types.SeverityMedium}
	sort.Slice(sevs, func(i, j int) bool { return sevs[i] > sevs[j] })
	require.Equal(t, types.Severities, sevs)
}

func TestSeverityBlocking(t *testing.T) {
	require.True(t, types.SeverityCritical.Blocking())
	require.True(t, types.SeverityHigh.Blocking())
	require.False(t, types.SeverityMedium.Blocking())
	require.False(t, types.SeverityLow.Blocking())
	require.False(t, types.SeverityInfo.Blocking())
}

func TestSeverityJSON(t *testing.T) {
	data, err := json.Marshal(types.Issue{Severity: types.SeverityHigh, Description: "x"})
	require.NoError(t, err)
	require.Contains(t, string(data), `"severity":"HIGH"`)

	var issue types.Issue
	require.NoError(t, json.Unmarshal(data, &issue))
	require.Equal(t, types.SeverityHigh, issue.Severity)

	var sev types.Severity
	require.Error(t, json.Unmarshal([]byte(`"nope"`), &sev))
}

func TestSeverityUnmarshalNumericRange(t *testing.T) {
	var sev types.Severity
	require.NoError(t, json.Unmarshal([]byte(`4`), &sev))
	require.Equal(t, types.SeverityCritical, sev)
	require.NoError(t, json.Unmarshal([]byte(`0`), &sev))
	require.Equal(t, types.SeverityInfo, sev)

	for _, bad := range []string{`9`, `-1`, `5`} {
		sev = types.SeverityLow
		require.Error(t, json.Unmarshal([]byte(bad), &sev), bad)
		require.Equal(t, types.SeverityLow, sev, "rejected value leaves the severity unchanged")
	}
}

func TestIssueLocation(t *testing.T) {
	require.Equal(t, "src/a.py:12", types.Issue{FilePath: "src/a.py", Line: 12}.Location())
	require.Equal(t, "dependency manifest", types.Issue{FilePath: "dependency manifest"}.Location())
}

func TestIssueHasFile(t *testing.T) {
	require.True(t, types.Issue{FilePath: "src/a.py"}.HasFile())
	require.False(t, types.Issue{FilePath: types.DependencyManifest}.HasFile())
	require.False(t, types.Issue{}.HasFile())
}

func TestScanResultJSONSeconds(t *testing.T) {
	res := types.ScanResult{ToolName: "bandit", Success: true, ScanTime: 1500 * time.Millisecond}
	data, err := json.Marshal(res)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))
	require.Equal(t, 1.5, parsed["scan_time"])
	require.Equal(t, "bandit", parsed["tool_name"])
}

func TestFailedResult(t *testing.T) {
	res := types.Failed("mypy", time.Second, "mypy not found")
	require.False(t, res.Success)
	require.Equal(t, types.FailedExitCode, res.ExitCode)
	require.Equal(t, "mypy not found", res.ErrorMessage)
	require.Empty(t, res.Issues)
}

func TestReportResultLookup(t *testing.T) {
	r := &types.Report{Results: []types.ScanResult{{ToolName: "bandit"}, {ToolName: "safety", Success: true}}}
	res, ok := r.Result("safety")
	require.True(t, ok)
	require.True(t, res.Success)
	_, ok = r.Result("flake8")
	require.False(t, ok)
}
