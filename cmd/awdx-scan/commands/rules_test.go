package commands

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pxkundu/awdx"
)

func TestListRulesTable(t *testing.T) {
	resetFlags(t)

	out, _, err := execute(t, "list-rules")
	require.NoError(t, err)
	require.Contains(t, out, "ID")
	require.Contains(t, out, "SEVERITY")
	require.Contains(t, out, "SECRET_001")
	require.Contains(t, out, "INJ_006")
	require.Contains(t, out, "14 rules loaded")
}

func TestListRulesJSONWithFilters(t *testing.T) {
	resetFlags(t)

	out, _, err := execute(t, "list-rules", "--format", "json",
		"--category", "INJECTION_VULNERABILITY", "--disable-rule", "INJ_005,inj_006")
	require.NoError(t, err)

	var infos []awdx.RuleInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	require.Len(t, infos, 4)
	for _, r := range infos {
		require.Equal(t, "INJECTION_VULNERABILITY", r.Category)
		require.NotEqual(t, "INJ_005", r.ID)
	}
}

func TestExplainKnownRule(t *testing.T) {
	resetFlags(t)

	out, _, err := execute(t, "explain", "secret_006", "--no-color")
	require.NoError(t, err)
	require.Contains(t, out, "SECRET_006")
	require.Contains(t, out, "Hardcoded Password")
	require.Contains(t, out, "HIGH")
	require.Contains(t, out, "HARDCODED_SECRET")
	require.Contains(t, out, "Patterns:")
	require.Contains(t, out, "Fix:")
	require.Contains(t, out, "True Positives:")
	require.NotContains(t, out, "\033[")
}

func TestExplainJSON(t *testing.T) {
	resetFlags(t)

	out, _, err := execute(t, "explain", "INJ_003", "--format", "json")
	require.NoError(t, err)

	var d awdx.RuleDetail
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	require.Equal(t, "INJ_003", d.ID)
	require.Equal(t, "HIGH", d.Severity)
	require.NotEmpty(t, d.Patterns)
	require.NotEmpty(t, d.TruePositives)
}

func TestExplainNotFound(t *testing.T) {
	resetFlags(t)

	_, _, err := execute(t, "explain", "NOPE_001")
	require.ErrorContains(t, err, "not found")
}
