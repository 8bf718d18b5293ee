package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pxkundu/awdx/internal/config"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	data := []byte(`
source_dir: app
extensions: [".py", ".pyi"]
quick: true
format: sarif
report: out/report.sarif
timeout: 90s
phase_timeout: 5m
workers: 4
ignore:
  - "*.log"
  - vendor/
rules: custom-rules/
disabled_rules: [SECRET_008]
rule_overrides:
  inj_006:
    severity: medium
  SECRET_007:
    disabled: true
custom_dir: app/engine
binaries:
  bandit: /opt/venv/bin/bandit
`)
	path := filepath.Join(dir, ".awdx-scan.yml")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	require.Equal(t, path, cfg.Path)
	require.Equal(t, "app", cfg.SourceDir)
	require.Equal(t, []string{".py", ".pyi"}, cfg.Extensions)
	require.True(t, cfg.Quick)
	require.Equal(t, "sarif", cfg.Format)
	require.Equal(t, "out/report.sarif", cfg.Report)
	require.Equal(t, 90*time.Second, cfg.Timeout)
	require.Equal(t, 5*time.Minute, cfg.PhaseTimeout)
	require.Equal(t, 4, cfg.Workers)
	require.Equal(t, []string{"*.log", "vendor/"}, cfg.Ignore)
	require.Equal(t, "custom-rules/", cfg.Rules)
	require.Equal(t, []string{"SECRET_008"}, cfg.DisabledRules)
	require.Equal(t, "app/engine", cfg.CustomDir)
	require.Equal(t, "/opt/venv/bin/bandit", cfg.Binaries["bandit"])

	ovr := cfg.Overrides()
	require.Len(t, ovr, 2)
	require.Equal(t, "medium", ovr["INJ_006"].Severity)
	require.True(t, ovr["SECRET_007"].Disabled)
}

func TestLoadConfigYAMLExtension(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".awdx-scan.yaml"), []byte("format: markdown\n"), 0644))

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	require.Equal(t, "markdown", cfg.Format)
}

func TestLoadConfigFromFilePath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".awdx-scan.yml"), []byte("workers: 2\n"), 0644))
	file := filepath.Join(dir, "pyproject.toml")
	require.NoError(t, os.WriteFile(file, []byte("[project]\n"), 0644))

	cfg, err := config.Load(file)
	require.NoError(t, err)
	require.Equal(t, 2, cfg.Workers)
}

func TestLoadConfigMissing(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, config.Config{}, cfg)
	require.Nil(t, cfg.Overrides())
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".awdx-scan.yml"), []byte("ignore: [unclosed\n"), 0644))

	_, err := config.Load(dir)
	require.ErrorContains(t, err, "parsing")
}

func TestLoadConfigTooLarge(t *testing.T) {
	dir := t.TempDir()
	big := make([]byte, 1<<20+1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".awdx-scan.yml"), big, 0644))

	_, err := config.Load(dir)
	require.ErrorContains(t, err, "too large")
}

func TestParseValidation(t *testing.T) {
	for name, data := range map[string]string{
		"format":        "format: xml\n",
		"timeout":       "timeout: -1s\n",
		"phase timeout": "phase_timeout: -5m\n",
		"workers":       "workers: -2\n",
		"duration type": "timeout: soon\n",
	} {
		_, err := config.Parse([]byte(data))
		require.Error(t, err, name)
	}
}

func TestDefaultParses(t *testing.T) {
	cfg, err := config.Parse([]byte(config.Default))
	require.NoError(t, err)
	require.Equal(t, []string{".py"}, cfg.Extensions)
	require.Equal(t, 5*time.Minute, cfg.Timeout)
	require.Equal(t, 10*time.Minute, cfg.PhaseTimeout)
	require.Equal(t, []string{"build/", "dist/"}, cfg.Ignore)
}
