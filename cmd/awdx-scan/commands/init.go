package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pxkundu/awdx/internal/config"
	"github.com/pxkundu/awdx/internal/scanner"
)

var (
	flagHook   bool
	flagCIOnly bool
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Initialize awdx-scan configuration files",
	Long:  `Scaffolds .awdx-scan.yml, .awdx-scanignore, and a GitHub Actions workflow that runs awdx-scan.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVar(&flagHook, "hook", false, "Create a git pre-commit hook that runs a quick scan")
	initCmd.Flags().BoolVar(&flagCIOnly, "ci", false, "Only generate the GitHub Actions workflow (skip config files)")
	rootCmd.AddCommand(initCmd)
}

type scaffold struct {
	path    string
	content string
	mode    os.FileMode
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	w := cmd.OutOrStdout()

	workflow := scaffold{filepath.Join(dir, ".github", "workflows", "awdx-scan.yml"), workflowTemplate, 0o644}

	var files []scaffold
	switch {
	case flagHook:
		gitDir := filepath.Join(dir, ".git")
		if _, err := os.Stat(gitDir); os.IsNotExist(err) {
			return fmt.Errorf("no .git directory found in %s (is this a git repository?)", dir)
		}
		files = []scaffold{{filepath.Join(gitDir, "hooks", "pre-commit"), preCommitTemplate, 0o755}}
	case flagCIOnly:
		files = []scaffold{workflow}
	default:
		files = []scaffold{
			{filepath.Join(dir, config.FileNames[0]), config.Default, 0o644},
			{filepath.Join(dir, scanner.IgnoreFile), ignoreTemplate, 0o644},
			workflow,
		}
	}

	for _, f := range files {
		if err := writeScaffold(w, f); err != nil {
			return err
		}
	}
	return nil
}

// writeScaffold creates f unless it already exists.
func writeScaffold(w io.Writer, f scaffold) error {
	if _, err := os.Stat(f.path); err == nil {
		fmt.Fprintf(w, "  skip %s (already exists)\n", f.path)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", f.path, err)
	}
	if err := os.WriteFile(f.path, []byte(f.content), f.mode); err != nil {
		return fmt.Errorf("writing %s: %w", f.path, err)
	}
	fmt.Fprintf(w, "  create %s\n", f.path)
	return nil
}

const ignoreTemplate = `# awdx-scan ignore patterns (gitignore syntax)
# Matching files are skipped by the secret, injection, and custom checks.

# Dependencies and environments
.venv/
venv/
.tox/
node_modules/

# Build artifacts
build/
dist/
*.egg-info/

# Generated code
*_pb2.py
migrations/
`

const preCommitTemplate = `#!/bin/sh
# awdx-scan pre-commit hook
echo "Running awdx-scan quick security scan..."
awdx-scan scan --quick --changed --no-color --no-progress
exit $?
`

const workflowTemplate = `name: awdx-scan

on:
  push:
    branches: [main]
  pull_request:
    branches: [main]

permissions:
  security-events: write
  contents: read

jobs:
  security:
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout@v4

      - uses: actions/setup-python@v5
        with:
          python-version: "3.12"

      - uses: actions/setup-go@v5
        with:
          go-version: stable

      - name: Install analyzers
        run: pip install bandit safety flake8 mypy

      - name: Install awdx-scan
        run: go install github.com/pxkundu/awdx/cmd/awdx-scan@latest

      - name: Run awdx-scan
        id: scan
        continue-on-error: true
        run: |
          status=0
          awdx-scan scan . --no-color --no-progress --report security-report.md || status=$?
          awdx-scan scan . --no-color --no-progress --format sarif --report results.sarif || true
          exit $status

      - name: Job summary
        if: always()
        run: cat security-report.md >> "$GITHUB_STEP_SUMMARY"

      - name: Upload SARIF results
        if: always()
        uses: github/codeql-action/upload-sarif@v3
        with:
          sarif_file: results.sarif

      - name: Fail on HIGH or CRITICAL findings
        if: steps.scan.outcome == 'failure'
        run: exit 1
`
