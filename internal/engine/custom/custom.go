// Package custom holds the project-specific checks: subprocess hygiene in
// the command-execution package and inline secrets in top-level config
// files.
package custom

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/pxkundu/awdx/internal/logging"
	"github.com/pxkundu/awdx/internal/scanner"
	"github.com/pxkundu/awdx/internal/types"
)

// DefaultDir is the command-execution package checked for subprocess use.
const DefaultDir = "src/awdx/ai_engine"

const subprocessCall = "subprocess.run"

var configSecret = regexp.MustCompile(`(?i)(password|secret|key)\s*=\s*['"][^'"]{10,}['"]`)

var configGlobs = []string{"*.toml", "*.yaml", "*.yml"}

// Checker runs the custom checks. It is not a general-purpose scanner: only
// files directly inside Dir and config files directly inside the project
// root are examined.
type Checker struct {
	Dir    string
	logger *zap.SugaredLogger
}

var _ scanner.Tool = (*Checker)(nil)

// New creates a Checker for dir, relative to the project root. An empty dir
// selects DefaultDir.
func New(dir string, logger *zap.SugaredLogger) *Checker {
	if dir == "" {
		dir = DefaultDir
	}
	return &Checker{Dir: dir, logger: logging.OrNop(logger)}
}

func (c *Checker) Name() string  { return "custom_security" }
func (c *Checker) Title() string { return "Custom Security Checks" }

func (c *Checker) Run(ctx context.Context, p *scanner.Project) (types.ScanResult, error) {
	var issues []types.Issue
	checks := 0

	for _, path := range c.commandFiles(p) {
		if err := ctx.Err(); err != nil {
			return types.ScanResult{}, err
		}
		content, ok := c.read(path)
		if !ok {
			continue
		}
		checks += 2
		issues = append(issues, checkSubprocess(p.Rel(path), content)...)
	}

	for _, path := range configFiles(p.Root) {
		if err := ctx.Err(); err != nil {
			return types.ScanResult{}, err
		}
		content, ok := c.read(path)
		if !ok {
			continue
		}
		checks++
		if iss, found := checkConfig(p.Rel(path), content); found {
			issues = append(issues, iss)
		}
	}

	return types.ScanResult{
		ToolName:  c.Name(),
		Success:   true,
		Issues:    issues,
		ExitCode:  0,
		RawOutput: fmt.Sprintf("Ran %d custom security checks", checks),
	}, nil
}

// commandFiles lists source files directly inside the checked directory.
// A missing directory yields nothing.
func (c *Checker) commandFiles(p *scanner.Project) []string {
	dir := filepath.Join(p.Root, filepath.FromSlash(c.Dir))
	entries, err := os.ReadDir(dir)
	if err != nil {
		c.logger.Debugf("custom checks: %s: %v", dir, err)
		return nil
	}
	var out []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !p.IsSource(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if p.Ignored(p.Rel(path)) {
			continue
		}
		out = append(out, path)
	}
	return out
}

func (c *Checker) read(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		c.logger.Debugf("custom checks: skipping %s: %v", path, err)
		return "", false
	}
	if !utf8.Valid(data) {
		c.logger.Debugf("custom checks: skipping non-UTF-8 file %s", path)
		return "", false
	}
	return string(data), true
}

func checkSubprocess(relPath, content string) []types.Issue {
	idx := strings.Index(content, subprocessCall)
	if idx < 0 {
		return nil
	}
	line := lineAt(content, idx)

	var issues []types.Issue
	if !strings.Contains(content, "shlex.split") {
		issues = append(issues, types.Issue{
			Severity:      types.SeverityMedium,
			Category:      types.CategoryCommandInjection,
			Description:   "subprocess.run without shlex.split() validation",
			FilePath:      relPath,
			Line:          line,
			FixSuggestion: "Use shlex.split() for command parsing",
		})
	}
	if !strings.Contains(content, "timeout=") {
		issues = append(issues, types.Issue{
			Severity:      types.SeverityLow,
			Category:      types.CategoryResourceExhaustion,
			Description:   "subprocess.run without timeout protection",
			FilePath:      relPath,
			Line:          line,
			FixSuggestion: "Add timeout parameter to subprocess.run()",
		})
	}
	return issues
}

func checkConfig(relPath, content string) (types.Issue, bool) {
	loc := configSecret.FindStringIndex(content)
	if loc == nil {
		return types.Issue{}, false
	}
	return types.Issue{
		Severity:      types.SeverityHigh,
		Category:      types.CategoryConfigurationSecret,
		Description:   "Potential secret in configuration file",
		FilePath:      relPath,
		Line:          lineAt(content, loc[0]),
		FixSuggestion: "Use environment variables for secrets",
	}, true
}

// configFiles lists top-level config files in lexical order.
func configFiles(root string) []string {
	var out []string
	for _, g := range configGlobs {
		matches, err := filepath.Glob(filepath.Join(root, g))
		if err != nil {
			continue
		}
		for _, m := range matches {
			if fi, err := os.Stat(m); err == nil && fi.Mode().IsRegular() {
				out = append(out, m)
			}
		}
	}
	sort.Strings(out)
	return out
}

func lineAt(content string, offset int) int {
	return strings.Count(content[:offset], "\n") + 1
}
