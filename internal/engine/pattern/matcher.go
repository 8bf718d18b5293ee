// Package pattern implements the in-process line detectors: a single
// matching routine parameterized by a rule table and a suppression policy.
package pattern

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/pxkundu/awdx/internal/logging"
	"github.com/pxkundu/awdx/internal/rules"
	"github.com/pxkundu/awdx/internal/scanner"
	"github.com/pxkundu/awdx/internal/types"
)

// Suppression decides which matches are dropped before they become issues.
type Suppression struct {
	TestPaths   bool     // skip files whose project-relative path contains "test"
	Comments    bool     // skip lines that are comments
	LineMarkers []string // skip lines whose lowercase text contains any marker
}

// Detector matches every rule against every line of every source file.
type Detector struct {
	name       string
	title      string
	rules      []*rules.CompiledRule
	suppress   Suppression
	everyMatch bool
	describe   string
	summary    string
	logger     *zap.SugaredLogger
}

var _ scanner.Tool = (*Detector)(nil)

// Config parameterizes a Detector.
type Config struct {
	Name  string
	Title string
	Rules []*rules.CompiledRule
	// Suppress is the suppression policy.
	Suppress Suppression
	// EveryMatch reports each match on a line separately; otherwise a rule
	// yields at most one issue per line.
	EveryMatch bool
	// Describe formats the issue description from the rule name.
	Describe string
	// Summary formats the raw output from the number of files scanned.
	Summary string
	Logger  *zap.SugaredLogger
}

// NewDetector builds a Detector from cfg.
func NewDetector(cfg Config) *Detector {
	if cfg.Describe == "" {
		cfg.Describe = "Potential %s"
	}
	if cfg.Summary == "" {
		cfg.Summary = "Scanned %d source files"
	}
	return &Detector{
		name:       cfg.Name,
		title:      cfg.Title,
		rules:      cfg.Rules,
		suppress:   cfg.Suppress,
		everyMatch: cfg.EveryMatch,
		describe:   cfg.Describe,
		summary:    cfg.Summary,
		logger:     logging.OrNop(cfg.Logger),
	}
}

// NewSecretDetector reports hardcoded credentials. Every match is reported;
// test files, comments, and lines mentioning placeholders or examples are
// suppressed.
func NewSecretDetector(compiled []*rules.CompiledRule, logger *zap.SugaredLogger) *Detector {
	return NewDetector(Config{
		Name:  "secret_scanner",
		Title: "Secret Detection",
		Rules: rules.FilterByCategory(compiled, types.CategoryHardcodedSecret),
		Suppress: Suppression{
			TestPaths:   true,
			Comments:    true,
			LineMarkers: []string{"placeholder", "example"},
		},
		EveryMatch: true,
		Describe:   "Potential %s found",
		Summary:    "Scanned %d source files",
		Logger:     logger,
	})
}

// NewInjectionDetector reports injection-prone constructs, one issue per
// rule per line. Test files and comments are suppressed.
func NewInjectionDetector(compiled []*rules.CompiledRule, logger *zap.SugaredLogger) *Detector {
	return NewDetector(Config{
		Name:  "injection_scanner",
		Title: "Injection Patterns",
		Rules: rules.FilterByCategory(compiled, types.CategoryInjection),
		Suppress: Suppression{
			TestPaths: true,
			Comments:  true,
		},
		Describe: "Potential %s",
		Summary:  "Scanned %d source files for injection patterns",
		Logger:   logger,
	})
}

func (d *Detector) Name() string  { return d.name }
func (d *Detector) Title() string { return d.title }

// Rules returns the detector's rule table in match order.
func (d *Detector) Rules() []*rules.CompiledRule { return d.rules }

// Run walks the project's source files. Unreadable or non-UTF-8 files are
// skipped; the result is always successful unless ctx is done or the
// source root cannot be walked.
func (d *Detector) Run(ctx context.Context, p *scanner.Project) (types.ScanResult, error) {
	targets, err := p.Sources()
	if err != nil {
		return types.ScanResult{}, err
	}

	var issues []types.Issue
	for _, target := range targets {
		if err := target.LoadContent(); err != nil {
			d.logger.Debugf("%s: skipping %s: %v", d.name, target.RelPath, err)
			continue
		}
		if !utf8.Valid(target.Content) {
			d.logger.Debugf("%s: skipping non-UTF-8 file %s", d.name, target.RelPath)
			continue
		}
		found, err := d.Analyze(ctx, target)
		if err != nil {
			return types.ScanResult{}, err
		}
		issues = append(issues, found...)
		target.Content = nil
	}

	return types.ScanResult{
		ToolName:  d.name,
		Success:   true,
		Issues:    issues,
		ExitCode:  0,
		RawOutput: fmt.Sprintf(d.summary, len(targets)),
	}, nil
}

// Analyze matches the rule table against one loaded target.
func (d *Detector) Analyze(ctx context.Context, target *scanner.Target) ([]types.Issue, error) {
	if d.suppress.TestPaths && isTestPath(target.RelPath) {
		return nil, nil
	}

	comment := commentPrefix(target.RelPath)
	var issues []types.Issue
	for i, line := range target.Lines() {
		if ctx.Err() != nil {
			return issues, ctx.Err()
		}
		if d.suppressed(line, comment) {
			continue
		}
		for _, rule := range d.rules {
			if !matchesTarget(rule.Targets, target.RelPath) {
				continue
			}
			hits := rule.MatchLine(line)
			if len(hits) == 0 {
				continue
			}
			if !d.everyMatch {
				hits = hits[:1]
			}
			for range hits {
				issues = append(issues, types.Issue{
					RuleID:        rule.ID,
					Severity:      rule.Severity,
					Category:      rule.Category,
					Description:   fmt.Sprintf(d.describe, rule.Name),
					FilePath:      target.RelPath,
					Line:          i + 1,
					CodeSnippet:   strings.TrimSpace(line),
					FixSuggestion: rule.Remediation,
				})
			}
		}
	}
	return issues, nil
}

func (d *Detector) suppressed(line, comment string) bool {
	if d.suppress.Comments && strings.HasPrefix(strings.TrimSpace(line), comment) {
		return true
	}
	if len(d.suppress.LineMarkers) > 0 {
		lower := strings.ToLower(line)
		for _, m := range d.suppress.LineMarkers {
			if strings.Contains(lower, m) {
				return true
			}
		}
	}
	return false
}

func isTestPath(relPath string) bool {
	return strings.Contains(strings.ToLower(relPath), "test")
}

var slashComment = map[string]bool{
	".go": true, ".js": true, ".jsx": true, ".ts": true, ".tsx": true,
	".java": true, ".c": true, ".h": true, ".cpp": true, ".cs": true,
	".kt": true, ".rs": true, ".swift": true, ".scala": true,
}

// commentPrefix returns the line-comment marker for a file. Hash comments
// are the default.
func commentPrefix(relPath string) string {
	if slashComment[strings.ToLower(filepath.Ext(relPath))] {
		return "//"
	}
	return "#"
}

func matchesTarget(targetGlobs []string, relPath string) bool {
	if len(targetGlobs) == 0 {
		return true // no filter = match all
	}
	base := filepath.Base(relPath)
	for _, glob := range targetGlobs {
		if matched, _ := filepath.Match(glob, base); matched {
			return true
		}
		if matched, _ := filepath.Match(glob, relPath); matched {
			return true
		}
	}
	return false
}
