// Package awdx provides a public API for the awdx-scan security posture
// engine: it runs the configured analyzers and detectors against a Python
// project and aggregates their findings into one scored summary.
//
// This is the library entry point. For the CLI tool, see cmd/awdx-scan/.
package awdx

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pxkundu/awdx/internal/engine/pattern"
	"github.com/pxkundu/awdx/internal/logging"
	"github.com/pxkundu/awdx/internal/meta"
	"github.com/pxkundu/awdx/internal/rules"
	"github.com/pxkundu/awdx/internal/runner"
	"github.com/pxkundu/awdx/internal/scanner"
	"github.com/pxkundu/awdx/internal/tools"
	"github.com/pxkundu/awdx/internal/types"
)

// Re-export core types from internal/types so consumers don't need to
// import internal packages.
type (
	Severity   = types.Severity
	Issue      = types.Issue
	ScanResult = types.ScanResult
	Report     = types.Report
	Mode       = types.Mode
	Summary    = meta.Summary
)

const (
	SeverityInfo     = types.SeverityInfo
	SeverityLow      = types.SeverityLow
	SeverityMedium   = types.SeverityMedium
	SeverityHigh     = types.SeverityHigh
	SeverityCritical = types.SeverityCritical

	ModeQuick         = types.ModeQuick
	ModeComprehensive = types.ModeComprehensive
)

// RuleOverride allows changing the severity of a rule or disabling it.
type RuleOverride struct {
	Severity string
	Disabled bool
}

// RuleInfo provides summary metadata about a detection rule.
type RuleInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Severity string `json:"severity"`
	Category string `json:"category"`
}

// RuleDetail provides full information about a rule, including patterns and examples.
type RuleDetail struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Severity        string   `json:"severity"`
	Category        string   `json:"category"`
	Description     string   `json:"description"`
	Remediation     string   `json:"remediation,omitempty"`
	Patterns        []string `json:"patterns"`
	ExcludePatterns []string `json:"exclude_patterns,omitempty"`
	TruePositives   []string `json:"true_positives"`
	FalsePositives  []string `json:"false_positives"`
}

// Scan runs every tool selected by the mode against the project at root and
// returns the aggregate. Tool failures are recorded in the summary, never
// returned; the only errors are setup problems and cancellation of ctx.
func Scan(ctx context.Context, root string, opts ...Option) (*Summary, error) {
	cfg := applyOpts(opts)
	compiled, err := loadAndCompile(cfg)
	if err != nil {
		return nil, err
	}

	project, err := scanner.NewProject(root, cfg.sourceDir, cfg.extensions, cfg.ignorePatterns)
	if err != nil {
		return nil, err
	}
	if cfg.changedOnly {
		files, err := scanner.ChangedFiles(ctx, project.Root)
		switch {
		case errors.Is(err, scanner.ErrNotGitRepo):
			cfg.logger.Warnf("changed-only scan ignored: %s is not in a git work tree", project.Root)
		case err != nil:
			return nil, fmt.Errorf("listing changed files: %w", err)
		default:
			project.Restrict(files)
		}
	}

	r := cfg.runner
	if r == nil {
		r = runner.New(project.Root, cfg.timeout, cfg.logger)
	}

	c := scanner.New()
	c.SetLogger(cfg.logger)
	c.SetObserver(cfg.observer)
	c.SetWorkers(cfg.workers)
	c.SetPhaseTimeout(cfg.phaseTimeout)
	for _, t := range tools.Select(cfg.mode, tools.Deps{
		Runner:    r,
		Rules:     compiled,
		CustomDir: cfg.customDir,
		Binaries:  cfg.binaries,
		Logger:    cfg.logger,
	}) {
		c.RegisterTool(t)
	}

	report, err := c.Run(ctx, project, cfg.mode)
	if err != nil {
		return nil, err
	}
	return meta.Aggregate(report), nil
}

// ScanContent runs the in-process secret and injection detectors over inline
// content without touching disk. filename decides the comment syntax and
// test-path suppression (e.g. "app/settings.py").
func ScanContent(ctx context.Context, content, filename string, opts ...Option) ([]Issue, error) {
	if filename == "" {
		filename = "snippet.py"
	}
	cfg := applyOpts(opts)
	compiled, err := loadAndCompile(cfg)
	if err != nil {
		return nil, err
	}

	target := &scanner.Target{RelPath: filename, Content: []byte(content)}
	var issues []Issue
	for _, d := range []*pattern.Detector{
		pattern.NewSecretDetector(compiled, cfg.logger),
		pattern.NewInjectionDetector(compiled, cfg.logger),
	} {
		found, err := d.Analyze(ctx, target)
		if err != nil {
			return nil, err
		}
		issues = append(issues, found...)
	}
	return issues, nil
}

// Tools returns the registry IDs run in mode, in report order.
func Tools(mode Mode) []string {
	return tools.IDs(mode)
}

// ListRules returns all available detection rules sorted by ID.
// Use WithCategory to filter by category.
func ListRules(opts ...Option) ([]RuleInfo, error) {
	cfg := applyOpts(opts)
	compiled, err := loadAndCompile(cfg)
	if err != nil {
		return nil, err
	}

	sort.Slice(compiled, func(i, j int) bool {
		return compiled[i].ID < compiled[j].ID
	})

	if cfg.category != "" {
		var filtered []*rules.CompiledRule
		for _, r := range compiled {
			if strings.EqualFold(r.Category, cfg.category) {
				filtered = append(filtered, r)
			}
		}
		compiled = filtered
	}

	infos := make([]RuleInfo, len(compiled))
	for i, r := range compiled {
		infos[i] = RuleInfo{
			ID:       r.ID,
			Name:     r.Name,
			Severity: r.Severity.String(),
			Category: r.Category,
		}
	}
	return infos, nil
}

// ExplainRule returns detailed information about a specific rule.
func ExplainRule(id string, opts ...Option) (*RuleDetail, error) {
	cfg := applyOpts(opts)
	compiled, err := loadAndCompile(cfg)
	if err != nil {
		return nil, err
	}

	found, ok := rules.FindByID(compiled, strings.TrimSpace(id))
	if !ok {
		return nil, fmt.Errorf("rule %q not found", strings.ToUpper(strings.TrimSpace(id)))
	}

	return &RuleDetail{
		ID:              found.ID,
		Name:            found.Name,
		Severity:        found.Severity.String(),
		Category:        found.Category,
		Description:     found.Description,
		Remediation:     found.Remediation,
		Patterns:        describePatterns(found.Patterns),
		ExcludePatterns: describePatterns(found.ExcludePatterns),
		TruePositives:   found.Examples.TruePositive,
		FalsePositives:  found.Examples.FalsePositive,
	}, nil
}

func describePatterns(patterns []rules.CompiledPattern) []string {
	if len(patterns) == 0 {
		return nil
	}
	out := make([]string, len(patterns))
	for i, p := range patterns {
		switch p.Type {
		case rules.PatternRegex:
			out[i] = fmt.Sprintf("[regex] %s", p.Regex.String())
		case rules.PatternContains:
			out[i] = fmt.Sprintf("[contains] %s", p.Value)
		}
	}
	return out
}

// --- internal helpers ---

func applyOpts(opts []Option) *scanConfig {
	cfg := &scanConfig{mode: ModeComprehensive}
	for _, o := range opts {
		o(cfg)
	}
	cfg.logger = logging.OrNop(cfg.logger)
	return cfg
}

// loadAndCompile loads built-in (and optionally custom) rules, compiles them,
// and applies overrides/filters. Used by all public functions.
func loadAndCompile(cfg *scanConfig) ([]*rules.CompiledRule, error) {
	compiled, err := rules.Load(cfg.customRulesDir)
	if err != nil {
		return nil, err
	}

	if len(cfg.ruleOverrides) > 0 {
		overrides := make(map[string]rules.RuleOverride, len(cfg.ruleOverrides))
		for id, ovr := range cfg.ruleOverrides {
			overrides[strings.ToUpper(id)] = rules.RuleOverride{Severity: ovr.Severity, Disabled: ovr.Disabled}
		}
		var overrideErrs []error
		compiled, overrideErrs = rules.ApplyOverrides(compiled, overrides)
		for _, e := range overrideErrs {
			cfg.logger.Warnf("%v", e)
		}
	}

	if len(cfg.disabledRules) > 0 {
		disabled := make(map[string]bool, len(cfg.disabledRules))
		for _, id := range cfg.disabledRules {
			disabled[strings.ToUpper(strings.TrimSpace(id))] = true
		}
		compiled = rules.FilterByIDs(compiled, disabled)
	}

	return compiled, nil
}
