package awdx

import (
	"time"

	"go.uber.org/zap"

	"github.com/pxkundu/awdx/internal/runner"
	"github.com/pxkundu/awdx/internal/scanner"
)

// scanConfig holds the resolved configuration for a scan.
type scanConfig struct {
	mode           Mode
	sourceDir      string
	extensions     []string
	ignorePatterns []string
	customRulesDir string
	disabledRules  []string
	ruleOverrides  map[string]RuleOverride
	customDir      string
	binaries       map[string]string
	timeout        time.Duration
	phaseTimeout   time.Duration
	workers        int
	changedOnly    bool
	runner         runner.Runner
	observer       scanner.Observer
	logger         *zap.SugaredLogger
	category       string // only for ListRules
}

// Option configures a scan operation.
type Option func(*scanConfig)

// WithMode selects quick or comprehensive scanning (default: comprehensive).
func WithMode(m Mode) Option {
	return func(c *scanConfig) {
		c.mode = m
	}
}

// WithQuick is shorthand for WithMode(ModeQuick) when quick is true.
func WithQuick(quick bool) Option {
	return func(c *scanConfig) {
		if quick {
			c.mode = ModeQuick
		}
	}
}

// WithChangedOnly limits the in-process detectors to files git reports as
// modified, staged, or untracked. External analyzers still see the whole
// source directory. Outside a git work tree the option has no effect.
func WithChangedOnly(changed bool) Option {
	return func(c *scanConfig) {
		c.changedOnly = changed
	}
}

// WithSourceDir sets the analyzed directory relative to the project root.
func WithSourceDir(dir string) Option {
	return func(c *scanConfig) {
		c.sourceDir = dir
	}
}

// WithExtensions sets the file extensions examined by the detectors.
func WithExtensions(exts ...string) Option {
	return func(c *scanConfig) {
		c.extensions = exts
	}
}

// WithIgnorePatterns adds gitignore-style patterns to skip during discovery.
func WithIgnorePatterns(patterns []string) Option {
	return func(c *scanConfig) {
		c.ignorePatterns = append(c.ignorePatterns, patterns...)
	}
}

// WithCustomRules loads additional rules from a directory.
func WithCustomRules(dir string) Option {
	return func(c *scanConfig) {
		c.customRulesDir = dir
	}
}

// WithDisabledRules excludes specific rule IDs from scanning.
func WithDisabledRules(ids ...string) Option {
	return func(c *scanConfig) {
		c.disabledRules = append(c.disabledRules, ids...)
	}
}

// WithRuleOverrides applies severity overrides or disables rules.
func WithRuleOverrides(overrides map[string]RuleOverride) Option {
	return func(c *scanConfig) {
		c.ruleOverrides = overrides
	}
}

// WithCustomDir sets the directory checked for subprocess hygiene.
func WithCustomDir(dir string) Option {
	return func(c *scanConfig) {
		c.customDir = dir
	}
}

// WithBinaries overrides analyzer executables, keyed by tool name.
func WithBinaries(bins map[string]string) Option {
	return func(c *scanConfig) {
		c.binaries = bins
	}
}

// WithTimeout bounds each analyzer process (default: 300s).
func WithTimeout(d time.Duration) Option {
	return func(c *scanConfig) {
		c.timeout = d
	}
}

// WithPhaseTimeout bounds each tool as a whole (default: 600s).
func WithPhaseTimeout(d time.Duration) Option {
	return func(c *scanConfig) {
		c.phaseTimeout = d
	}
}

// WithWorkers sets how many tools may run at once (default: 1).
func WithWorkers(n int) Option {
	return func(c *scanConfig) {
		c.workers = n
	}
}

// WithRunner replaces the subprocess runner, e.g. with a runner.FakeRunner.
func WithRunner(r runner.Runner) Option {
	return func(c *scanConfig) {
		c.runner = r
	}
}

// WithObserver receives a callback as each tool starts and finishes.
func WithObserver(o scanner.Observer) Option {
	return func(c *scanConfig) {
		c.observer = o
	}
}

// WithLogger sets the logger for diagnostics (default: discard).
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *scanConfig) {
		c.logger = l
	}
}

// WithCategory filters ListRules output by category.
func WithCategory(cat string) Option {
	return func(c *scanConfig) {
		c.category = cat
	}
}
