// Package config loads .awdx-scan.yml project files: source layout, tool
// selection, timeouts, rule overrides, and analyzer binaries.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pxkundu/awdx/internal/rules"
)

// FileNames are the config file names looked up in the project root, in order.
var FileNames = []string{".awdx-scan.yml", ".awdx-scan.yaml"}

const maxConfigSize = 1 << 20

// RuleOverride allows per-rule severity or disable.
type RuleOverride struct {
	Severity string `yaml:"severity,omitempty"`
	Disabled bool   `yaml:"disabled,omitempty"`
}

// Config represents the .awdx-scan.yml configuration file. Zero values mean
// "use the default"; command-line flags win over any value set here.
type Config struct {
	SourceDir     string                  `yaml:"source_dir,omitempty"`
	Extensions    []string                `yaml:"extensions,omitempty"`
	Quick         bool                    `yaml:"quick,omitempty"`
	Format        string                  `yaml:"format,omitempty"`
	Report        string                  `yaml:"report,omitempty"`
	Timeout       time.Duration           `yaml:"timeout,omitempty"`
	PhaseTimeout  time.Duration           `yaml:"phase_timeout,omitempty"`
	Workers       int                     `yaml:"workers,omitempty"`
	Ignore        []string                `yaml:"ignore,omitempty"`
	Rules         string                  `yaml:"rules,omitempty"`
	DisabledRules []string                `yaml:"disabled_rules,omitempty"`
	RuleOverrides map[string]RuleOverride `yaml:"rule_overrides,omitempty"`
	CustomDir     string                  `yaml:"custom_dir,omitempty"`
	Binaries      map[string]string       `yaml:"binaries,omitempty"`

	// Path is the file the config was read from; empty when none was found.
	Path string `yaml:"-"`
}

// Load reads .awdx-scan.yml or .awdx-scan.yaml from dir. If dir is a file,
// its parent directory is used. A missing config file yields a zero Config.
func Load(dir string) (Config, error) {
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return Config{}, fmt.Errorf("reading %s: %w", path, err)
		}
		if info.Size() > maxConfigSize {
			return Config{}, fmt.Errorf("config file too large: %s (%d bytes, max 1 MB)", path, info.Size())
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading %s: %w", path, err)
		}
		cfg, err := Parse(data)
		if err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", path, err)
		}
		cfg.Path = path
		return cfg, nil
	}
	return Config{}, nil
}

// Parse decodes and validates config data. Durations are Go duration
// strings such as "90s" or "5m".
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validFormats = []string{"terminal", "markdown", "md", "json", "sarif", "html"}

// Validate rejects values that cannot be applied.
func (c Config) Validate() error {
	if c.Format != "" && !slices.Contains(validFormats, strings.ToLower(c.Format)) {
		return fmt.Errorf("invalid format %q", c.Format)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if c.PhaseTimeout < 0 {
		return fmt.Errorf("phase_timeout must not be negative")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	return nil
}

// Overrides converts the rule_overrides section for rules.ApplyOverrides.
func (c Config) Overrides() map[string]rules.RuleOverride {
	if len(c.RuleOverrides) == 0 {
		return nil
	}
	out := make(map[string]rules.RuleOverride, len(c.RuleOverrides))
	for id, ovr := range c.RuleOverrides {
		out[strings.ToUpper(id)] = rules.RuleOverride{Severity: ovr.Severity, Disabled: ovr.Disabled}
	}
	return out
}

// Default is the commented starter file written by "awdx-scan init".
const Default = `# awdx-scan configuration. Command-line flags override these values.

# Directory scanned by the analyzers, relative to the project root.
# Defaults to "src" when it exists, otherwise the project root.
# source_dir: src

# File extensions examined by the in-process detectors.
extensions: [".py"]

# quick: true             # bandit, safety, secrets, injection only
# format: markdown        # terminal | markdown | json | sarif | html
# report: security-report.md

timeout: 5m               # per analyzer process
phase_timeout: 10m        # per tool, including in-process detectors
# workers: 1

# Extra gitignore-style patterns; .awdx-scanignore is read as well.
ignore:
  - "build/"
  - "dist/"

# rules: .awdx/rules      # directory of additional rule files
# disabled_rules: [SECRET_008]
# rule_overrides:
#   INJ_006:
#     severity: medium

# custom_dir: src/awdx/ai_engine
# binaries:
#   bandit: .venv/bin/bandit
`
