package rules

import (
	"regexp"
	"strings"

	"github.com/pxkundu/awdx/internal/types"
)

// MatchMode determines how multiple patterns are combined on a line.
type MatchMode int

const (
	MatchAny MatchMode = iota // any pattern on the line triggers an issue
	MatchAll                  // every pattern must match the same line
)

// PatternType represents the type of a pattern.
type PatternType string

const (
	PatternRegex    PatternType = "regex"
	PatternContains PatternType = "contains"
)

// RawPattern is a single pattern as defined in YAML.
type RawPattern struct {
	Type  PatternType `yaml:"type"`
	Value string      `yaml:"value"`
}

// RawExamples contains lines used for rule self-testing.
type RawExamples struct {
	TruePositive  []string `yaml:"true_positive"`
	FalsePositive []string `yaml:"false_positive"`
}

// RawRule is the YAML representation of a detection rule.
type RawRule struct {
	ID              string       `yaml:"id"`
	Name            string       `yaml:"name"`
	Description     string       `yaml:"description"`
	Severity        string       `yaml:"severity"`
	Category        string       `yaml:"category"`
	Remediation     string       `yaml:"remediation"`
	Targets         []string     `yaml:"targets"`
	MatchMode       string       `yaml:"match_mode"`
	Patterns        []RawPattern `yaml:"patterns"`
	ExcludePatterns []RawPattern `yaml:"exclude_patterns"`
	Examples        RawExamples  `yaml:"examples"`
}

// CompiledPattern is a pattern ready for matching.
type CompiledPattern struct {
	Type  PatternType
	Regex *regexp.Regexp // set when Type == PatternRegex
	Value string         // set when Type == PatternContains (lowercased)
}

// CompiledRule is a rule compiled and ready for execution.
type CompiledRule struct {
	ID              string
	Name            string
	Description     string
	Severity        types.Severity
	Category        string
	Remediation     string
	Targets         []string
	MatchMode       MatchMode
	Patterns        []CompiledPattern
	ExcludePatterns []CompiledPattern
	Examples        RawExamples
}

// MatchLine returns the matched substrings of line. With MatchAny every
// hit of every pattern is returned in pattern order; with MatchAll a single
// combined hit is returned only when all patterns match. A line matching
// an exclude pattern yields nothing.
func (r *CompiledRule) MatchLine(line string) []string {
	if r.Excluded(line) {
		return nil
	}
	var hits []string
	for _, p := range r.Patterns {
		found := p.FindAll(line)
		if r.MatchMode == MatchAll {
			if len(found) == 0 {
				return nil
			}
			found = found[:1]
		}
		hits = append(hits, found...)
	}
	if r.MatchMode == MatchAll && len(hits) > 0 {
		return hits[:1]
	}
	return hits
}

// Excluded reports whether line matches any exclude pattern.
func (r *CompiledRule) Excluded(line string) bool {
	for _, p := range r.ExcludePatterns {
		if len(p.FindAll(line)) > 0 {
			return true
		}
	}
	return false
}

// FindAll returns every non-overlapping match of the pattern in line.
func (p CompiledPattern) FindAll(line string) []string {
	switch p.Type {
	case PatternRegex:
		if p.Regex == nil {
			return nil
		}
		return p.Regex.FindAllString(line, -1)
	case PatternContains:
		if p.Value == "" {
			return nil
		}
		lower := strings.ToLower(line)
		var hits []string
		idx := 0
		for {
			pos := strings.Index(lower[idx:], p.Value)
			if pos == -1 {
				break
			}
			abs := idx + pos
			hits = append(hits, lower[abs:abs+len(p.Value)])
			idx = abs + len(p.Value)
		}
		return hits
	}
	return nil
}
