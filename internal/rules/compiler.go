package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/pxkundu/awdx/internal/types"
)

// Compile validates raw and prepares its patterns for line matching. IDs and
// categories are upper-cased so that overrides and --disable-rule, which
// compare upper-case IDs, reach user rules written in any case.
func Compile(raw RawRule) (*CompiledRule, error) {
	id := strings.ToUpper(strings.TrimSpace(raw.ID))
	if id == "" {
		return nil, fmt.Errorf("rule missing ID")
	}
	if len(raw.Patterns) == 0 {
		return nil, fmt.Errorf("rule %s: no patterns defined", id)
	}

	sev, err := types.ParseSeverity(raw.Severity)
	if err != nil {
		return nil, fmt.Errorf("rule %s: %w", id, err)
	}
	mode, err := parseMatchMode(raw.MatchMode)
	if err != nil {
		return nil, fmt.Errorf("rule %s: %w", id, err)
	}

	name := strings.TrimSpace(raw.Name)
	if name == "" {
		name = id
	}
	rule := &CompiledRule{
		ID:          id,
		Name:        name,
		Description: raw.Description,
		Severity:    sev,
		Category:    strings.ToUpper(strings.TrimSpace(raw.Category)),
		Remediation: raw.Remediation,
		Targets:     raw.Targets,
		MatchMode:   mode,
		Examples:    raw.Examples,
	}
	if rule.Patterns, err = compilePatterns(raw.Patterns); err != nil {
		return nil, fmt.Errorf("rule %s pattern %w", id, err)
	}
	if rule.ExcludePatterns, err = compilePatterns(raw.ExcludePatterns); err != nil {
		return nil, fmt.Errorf("rule %s exclude_pattern %w", id, err)
	}
	return rule, nil
}

func parseMatchMode(s string) (MatchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any":
		return MatchAny, nil
	case "all":
		return MatchAll, nil
	default:
		return MatchAny, fmt.Errorf("unknown match_mode %q (want any or all)", s)
	}
}

func compilePatterns(raws []RawPattern) ([]CompiledPattern, error) {
	var out []CompiledPattern
	for i, p := range raws {
		cp, err := compilePattern(p)
		if err != nil {
			return nil, fmt.Errorf("%d: %w", i, err)
		}
		out = append(out, cp)
	}
	return out, nil
}

func compilePattern(p RawPattern) (CompiledPattern, error) {
	cp := CompiledPattern{Type: p.Type, Value: p.Value}
	switch p.Type {
	case PatternRegex:
		re, err := regexp.Compile(p.Value)
		if err != nil {
			return cp, fmt.Errorf("invalid regex: %w", err)
		}
		cp.Regex = re
	case PatternContains:
		cp.Value = strings.ToLower(p.Value)
	default:
		return cp, fmt.Errorf("unknown type %q", p.Type)
	}
	return cp, nil
}

// CompileAll compiles raws in order. Invalid rules and repeated IDs are
// reported and left out; the first definition of an ID wins, so a user rule
// cannot shadow a built-in one.
func CompileAll(raws []RawRule) ([]*CompiledRule, []error) {
	var (
		out  []*CompiledRule
		errs []error
		seen = make(map[string]bool, len(raws))
	)
	for _, raw := range raws {
		rule, err := Compile(raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if seen[rule.ID] {
			errs = append(errs, fmt.Errorf("rule %s: duplicate ID", rule.ID))
			continue
		}
		seen[rule.ID] = true
		out = append(out, rule)
	}
	return out, errs
}

// RuleOverride changes a rule's severity or disables it.
type RuleOverride struct {
	Severity string
	Disabled bool
}

// ApplyOverrides applies overrides keyed by upper-case rule ID. Disabled
// rules are dropped. A bad severity keeps the rule unchanged, and an
// override naming no loaded rule is reported; neither stops the others.
func ApplyOverrides(compiled []*CompiledRule, overrides map[string]RuleOverride) ([]*CompiledRule, []error) {
	var (
		out  []*CompiledRule
		errs []error
		used = make(map[string]bool, len(overrides))
	)
	for _, rule := range compiled {
		ovr, ok := overrides[rule.ID]
		if !ok {
			out = append(out, rule)
			continue
		}
		used[rule.ID] = true
		if ovr.Disabled {
			continue
		}
		if ovr.Severity != "" {
			sev, err := types.ParseSeverity(ovr.Severity)
			if err != nil {
				errs = append(errs, fmt.Errorf("rule %s override: %w", rule.ID, err))
			} else {
				rule.Severity = sev
			}
		}
		out = append(out, rule)
	}

	var unknown []string
	for id := range overrides {
		if !used[id] {
			unknown = append(unknown, id)
		}
	}
	sort.Strings(unknown)
	for _, id := range unknown {
		errs = append(errs, fmt.Errorf("override for unknown rule %s", id))
	}
	return out, errs
}

// FilterByCategory keeps rules whose category is one of cats, preserving order.
func FilterByCategory(compiled []*CompiledRule, cats ...string) []*CompiledRule {
	var out []*CompiledRule
	for _, rule := range compiled {
		for _, c := range cats {
			if rule.Category == c {
				out = append(out, rule)
				break
			}
		}
	}
	return out
}

// FindByID returns the rule with the given ID, matched case-insensitively.
func FindByID(compiled []*CompiledRule, id string) (*CompiledRule, bool) {
	for _, rule := range compiled {
		if strings.EqualFold(rule.ID, id) {
			return rule, true
		}
	}
	return nil, false
}

// FilterByIDs drops rules whose upper-case ID is in disabled.
func FilterByIDs(compiled []*CompiledRule, disabled map[string]bool) []*CompiledRule {
	var out []*CompiledRule
	for _, rule := range compiled {
		if !disabled[rule.ID] {
			out = append(out, rule)
		}
	}
	return out
}
