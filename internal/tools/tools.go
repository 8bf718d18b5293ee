// Package tools adapts each external analyzer and in-process detector to
// the scanner.Tool interface and defines the fixed run order.
package tools

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/pxkundu/awdx/internal/engine/custom"
	"github.com/pxkundu/awdx/internal/engine/pattern"
	"github.com/pxkundu/awdx/internal/logging"
	"github.com/pxkundu/awdx/internal/rules"
	"github.com/pxkundu/awdx/internal/runner"
	"github.com/pxkundu/awdx/internal/scanner"
	"github.com/pxkundu/awdx/internal/types"
)

// Deps carries what tool constructors need.
type Deps struct {
	Runner    runner.Runner
	Rules     []*rules.CompiledRule
	CustomDir string
	// Binaries overrides the executable used for an external analyzer,
	// keyed by tool name.
	Binaries map[string]string
	Logger   *zap.SugaredLogger
}

func (d Deps) binary(name string) string {
	if b, ok := d.Binaries[name]; ok && b != "" {
		return b
	}
	return name
}

// Entry registers one tool. Quick tools run in both modes; the rest run
// only in comprehensive mode.
type Entry struct {
	ID    string
	Quick bool
	New   func(Deps) scanner.Tool
}

// Registry lists every tool in run order. Report ordering follows it.
var Registry = []Entry{
	{ID: "bandit", Quick: true, New: func(d Deps) scanner.Tool { return NewBandit(d) }},
	{ID: "safety", Quick: true, New: func(d Deps) scanner.Tool { return NewSafety(d) }},
	{ID: "secrets", Quick: true, New: func(d Deps) scanner.Tool {
		return pattern.NewSecretDetector(d.Rules, d.Logger)
	}},
	{ID: "injection", Quick: true, New: func(d Deps) scanner.Tool {
		return pattern.NewInjectionDetector(d.Rules, d.Logger)
	}},
	{ID: "flake8", New: func(d Deps) scanner.Tool { return NewFlake8(d) }},
	{ID: "mypy", New: func(d Deps) scanner.Tool { return NewMypy(d) }},
	{ID: "custom", New: func(d Deps) scanner.Tool { return custom.New(d.CustomDir, d.Logger) }},
}

// IDs returns the registry IDs selected for mode, in run order.
func IDs(mode types.Mode) []string {
	var ids []string
	for _, e := range Registry {
		if mode == types.ModeComprehensive || e.Quick {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// Select builds the tools for mode in run order.
func Select(mode types.Mode, d Deps) []scanner.Tool {
	d.Logger = logging.OrNop(d.Logger)
	ids := IDs(mode)
	var out []scanner.Tool
	for _, e := range Registry {
		if slices.Contains(ids, e.ID) {
			out = append(out, e.New(d))
		}
	}
	return out
}

// failed converts a runner outcome that never completed into a result.
func failed(name string, out runner.Outcome) types.ScanResult {
	res := types.Failed(name, 0, out.Output)
	res.RawOutput = out.Output
	return res
}

// unexpectedExit marks a completed run whose exit status the tool does not
// document as a normal outcome.
func unexpectedExit(name string, out runner.Outcome) types.ScanResult {
	return types.ScanResult{
		ToolName:     name,
		Success:      false,
		ExitCode:     out.ExitCode,
		RawOutput:    out.Output,
		ErrorMessage: fmt.Sprintf("%s exited with code %d", name, out.ExitCode),
	}
}
