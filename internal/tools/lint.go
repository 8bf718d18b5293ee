package tools

import (
	"context"

	"github.com/pxkundu/awdx/internal/normalize"
	"github.com/pxkundu/awdx/internal/runner"
	"github.com/pxkundu/awdx/internal/scanner"
	"github.com/pxkundu/awdx/internal/types"
)

// Flake8 runs the style and lint checker.
type Flake8 struct {
	runner runner.Runner
	bin    string
}

func NewFlake8(d Deps) *Flake8 {
	return &Flake8{runner: d.Runner, bin: d.binary("flake8")}
}

func (f *Flake8) Name() string  { return "flake8" }
func (f *Flake8) Title() string { return "Code Quality" }

func (f *Flake8) Run(ctx context.Context, p *scanner.Project) (types.ScanResult, error) {
	argv := []string{f.bin, p.SourceArg(), "--max-line-length=120", "--ignore=E203,W503", "--statistics"}
	out := f.runner.Run(ctx, f.Name(), argv)
	if !out.Ran {
		return failed(f.Name(), out), nil
	}
	// 0: clean, 1: violations found.
	if out.ExitCode != 0 && out.ExitCode != 1 {
		return unexpectedExit(f.Name(), out), nil
	}
	return types.ScanResult{
		ToolName:  f.Name(),
		Success:   true,
		Issues:    normalize.Flake8(out.Output),
		ExitCode:  out.ExitCode,
		RawOutput: out.Output,
	}, nil
}

// Mypy runs the type checker. Type errors are advisory, so any completed
// run is successful whatever its exit status.
type Mypy struct {
	runner runner.Runner
	bin    string
}

func NewMypy(d Deps) *Mypy {
	return &Mypy{runner: d.Runner, bin: d.binary("mypy")}
}

func (m *Mypy) Name() string  { return "mypy" }
func (m *Mypy) Title() string { return "Type Safety" }

func (m *Mypy) Run(ctx context.Context, p *scanner.Project) (types.ScanResult, error) {
	out := m.runner.Run(ctx, m.Name(), []string{m.bin, p.SourceArg(), "--ignore-missing-imports"})
	if !out.Ran {
		return failed(m.Name(), out), nil
	}
	return types.ScanResult{
		ToolName:  m.Name(),
		Success:   true,
		Issues:    normalize.Mypy(out.Output),
		ExitCode:  out.ExitCode,
		RawOutput: out.Output,
	}, nil
}
