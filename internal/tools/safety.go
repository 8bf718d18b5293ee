package tools

import (
	"context"

	"go.uber.org/zap"

	"github.com/pxkundu/awdx/internal/logging"
	"github.com/pxkundu/awdx/internal/normalize"
	"github.com/pxkundu/awdx/internal/runner"
	"github.com/pxkundu/awdx/internal/scanner"
	"github.com/pxkundu/awdx/internal/types"
)

// Safety runs the dependency auditor against the project's manifests.
type Safety struct {
	runner runner.Runner
	bin    string
	logger *zap.SugaredLogger
}

func NewSafety(d Deps) *Safety {
	return &Safety{runner: d.Runner, bin: d.binary("safety"), logger: logging.OrNop(d.Logger)}
}

func (s *Safety) Name() string  { return "safety" }
func (s *Safety) Title() string { return "Dependency Vulnerabilities" }

func (s *Safety) Run(ctx context.Context, _ *scanner.Project) (types.ScanResult, error) {
	out := s.runner.Run(ctx, s.Name(), []string{s.bin, "scan", "--json"})
	if !out.Ran {
		return failed(s.Name(), out), nil
	}
	// 0: clean, 64: vulnerabilities found.
	if out.ExitCode != 0 && out.ExitCode != 64 {
		return unexpectedExit(s.Name(), out), nil
	}

	issues, err := normalize.Safety(out.Output)
	if err != nil {
		s.logger.Warnf("safety: %v", err)
	}
	return types.ScanResult{
		ToolName:  s.Name(),
		Success:   true,
		Issues:    issues,
		ExitCode:  out.ExitCode,
		RawOutput: out.Output,
	}, nil
}
