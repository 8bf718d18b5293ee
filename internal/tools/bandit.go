package tools

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/pxkundu/awdx/internal/logging"
	"github.com/pxkundu/awdx/internal/normalize"
	"github.com/pxkundu/awdx/internal/runner"
	"github.com/pxkundu/awdx/internal/scanner"
	"github.com/pxkundu/awdx/internal/types"
)

// Bandit runs the Python vulnerability scanner. Its JSON report is written
// to a temporary file that is removed after parsing.
type Bandit struct {
	runner runner.Runner
	bin    string
	logger *zap.SugaredLogger
}

func NewBandit(d Deps) *Bandit {
	return &Bandit{runner: d.Runner, bin: d.binary("bandit"), logger: logging.OrNop(d.Logger)}
}

func (b *Bandit) Name() string  { return "bandit" }
func (b *Bandit) Title() string { return "Security Vulnerabilities" }

func (b *Bandit) Run(ctx context.Context, p *scanner.Project) (types.ScanResult, error) {
	f, err := os.CreateTemp("", "awdx-bandit-*.json")
	if err != nil {
		return types.ScanResult{}, err
	}
	report := f.Name()
	f.Close()
	defer os.Remove(report)

	argv := []string{b.bin, "-r", p.SourceArg(), "-f", "json", "-o", report, "--severity-level", "medium"}
	out := b.runner.Run(ctx, b.Name(), argv)
	if !out.Ran {
		return failed(b.Name(), out), nil
	}
	// 0: clean, 1: issues found.
	if out.ExitCode != 0 && out.ExitCode != 1 {
		return unexpectedExit(b.Name(), out), nil
	}

	var issues []types.Issue
	data, err := os.ReadFile(report)
	switch {
	case err != nil:
		b.logger.Warnf("bandit: reading report: %v", err)
	case len(data) == 0:
		b.logger.Warnf("bandit: empty report")
	default:
		issues, err = normalize.Bandit(data)
		if err != nil {
			b.logger.Warnf("bandit: %v", err)
		}
	}

	return types.ScanResult{
		ToolName:  b.Name(),
		Success:   true,
		Issues:    issues,
		ExitCode:  out.ExitCode,
		RawOutput: out.Output,
	}, nil
}
