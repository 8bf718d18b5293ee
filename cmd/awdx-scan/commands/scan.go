package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/pxkundu/awdx"
	"github.com/pxkundu/awdx/internal/config"
	"github.com/pxkundu/awdx/internal/logging"
	"github.com/pxkundu/awdx/internal/meta"
	"github.com/pxkundu/awdx/internal/output"
	"github.com/pxkundu/awdx/internal/runner"
)

// projectMarker identifies the project root when no path is given.
const projectMarker = "pyproject.toml"

var (
	flagQuick        bool
	flagReport       string
	flagTimeout      time.Duration
	flagPhaseTimeout time.Duration
	flagWorkers      int
	flagSourceDir    string
	flagCustomDir    string
	flagNoProgress   bool
	flagChanged      bool
	flagVerbose      bool
)

// scanRunner replaces the subprocess runner in tests.
var scanRunner runner.Runner

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan a Python project and report its security posture",
	Long: `Scan runs every analyzer for the selected mode against the project and
prints a summary table. Without a path the project root is found by walking up
from the working directory to the nearest pyproject.toml.

Exit status is 0 when no HIGH or CRITICAL issue was found, 1 when one was (or
on an unexpected error), and 130 when interrupted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&flagQuick, "quick", false, "Run only bandit, safety, secret, and injection checks")
	scanCmd.Flags().StringVar(&flagReport, "report", "", "Write the full report to this file (markdown unless --format says otherwise)")
	scanCmd.Flags().DurationVar(&flagTimeout, "timeout", runner.DefaultTimeout, "Timeout for each analyzer process")
	scanCmd.Flags().DurationVar(&flagPhaseTimeout, "phase-timeout", 0, "Timeout for each tool phase (default 10m)")
	scanCmd.Flags().IntVar(&flagWorkers, "workers", 1, "Number of tools to run at once")
	scanCmd.Flags().StringVar(&flagSourceDir, "source-dir", "", "Source directory relative to the project root (default: src, else .)")
	scanCmd.Flags().StringVar(&flagCustomDir, "custom-dir", "", "Directory checked for subprocess hygiene (default: src/awdx/ai_engine)")
	scanCmd.Flags().BoolVar(&flagChanged, "changed", false, "Limit secret and injection checks to files changed in git")
	scanCmd.Flags().BoolVar(&flagNoProgress, "no-progress", false, "Do not print per-tool progress")
	scanCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "List HIGH and CRITICAL issues under the summary table")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(args)
	if err != nil {
		return err
	}

	logger, err := logging.New(flagDebug)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	cfg := loadScanConfig(cmd, root, logger)
	if os.Getenv("NO_COLOR") != "" {
		flagNoColor = true
	}

	reportFormatter, err := reportFormatter()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	if !flagNoProgress {
		fmt.Fprintf(stderr, "Scanning %s (%s mode)\n", root, modeOf().String())
	}

	summary, err := awdx.Scan(ctx, root, scanOptions(cfg, logger, stderr)...)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(stderr, "\nScan interrupted by user")
			return &ExitError{Code: ExitInterrupted}
		}
		return fmt.Errorf("scan failed: %w", err)
	}

	output.ToolVersion = Version

	// The summary table goes to stdout unless the report itself is printed
	// there.
	summaryOut := stdout
	if reportFormatter != nil && flagReport == "" {
		summaryOut = stderr
	}
	terminal := &output.TerminalFormatter{NoColor: flagNoColor, Verbose: flagVerbose}
	if err := terminal.Format(summaryOut, summary); err != nil {
		return err
	}

	if err := writeReport(reportFormatter, summary, stdout, stderr); err != nil {
		return err
	}

	if code := summary.ExitCode(); code != ExitClean {
		return &ExitError{Code: code}
	}
	return nil
}

// resolveRoot returns the explicit path, or the nearest ancestor of the
// working directory that contains pyproject.toml.
func resolveRoot(args []string) (string, error) {
	if len(args) > 0 {
		abs, err := filepath.Abs(args[0])
		if err != nil {
			return "", err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return "", err
		}
		if !info.IsDir() {
			return "", fmt.Errorf("%s is not a directory", args[0])
		}
		return abs, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return findProjectRoot(cwd)
}

func findProjectRoot(start string) (string, error) {
	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, projectMarker)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find project root (no %s found above %s)", projectMarker, start)
		}
		dir = parent
	}
}

// loadScanConfig reads the project config and fills in every flag the user
// did not set explicitly.
func loadScanConfig(cmd *cobra.Command, root string, logger *zap.SugaredLogger) config.Config {
	cfg, err := config.Load(root)
	if err != nil {
		logger.Warnf("%v", err)
		return config.Config{}
	}
	if cfg.Path != "" {
		logger.Debugf("using config %s", cfg.Path)
	}

	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}
	if !changed("format") && cfg.Format != "" {
		flagFormat = cfg.Format
	}
	if !changed("rules") && cfg.Rules != "" {
		flagRules = cfg.Rules
	}
	if !changed("quick") && cfg.Quick {
		flagQuick = true
	}
	if !changed("report") && cfg.Report != "" {
		flagReport = cfg.Report
	}
	if !changed("timeout") && cfg.Timeout > 0 {
		flagTimeout = cfg.Timeout
	}
	if !changed("phase-timeout") && cfg.PhaseTimeout > 0 {
		flagPhaseTimeout = cfg.PhaseTimeout
	}
	if !changed("workers") && cfg.Workers > 0 {
		flagWorkers = cfg.Workers
	}
	if !changed("source-dir") && cfg.SourceDir != "" {
		flagSourceDir = cfg.SourceDir
	}
	if !changed("custom-dir") && cfg.CustomDir != "" {
		flagCustomDir = cfg.CustomDir
	}
	return cfg
}

func modeOf() awdx.Mode {
	if flagQuick {
		return awdx.ModeQuick
	}
	return awdx.ModeComprehensive
}

func scanOptions(cfg config.Config, logger *zap.SugaredLogger, progress io.Writer) []awdx.Option {
	opts := []awdx.Option{
		awdx.WithMode(modeOf()),
		awdx.WithSourceDir(flagSourceDir),
		awdx.WithExtensions(cfg.Extensions...),
		awdx.WithIgnorePatterns(cfg.Ignore),
		awdx.WithCustomRules(flagRules),
		awdx.WithDisabledRules(append(cfg.DisabledRules, flagDisableRules...)...),
		awdx.WithCustomDir(flagCustomDir),
		awdx.WithBinaries(cfg.Binaries),
		awdx.WithTimeout(flagTimeout),
		awdx.WithPhaseTimeout(flagPhaseTimeout),
		awdx.WithWorkers(flagWorkers),
		awdx.WithChangedOnly(flagChanged),
		awdx.WithLogger(logger),
	}
	if len(cfg.RuleOverrides) > 0 {
		overrides := make(map[string]awdx.RuleOverride, len(cfg.RuleOverrides))
		for id, ovr := range cfg.RuleOverrides {
			overrides[id] = awdx.RuleOverride{Severity: ovr.Severity, Disabled: ovr.Disabled}
		}
		opts = append(opts, awdx.WithRuleOverrides(overrides))
	}
	if !flagNoProgress {
		opts = append(opts, awdx.WithObserver(output.NewProgress(progress, isTerminal(progress), flagNoColor)))
	}
	if scanRunner != nil {
		opts = append(opts, awdx.WithRunner(scanRunner))
	}
	return opts
}

// reportFormatter returns the formatter for the full report, or nil when
// only the terminal summary is wanted. A --report file with the terminal
// format gets markdown.
func reportFormatter() (output.Formatter, error) {
	format := strings.ToLower(flagFormat)
	if format == "terminal" || format == "" {
		if flagReport == "" {
			return nil, nil
		}
		format = "markdown"
	}
	return output.New(format, flagNoColor)
}

func writeReport(f output.Formatter, s *meta.Summary, stdout, stderr io.Writer) error {
	if f == nil {
		return nil
	}
	if flagReport == "" {
		return f.Format(stdout, s)
	}

	if dir := filepath.Dir(flagReport); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}
	}
	file, err := os.Create(flagReport)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	if err := f.Format(file, s); err != nil {
		_ = file.Close()
		return fmt.Errorf("writing report: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	fmt.Fprintf(stderr, "Report saved to: %s\n", flagReport)
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
