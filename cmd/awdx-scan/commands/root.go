package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	flagFormat       string
	flagRules        string
	flagNoColor      bool
	flagDebug        bool
	flagDisableRules []string
)

var rootCmd = &cobra.Command{
	Use:   "awdx-scan",
	Short: "Security posture scanner for Python projects",
	Long: `awdx-scan runs bandit, safety, flake8, and mypy alongside built-in secret,
injection, and project-specific detectors, then aggregates every finding into
one scored report. It exits 1 when any HIGH or CRITICAL issue is found.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "terminal", "Output format (terminal, markdown, json, sarif, html)")
	rootCmd.PersistentFlags().StringVar(&flagRules, "rules", "", "Additional rules directory")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging on stderr")
	rootCmd.PersistentFlags().StringSliceVar(&flagDisableRules, "disable-rule", nil, "Rule IDs to disable (comma-separated, repeatable)")
}

// ExitError carries a process exit code out of a command. Err, when set,
// is printed before exiting.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Exit codes.
const (
	ExitClean       = 0
	ExitBlocking    = 1
	ExitInterrupted = 130
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
