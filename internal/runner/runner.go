// Package runner invokes external analyzers as subprocesses with a bounded
// timeout and turns every failure mode into a structured Outcome.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pxkundu/awdx/internal/logging"
)

// DefaultTimeout bounds a single analyzer invocation.
const DefaultTimeout = 300 * time.Second

// Outcome is the result of one invocation. Ran is false when the process
// never completed: timeout, missing binary, or a start/wait error. A process
// that exits non-zero still Ran.
type Outcome struct {
	Ran      bool
	Output   string
	ExitCode int
	Err      error
}

// Runner executes an analyzer command. Implementations never panic and never
// return an error out of band: all failures are encoded in the Outcome.
type Runner interface {
	Run(ctx context.Context, name string, argv []string) Outcome
}

// ExecRunner runs commands with os/exec in Dir.
type ExecRunner struct {
	Dir     string
	Timeout time.Duration
	Logger  *zap.SugaredLogger
}

var _ Runner = &ExecRunner{}

// New creates an ExecRunner rooted at dir. A non-positive timeout selects
// DefaultTimeout.
func New(dir string, timeout time.Duration, logger *zap.SugaredLogger) *ExecRunner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ExecRunner{Dir: dir, Timeout: timeout, Logger: logging.OrNop(logger)}
}

// installHints maps tool names to install guidance shown when the binary is
// missing.
var installHints = map[string]string{
	"bandit": "pip install bandit",
	"safety": "pip install safety",
	"flake8": "pip install flake8",
	"mypy":   "pip install mypy",
}

// InstallHint returns the install guidance for a tool.
func InstallHint(name string) string {
	if hint, ok := installHints[name]; ok {
		return hint
	}
	return "pip install " + name
}

func (r *ExecRunner) Run(ctx context.Context, name string, argv []string) Outcome {
	log := logging.OrNop(r.Logger)
	if len(argv) == 0 {
		return failure(fmt.Errorf("%s: empty command", name), "Error running %s: empty command", name)
	}

	bin, err := r.resolve(argv[0])
	if err != nil {
		return failure(err, "%s not found. Install with: %s", name, InstallHint(name))
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log.Debugf("running %s: %v", name, argv)
	cmd := exec.CommandContext(runCtx, bin, argv[1:]...)
	cmd.Dir = r.Dir
	cmd.WaitDelay = 5 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	output := stdout.String() + stderr.String()
	log.Debugf("%s finished: err=%v, %d bytes of output", name, err, len(output))

	switch {
	case errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		return failure(runCtx.Err(), "%s timed out after %s", name, timeout)
	case ctx.Err() != nil:
		return failure(ctx.Err(), "%s interrupted: %v", name, ctx.Err())
	case err == nil:
		return Outcome{Ran: true, Output: output, ExitCode: 0}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
		return Outcome{Ran: true, Output: output, ExitCode: exitErr.ExitCode()}
	}
	return failure(err, "Error running %s: %v", name, err)
}

// resolve locates bin. A relative path with a separator is taken relative to
// Dir, where the command runs, not the process working directory.
func (r *ExecRunner) resolve(bin string) (string, error) {
	if r.Dir != "" && !filepath.IsAbs(bin) && strings.ContainsRune(filepath.ToSlash(bin), '/') {
		bin = filepath.Join(r.Dir, bin)
	}
	return exec.LookPath(bin)
}

func failure(err error, format string, args ...any) Outcome {
	return Outcome{
		Ran:      false,
		Output:   fmt.Sprintf(format, args...),
		ExitCode: -1,
		Err:      err,
	}
}

// FakeRunner returns canned outcomes keyed by tool name and records every
// call. Hook, when set, takes precedence and may produce side effects such
// as writing an analyzer's report file.
type FakeRunner struct {
	Outcomes map[string]Outcome
	Hook     func(name string, argv []string) Outcome

	mu    sync.Mutex
	Calls []Call
}

// Call is one recorded FakeRunner invocation.
type Call struct {
	Name string
	Argv []string
}

var _ Runner = &FakeRunner{}

func (f *FakeRunner) Run(_ context.Context, name string, argv []string) Outcome {
	f.mu.Lock()
	f.Calls = append(f.Calls, Call{Name: name, Argv: append([]string(nil), argv...)})
	f.mu.Unlock()

	if f.Hook != nil {
		return f.Hook(name, argv)
	}
	if out, ok := f.Outcomes[name]; ok {
		return out
	}
	return failure(exec.ErrNotFound, "%s not found. Install with: %s", name, InstallHint(name))
}

// Called reports whether the named tool was invoked.
func (f *FakeRunner) Called(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.Calls {
		if c.Name == name {
			return true
		}
	}
	return false
}
