package runner_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/pxkundu/awdx/internal/runner"
	"github.com/stretchr/testify/require"
)

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestExecRunnerSuccess(t *testing.T) {
	skipWithoutShell(t)
	r := runner.New(t.TempDir(), time.Minute, nil)

	out := r.Run(context.Background(), "echo", []string{"sh", "-c", "echo hello"})
	require.True(t, out.Ran)
	require.Equal(t, 0, out.ExitCode)
	require.Equal(t, "hello\n", out.Output)
	require.NoError(t, out.Err)
}

func TestExecRunnerNonZeroExitStillRan(t *testing.T) {
	skipWithoutShell(t)
	r := runner.New(t.TempDir(), time.Minute, nil)

	out := r.Run(context.Background(), "flake8", []string{"sh", "-c", "echo found; exit 3"})
	require.True(t, out.Ran)
	require.Equal(t, 3, out.ExitCode)
	require.Contains(t, out.Output, "found")
}

func TestExecRunnerStdoutBeforeStderr(t *testing.T) {
	skipWithoutShell(t)
	r := runner.New(t.TempDir(), time.Minute, nil)

	out := r.Run(context.Background(), "mixed", []string{"sh", "-c", "echo err 1>&2; echo out"})
	require.True(t, out.Ran)
	require.Equal(t, "out\nerr\n", out.Output)
}

func TestExecRunnerTimeout(t *testing.T) {
	skipWithoutShell(t)
	r := runner.New(t.TempDir(), 100*time.Millisecond, nil)

	out := r.Run(context.Background(), "bandit", []string{"sh", "-c", "exec sleep 5"})
	require.False(t, out.Ran)
	require.Equal(t, -1, out.ExitCode)
	require.Contains(t, out.Output, "bandit timed out")
	require.Error(t, out.Err)
}

func TestExecRunnerMissingBinary(t *testing.T) {
	r := runner.New(t.TempDir(), time.Minute, nil)

	out := r.Run(context.Background(), "safety", []string{"awdx-definitely-not-installed-xyz"})
	require.False(t, out.Ran)
	require.Equal(t, -1, out.ExitCode)
	require.Contains(t, out.Output, "safety not found")
	require.Contains(t, out.Output, "pip install safety")
}

func TestExecRunnerRelativeBinaryUnderDir(t *testing.T) {
	skipWithoutShell(t)
	dir := t.TempDir()
	bin := filepath.Join(dir, ".venv", "bin", "bandit")
	require.NoError(t, os.MkdirAll(filepath.Dir(bin), 0o755))
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\necho ran\n"), 0o755))

	r := runner.New(dir, time.Minute, nil)
	out := r.Run(context.Background(), "bandit", []string{".venv/bin/bandit"})
	require.True(t, out.Ran, out.Output)
	require.Equal(t, 0, out.ExitCode)
	require.Equal(t, "ran\n", out.Output)
}

func TestExecRunnerEmptyCommand(t *testing.T) {
	r := runner.New(t.TempDir(), time.Minute, nil)
	out := r.Run(context.Background(), "empty", nil)
	require.False(t, out.Ran)
	require.Equal(t, -1, out.ExitCode)
}

func TestExecRunnerCanceledParent(t *testing.T) {
	skipWithoutShell(t)
	r := runner.New(t.TempDir(), time.Minute, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := r.Run(ctx, "mypy", []string{"sh", "-c", "exec sleep 5"})
	require.False(t, out.Ran)
	require.Equal(t, -1, out.ExitCode)
	require.Contains(t, out.Output, "interrupted")
}

func TestFakeRunner(t *testing.T) {
	f := &runner.FakeRunner{Outcomes: map[string]runner.Outcome{
		"bandit": {Ran: true, Output: "{}", ExitCode: 0},
	}}

	out := f.Run(context.Background(), "bandit", []string{"bandit", "-r", "src"})
	require.True(t, out.Ran)
	require.True(t, f.Called("bandit"))

	out = f.Run(context.Background(), "mypy", []string{"mypy"})
	require.False(t, out.Ran)
	require.Contains(t, out.Output, "mypy not found")
	require.Len(t, f.Calls, 2)
}

func TestInstallHint(t *testing.T) {
	require.Equal(t, "pip install flake8", runner.InstallHint("flake8"))
	require.Equal(t, "pip install pylint", runner.InstallHint("pylint"))
}
