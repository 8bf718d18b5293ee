package scanner

import (
	"context"
	"errors"
	"os/exec"
	"strings"
)

// ErrNotGitRepo is returned by ChangedFiles when root is not inside a git
// work tree or git is not installed.
var ErrNotGitRepo = errors.New("not a git repository")

// ChangedFiles returns the modified, staged, and untracked files under root,
// slash-separated and relative to root. Paths come back in git's order
// without duplicates.
func ChangedFiles(ctx context.Context, root string) ([]string, error) {
	if _, err := exec.LookPath("git"); err != nil {
		return nil, ErrNotGitRepo
	}
	if _, err := runGit(ctx, root, "rev-parse", "--is-inside-work-tree"); err != nil {
		return nil, ErrNotGitRepo
	}

	// A repo without commits has no HEAD to diff against.
	out, err := runGit(ctx, root, "diff", "--name-only", "--relative", "HEAD")
	if err != nil {
		out, err = runGit(ctx, root, "diff", "--name-only", "--relative", "--cached")
		if err != nil {
			return nil, err
		}
	}
	files := splitLines(out)

	out, err = runGit(ctx, root, "ls-files", "--others", "--exclude-standard")
	if err != nil {
		return nil, err
	}
	files = append(files, splitLines(out)...)

	seen := make(map[string]bool, len(files))
	result := files[:0]
	for _, f := range files {
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		result = append(result, f)
	}
	return result, nil
}

func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func splitLines(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
