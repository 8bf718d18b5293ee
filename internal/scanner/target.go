package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// IgnoreFile holds gitignore-style patterns excluded from every scan.
const IgnoreFile = ".awdx-scanignore"

// DefaultSourceDir is the conventional source root beneath the project root.
const DefaultSourceDir = "src"

// DefaultExtensions are the recognized source file extensions.
var DefaultExtensions = []string{".py"}

var defaultIgnores = []string{
	".git",
	"node_modules",
	"__pycache__",
	".venv",
	"venv",
	".tox",
	".mypy_cache",
	"*.egg-info",
}

// Target represents a source file to be scanned.
type Target struct {
	Path    string
	RelPath string // slash-separated, relative to the project root
	Content []byte
}

// LoadContent reads the file content into memory.
func (t *Target) LoadContent() error {
	data, err := os.ReadFile(t.Path)
	if err != nil {
		return err
	}
	t.Content = data
	return nil
}

// Lines returns the content split into lines with line endings removed.
func (t *Target) Lines() []string {
	lines := strings.Split(string(t.Content), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// Project describes the tree under scan. It is read-only input to every
// tool; SourceDir is relative to Root.
type Project struct {
	Root       string
	SourceDir  string
	Extensions []string
	Ignore     []string

	matcher *ignore.GitIgnore
	only    map[string]bool
}

// NewProject resolves root to an absolute directory. An empty sourceDir
// selects DefaultSourceDir when it exists and the root otherwise; an
// explicit sourceDir must exist.
func NewProject(root, sourceDir string, extensions, ignorePatterns []string) (*Project, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", abs)
	}

	if sourceDir == "" {
		sourceDir = "."
		if fi, err := os.Stat(filepath.Join(abs, DefaultSourceDir)); err == nil && fi.IsDir() {
			sourceDir = DefaultSourceDir
		}
	} else if fi, err := os.Stat(filepath.Join(abs, sourceDir)); err != nil || !fi.IsDir() {
		return nil, fmt.Errorf("source directory %s not found under %s", sourceDir, abs)
	}

	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	exts := make([]string, 0, len(extensions))
	for _, e := range extensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts = append(exts, e)
	}

	p := &Project{
		Root:       abs,
		SourceDir:  filepath.ToSlash(filepath.Clean(sourceDir)),
		Extensions: exts,
		Ignore:     ignorePatterns,
	}
	p.matcher = ignore.CompileIgnoreLines(p.ignoreLines()...)
	return p, nil
}

// SourceRoot is the absolute directory the detectors walk.
func (p *Project) SourceRoot() string {
	return filepath.Join(p.Root, filepath.FromSlash(p.SourceDir))
}

// SourceArg is the source directory as passed to external analyzers, which
// run with the project root as their working directory.
func (p *Project) SourceArg() string {
	if p.SourceDir == "." || p.SourceDir == "" {
		return "."
	}
	return p.SourceDir + "/"
}

// Rel returns path relative to the project root, slash-separated.
func (p *Project) Rel(path string) string {
	rel, err := filepath.Rel(p.Root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// IsSource reports whether a file name carries a recognized extension.
func (p *Project) IsSource(name string) bool {
	return slices.Contains(p.Extensions, strings.ToLower(filepath.Ext(name)))
}

// Ignored reports whether a project-relative path is excluded.
func (p *Project) Ignored(relPath string) bool {
	if p.matcher == nil {
		p.matcher = ignore.CompileIgnoreLines(p.ignoreLines()...)
	}
	return p.matcher.MatchesPath(relPath)
}

// Restrict limits Sources to the given project-relative paths. A non-nil
// empty list selects nothing.
func (p *Project) Restrict(relPaths []string) {
	p.only = make(map[string]bool, len(relPaths))
	for _, rel := range relPaths {
		p.only[filepath.ToSlash(filepath.Clean(rel))] = true
	}
}

// Sources walks the source root and returns every recognized source file
// not excluded by ignore patterns, in lexical order. Unreadable entries are
// skipped.
func (p *Project) Sources() ([]*Target, error) {
	var targets []*Target
	err := filepath.WalkDir(p.SourceRoot(), func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == p.SourceRoot() {
				return err
			}
			return nil
		}
		rel := p.Rel(path)
		if d.IsDir() {
			if path != p.SourceRoot() && (p.Ignored(rel) || p.Ignored(rel+"/")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !p.IsSource(d.Name()) || p.Ignored(rel) {
			return nil
		}
		if p.only != nil && !p.only[rel] {
			return nil
		}
		targets = append(targets, &Target{Path: path, RelPath: rel})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", p.SourceRoot(), err)
	}
	return targets, nil
}

func (p *Project) ignoreLines() []string {
	lines := append([]string(nil), defaultIgnores...)
	lines = append(lines, p.Ignore...)
	data, err := os.ReadFile(filepath.Join(p.Root, IgnoreFile))
	if err != nil {
		return lines
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			lines = append(lines, line)
		}
	}
	return lines
}
