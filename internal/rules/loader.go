package rules

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pxkundu/awdx/internal/rules/builtin"
)

// LoadFromFS loads rules from an embed.FS or any fs.FS, in lexical file
// order and document order within each file.
func LoadFromFS(fsys fs.FS) ([]RawRule, error) {
	var all []RawRule
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isYAML(path) {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		rules, err := parseMultiDocYAML(data)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		all = append(all, rules...)
		return nil
	})
	return all, err
}

// maxRuleFileSize is the maximum size for a single YAML rule file (1 MB).
const maxRuleFileSize = 1 << 20

// ErrRuleFileTooLarge is returned for rule files over maxRuleFileSize.
var ErrRuleFileTooLarge = errors.New("rule file too large")

// LoadFromDir loads rules from a directory on disk. Unknown YAML keys are
// rejected so typos in user rules surface instead of silently matching
// nothing.
func LoadFromDir(dir string) ([]RawRule, error) {
	var all []RawRule
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !isYAML(path) {
			return nil
		}
		if info.Size() > maxRuleFileSize {
			return fmt.Errorf("%s: %w (%d bytes, max %d)", path, ErrRuleFileTooLarge, info.Size(), maxRuleFileSize)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		rules, err := parseMultiDocYAML(data)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		all = append(all, rules...)
		return nil
	})
	return all, err
}

// Load compiles the built-in rules followed by the rules found in extraDirs.
// Any load or compile error aborts.
func Load(extraDirs ...string) ([]*CompiledRule, error) {
	raws, err := LoadFromFS(builtin.FS())
	if err != nil {
		return nil, fmt.Errorf("loading built-in rules: %w", err)
	}
	for _, dir := range extraDirs {
		if dir == "" {
			continue
		}
		extra, err := LoadFromDir(dir)
		if err != nil {
			return nil, fmt.Errorf("loading rules from %s: %w", dir, err)
		}
		raws = append(raws, extra...)
	}
	compiled, errs := CompileAll(raws)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return compiled, nil
}

// parseMultiDocYAML decodes each "---" separated document as one rule.
func parseMultiDocYAML(data []byte) ([]RawRule, error) {
	var rules []RawRule
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	for {
		var raw RawRule
		err := decoder.Decode(&raw)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		if raw.ID != "" {
			rules = append(rules, raw)
		}
	}
	return rules, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
