package bundle

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// File names inside a Hugo page bundle directory.
const (
	IndexFile   = "index.md"
	PromptsFile = "image-prompts.yaml"
)

// ErrNoFrontmatter is returned when a document does not start with a
// "---" delimited YAML block.
var ErrNoFrontmatter = errors.New("invalid or missing frontmatter")

// ParseDocument splits a markdown document into its YAML frontmatter and body.
// Frontmatter must be delimited by "---" on its own line at the start of the
// document. Blank lines between the closing delimiter and the body are dropped.
func ParseDocument(content string) (map[string]any, string, error) {
	content = strings.TrimPrefix(content, "\ufeff")
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")

	if strings.TrimSpace(lines[0]) != "---" {
		return nil, "", ErrNoFrontmatter
	}

	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			end = i
			break
		}
	}
	if end < 0 {
		return nil, "", ErrNoFrontmatter
	}

	fm := make(map[string]any)
	if err := yaml.Unmarshal([]byte(strings.Join(lines[1:end], "\n")), &fm); err != nil {
		return nil, "", fmt.Errorf("parse frontmatter: %w", err)
	}

	body := strings.TrimLeft(strings.Join(lines[end+1:], "\n"), "\n")
	return fm, body, nil
}

// Load reads a page bundle from dir (or from the directory containing dir when
// dir names an index.md file). Image prompts are read from image-prompts.yaml
// when present. The type is taken as given; an empty type is preserved so the
// caller can reject the bundle.
func Load(dir string, t Type) (*Bundle, error) {
	if filepath.Base(dir) == IndexFile {
		dir = filepath.Dir(dir)
	}

	data, err := os.ReadFile(filepath.Join(dir, IndexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s not found in bundle %s", IndexFile, dir)
		}
		return nil, fmt.Errorf("read bundle: %w", err)
	}

	fm, body, err := ParseDocument(string(data))
	if err != nil {
		return nil, fmt.Errorf("bundle %s: %w", dir, err)
	}

	prompts, err := loadPrompts(filepath.Join(dir, PromptsFile))
	if err != nil {
		return nil, fmt.Errorf("bundle %s: %w", dir, err)
	}

	return &Bundle{
		Type:         t,
		Frontmatter:  fm,
		Content:      body,
		ImagePrompts: prompts,
		Dir:          dir,
	}, nil
}

func loadPrompts(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read image prompts: %w", err)
	}

	var prompts []string
	if err := yaml.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("parse image prompts: %w", err)
	}
	return prompts, nil
}

// InferType returns the content type whose section directory contains path.
// sections maps each type to its section directory.
func InferType(path string, sections map[Type]string) (Type, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}

	for _, t := range Types() {
		root, ok := sections[t]
		if !ok || root == "" {
			continue
		}
		rootAbs, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(rootAbs, abs)
		if err != nil {
			continue
		}
		if rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return t, true
		}
	}

	return "", false
}
