package bundle

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocument(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantFM   map[string]any
		wantBody string
		wantErr  bool
	}{
		{
			name:     "frontmatter and body",
			content:  "---\ntitle: Hello\ntags:\n  - go\n---\n\n# Hello\n\nBody\n",
			wantFM:   map[string]any{"title": "Hello", "tags": []any{"go"}},
			wantBody: "# Hello\n\nBody\n",
		},
		{
			name:     "crlf line endings",
			content:  "---\r\ntitle: Hello\r\n---\r\n# Hello\r\n",
			wantFM:   map[string]any{"title": "Hello"},
			wantBody: "# Hello\n",
		},
		{
			name:     "empty frontmatter",
			content:  "---\n---\n# Body",
			wantFM:   map[string]any{},
			wantBody: "# Body",
		},
		{
			name:    "no frontmatter",
			content: "# Just a heading\n",
			wantErr: true,
		},
		{
			name:    "unclosed frontmatter",
			content: "---\ntitle: Hello\n",
			wantErr: true,
		},
		{
			name:    "empty document",
			content: "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm, body, err := ParseDocument(tt.content)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoFrontmatter)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFM, fm)
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestParseDocument_InvalidYAML(t *testing.T) {
	_, _, err := ParseDocument("---\ntitle: [unclosed\n---\n# x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse frontmatter")
}

func writeBundle(t *testing.T, dir, index, prompts string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, IndexFile), []byte(index), 0o644))
	if prompts != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, PromptsFile), []byte(prompts), 0o644))
	}
}

func TestLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "my-post")
	writeBundle(t, dir,
		"---\ntitle: My Post\ndate: \"2024-01-15\"\nsummary: short\n---\n# My Post\n",
		"- a lighthouse at dusk\n- a server rack\n",
	)

	b, err := Load(dir, TypeBlog)
	require.NoError(t, err)
	assert.Equal(t, TypeBlog, b.Type)
	assert.Equal(t, "My Post", b.Title())
	assert.Equal(t, "# My Post\n", b.Content)
	assert.Equal(t, []string{"a lighthouse at dusk", "a server rack"}, b.ImagePrompts)
	assert.Equal(t, dir, b.Dir)
	assert.Equal(t, "blog-2024-01-15-my-post", b.ID(time.Now()))

	// index.md path resolves to its directory
	b, err = Load(filepath.Join(dir, IndexFile), TypeBlog)
	require.NoError(t, err)
	assert.Equal(t, dir, b.Dir)
}

func TestLoad_NoPrompts(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, "---\ntitle: X\n---\n# X\n", "")

	b, err := Load(dir, "")
	require.NoError(t, err)
	assert.Empty(t, b.ImagePrompts)
	assert.Empty(t, b.Type)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(t.TempDir(), TypeBlog)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index.md not found")

	dir := t.TempDir()
	writeBundle(t, dir, "# no frontmatter\n", "")
	_, err = Load(dir, TypeBlog)
	assert.ErrorIs(t, err, ErrNoFrontmatter)

	dir = t.TempDir()
	writeBundle(t, dir, "---\ntitle: X\n---\n# X\n", "key: value\n")
	_, err = Load(dir, TypeBlog)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse image prompts")
}

func TestInferType(t *testing.T) {
	root := t.TempDir()
	sections := map[Type]string{
		TypeBlog:      filepath.Join(root, "content", "blog", "posts"),
		TypePortfolio: filepath.Join(root, "content", "portfolio"),
		TypeTechRadar: filepath.Join(root, "content", "tools"),
	}

	tests := []struct {
		path   string
		want   Type
		wantOK bool
	}{
		{filepath.Join(root, "content", "blog", "posts", "hello"), TypeBlog, true},
		{filepath.Join(root, "content", "portfolio", "acme", "index.md"), TypePortfolio, true},
		{filepath.Join(root, "content", "tools", "htmx"), TypeTechRadar, true},
		{filepath.Join(root, "content", "tools"), "", false},
		{filepath.Join(root, "content", "toolsx", "htmx"), "", false},
		{filepath.Join(root, "drafts", "hello"), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := InferType(tt.path, sections)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
