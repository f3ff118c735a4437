package bundle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	got, err := ParseType(" Tech-Radar ")
	require.NoError(t, err)
	assert.Equal(t, TypeTechRadar, got)

	_, err = ParseType("newsletter")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "newsletter")
}

func TestBundle_ID(t *testing.T) {
	now := time.Date(2024, 3, 9, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		b    Bundle
		want string
	}{
		{
			name: "title and date",
			b:    Bundle{Type: TypeBlog, Frontmatter: map[string]any{"title": "My First Post", "date": "2024-01-15"}},
			want: "blog-2024-01-15-my-first-post",
		},
		{
			name: "whitespace runs collapse",
			b:    Bundle{Type: TypePortfolio, Frontmatter: map[string]any{"title": "Big \t Client   Site", "date": "2023-11-02"}},
			want: "portfolio-2023-11-02-big-client-site",
		},
		{
			name: "missing title",
			b:    Bundle{Type: TypeTechRadar, Frontmatter: map[string]any{"date": "2024-02-01"}},
			want: "tech-radar-2024-02-01-untitled",
		},
		{
			name: "missing date uses now",
			b:    Bundle{Type: TypeBlog, Frontmatter: map[string]any{"title": "Hello"}},
			want: "blog-2024-03-09-hello",
		},
		{
			name: "date decoded as time",
			b:    Bundle{Type: TypeBlog, Frontmatter: map[string]any{"title": "Hello", "date": time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)}},
			want: "blog-2024-01-02-hello",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.b.ID(now))
		})
	}
}

func TestBundle_Title(t *testing.T) {
	assert.Equal(t, "untitled", (&Bundle{}).Title())
	assert.Equal(t, "untitled", (&Bundle{Frontmatter: map[string]any{"title": "   "}}).Title())
	assert.Equal(t, "Go Tips", (&Bundle{Frontmatter: map[string]any{"title": "Go Tips"}}).Title())
}

func TestHasRequiredFields(t *testing.T) {
	tests := []struct {
		name string
		b    Bundle
		want bool
	}{
		{
			name: "blog complete",
			b:    Bundle{Type: TypeBlog, Frontmatter: map[string]any{"title": "T", "date": "2024-01-15", "summary": "S"}},
			want: true,
		},
		{
			name: "blog empty summary",
			b:    Bundle{Type: TypeBlog, Frontmatter: map[string]any{"title": "T", "date": "2024-01-15", "summary": ""}},
			want: false,
		},
		{
			name: "portfolio empty technologies",
			b: Bundle{Type: TypePortfolio, Frontmatter: map[string]any{
				"title": "T", "date": "2024-01-15", "description": "D", "client": "C",
				"technologies": []any{}, "completion_date": "2024-01", "category": "web",
			}},
			want: false,
		},
		{
			name: "portfolio complete",
			b: Bundle{Type: TypePortfolio, Frontmatter: map[string]any{
				"title": "T", "date": "2024-01-15", "description": "D", "client": "C",
				"technologies": []any{"go"}, "completion_date": "2024-01", "category": "web",
			}},
			want: true,
		},
		{
			name: "tech-radar missing ring",
			b: Bundle{Type: TypeTechRadar, Frontmatter: map[string]any{
				"title": "T", "date": "2024-01-15", "description": "D", "quadrant": "tools",
			}},
			want: false,
		},
		{
			name: "nil value",
			b:    Bundle{Type: TypeBlog, Frontmatter: map[string]any{"title": "T", "date": nil, "summary": "S"}},
			want: false,
		},
		{
			name: "unknown type",
			b:    Bundle{Type: "newsletter", Frontmatter: map[string]any{"title": "T"}},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasRequiredFields(&tt.b))
		})
	}
}

func TestHasValidStructure(t *testing.T) {
	tests := []struct {
		content string
		want    bool
	}{
		{"# Title\n\nBody", true},
		{"### Deep heading", true},
		{"", false},
		{"   \n\t", false},
		{"Intro paragraph\n# Heading later", false},
		{"#NoSpace", false},
		{" # indented", false},
	}

	for _, tt := range tests {
		t.Run(tt.content, func(t *testing.T) {
			assert.Equal(t, tt.want, HasValidStructure(tt.content))
		})
	}
}

func TestHasValidImagePrompts(t *testing.T) {
	assert.True(t, HasValidImagePrompts(nil))
	assert.True(t, HasValidImagePrompts([]string{"a sunset over a datacenter"}))
	assert.False(t, HasValidImagePrompts([]string{"ok", "  "}))
}
