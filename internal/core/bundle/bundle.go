// Package bundle defines the content bundle consumed by the approval workflow:
// draft blog, portfolio, and tech-radar entries produced by external generators.
package bundle

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Type discriminates the supported content kinds.
type Type string

const (
	TypeBlog      Type = "blog"
	TypePortfolio Type = "portfolio"
	TypeTechRadar Type = "tech-radar"
)

// Types returns all supported content types.
func Types() []Type {
	return []Type{TypeBlog, TypePortfolio, TypeTechRadar}
}

// IsValid reports whether t is a supported content type.
func (t Type) IsValid() bool {
	switch t {
	case TypeBlog, TypePortfolio, TypeTechRadar:
		return true
	default:
		return false
	}
}

// ParseType converts a string to a Type.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("unknown content type %q (want one of: blog, portfolio, tech-radar)", s)
	}
	return t, nil
}

// ReviewStatusDraft is written onto a bundle when a review session is created.
const ReviewStatusDraft = "draft"

// SessionRef is the bundle-side reference to a review session.
type SessionRef struct {
	ID              string    `json:"id"`
	ContentBundleID string    `json:"contentBundleId"`
	Status          string    `json:"status"` // active, approved, rejected
	CreatedAt       time.Time `json:"createdAt"`
}

// Bundle is a draft awaiting review.
type Bundle struct {
	Type         Type           `json:"type"`
	Frontmatter  map[string]any `json:"frontmatter"`
	Content      string         `json:"content"`
	ImagePrompts []string       `json:"imagePrompts"`
	Sessions     []SessionRef   `json:"sessions"`
	ReviewStatus string         `json:"reviewStatus"`

	// Dir is the page bundle directory the bundle was loaded from, if any.
	Dir string `json:"-"`
}

// Field returns the frontmatter value for key, or nil.
func (b *Bundle) Field(key string) any {
	if b.Frontmatter == nil {
		return nil
	}
	return b.Frontmatter[key]
}

// StringField returns the frontmatter value for key rendered as a string.
// Missing values render as the empty string.
func (b *Bundle) StringField(key string) string {
	return stringify(b.Field(key))
}

// Title returns the bundle title, or "untitled" when absent.
func (b *Bundle) Title() string {
	if t := strings.TrimSpace(b.StringField("title")); t != "" {
		return t
	}
	return "untitled"
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// ID derives the stable bundle identifier: <type>-<date>-<normalized title>.
// A missing date falls back to the date of now.
//
// "My First Post" dated 2024-01-15 -> "blog-2024-01-15-my-first-post"
func (b *Bundle) ID(now time.Time) string {
	date := strings.TrimSpace(b.StringField("date"))
	if date == "" {
		date = now.UTC().Format(time.DateOnly)
	}
	title := whitespaceRun.ReplaceAllString(strings.ToLower(b.Title()), "-")
	return string(b.Type) + "-" + date + "-" + title
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case time.Time:
		return val.Format(time.DateOnly)
	default:
		return fmt.Sprint(val)
	}
}
