package bundle

import (
	"regexp"
	"strings"
)

// RequiredFields returns the frontmatter fields a content type must define.
// Unknown types have no field set and never pass the frontmatter check.
func RequiredFields(t Type) []string {
	switch t {
	case TypeBlog:
		return []string{"title", "date", "summary"}
	case TypePortfolio:
		return []string{"title", "date", "description", "client", "technologies", "completion_date", "category"}
	case TypeTechRadar:
		return []string{"title", "date", "description", "quadrant", "ring"}
	default:
		return nil
	}
}

// MissingFields returns the required fields that are absent or empty.
func MissingFields(b *Bundle) []string {
	var missing []string
	for _, f := range RequiredFields(b.Type) {
		if !isPresent(b.Field(f)) {
			missing = append(missing, f)
		}
	}
	return missing
}

// HasRequiredFields is the frontmatter checkpoint.
func HasRequiredFields(b *Bundle) bool {
	if !b.Type.IsValid() {
		return false
	}
	return len(MissingFields(b)) == 0
}

var leadingHeading = regexp.MustCompile(`^#+\s`)

// HasValidStructure is the structure checkpoint: the body is non-empty and
// starts with a markdown heading.
func HasValidStructure(content string) bool {
	if strings.TrimSpace(content) == "" {
		return false
	}
	return leadingHeading.MatchString(content)
}

// HasValidImagePrompts is the images checkpoint. No prompts passes.
func HasValidImagePrompts(prompts []string) bool {
	for _, p := range prompts {
		if strings.TrimSpace(p) == "" {
			return false
		}
	}
	return true
}

func isPresent(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(val) != ""
	case []any:
		return len(val) > 0
	case []string:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	case bool:
		return val
	default:
		return true
	}
}
