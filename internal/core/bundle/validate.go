package bundle

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// Report is the detailed result of validating a bundle. Errors mirror the
// failing checkpoints with specifics; warnings never block approval.
type Report struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Valid returns true if the report has no errors.
func (r Report) Valid() bool {
	return len(r.Errors) == 0
}

// Validator produces a detailed validation report for a bundle.
type Validator interface {
	Validate(b *Bundle) Report
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(b *Bundle) Report

// Validate calls f(b).
func (f ValidatorFunc) Validate(b *Bundle) Report {
	return f(b)
}

// DefaultValidator validates with Validate.
var DefaultValidator Validator = ValidatorFunc(Validate)

var (
	dayDate    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	strictDay  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	monthDate  = regexp.MustCompile(`^\d{4}-\d{2}$`)
	githubURL  = regexp.MustCompile(`^https?://github\.com/`)
	httpURL    = regexp.MustCompile(`^https?://.+`)
	radarRings = []string{"adopt", "trial", "assess", "hold"}
)

const (
	summaryMin  = 100
	summaryMax  = 250
	summaryHint = "recommend 150-200 characters"
)

// Validate checks a bundle and returns errors for each failing checkpoint and
// warnings for style and format issues.
func Validate(b *Bundle) Report {
	r := Report{Errors: []string{}, Warnings: []string{}}

	if !b.Type.IsValid() {
		r.Errors = append(r.Errors, fmt.Sprintf("frontmatter validation failed: unknown content type %q", b.Type))
	} else if missing := MissingFields(b); len(missing) > 0 {
		for _, f := range missing {
			r.Errors = append(r.Errors, "frontmatter validation failed: missing required field: "+f)
		}
	}

	if !HasValidStructure(b.Content) {
		r.Errors = append(r.Errors, "structure validation failed: content is empty or missing headings")
	}

	if !HasValidImagePrompts(b.ImagePrompts) {
		r.Errors = append(r.Errors, "image validation failed: some image prompts are empty")
	}

	switch b.Type {
	case TypeBlog:
		r.Warnings = append(r.Warnings, blogWarnings(b)...)
	case TypePortfolio:
		r.Warnings = append(r.Warnings, portfolioWarnings(b)...)
	case TypeTechRadar:
		r.Warnings = append(r.Warnings, techRadarWarnings(b)...)
	}

	return r
}

func blogWarnings(b *Bundle) []string {
	var w []string

	w = append(w, dateWarning(b, dayDate)...)

	if summary := b.StringField("summary"); summary != "" {
		switch n := len(summary); {
		case n < summaryMin:
			w = append(w, "summary too short ("+summaryHint+")")
		case n > summaryMax:
			w = append(w, "summary too long ("+summaryHint+")")
		}
	}

	w = append(w, listWarning(b, "tags")...)
	w = append(w, listWarning(b, "categories")...)
	return w
}

func portfolioWarnings(b *Bundle) []string {
	var w []string

	w = append(w, dateWarning(b, strictDay)...)

	if cd := b.StringField("completion_date"); cd != "" && !monthDate.MatchString(cd) {
		w = append(w, "invalid completion_date format (should be YYYY-MM)")
	}

	w = append(w, listWarning(b, "technologies")...)

	if u := b.StringField("github_url"); u != "" && !githubURL.MatchString(u) {
		w = append(w, "github_url should be a valid GitHub URL")
	}
	if u := b.StringField("live_url"); u != "" && !httpURL.MatchString(u) {
		w = append(w, "live_url should be a valid HTTP/HTTPS URL")
	}
	return w
}

func techRadarWarnings(b *Bundle) []string {
	var w []string

	w = append(w, dateWarning(b, dayDate)...)

	for _, key := range []string{"quadrant", "ring"} {
		if v := b.Field(key); v != nil {
			if _, ok := v.(string); !ok {
				w = append(w, key+" must be a string")
			}
		}
	}

	if ring, ok := b.Field("ring").(string); ok && ring != "" && !slices.Contains(radarRings, ring) {
		w = append(w, "ring should be one of: "+strings.Join(radarRings, ", "))
	}

	w = append(w, listWarning(b, "tags")...)
	return w
}

func dateWarning(b *Bundle, pattern *regexp.Regexp) []string {
	if d := b.StringField("date"); d != "" && !pattern.MatchString(d) {
		return []string{"invalid date format (should be YYYY-MM-DD)"}
	}
	return nil
}

func listWarning(b *Bundle, key string) []string {
	switch b.Field(key).(type) {
	case nil, []any, []string:
		return nil
	default:
		return []string{key + " must be a list"}
	}
}
