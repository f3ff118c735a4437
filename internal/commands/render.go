package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/colonyops/signoff/internal/core/review"
	"github.com/colonyops/signoff/internal/core/signoff"
	"github.com/colonyops/signoff/internal/printer"
)

func mark(ok bool) string {
	if ok {
		return "pass"
	}
	return "FAIL"
}

// printStatus prints the checkpoint table followed by a readiness line.
// Approved and rejected sessions report their outcome instead.
func printStatus(p *printer.Printer, st signoff.Status, session review.Status) {
	p.Field("Frontmatter", mark(st.Checkpoints.Frontmatter))
	p.Field("Structure", mark(st.Checkpoints.Structure))
	p.Field("Images", mark(st.Checkpoints.Images))
	p.Field("Comments", mark(st.Checkpoints.Comments))
	p.Field("Pending comments", st.PendingComments)

	if len(st.ValidationErrors) > 0 {
		p.Field("Errors", len(st.ValidationErrors))
		p.List(st.ValidationErrors)
	}
	if len(st.ValidationWarnings) > 0 {
		p.Field("Warnings", len(st.ValidationWarnings))
		p.List(st.ValidationWarnings)
	}

	switch {
	case session == review.StatusApproved:
		p.Successf("Session approved")
	case session == review.StatusRejected:
		p.Warnf("Session rejected")
	case st.CanApprove:
		p.Successf("Ready for approval")
	default:
		p.Warnf("Not ready: %s", strings.Join(st.BlockReasons(), ". "))
	}
}

// summaryMarkdown renders a change summary as a markdown document for glamour.
func summaryMarkdown(s signoff.Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", s.Title)
	b.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Session | `%s` |\n", s.SessionID)
	fmt.Fprintf(&b, "| Type | %s |\n", s.ContentType)
	fmt.Fprintf(&b, "| Status | **%s** |\n", s.Status)
	fmt.Fprintf(&b, "| Created | %s |\n", s.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "| Comments | %d resolved, %d pending |\n\n", s.CommentsResolved, s.CommentsPending)

	b.WriteString("## Checkpoints\n\n")
	for _, cp := range []struct {
		name string
		ok   bool
	}{
		{"Frontmatter", s.Checkpoints.Frontmatter},
		{"Structure", s.Checkpoints.Structure},
		{"Images", s.Checkpoints.Images},
		{"Comments", s.Checkpoints.Comments},
	} {
		box := " "
		if cp.ok {
			box = "x"
		}
		fmt.Fprintf(&b, "- [%s] %s\n", box, cp.name)
	}

	if s.RejectionReason != "" {
		fmt.Fprintf(&b, "\n## Rejection\n\n> %s\n", s.RejectionReason)
	}

	return b.String()
}
