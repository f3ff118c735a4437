// Package signoff defines the approval checkpoints that gate a review session
// and the metadata cached for each prepared session.
package signoff

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/colonyops/signoff/internal/core/bundle"
	"github.com/colonyops/signoff/internal/core/review"
)

var (
	ErrMetadataNotFound = errors.New("session metadata not found")
	ErrMissingType      = errors.New("invalid content bundle: missing type")
	ErrApprovalBlocked  = errors.New("cannot approve session")
	ErrReasonRequired   = fmt.Errorf("%w: rejection reason is required", review.ErrInvalidInput)
)

// Checkpoint failure messages reported by Combine.
const (
	MsgFrontmatterFailed = "frontmatter validation failed"
	MsgStructureFailed   = "structure validation failed"
	MsgImagesFailed      = "image validation failed"
	MsgCommentsPending   = "pending comments must be resolved"
)

// Checkpoints are the four gates a session must pass before approval.
// Frontmatter, Structure and Images are computed once when the bundle is
// prepared. Comments is derived from the live pending comment count.
type Checkpoints struct {
	Frontmatter bool `json:"frontmatter"`
	Structure   bool `json:"structure"`
	Images      bool `json:"images"`
	Comments    bool `json:"comments"`
}

// ValidationPassed reports whether the cacheable checkpoints passed.
func (c Checkpoints) ValidationPassed() bool {
	return c.Frontmatter && c.Structure && c.Images
}

// AllPassed reports whether every checkpoint passed.
func (c Checkpoints) AllPassed() bool {
	return c.ValidationPassed() && c.Comments
}

// Evaluate computes the cacheable checkpoints for b. Comments is reported as
// passing since a freshly prepared bundle has no comments.
func Evaluate(b *bundle.Bundle) Checkpoints {
	return Checkpoints{
		Frontmatter: bundle.HasRequiredFields(b),
		Structure:   bundle.HasValidStructure(b.Content),
		Images:      bundle.HasValidImagePrompts(b.ImagePrompts),
		Comments:    true,
	}
}

// Status is the combined approval state of a session.
type Status struct {
	CanApprove         bool        `json:"canApprove"`
	ValidationPassed   bool        `json:"validationPassed"`
	PendingComments    int         `json:"pendingComments"`
	ValidationErrors   []string    `json:"validationErrors"`
	ValidationWarnings []string    `json:"validationWarnings"`
	Checkpoints        Checkpoints `json:"checkpoints"`
}

// BlockReasons lists why the status does not allow approval. Empty when
// CanApprove is true.
func (s Status) BlockReasons() []string {
	var reasons []string
	if !s.ValidationPassed {
		reasons = append(reasons, "validation checkpoints must pass")
	}
	if s.PendingComments > 0 {
		reasons = append(reasons, fmt.Sprintf("%d pending comment(s) must be resolved", s.PendingComments))
	}
	return reasons
}

// Err returns an error wrapping ErrApprovalBlocked naming every blocking
// condition, or nil if the session can be approved.
func (s Status) Err() error {
	if s.CanApprove {
		return nil
	}
	reasons := s.BlockReasons()
	if len(reasons) == 0 {
		return ErrApprovalBlocked
	}
	return fmt.Errorf("%w: %s", ErrApprovalBlocked, strings.Join(reasons, ". "))
}

// Metadata is the cached result of preparing a bundle for signoff.
type Metadata struct {
	SessionID          string      `json:"sessionId"`
	ContentType        bundle.Type `json:"contentType"`
	Title              string      `json:"title"`
	Checkpoints        Checkpoints `json:"checkpoints"`
	ValidationErrors   []string    `json:"validationErrors"`
	ValidationWarnings []string    `json:"validationWarnings"`
	CreatedAt          time.Time   `json:"createdAt"`
	RejectionReason    string      `json:"rejectionReason,omitempty"`
}

// Combine derives the current Status from cached checkpoints and the live
// number of pending comments. Validation errors are synthesized from the
// failing checkpoints.
func Combine(m Metadata, pending int) Status {
	cp := m.Checkpoints
	cp.Comments = pending == 0

	errs := []string{}
	if !cp.Frontmatter {
		errs = append(errs, MsgFrontmatterFailed)
	}
	if !cp.Structure {
		errs = append(errs, MsgStructureFailed)
	}
	if !cp.Images {
		errs = append(errs, MsgImagesFailed)
	}
	if !cp.Comments {
		errs = append(errs, MsgCommentsPending)
	}

	return Status{
		CanApprove:         cp.AllPassed() && pending == 0,
		ValidationPassed:   cp.ValidationPassed(),
		PendingComments:    pending,
		ValidationErrors:   errs,
		ValidationWarnings: nonNil(m.ValidationWarnings),
		Checkpoints:        cp,
	}
}

// Result is returned when a bundle is prepared for signoff.
type Result struct {
	SessionID string `json:"sessionId"`
	Status    Status `json:"status"`
}

// Summary is a read-only overview of a session for human reviewers.
type Summary struct {
	SessionID        string        `json:"sessionId"`
	ContentType      bundle.Type   `json:"contentType"`
	Title            string        `json:"title"`
	Status           review.Status `json:"status"`
	ValidationPassed bool          `json:"validationPassed"`
	CommentsResolved int           `json:"commentsResolved"`
	CommentsPending  int           `json:"commentsPending"`
	CreatedAt        time.Time     `json:"createdAt"`
	Checkpoints      Checkpoints   `json:"checkpoints"`
	RejectionReason  string        `json:"rejectionReason,omitempty"`
}

// MetadataStore persists signoff metadata keyed by session ID.
type MetadataStore interface {
	// Save creates or overwrites the metadata for m.SessionID.
	Save(ctx context.Context, m Metadata) error

	// Get returns the metadata for a session. Returns ErrMetadataNotFound if
	// none is recorded.
	Get(ctx context.Context, sessionID string) (Metadata, error)

	// Delete removes the metadata for a session. Missing entries are not an error.
	Delete(ctx context.Context, sessionID string) error
}

// nonNil keeps JSON output an array when there is nothing to report.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
