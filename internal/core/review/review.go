// Package review defines review session domain types and the session state machine.
package review

import (
	"fmt"
	"time"
)

// Status represents the lifecycle state of a review session.
//
//	draft -> in-review -> approved | rejected
//
// Approved and rejected are terminal. To retry a rejected bundle, create a new session.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusInReview Status = "in-review"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// IsTerminal returns true for approved and rejected sessions.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Resolution is the review outcome of a single comment.
type Resolution string

const (
	ResolutionPending  Resolution = "pending"
	ResolutionAccepted Resolution = "accepted"
	ResolutionRejected Resolution = "rejected"
)

// IsValid reports whether r is a known resolution.
func (r Resolution) IsValid() bool {
	switch r {
	case ResolutionPending, ResolutionAccepted, ResolutionRejected:
		return true
	default:
		return false
	}
}

// Comment is inline feedback targeting one section of a content bundle.
type Comment struct {
	ID         string     `json:"id"`
	Section    string     `json:"section"`
	Text       string     `json:"text"`
	Resolution Resolution `json:"resolution"`
	CreatedAt  time.Time  `json:"createdAt"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"` // nil until first resolved
}

// IsPending returns true if the comment has not been resolved.
func (c Comment) IsPending() bool {
	return c.Resolution == ResolutionPending
}

// Session tracks comments and the approval decision for one bundle attempt.
type Session struct {
	ID              string    `json:"id"`
	ContentBundleID string    `json:"contentBundleId"` // bundle title, human label
	Comments        []Comment `json:"comments"`
	BundleID        string    `json:"bundleId"` // stable bundle key, see bundle.Bundle.ID
	Status          Status    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Clone returns a copy of the session that shares no mutable state with s.
func (s Session) Clone() Session {
	c := s
	c.Comments = make([]Comment, len(s.Comments))
	for i, cm := range s.Comments {
		c.Comments[i] = cm
		if cm.ResolvedAt != nil {
			t := *cm.ResolvedAt
			c.Comments[i].ResolvedAt = &t
		}
	}
	return c
}

// PendingCount returns the number of comments still pending.
func (s *Session) PendingCount() int {
	n := 0
	for _, c := range s.Comments {
		if c.IsPending() {
			n++
		}
	}
	return n
}

// FindComment returns the comment with the given ID, or nil.
func (s *Session) FindComment(id string) *Comment {
	for i := range s.Comments {
		if s.Comments[i].ID == id {
			return &s.Comments[i]
		}
	}
	return nil
}

// AddComment appends a pending comment. The first comment on a draft session
// moves it to in-review.
func (s *Session) AddComment(c Comment) {
	c.Resolution = ResolutionPending
	s.Comments = append(s.Comments, c)

	if s.Status == StatusDraft && len(s.Comments) == 1 {
		s.Status = StatusInReview
	}
}

// ResolveComment sets the resolution of a comment. Resolving an already
// resolved comment overwrites the previous resolution and timestamp.
func (s *Session) ResolveComment(id string, resolution Resolution, now time.Time) error {
	if resolution != ResolutionAccepted && resolution != ResolutionRejected {
		return fmt.Errorf("%w: resolution must be %q or %q, got %q", ErrInvalidInput, ResolutionAccepted, ResolutionRejected, resolution)
	}

	c := s.FindComment(id)
	if c == nil {
		return fmt.Errorf("%w: %s", ErrCommentNotFound, id)
	}

	c.Resolution = resolution
	c.ResolvedAt = &now
	return nil
}

// CanApprove returns nil if the session may transition to approved.
func (s *Session) CanApprove() error {
	switch s.Status {
	case StatusApproved:
		return fmt.Errorf("%w: session is already approved", ErrInvalidTransition)
	case StatusRejected:
		return fmt.Errorf("%w: cannot approve a rejected session, create a new session instead", ErrInvalidTransition)
	}

	if n := s.PendingCount(); n > 0 {
		return fmt.Errorf("%w: cannot approve session with %d pending comment(s), resolve all comments first", ErrInvalidTransition, n)
	}

	return nil
}

// MarkApproved transitions the session to approved after checking CanApprove.
func (s *Session) MarkApproved() error {
	if err := s.CanApprove(); err != nil {
		return err
	}
	s.Status = StatusApproved
	return nil
}

// CanReject returns nil if the session may transition to rejected.
func (s *Session) CanReject() error {
	switch s.Status {
	case StatusApproved:
		return fmt.Errorf("%w: cannot reject an approved session", ErrInvalidTransition)
	case StatusRejected:
		return fmt.Errorf("%w: session is already rejected", ErrInvalidTransition)
	}
	return nil
}

// MarkRejected transitions the session to rejected after checking CanReject.
func (s *Session) MarkRejected() error {
	if err := s.CanReject(); err != nil {
		return err
	}
	s.Status = StatusRejected
	return nil
}

// StatusReport is a read-only projection of a session's comment counts.
type StatusReport struct {
	Status           Status    `json:"status"`
	CommentCount     int       `json:"commentCount"`
	PendingComments  int       `json:"pendingComments"`
	ResolvedComments int       `json:"resolvedComments"`
	AcceptedComments int       `json:"acceptedComments"`
	RejectedComments int       `json:"rejectedComments"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Report builds the StatusReport for the session.
func (s *Session) Report() StatusReport {
	r := StatusReport{
		Status:       s.Status,
		CommentCount: len(s.Comments),
		CreatedAt:    s.CreatedAt,
	}
	for _, c := range s.Comments {
		switch c.Resolution {
		case ResolutionPending:
			r.PendingComments++
		case ResolutionAccepted:
			r.AcceptedComments++
		case ResolutionRejected:
			r.RejectedComments++
		}
	}
	r.ResolvedComments = r.AcceptedComments + r.RejectedComments
	return r
}

// Statistics aggregates counts over every stored session.
type Statistics struct {
	TotalSessions    int `json:"totalSessions"`
	DraftSessions    int `json:"draftSessions"`
	InReviewSessions int `json:"inReviewSessions"`
	ApprovedSessions int `json:"approvedSessions"`
	RejectedSessions int `json:"rejectedSessions"`
	TotalComments    int `json:"totalComments"`
	PendingComments  int `json:"pendingComments"`
}

// Collect computes Statistics over sessions.
func Collect(sessions []Session) Statistics {
	var st Statistics
	for i := range sessions {
		s := &sessions[i]
		st.TotalSessions++
		switch s.Status {
		case StatusDraft:
			st.DraftSessions++
		case StatusInReview:
			st.InReviewSessions++
		case StatusApproved:
			st.ApprovedSessions++
		case StatusRejected:
			st.RejectedSessions++
		}
		st.TotalComments += len(s.Comments)
		st.PendingComments += s.PendingCount()
	}
	return st
}
