// Package workflow implements the content approval workflow: review sessions
// with inline comments, and the signoff checkpoints that gate approval.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/colonyops/signoff/internal/core/bundle"
	"github.com/colonyops/signoff/internal/core/logging"
	"github.com/colonyops/signoff/internal/core/review"
	"github.com/colonyops/signoff/internal/core/validate"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SessionRefActive is the status recorded on a bundle's session reference
// when a session is created.
const SessionRefActive = "active"

// ReviewService owns the review session lifecycle. It is the only component
// that mutates or persists sessions.
type ReviewService struct {
	store    review.Store
	log      zerolog.Logger
	recorder Recorder
	now      func() time.Time
	newID    func() string
}

// NewReviewService creates a new ReviewService.
func NewReviewService(store review.Store, log zerolog.Logger) *ReviewService {
	return &ReviewService{
		store:    store,
		log:      log.With().Str("component", "review-service").Logger(),
		recorder: nopRecorder{},
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

func (s *ReviewService) get(ctx context.Context, id string) (review.Session, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, review.ErrNotFound) {
			return review.Session{}, fmt.Errorf("%w: %s", review.ErrSessionNotFound, id)
		}
		return review.Session{}, err
	}
	return sess, nil
}

// CreateSession starts a draft review session for b. The session is indexed
// under the bundle's ID, and a reference to it is appended to b.Sessions.
func (s *ReviewService) CreateSession(ctx context.Context, b *bundle.Bundle) (string, error) {
	now := s.now()
	sess := review.Session{
		ID:              s.newID(),
		ContentBundleID: b.Title(),
		Comments:        []review.Comment{},
		BundleID:        b.ID(now),
		Status:          review.StatusDraft,
		CreatedAt:       now,
	}

	err := s.store.Save(ctx, sess)
	s.recorder.Operation("create_session", err)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	b.Sessions = append(b.Sessions, bundle.SessionRef{
		ID:              sess.ID,
		ContentBundleID: sess.ContentBundleID,
		Status:          SessionRefActive,
		CreatedAt:       now,
	})
	b.ReviewStatus = bundle.ReviewStatusDraft

	ctx = logging.WithSession(ctx, sess.ID, sess.BundleID)
	s.log.Info().Ctx(ctx).Str("title", sess.ContentBundleID).Msg("review session created")

	return sess.ID, nil
}

// AddComment adds a pending comment to a session and returns its ID. The first
// comment on a draft session moves it to in-review.
func (s *ReviewService) AddComment(ctx context.Context, sessionID, section, text string) (string, error) {
	sess, err := s.get(ctx, sessionID)
	if err != nil {
		return "", err
	}

	if err := validate.Section(section); err != nil {
		return "", fmt.Errorf("%w: %w", review.ErrInvalidInput, err)
	}
	if err := validate.CommentText(text); err != nil {
		return "", fmt.Errorf("%w: %w", review.ErrInvalidInput, err)
	}

	c := review.Comment{
		ID:        s.newID(),
		Section:   strings.TrimSpace(section),
		Text:      strings.TrimSpace(text),
		CreatedAt: s.now(),
	}
	sess.AddComment(c)

	err = s.store.Save(ctx, sess)
	s.recorder.Operation("add_comment", err)
	if err != nil {
		return "", fmt.Errorf("add comment: %w", err)
	}

	ctx = logging.WithSession(ctx, sess.ID, sess.BundleID)
	s.log.Info().Ctx(ctx).
		Str("comment_id", c.ID).
		Str("section", c.Section).
		Str("status", string(sess.Status)).
		Msg("comment added")

	return c.ID, nil
}

// ResolveComment marks a comment accepted or rejected. Resolving an already
// resolved comment overwrites the previous resolution.
func (s *ReviewService) ResolveComment(ctx context.Context, sessionID, commentID string, resolution review.Resolution) error {
	sess, err := s.get(ctx, sessionID)
	if err != nil {
		return err
	}

	if err := sess.ResolveComment(commentID, resolution, s.now()); err != nil {
		return err
	}

	err = s.store.Save(ctx, sess)
	s.recorder.Operation("resolve_comment", err)
	if err != nil {
		return fmt.Errorf("resolve comment: %w", err)
	}

	ctx = logging.WithSession(ctx, sess.ID, sess.BundleID)
	s.log.Info().Ctx(ctx).
		Str("comment_id", commentID).
		Str("resolution", string(resolution)).
		Int("pending", sess.PendingCount()).
		Msg("comment resolved")

	return nil
}

// ApproveSession moves a session to approved. Fails if the session is
// terminal or has pending comments.
func (s *ReviewService) ApproveSession(ctx context.Context, sessionID string) error {
	sess, err := s.get(ctx, sessionID)
	if err != nil {
		return err
	}

	if err := sess.MarkApproved(); err != nil {
		s.recorder.Operation("approve", err)
		return err
	}

	err = s.store.Save(ctx, sess)
	s.recorder.Operation("approve", err)
	if err != nil {
		return fmt.Errorf("approve session: %w", err)
	}

	ctx = logging.WithSession(ctx, sess.ID, sess.BundleID)
	s.log.Info().Ctx(ctx).Msg("review session approved")
	return nil
}

// RejectSession moves a session to rejected. Fails if the session is terminal.
func (s *ReviewService) RejectSession(ctx context.Context, sessionID string) error {
	sess, err := s.get(ctx, sessionID)
	if err != nil {
		return err
	}

	if err := sess.MarkRejected(); err != nil {
		s.recorder.Operation("reject", err)
		return err
	}

	err = s.store.Save(ctx, sess)
	s.recorder.Operation("reject", err)
	if err != nil {
		return fmt.Errorf("reject session: %w", err)
	}

	ctx = logging.WithSession(ctx, sess.ID, sess.BundleID)
	s.log.Info().Ctx(ctx).Msg("review session rejected")
	return nil
}

// Session returns a copy of a session.
func (s *ReviewService) Session(ctx context.Context, sessionID string) (review.Session, error) {
	return s.get(ctx, sessionID)
}

// GetSessionStatus returns comment counts for a session, or false if the
// session does not exist.
func (s *ReviewService) GetSessionStatus(ctx context.Context, sessionID string) (review.StatusReport, bool) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return review.StatusReport{}, false
	}
	return sess.Report(), true
}

// GetSessionComments returns the comments of a session in insertion order.
// Unknown sessions have no comments.
func (s *ReviewService) GetSessionComments(ctx context.Context, sessionID string) []review.Comment {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return []review.Comment{}
	}
	return sess.Comments
}

// GetBundleSessions returns the IDs of every session created for a bundle.
func (s *ReviewService) GetBundleSessions(ctx context.Context, bundleID string) []string {
	ids, err := s.store.BundleSessions(ctx, bundleID)
	if err != nil {
		s.log.Warn().Err(err).Str("bundle_id", bundleID).Msg("failed to read bundle index")
		return []string{}
	}
	return ids
}

// ListSessions returns every session, newest first.
func (s *ReviewService) ListSessions(ctx context.Context) ([]review.Session, error) {
	return s.store.List(ctx)
}

// DeleteSession removes a session from the store, the bundle index, and disk.
// Returns false if the session does not exist or could not be deleted.
func (s *ReviewService) DeleteSession(ctx context.Context, sessionID string) bool {
	err := s.store.Delete(ctx, sessionID)
	s.recorder.Operation("delete_session", err)
	if err != nil {
		if !errors.Is(err, review.ErrNotFound) {
			s.log.Error().Err(err).Str("session_id", sessionID).Msg("failed to delete session")
		}
		return false
	}

	s.log.Info().Str("session_id", sessionID).Msg("review session deleted")
	return true
}

// GetStatistics aggregates session and comment counts across all sessions.
func (s *ReviewService) GetStatistics(ctx context.Context) (review.Statistics, error) {
	sessions, err := s.store.List(ctx)
	if err != nil {
		return review.Statistics{}, fmt.Errorf("collect statistics: %w", err)
	}
	return review.Collect(sessions), nil
}
