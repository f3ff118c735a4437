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
	"github.com/colonyops/signoff/internal/core/signoff"
	"github.com/colonyops/signoff/pkg/kv"
	"github.com/rs/zerolog"
)

// SignoffService runs the validation checkpoints for a bundle and gates
// approval on them. Session state changes are delegated to the ReviewService.
//
// Checkpoint results are computed once when a bundle is prepared and cached in
// memory in front of the persisted metadata store. The comments checkpoint is
// always derived from the live pending comment count.
type SignoffService struct {
	reviews   *ReviewService
	metadata  signoff.MetadataStore
	cache     *kv.Store[string, signoff.Metadata]
	validator bundle.Validator
	log       zerolog.Logger
	now       func() time.Time
}

// NewSignoffService creates a new SignoffService. A nil validator uses
// bundle.DefaultValidator.
func NewSignoffService(reviews *ReviewService, metadata signoff.MetadataStore, validator bundle.Validator, log zerolog.Logger) *SignoffService {
	if validator == nil {
		validator = bundle.DefaultValidator
	}

	return &SignoffService{
		reviews:   reviews,
		metadata:  metadata,
		cache:     kv.New[string, signoff.Metadata](),
		validator: validator,
		log:       log.With().Str("component", "signoff-service").Logger(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// RunValidationCheckpoints evaluates the cacheable checkpoints for b. The
// comments checkpoint is reported as passing.
func (s *SignoffService) RunValidationCheckpoints(b *bundle.Bundle) signoff.Checkpoints {
	return signoff.Evaluate(b)
}

// PrepareForSignoff creates a review session for b, evaluates its checkpoints,
// and records the results for later approval requests. The returned status
// carries the detailed validation errors.
func (s *SignoffService) PrepareForSignoff(ctx context.Context, b *bundle.Bundle) (signoff.Result, error) {
	if b == nil || b.Type == "" {
		return signoff.Result{}, signoff.ErrMissingType
	}

	sessionID, err := s.reviews.CreateSession(ctx, b)
	if err != nil {
		return signoff.Result{}, err
	}

	report := s.validator.Validate(b)
	if report.Errors == nil {
		report.Errors = []string{}
	}
	if report.Warnings == nil {
		report.Warnings = []string{}
	}
	m := signoff.Metadata{
		SessionID:          sessionID,
		ContentType:        b.Type,
		Title:              b.Title(),
		Checkpoints:        s.RunValidationCheckpoints(b),
		ValidationErrors:   report.Errors,
		ValidationWarnings: report.Warnings,
		CreatedAt:          s.now(),
	}

	s.cache.Set(sessionID, m)
	if err := s.metadata.Save(ctx, m); err != nil {
		return signoff.Result{SessionID: sessionID}, fmt.Errorf("store signoff metadata: %w", err)
	}

	pending := 0
	if st, ok := s.reviews.GetSessionStatus(ctx, sessionID); ok {
		pending = st.PendingComments
	}

	status := signoff.Combine(m, pending)
	status.ValidationErrors = report.Errors

	ctx = logging.WithSession(ctx, sessionID, b.ID(m.CreatedAt))
	s.log.Info().Ctx(ctx).
		Str("type", string(b.Type)).
		Bool("validation_passed", status.ValidationPassed).
		Int("errors", len(report.Errors)).
		Int("warnings", len(report.Warnings)).
		Msg("bundle prepared for signoff")

	return signoff.Result{SessionID: sessionID, Status: status}, nil
}

func (s *SignoffService) loadMetadata(ctx context.Context, sessionID string) (signoff.Metadata, error) {
	return s.cache.GetOrLoad(sessionID, func(id string) (signoff.Metadata, error) {
		return s.metadata.Get(ctx, id)
	})
}

// RequestApproval recomputes the signoff status of a session from its cached
// checkpoints and live comment counts. It does not change any state.
func (s *SignoffService) RequestApproval(ctx context.Context, sessionID string) (signoff.Status, error) {
	st, ok := s.reviews.GetSessionStatus(ctx, sessionID)
	if !ok {
		return signoff.Status{}, fmt.Errorf("%w: %s", review.ErrSessionNotFound, sessionID)
	}

	m, err := s.loadMetadata(ctx, sessionID)
	if err != nil {
		if errors.Is(err, signoff.ErrMetadataNotFound) {
			return signoff.Status{}, fmt.Errorf("%w: %s", signoff.ErrMetadataNotFound, sessionID)
		}
		return signoff.Status{}, err
	}

	return signoff.Combine(m, st.PendingComments), nil
}

// Approve re-checks the signoff status and, if every checkpoint passes,
// approves the session through the ReviewService. The status is returned
// alongside a blocked-approval error so callers can show what failed.
func (s *SignoffService) Approve(ctx context.Context, sessionID string) (signoff.Status, error) {
	status, err := s.RequestApproval(ctx, sessionID)
	if err != nil {
		return signoff.Status{}, err
	}

	if err := status.Err(); err != nil {
		s.reviews.recorder.Operation("approve", err)
		s.log.Info().Ctx(logging.WithSessionID(ctx, sessionID)).
			Strs("reasons", status.BlockReasons()).
			Msg("approval blocked")
		return status, err
	}

	if err := s.reviews.ApproveSession(ctx, sessionID); err != nil {
		return status, err
	}

	return status, nil
}

// Reject rejects the session through the ReviewService and records the reason.
func (s *SignoffService) Reject(ctx context.Context, sessionID, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return signoff.ErrReasonRequired
	}
	reason = strings.TrimSpace(reason)

	if err := s.reviews.RejectSession(ctx, sessionID); err != nil {
		return err
	}

	ctx = logging.WithSessionID(ctx, sessionID)
	s.log.Info().Ctx(ctx).Str("reason", reason).Msg("session rejected")

	m, err := s.loadMetadata(ctx, sessionID)
	if err != nil {
		s.log.Warn().Ctx(ctx).Err(err).Msg("rejection reason not recorded")
		return nil
	}

	m.RejectionReason = reason
	s.cache.Set(sessionID, m)
	if err := s.metadata.Save(ctx, m); err != nil {
		return fmt.Errorf("record rejection reason: %w", err)
	}

	return nil
}

// GetSignoffStatus returns the current signoff status, or false if the session
// or its metadata does not exist.
func (s *SignoffService) GetSignoffStatus(ctx context.Context, sessionID string) (signoff.Status, bool) {
	status, err := s.RequestApproval(ctx, sessionID)
	if err != nil {
		return signoff.Status{}, false
	}
	return status, true
}

// GenerateSummary returns a reviewer-facing overview of a session, or false
// if the session or its metadata does not exist.
func (s *SignoffService) GenerateSummary(ctx context.Context, sessionID string) (signoff.Summary, bool) {
	st, ok := s.reviews.GetSessionStatus(ctx, sessionID)
	if !ok {
		return signoff.Summary{}, false
	}

	m, err := s.loadMetadata(ctx, sessionID)
	if err != nil {
		return signoff.Summary{}, false
	}

	status := signoff.Combine(m, st.PendingComments)

	return signoff.Summary{
		SessionID:        sessionID,
		ContentType:      m.ContentType,
		Title:            m.Title,
		Status:           st.Status,
		ValidationPassed: status.ValidationPassed,
		CommentsResolved: st.ResolvedComments,
		CommentsPending:  st.PendingComments,
		CreatedAt:        m.CreatedAt,
		Checkpoints:      status.Checkpoints,
		RejectionReason:  m.RejectionReason,
	}, true
}

// DeleteSession removes a session and its signoff metadata.
func (s *SignoffService) DeleteSession(ctx context.Context, sessionID string) bool {
	if !s.reviews.DeleteSession(ctx, sessionID) {
		return false
	}

	s.cache.Delete(sessionID)
	if err := s.metadata.Delete(ctx, sessionID); err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to delete signoff metadata")
	}
	return true
}
