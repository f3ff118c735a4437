package workflow

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/colonyops/signoff/internal/core/bundle"
	"github.com/colonyops/signoff/internal/core/review"
	"github.com/colonyops/signoff/internal/store/jsonfile"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedClock returns a clock that advances by one second per call.
func fixedClock() func() time.Time {
	t := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

// seqIDs returns an ID generator producing prefix-1, prefix-2, ...
func seqIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func newTestReviewService(t *testing.T, dir string) *ReviewService {
	t.Helper()

	store, err := jsonfile.OpenSessionStore(dir, zerolog.Nop())
	require.NoError(t, err)

	svc := NewReviewService(store, zerolog.Nop())
	svc.now = fixedClock()
	return svc
}

func blogBundle(title string) *bundle.Bundle {
	return &bundle.Bundle{
		Type: bundle.TypeBlog,
		Frontmatter: map[string]any{
			"title":   title,
			"date":    "2024-01-15",
			"summary": strings.Repeat("Practical notes on shipping Go services. ", 4),
		},
		Content: "# " + title + "\n\nBody text.\n",
	}
}

func TestReviewService_CreateSession(t *testing.T) {
	ctx := context.Background()
	svc := newTestReviewService(t, t.TempDir())

	b := blogBundle("My First Post")
	id, err := svc.CreateSession(ctx, b)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	sess, err := svc.Session(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, review.StatusDraft, sess.Status)
	assert.Equal(t, "My First Post", sess.ContentBundleID)
	assert.Equal(t, "blog-2024-01-15-my-first-post", sess.BundleID)
	assert.Empty(t, sess.Comments)

	require.Len(t, b.Sessions, 1)
	assert.Equal(t, id, b.Sessions[0].ID)
	assert.Equal(t, SessionRefActive, b.Sessions[0].Status)
	assert.Equal(t, bundle.ReviewStatusDraft, b.ReviewStatus)

	assert.Equal(t, []string{id}, svc.GetBundleSessions(ctx, "blog-2024-01-15-my-first-post"))
	assert.Empty(t, svc.GetBundleSessions(ctx, "blog-1999-01-01-nothing"))
}

func TestReviewService_CreateSession_PersistenceFailure(t *testing.T) {
	ctx := context.Background()
	svc := NewReviewService(failingStore{}, zerolog.Nop())

	b := blogBundle("Hello")
	_, err := svc.CreateSession(ctx, b)
	require.ErrorIs(t, err, review.ErrPersistence)
	assert.Empty(t, b.Sessions, "bundle untouched on failure")
	assert.Empty(t, b.ReviewStatus)
}

func TestReviewService_Comments(t *testing.T) {
	ctx := context.Background()
	svc := newTestReviewService(t, t.TempDir())

	id, err := svc.CreateSession(ctx, blogBundle("Hello"))
	require.NoError(t, err)

	t.Run("validation", func(t *testing.T) {
		_, err := svc.AddComment(ctx, id, "  ", "text")
		require.ErrorIs(t, err, review.ErrInvalidInput)
		assert.Contains(t, err.Error(), "section identifier is required")

		_, err = svc.AddComment(ctx, id, "intro", "\t")
		require.ErrorIs(t, err, review.ErrInvalidInput)
		assert.Contains(t, err.Error(), "comment text is required")

		_, err = svc.AddComment(ctx, "missing", "intro", "text")
		require.ErrorIs(t, err, review.ErrNotFound)
	})

	c1, err := svc.AddComment(ctx, id, " intro ", " tighten the opening ")
	require.NoError(t, err)

	st, ok := svc.GetSessionStatus(ctx, id)
	require.True(t, ok)
	assert.Equal(t, review.StatusInReview, st.Status, "first comment moves draft to in-review")

	c2, err := svc.AddComment(ctx, id, "outro", "add a call to action")
	require.NoError(t, err)

	st, _ = svc.GetSessionStatus(ctx, id)
	assert.Equal(t, review.StatusInReview, st.Status)
	assert.Equal(t, 2, st.CommentCount)
	assert.Equal(t, 2, st.PendingComments)

	comments := svc.GetSessionComments(ctx, id)
	require.Len(t, comments, 2)
	assert.Equal(t, c1, comments[0].ID)
	assert.Equal(t, "intro", comments[0].Section)
	assert.Equal(t, "tighten the opening", comments[0].Text)
	assert.Equal(t, c2, comments[1].ID)

	now := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	require.NoError(t, svc.ResolveComment(ctx, id, c1, review.ResolutionAccepted))
	require.NoError(t, svc.ResolveComment(ctx, id, c2, review.ResolutionRejected))
	first := svc.GetSessionComments(ctx, id)[1]
	require.NotNil(t, first.ResolvedAt)
	assert.Equal(t, now, *first.ResolvedAt)

	now = now.Add(time.Hour)
	require.NoError(t, svc.ResolveComment(ctx, id, c2, review.ResolutionAccepted), "re-resolving is allowed")
	again := svc.GetSessionComments(ctx, id)[1]
	require.NotNil(t, again.ResolvedAt)
	assert.Equal(t, now, *again.ResolvedAt, "re-resolving stamps a new time")
	assert.Equal(t, review.ResolutionAccepted, again.Resolution)
	assert.Equal(t, time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC), *first.ResolvedAt, "earlier copy is unaffected")

	st, _ = svc.GetSessionStatus(ctx, id)
	assert.Equal(t, 0, st.PendingComments)
	assert.Equal(t, 2, st.ResolvedComments)
	assert.Equal(t, 2, st.AcceptedComments)
	assert.Equal(t, 0, st.RejectedComments)

	err = svc.ResolveComment(ctx, id, "nope", review.ResolutionAccepted)
	assert.ErrorIs(t, err, review.ErrCommentNotFound)

	err = svc.ResolveComment(ctx, id, c1, "maybe")
	assert.ErrorIs(t, err, review.ErrInvalidInput)

	err = svc.ResolveComment(ctx, "missing", c1, review.ResolutionAccepted)
	assert.ErrorIs(t, err, review.ErrSessionNotFound)

	assert.Empty(t, svc.GetSessionComments(ctx, "missing"))
	_, ok = svc.GetSessionStatus(ctx, "missing")
	assert.False(t, ok)
}

func TestReviewService_ApproveReject(t *testing.T) {
	ctx := context.Background()
	svc := newTestReviewService(t, t.TempDir())

	t.Run("zero comments approvable from draft", func(t *testing.T) {
		id, err := svc.CreateSession(ctx, blogBundle("A"))
		require.NoError(t, err)

		require.NoError(t, svc.ApproveSession(ctx, id))

		err = svc.ApproveSession(ctx, id)
		require.ErrorIs(t, err, review.ErrInvalidTransition)
		assert.Contains(t, err.Error(), "session is already approved")

		err = svc.RejectSession(ctx, id)
		require.ErrorIs(t, err, review.ErrInvalidTransition)
		assert.Contains(t, err.Error(), "cannot reject an approved session")
	})

	t.Run("pending comments block approval", func(t *testing.T) {
		id, err := svc.CreateSession(ctx, blogBundle("B"))
		require.NoError(t, err)
		cid, err := svc.AddComment(ctx, id, "intro", "fix")
		require.NoError(t, err)

		err = svc.ApproveSession(ctx, id)
		require.ErrorIs(t, err, review.ErrInvalidTransition)
		assert.Contains(t, err.Error(), "cannot approve session with 1 pending comment(s), resolve all comments first")

		require.NoError(t, svc.ResolveComment(ctx, id, cid, review.ResolutionRejected))
		require.NoError(t, svc.ApproveSession(ctx, id))
	})

	t.Run("rejected is terminal", func(t *testing.T) {
		id, err := svc.CreateSession(ctx, blogBundle("C"))
		require.NoError(t, err)

		require.NoError(t, svc.RejectSession(ctx, id))

		err = svc.RejectSession(ctx, id)
		require.ErrorIs(t, err, review.ErrInvalidTransition)
		assert.Contains(t, err.Error(), "session is already rejected")

		err = svc.ApproveSession(ctx, id)
		require.ErrorIs(t, err, review.ErrInvalidTransition)
		assert.Contains(t, err.Error(), "cannot approve a rejected session, create a new session instead")
	})

	t.Run("unknown session", func(t *testing.T) {
		assert.ErrorIs(t, svc.ApproveSession(ctx, "missing"), review.ErrNotFound)
		assert.ErrorIs(t, svc.RejectSession(ctx, "missing"), review.ErrNotFound)
	})
}

func TestReviewService_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "sessions")
	svc := newTestReviewService(t, dir)

	id, err := svc.CreateSession(ctx, blogBundle("Persisted"))
	require.NoError(t, err)
	c1, err := svc.AddComment(ctx, id, "intro", "one")
	require.NoError(t, err)
	_, err = svc.AddComment(ctx, id, "body", "two")
	require.NoError(t, err)
	require.NoError(t, svc.ResolveComment(ctx, id, c1, review.ResolutionAccepted))

	fresh := newTestReviewService(t, dir)

	comments := fresh.GetSessionComments(ctx, id)
	require.Len(t, comments, 2)
	assert.Equal(t, review.ResolutionAccepted, comments[0].Resolution)
	assert.NotNil(t, comments[0].ResolvedAt)
	assert.Equal(t, review.ResolutionPending, comments[1].Resolution)

	st, ok := fresh.GetSessionStatus(ctx, id)
	require.True(t, ok)
	assert.Equal(t, review.StatusInReview, st.Status)
	assert.Equal(t, 1, st.PendingComments)

	assert.Equal(t, []string{id}, fresh.GetBundleSessions(ctx, "blog-2024-01-15-persisted"))
}

func TestReviewService_DeleteAndStatistics(t *testing.T) {
	ctx := context.Background()
	svc := newTestReviewService(t, t.TempDir())

	a, err := svc.CreateSession(ctx, blogBundle("A"))
	require.NoError(t, err)
	b, err := svc.CreateSession(ctx, blogBundle("B"))
	require.NoError(t, err)
	c, err := svc.CreateSession(ctx, blogBundle("C"))
	require.NoError(t, err)

	_, err = svc.AddComment(ctx, b, "intro", "x")
	require.NoError(t, err)
	require.NoError(t, svc.ApproveSession(ctx, a))
	require.NoError(t, svc.RejectSession(ctx, c))

	st, err := svc.GetStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, review.Statistics{
		TotalSessions:    3,
		InReviewSessions: 1,
		ApprovedSessions: 1,
		RejectedSessions: 1,
		TotalComments:    1,
		PendingComments:  1,
	}, st)

	sessions, err := svc.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, c, sessions[0].ID, "newest first")

	assert.True(t, svc.DeleteSession(ctx, b))
	assert.False(t, svc.DeleteSession(ctx, b))
	assert.Empty(t, svc.GetBundleSessions(ctx, "blog-2024-01-15-b"))

	st, err = svc.GetStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, st.TotalSessions)
	assert.Equal(t, 0, st.PendingComments)
}

func TestReviewService_Recorder(t *testing.T) {
	ctx := context.Background()
	svc := newTestReviewService(t, t.TempDir())
	rec := &recordingRecorder{}
	svc.recorder = rec

	id, err := svc.CreateSession(ctx, blogBundle("A"))
	require.NoError(t, err)
	require.NoError(t, svc.RejectSession(ctx, id))
	require.Error(t, svc.ApproveSession(ctx, id))

	assert.Equal(t, []string{"create_session:ok", "reject:ok", "approve:error"}, rec.ops)
}

type recordingRecorder struct {
	ops []string
}

func (r *recordingRecorder) Operation(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.ops = append(r.ops, op+":"+outcome)
}

// failingStore fails every write.
type failingStore struct{}

func (failingStore) Save(context.Context, review.Session) error {
	return fmt.Errorf("%w: disk full", review.ErrPersistence)
}

func (failingStore) Get(context.Context, string) (review.Session, error) {
	return review.Session{}, review.ErrSessionNotFound
}

func (failingStore) List(context.Context) ([]review.Session, error) { return nil, nil }

func (failingStore) BundleSessions(context.Context, string) ([]string, error) {
	return []string{}, nil
}

func (failingStore) Delete(context.Context, string) error {
	return fmt.Errorf("%w: disk full", review.ErrPersistence)
}
