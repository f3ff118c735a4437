package review

import (
	"context"
	"errors"
	"fmt"
)

// Error kinds for review operations. Match with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrPersistence       = errors.New("persistence failure")
)

// Specific not-found errors. Both satisfy errors.Is(err, ErrNotFound).
var (
	ErrSessionNotFound = fmt.Errorf("session %w", ErrNotFound)
	ErrCommentNotFound = fmt.Errorf("comment %w", ErrNotFound)
)

// Store defines persistence operations for review sessions.
//
// Implementations own the session map and the secondary bundle index
// (bundle ID -> session IDs in creation order). Sessions returned by Get and
// List are copies; callers persist changes through Save.
type Store interface {
	// Save creates or fully overwrites a session record. New sessions are
	// appended to the bundle index. Errors wrap ErrPersistence.
	Save(ctx context.Context, s Session) error

	// Get returns a session by ID. Returns ErrSessionNotFound if not found.
	Get(ctx context.Context, id string) (Session, error)

	// List returns every session, newest first.
	List(ctx context.Context) ([]Session, error)

	// BundleSessions returns the session IDs recorded for a bundle ID.
	// Returns an empty slice for unknown bundles.
	BundleSessions(ctx context.Context, bundleID string) ([]string, error)

	// Delete removes a session from the store, the bundle index, and disk.
	// Returns ErrSessionNotFound if not found.
	Delete(ctx context.Context, id string) error
}
