package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/colonyops/signoff/internal/core/review"
	"github.com/rs/zerolog"
)

var errEmptyID = errors.New("session id is empty")

// SessionStore implements review.Store with one JSON file per session.
// All records are loaded into memory when the store is opened; every write
// rewrites the full record.
type SessionStore struct {
	dir string
	log zerolog.Logger

	mu       sync.RWMutex
	sessions map[string]review.Session
	bundles  map[string][]string // bundle ID -> session IDs in creation order
}

// OpenSessionStore creates dir if needed and loads every session record in it.
// Records that cannot be read or decoded are logged and skipped.
func OpenSessionStore(dir string, log zerolog.Logger) (*SessionStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create sessions directory: %w", review.ErrPersistence, err)
	}

	s := &SessionStore{
		dir:      dir,
		log:      log,
		sessions: make(map[string]review.Session),
		bundles:  make(map[string][]string),
	}

	if err := s.load(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *SessionStore) load() error {
	matches, err := doublestar.Glob(os.DirFS(s.dir), "*"+ext)
	if err != nil {
		return fmt.Errorf("%w: scan sessions directory: %w", review.ErrPersistence, err)
	}

	loaded := make([]review.Session, 0, len(matches))
	seen := make(map[string]int, len(matches)) // id -> index into loaded
	files := make([]string, 0, len(matches))
	for _, name := range matches {
		var sess review.Session
		if err := readJSON(filepath.Join(s.dir, name), &sess); err != nil {
			s.log.Warn().Err(err).Str("file", name).Msg("skipping unreadable session record")
			continue
		}
		if sess.ID == "" {
			s.log.Warn().Str("file", name).Msg("skipping session record without id")
			continue
		}
		// a duplicate ID keeps the record stored at <id>.json, which is the
		// file Save and Delete act on
		if i, ok := seen[sess.ID]; ok {
			skipped := name
			if name == sess.ID+ext {
				skipped = files[i]
				loaded[i], files[i] = sess, name
			}
			s.log.Warn().
				Str("file", skipped).
				Str("session_id", sess.ID).
				Msg("skipping duplicate session record")
			continue
		}
		seen[sess.ID] = len(loaded)
		loaded = append(loaded, sess)
		files = append(files, name)
	}

	sort.Slice(loaded, func(i, j int) bool {
		if loaded[i].CreatedAt.Equal(loaded[j].CreatedAt) {
			return loaded[i].ID < loaded[j].ID
		}
		return loaded[i].CreatedAt.Before(loaded[j].CreatedAt)
	})

	for _, sess := range loaded {
		s.sessions[sess.ID] = sess
		s.bundles[sess.BundleID] = append(s.bundles[sess.BundleID], sess.ID)
	}

	s.log.Debug().Int("sessions", len(loaded)).Str("dir", s.dir).Msg("session store loaded")
	return nil
}

func (s *SessionStore) path(id string) string {
	return filepath.Join(s.dir, id+ext)
}

// Save creates or overwrites a session record.
func (s *SessionStore) Save(ctx context.Context, sess review.Session) error {
	if strings.TrimSpace(sess.ID) == "" {
		return fmt.Errorf("%w: %w", review.ErrPersistence, errEmptyID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeJSON(s.path(sess.ID), sess); err != nil {
		return fmt.Errorf("%w: save session %s: %w", review.ErrPersistence, sess.ID, err)
	}

	if _, exists := s.sessions[sess.ID]; !exists {
		s.bundles[sess.BundleID] = append(s.bundles[sess.BundleID], sess.ID)
	}
	s.sessions[sess.ID] = sess.Clone()
	return nil
}

// Get returns a copy of the session with the given ID.
func (s *SessionStore) Get(ctx context.Context, id string) (review.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return review.Session{}, review.ErrSessionNotFound
	}
	return sess.Clone(), nil
}

// List returns every session, newest first.
func (s *SessionStore) List(ctx context.Context) ([]review.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]review.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess.Clone())
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

// BundleSessions returns the session IDs recorded for a bundle.
func (s *SessionStore) BundleSessions(ctx context.Context, bundleID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.bundles[bundleID]
	out := make([]string, len(ids))
	copy(out, ids)
	return out, nil
}

// Delete removes a session from memory, the bundle index, and disk.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return review.ErrSessionNotFound
	}

	if err := removeFile(s.path(id)); err != nil {
		return fmt.Errorf("%w: delete session %s: %w", review.ErrPersistence, id, err)
	}

	delete(s.sessions, id)

	ids := s.bundles[sess.BundleID]
	for i, sid := range ids {
		if sid == id {
			ids = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(ids) == 0 {
		delete(s.bundles, sess.BundleID)
	} else {
		s.bundles[sess.BundleID] = ids
	}

	return nil
}
