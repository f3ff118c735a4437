package jsonfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/colonyops/signoff/internal/core/review"
	"github.com/colonyops/signoff/internal/core/signoff"
)

// MetadataStore implements signoff.MetadataStore with one JSON file per session.
type MetadataStore struct {
	dir string
	mu  sync.RWMutex
}

// NewMetadataStore creates a metadata store rooted at dir. The directory is
// created on first write.
func NewMetadataStore(dir string) *MetadataStore {
	return &MetadataStore{dir: dir}
}

func (s *MetadataStore) path(id string) string {
	return filepath.Join(s.dir, id+ext)
}

// Save writes the metadata for m.SessionID.
func (s *MetadataStore) Save(ctx context.Context, m signoff.Metadata) error {
	if m.SessionID == "" {
		return fmt.Errorf("%w: %w", review.ErrPersistence, errEmptyID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeJSON(s.path(m.SessionID), m); err != nil {
		return fmt.Errorf("%w: save metadata %s: %w", review.ErrPersistence, m.SessionID, err)
	}
	return nil
}

// Get returns the metadata for a session.
func (s *MetadataStore) Get(ctx context.Context, sessionID string) (signoff.Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var m signoff.Metadata
	if err := readJSON(s.path(sessionID), &m); err != nil {
		if os.IsNotExist(err) {
			return signoff.Metadata{}, signoff.ErrMetadataNotFound
		}
		return signoff.Metadata{}, fmt.Errorf("%w: read metadata %s: %w", review.ErrPersistence, sessionID, err)
	}
	return m, nil
}

// Delete removes the metadata for a session.
func (s *MetadataStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := removeFile(s.path(sessionID)); err != nil {
		return fmt.Errorf("%w: delete metadata %s: %w", review.ErrPersistence, sessionID, err)
	}
	return nil
}
