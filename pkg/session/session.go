package session

import (
	"fmt"
	"os"
	"path/filepath"

	"instagrampa/pkg/logger"
)

// Store persists the authenticated session's cookies as an opaque JSON blob
// in the profile directory. Load/save failures are best-effort at call sites:
// the run proceeds without a persisted session.
type Store struct {
	path   string
	logger logger.Logger
}

// NewStore creates a session store for the given profile.
func NewStore(dataDir, profile string) *Store {
	return &Store{
		path:   filepath.Join(dataDir, profile, "cookies.json"),
		logger: logger.GetLogger(),
	}
}

// Load returns the persisted cookie blob, or ok=false when none exists.
func (s *Store) Load() ([]byte, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read session: %w", err)
	}
	return data, true, nil
}

// Save persists the cookie blob.
func (s *Store) Save(blob []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create profile directory: %w", err)
	}
	if err := os.WriteFile(s.path, blob, 0600); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	s.logger.Debug("session saved")
	return nil
}

// Delete removes the persisted session. Deleting a session that does not
// exist is not an error.
func (s *Store) Delete() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	s.logger.Debug("session deleted")
	return nil
}

// Exists reports whether a persisted session is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}
