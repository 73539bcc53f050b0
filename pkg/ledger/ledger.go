package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	errs "instagrampa/pkg/errors"
	"instagrampa/pkg/logger"
)

// Ledger is a persisted record of past actions keyed by account id. The whole
// document lives in memory and is rewritten on every mutation; there is no
// partial-record format. Entries are never deleted: they are the permanent
// history the cooldown and non-recontact checks run against.
type Ledger struct {
	name    string
	path    string
	entries map[string]int64
	logger  logger.Logger
}

// Open loads the ledger document for the given profile, creating an empty one
// on first use. A document that exists but cannot be parsed is a fatal error
// for this ledger; it is surfaced, not retried.
func Open(dataDir, profile, name string) (*Ledger, error) {
	dir := filepath.Join(dataDir, profile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create profile directory: %w", err)
	}

	l := &Ledger{
		name:    name,
		path:    filepath.Join(dir, name+".json"),
		entries: make(map[string]int64),
		logger:  logger.GetLogger(),
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := l.save(); err != nil {
				return nil, fmt.Errorf("failed to create ledger %s: %w", name, err)
			}
			return l, nil
		}
		return nil, fmt.Errorf("failed to read ledger %s: %w", name, err)
	}

	if err := json.Unmarshal(data, &l.entries); err != nil {
		return nil, errs.New(errs.ErrorTypeLedger,
			fmt.Sprintf("ledger %s is corrupted at %s: %v", name, l.path, err))
	}

	l.logger.DebugWithFields("ledger opened", map[string]interface{}{
		"ledger":  name,
		"entries": len(l.entries),
	})

	return l, nil
}

// Get returns the recorded timestamp (milliseconds) for an account id.
func (l *Ledger) Get(id string) (int64, bool) {
	ts, ok := l.entries[id]
	return ts, ok
}

// Has reports whether an account id has ever been recorded.
func (l *Ledger) Has(id string) bool {
	_, ok := l.entries[id]
	return ok
}

// Put upserts an entry and rewrites the document. A write failure is returned
// to the caller, who logs and continues: the in-memory action already
// happened, and losing the persisted record only risks a duplicate future
// action, not safety.
func (l *Ledger) Put(id string, ts int64) error {
	l.entries[id] = ts
	if err := l.save(); err != nil {
		return fmt.Errorf("failed to persist ledger %s: %w", l.name, err)
	}
	return nil
}

// All returns a copy of every entry.
func (l *Ledger) All() map[string]int64 {
	out := make(map[string]int64, len(l.entries))
	for id, ts := range l.entries {
		out[id] = ts
	}
	return out
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// save rewrites the whole document atomically
func (l *Ledger) save() error {
	tempPath := l.path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary ledger file: %w", err)
	}

	encoder := json.NewEncoder(file)
	if err := encoder.Encode(l.entries); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode ledger: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync ledger file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close ledger file: %w", err)
	}

	if err := os.Rename(tempPath, l.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace ledger file: %w", err)
	}

	return nil
}
