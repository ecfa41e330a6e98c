package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Digital-Creators-Team/slot-machine-core/engine"
)

// FileStore persists the snapshot as a JSON file, the local-storage analog
// for running the machine outside a browser.
type FileStore struct {
	mu     sync.Mutex
	path   string
	rules  engine.Rules
	logger zerolog.Logger
}

// NewFileStore creates a store writing to path
func NewFileStore(path string, rules engine.Rules, logger zerolog.Logger) *FileStore {
	return &FileStore{
		path:   path,
		rules:  rules,
		logger: logger.With().Str("component", "file_store").Logger(),
	}
}

// Save writes the snapshot atomically (temp file + rename)
func (f *FileStore) Save(ctx context.Context, snap *engine.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot file, returning nil when it does not exist
func (f *FileStore) Load(ctx context.Context) (*engine.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return engine.DecodeSnapshot(data, f.rules)
}

// Clear removes the snapshot file
func (f *FileStore) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := os.Remove(f.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove snapshot: %w", err)
	}
	return nil
}

// Status reports the on-disk save for the settings panel
type Status struct {
	Present  bool      `json:"present"`
	Size     int64     `json:"size"`
	SavedAt  time.Time `json:"savedAt"`
	Location string    `json:"location"`
}

// Status inspects the snapshot file without decoding it fully
func (f *FileStore) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()

	info, err := os.Stat(f.path)
	if err != nil {
		return Status{Location: f.path}
	}
	return Status{
		Present:  true,
		Size:     info.Size(),
		SavedAt:  info.ModTime(),
		Location: f.path,
	}
}
