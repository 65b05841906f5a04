// File: internal/session/snapshot.go
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
	"github.com/xkilldash9x/courier-cli/internal/browser"
)

// SnapshotFile is the name of the persisted authentication snapshot.
const SnapshotFile = "auth-state.json"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SnapshotStore persists authentication snapshots between runs.
type SnapshotStore interface {
	// Load returns nil, nil when no snapshot exists.
	Load(ctx context.Context) (*browser.StorageState, error)
	Save(ctx context.Context, state *browser.StorageState) error
}

// FileSnapshotStore keeps the snapshot as JSON in a private directory.
type FileSnapshotStore struct {
	dir string
}

// NewFileSnapshotStore stores snapshots under dir.
func NewFileSnapshotStore(dir string) *FileSnapshotStore {
	return &FileSnapshotStore{dir: dir}
}

// Path is the snapshot file location.
func (s *FileSnapshotStore) Path() string {
	return filepath.Join(s.dir, SnapshotFile)
}

// Load implements SnapshotStore.
func (s *FileSnapshotStore) Load(ctx context.Context) (*browser.StorageState, error) {
	data, err := os.ReadFile(s.Path())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	var state browser.StorageState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", s.Path(), err)
	}
	return &state, nil
}

// Save implements SnapshotStore. The file is replaced atomically.
func (s *FileSnapshotStore) Save(ctx context.Context, state *browser.StorageState) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".auth-state-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to restrict snapshot permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path()); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

// Delete removes the snapshot, forcing a fresh login on the next run.
func (s *FileSnapshotStore) Delete() error {
	if err := os.Remove(s.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
