// Package file provides a filesystem-backed store.SnapshotStore. It is the
// zero-dependency default for single-node deployments; the postgres store
// supersedes it when a database is configured.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/internai/interviewd/pkg/store"
)

var _ store.SnapshotStore = (*Store)(nil)

// Store persists one JSON file per session under a directory. Writes are
// atomic (temp file + rename) so a crash mid-write never corrupts an
// existing snapshot.
type Store struct {
	dir string
	mu  sync.Mutex
}

// New creates the snapshot directory if needed and returns a Store.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("file store: dir must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("file store: create dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// SaveSnapshot implements store.SnapshotStore.
func (s *Store) SaveSnapshot(ctx context.Context, sessionID string, data []byte) error {
	if sessionID == "" {
		return fmt.Errorf("file store: sessionID must not be empty")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	final := s.path(sessionID)
	tmp, err := os.CreateTemp(s.dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("file store: create temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("file store: write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("file store: close temp: %w", err)
	}
	if err := os.Rename(tmpName, final); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("file store: rename: %w", err)
	}
	return nil
}

// LoadSnapshots implements store.SnapshotStore.
func (s *Store) LoadSnapshots(ctx context.Context) ([]store.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("file store: read dir: %w", err)
	}

	snapshots := []store.Snapshot{}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			return nil, fmt.Errorf("file store: read %s: %w", name, err)
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("file store: stat %s: %w", name, err)
		}
		snapshots = append(snapshots, store.Snapshot{
			SessionID: strings.TrimSuffix(name, ".json"),
			Data:      data,
			UpdatedAt: info.ModTime(),
		})
	}
	return snapshots, nil
}

// DeleteSnapshot implements store.SnapshotStore.
func (s *Store) DeleteSnapshot(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(sessionID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("file store: delete: %w", err)
	}
	return nil
}

// path maps a session ID to its snapshot file. Path separators in the ID
// are replaced so a hostile ID cannot escape the directory.
func (s *Store) path(sessionID string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(sessionID)
	return filepath.Join(s.dir, safe+".json")
}
