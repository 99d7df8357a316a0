package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/internai/interviewd/pkg/store"
)

// ErrSessionNotFound is returned when no session exists for the given id.
var ErrSessionNotFound = errors.New("session: not found")

// ErrSessionExists is returned by Create when the id is already in use.
var ErrSessionExists = errors.New("session: already exists")

// DefaultIdleTimeout is how long an untouched session stays in memory
// before being pruned (its snapshot stays durable).
const DefaultIdleTimeout = 24 * time.Hour

// entry pairs a live Session with its lock. The lock serialises every
// operation on one session: start, answer processing and interruption
// checks for the same id never run concurrently.
type entry struct {
	mu   sync.Mutex
	sess *Session
}

// Manager owns all live sessions and their durable snapshots. After every
// mutation the full session is written to the snapshot store, so a
// process restart never loses an in-flight interview.
//
// All exported methods are safe for concurrent use.
type Manager struct {
	mu        sync.RWMutex
	sessions  map[string]*entry
	snapshots store.SnapshotStore

	idleTimeout time.Duration
}

// NewManager creates a Manager backed by the given snapshot store.
// snapshots may be nil, in which case sessions are memory-only.
func NewManager(snapshots store.SnapshotStore) *Manager {
	return &Manager{
		sessions:    make(map[string]*entry),
		snapshots:   snapshots,
		idleTimeout: DefaultIdleTimeout,
	}
}

// SetIdleTimeout overrides the idle pruning timeout. Zero disables pruning.
func (m *Manager) SetIdleTimeout(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.idleTimeout = d
}

// Create registers a new session and writes its first snapshot.
func (m *Manager) Create(ctx context.Context, sess *Session) error {
	if sess.ID == "" {
		return fmt.Errorf("session: id must not be empty")
	}
	m.mu.Lock()
	if _, ok := m.sessions[sess.ID]; ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrSessionExists, sess.ID)
	}
	e := &entry{sess: sess}
	m.sessions[sess.ID] = e
	m.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	return m.persist(ctx, sess)
}

// With runs fn with the session held under its lock, then writes a
// snapshot if fn returned nil. Components must not retain the *Session
// beyond fn. A snapshot write failure is retried once; the in-memory
// session stays authoritative either way.
func (m *Manager) With(ctx context.Context, id string, fn func(*Session) error) error {
	m.mu.RLock()
	e, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := fn(e.sess); err != nil {
		return err
	}
	e.sess.UpdatedAt = time.Now().UTC()
	return m.persist(ctx, e.sess)
}

// Peek returns a deep copy of the session for read-only use.
func (m *Manager) Peek(id string) (*Session, error) {
	m.mu.RLock()
	e, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	data, err := json.Marshal(e.sess)
	if err != nil {
		return nil, fmt.Errorf("session: copy: %w", err)
	}
	cp := &Session{}
	if err := json.Unmarshal(data, cp); err != nil {
		return nil, fmt.Errorf("session: copy: %w", err)
	}
	return cp, nil
}

// Restore loads all snapshots from the store into memory. Corrupt
// snapshots are skipped with a warning rather than failing startup.
func (m *Manager) Restore(ctx context.Context) error {
	if m.snapshots == nil {
		return nil
	}
	snaps, err := m.snapshots.LoadSnapshots(ctx)
	if err != nil {
		return fmt.Errorf("session: restore: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	restored := 0
	for _, snap := range snaps {
		sess := &Session{}
		if err := json.Unmarshal(snap.Data, sess); err != nil {
			slog.Warn("skipping corrupt session snapshot",
				"session_id", snap.SessionID, "error", err)
			continue
		}
		m.sessions[sess.ID] = &entry{sess: sess}
		restored++
	}
	if restored > 0 {
		slog.Info("restored sessions from snapshots", "count", restored)
	}
	return nil
}

// Delete removes the session from memory and deletes its snapshot.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if m.snapshots != nil {
		return m.snapshots.DeleteSnapshot(ctx, id)
	}
	return nil
}

// PruneIdle drops sessions untouched for longer than the idle timeout
// from memory after a final snapshot flush. Returns how many were pruned.
func (m *Manager) PruneIdle(ctx context.Context) int {
	m.mu.Lock()
	timeout := m.idleTimeout
	if timeout <= 0 {
		m.mu.Unlock()
		return 0
	}
	cutoff := time.Now().Add(-timeout)
	var stale []*entry
	var ids []string
	for id, e := range m.sessions {
		if e.sess.UpdatedAt.Before(cutoff) {
			stale = append(stale, e)
			ids = append(ids, id)
		}
	}
	for _, id := range ids {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, e := range stale {
		e.mu.Lock()
		if err := m.persist(ctx, e.sess); err != nil {
			slog.Warn("final snapshot flush failed for pruned session",
				"session_id", e.sess.ID, "error", err)
		}
		e.mu.Unlock()
	}
	if len(stale) > 0 {
		slog.Info("pruned idle sessions", "count", len(stale))
	}
	return len(stale)
}

// StartPruning runs PruneIdle on the given interval until ctx is done.
func (m *Manager) StartPruning(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.PruneIdle(ctx)
			}
		}
	}()
}

// persist writes the session snapshot, retrying once on failure. Must be
// called with the session's entry lock held.
func (m *Manager) persist(ctx context.Context, sess *Session) error {
	if m.snapshots == nil {
		return nil
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session: marshal snapshot: %w", err)
	}
	if err := m.snapshots.SaveSnapshot(ctx, sess.ID, data); err != nil {
		slog.Warn("snapshot write failed, retrying once",
			"session_id", sess.ID, "error", err)
		if err := m.snapshots.SaveSnapshot(ctx, sess.ID, data); err != nil {
			return fmt.Errorf("session: save snapshot: %w", err)
		}
	}
	return nil
}
