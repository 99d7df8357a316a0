// Package postgres provides a PostgreSQL-backed implementation of the
// interview persistence interfaces (session snapshots, audit event log,
// pgvector answer index).
//
// All three concerns share a single [pgxpool.Pool]. The pgvector extension
// must be available in the target database; [Migrate] installs it via
// CREATE EXTENSION IF NOT EXISTS.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/internai/interviewd/pkg/store"
)

var (
	_ store.SnapshotStore = (*Store)(nil)
	_ store.EventLog      = (*Store)(nil)
	_ store.AnswerIndex   = (*Store)(nil)
)

// Store is the PostgreSQL-backed persistence layer. It implements
// [store.SnapshotStore], [store.EventLog] and [store.AnswerIndex] on a
// single connection pool. Safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to the database at dsn, registers pgvector types on
// every connection, and runs [Migrate].
func NewStore(ctx context.Context, dsn string, embeddingDimensions int) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres store: parse dsn: %w", err)
	}

	// Vector columns scan into and insert from pgvector.Vector values.
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres store: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres store: ping: %w", err)
	}

	if err := Migrate(ctx, pool, embeddingDimensions); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres store: migrate: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close releases all connections held by the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Ping verifies database connectivity. Used by readiness probes.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// SaveSnapshot implements store.SnapshotStore.
func (s *Store) SaveSnapshot(ctx context.Context, sessionID string, data []byte) error {
	if sessionID == "" {
		return fmt.Errorf("postgres store: sessionID must not be empty")
	}
	const q = `
		INSERT INTO interview_sessions (session_id, snapshot, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (session_id) DO UPDATE SET
		    snapshot   = EXCLUDED.snapshot,
		    updated_at = now()`
	if _, err := s.pool.Exec(ctx, q, sessionID, data); err != nil {
		return fmt.Errorf("postgres store: save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshots implements store.SnapshotStore.
func (s *Store) LoadSnapshots(ctx context.Context) ([]store.Snapshot, error) {
	const q = `SELECT session_id, snapshot, updated_at FROM interview_sessions`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("postgres store: load snapshots: %w", err)
	}
	snapshots, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (store.Snapshot, error) {
		var snap store.Snapshot
		err := row.Scan(&snap.SessionID, &snap.Data, &snap.UpdatedAt)
		return snap, err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres store: scan snapshots: %w", err)
	}
	if snapshots == nil {
		snapshots = []store.Snapshot{}
	}
	return snapshots, nil
}

// DeleteSnapshot implements store.SnapshotStore.
func (s *Store) DeleteSnapshot(ctx context.Context, sessionID string) error {
	const q = `DELETE FROM interview_sessions WHERE session_id = $1`
	if _, err := s.pool.Exec(ctx, q, sessionID); err != nil {
		return fmt.Errorf("postgres store: delete snapshot: %w", err)
	}
	return nil
}

// AppendEvent implements store.EventLog.
func (s *Store) AppendEvent(ctx context.Context, ev store.Event) error {
	const q = `
		INSERT INTO interview_events (session_id, kind, payload, timestamp)
		VALUES ($1, $2, $3, $4)`
	payload := ev.Payload
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	if _, err := s.pool.Exec(ctx, q, ev.SessionID, ev.Kind, payload, ev.Timestamp); err != nil {
		return fmt.Errorf("postgres store: append event: %w", err)
	}
	return nil
}

// Events implements store.EventLog.
func (s *Store) Events(ctx context.Context, sessionID string) ([]store.Event, error) {
	const q = `
		SELECT session_id, kind, payload, timestamp
		FROM   interview_events
		WHERE  session_id = $1
		ORDER  BY timestamp, id`
	rows, err := s.pool.Query(ctx, q, sessionID)
	if err != nil {
		return nil, fmt.Errorf("postgres store: events: %w", err)
	}
	events, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (store.Event, error) {
		var ev store.Event
		err := row.Scan(&ev.SessionID, &ev.Kind, &ev.Payload, &ev.Timestamp)
		return ev, err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres store: scan events: %w", err)
	}
	if events == nil {
		events = []store.Event{}
	}
	return events, nil
}
