// Package store defines the persistence interfaces used by the interview
// engine.
//
// Three concerns are separated:
//
//   - [SnapshotStore]: durable session snapshots. The engine serialises the
//     full session state after every mutation and restores all snapshots on
//     start, so an engine restart never loses an in-flight interview.
//   - [EventLog]: append-only audit trail of answers, evaluations, claims
//     and interruptions, for offline analysis and report debugging.
//   - [AnswerIndex]: vector index over candidate answers. The contradiction
//     checker retrieves the nearest prior answers by cosine distance to
//     build focused LLM context.
//
// Every implementation must be safe for concurrent use.
package store

import (
	"context"
	"time"
)

// Snapshot is a serialised session state blob keyed by session ID.
type Snapshot struct {
	SessionID string
	Data      []byte
	UpdatedAt time.Time
}

// SnapshotStore persists opaque session snapshots.
type SnapshotStore interface {
	// SaveSnapshot durably writes the snapshot for the given session,
	// replacing any previous one. sessionID must be non-empty.
	SaveSnapshot(ctx context.Context, sessionID string, data []byte) error

	// LoadSnapshots returns all stored snapshots. Returns an empty
	// (non-nil) slice when the store is empty.
	LoadSnapshots(ctx context.Context) ([]Snapshot, error)

	// DeleteSnapshot removes the snapshot for the given session.
	// Deleting a non-existent snapshot is not an error.
	DeleteSnapshot(ctx context.Context, sessionID string) error
}

// Event is a single audit record. Payload is the JSON encoding of the
// event-specific data (answer, evaluation, claim set, interruption).
type Event struct {
	SessionID string
	Kind      string
	Payload   []byte
	Timestamp time.Time
}

// Well-known event kinds written by the engine.
const (
	EventAnswer       = "answer"
	EventEvaluation   = "evaluation"
	EventClaims       = "claims"
	EventInterruption = "interruption"
	EventReport       = "report"
)

// EventLog is an append-only audit trail.
type EventLog interface {
	// AppendEvent records an event. Returns an error only on persistent
	// storage failure; the engine treats log failures as non-fatal.
	AppendEvent(ctx context.Context, ev Event) error

	// Events returns all events for a session in chronological order.
	// Returns an empty (non-nil) slice when none exist.
	Events(ctx context.Context, sessionID string) ([]Event, error)
}

// IndexedAnswer is a candidate answer prepared for vector indexing. It
// carries its pre-computed embedding so the index never re-embeds.
type IndexedAnswer struct {
	// ID uniquely identifies this answer (e.g. "<sessionID>/<questionID>").
	ID string

	// SessionID scopes similarity search to one interview.
	SessionID string

	// QuestionID is the question this answer responded to.
	QuestionID string

	// Text is the transcribed answer.
	Text string

	// Embedding is the vector representation of Text. Its dimension must
	// match the index configuration.
	Embedding []float32

	// Timestamp is when the answer was given.
	Timestamp time.Time
}

// AnswerResult pairs a retrieved answer with its vector-space distance
// from the query embedding. Lower is more similar.
type AnswerResult struct {
	Answer   IndexedAnswer
	Distance float64
}

// AnswerIndex is a vector store over candidate answers.
type AnswerIndex interface {
	// IndexAnswer upserts a pre-embedded answer.
	IndexAnswer(ctx context.Context, ans IndexedAnswer) error

	// SearchSimilar returns the topK indexed answers in the given session
	// closest to the query embedding, ordered by ascending distance.
	// Returns an empty (non-nil) slice when nothing is indexed.
	SearchSimilar(ctx context.Context, sessionID string, embedding []float32, topK int) ([]AnswerResult, error)
}
