package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const ddlSessions = `
CREATE TABLE IF NOT EXISTS interview_sessions (
    session_id  TEXT         PRIMARY KEY,
    snapshot    JSONB        NOT NULL,
    updated_at  TIMESTAMPTZ  NOT NULL DEFAULT now()
);
`

const ddlEvents = `
CREATE TABLE IF NOT EXISTS interview_events (
    id          BIGSERIAL    PRIMARY KEY,
    session_id  TEXT         NOT NULL,
    kind        TEXT         NOT NULL,
    payload     JSONB        NOT NULL DEFAULT '{}',
    timestamp   TIMESTAMPTZ  NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_interview_events_session
    ON interview_events (session_id, timestamp);
`

// ddlAnswers returns the answer-index DDL with the embedding dimension
// substituted. The vector dimension is baked into the column type at
// schema creation time.
func ddlAnswers(embeddingDimensions int) string {
	return fmt.Sprintf(`
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS interview_answers (
    id           TEXT         PRIMARY KEY,
    session_id   TEXT         NOT NULL,
    question_id  TEXT         NOT NULL,
    text         TEXT         NOT NULL,
    embedding    vector(%d),
    timestamp    TIMESTAMPTZ  NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_interview_answers_session
    ON interview_answers (session_id);

CREATE INDEX IF NOT EXISTS idx_interview_answers_embedding
    ON interview_answers USING hnsw (embedding vector_cosine_ops);
`, embeddingDimensions)
}

// Migrate creates or ensures all required tables and extensions exist. It
// is idempotent and safe to call on every start.
//
// embeddingDimensions must match the configured embedding model (e.g.
// 1536 for text-embedding-3-small, 768 for nomic-embed-text). Changing it
// after the first migration requires a manual schema update.
func Migrate(ctx context.Context, pool *pgxpool.Pool, embeddingDimensions int) error {
	statements := []string{
		ddlSessions,
		ddlEvents,
		ddlAnswers(embeddingDimensions),
	}
	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres migrate: %w", err)
		}
	}
	return nil
}
