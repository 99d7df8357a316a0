package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/internai/interviewd/pkg/store"
)

// IndexAnswer implements store.AnswerIndex. It upserts a pre-embedded
// answer; an answer with the same ID is completely replaced.
func (s *Store) IndexAnswer(ctx context.Context, ans store.IndexedAnswer) error {
	const q = `
		INSERT INTO interview_answers
		    (id, session_id, question_id, text, embedding, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
		    session_id  = EXCLUDED.session_id,
		    question_id = EXCLUDED.question_id,
		    text        = EXCLUDED.text,
		    embedding   = EXCLUDED.embedding,
		    timestamp   = EXCLUDED.timestamp`

	vec := pgvector.NewVector(ans.Embedding)
	_, err := s.pool.Exec(ctx, q,
		ans.ID,
		ans.SessionID,
		ans.QuestionID,
		ans.Text,
		vec,
		ans.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("answer index: index answer: %w", err)
	}
	return nil
}

// SearchSimilar implements store.AnswerIndex. It finds the topK answers
// in the session closest (cosine distance) to the query embedding,
// ordered by ascending distance.
func (s *Store) SearchSimilar(ctx context.Context, sessionID string, embedding []float32, topK int) ([]store.AnswerResult, error) {
	const q = `
		SELECT id, session_id, question_id, text, embedding, timestamp,
		       embedding <=> $1 AS distance
		FROM   interview_answers
		WHERE  session_id = $2
		ORDER  BY distance
		LIMIT  $3`

	rows, err := s.pool.Query(ctx, q, pgvector.NewVector(embedding), sessionID, topK)
	if err != nil {
		return nil, fmt.Errorf("answer index: search: %w", err)
	}

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (store.AnswerResult, error) {
		var (
			ar  store.AnswerResult
			vec pgvector.Vector
		)
		if err := row.Scan(
			&ar.Answer.ID,
			&ar.Answer.SessionID,
			&ar.Answer.QuestionID,
			&ar.Answer.Text,
			&vec,
			&ar.Answer.Timestamp,
			&ar.Distance,
		); err != nil {
			return store.AnswerResult{}, err
		}
		ar.Answer.Embedding = vec.Slice()
		return ar, nil
	})
	if err != nil {
		return nil, fmt.Errorf("answer index: scan rows: %w", err)
	}
	if results == nil {
		results = []store.AnswerResult{}
	}
	return results, nil
}
