package claims

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/internai/interviewd/internal/prompt"
	"github.com/internai/interviewd/internal/session"
	"github.com/internai/interviewd/pkg/provider/embeddings"
	"github.com/internai/interviewd/pkg/store"
)

// semanticTopK is how many prior answers the semantic candidate search
// retrieves for the contradiction check.
const semanticTopK = 3

// SemanticIndex embeds answers and retrieves the most similar prior
// answers as contradiction candidates. Both dependencies are optional at
// the call sites: a nil *SemanticIndex degrades to recent-history
// candidates.
type SemanticIndex struct {
	embedder embeddings.Provider
	index    store.AnswerIndex
}

// NewSemanticIndex wires an embedding provider to an answer index.
// Returns nil when either dependency is missing, which callers treat as
// "semantic search unavailable".
func NewSemanticIndex(embedder embeddings.Provider, index store.AnswerIndex) *SemanticIndex {
	if embedder == nil || index == nil {
		return nil
	}
	return &SemanticIndex{embedder: embedder, index: index}
}

// IndexAnswer embeds and stores one completed answer. Failures are
// logged and swallowed: a missing vector only weakens later candidate
// retrieval.
func (s *SemanticIndex) IndexAnswer(ctx context.Context, sessionID, questionID, text string) {
	if s == nil || text == "" {
		return
	}
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		slog.Warn("answer embedding failed", "session_id", sessionID, "error", err)
		return
	}
	err = s.index.IndexAnswer(ctx, store.IndexedAnswer{
		ID:         fmt.Sprintf("%s/%s", sessionID, questionID),
		SessionID:  sessionID,
		QuestionID: questionID,
		Text:       text,
		Embedding:  vec,
		Timestamp:  time.Now(),
	})
	if err != nil {
		slog.Warn("answer indexing failed", "session_id", sessionID, "error", err)
	}
}

// Candidates returns contradiction-check context for the current
// answer: the semantically nearest prior answers when the index is
// usable, otherwise the last three answers from history. The returned
// pairs carry the original question text where it can be recovered from
// history.
func (s *SemanticIndex) Candidates(ctx context.Context, sess *session.Session, currentAnswer string) []prompt.QA {
	if s != nil {
		if qa := s.semanticCandidates(ctx, sess, currentAnswer); len(qa) > 0 {
			return qa
		}
	}
	return RecentCandidates(sess)
}

// RecentCandidates is the no-index fallback: the last three answered
// exchanges.
func RecentCandidates(sess *session.Session) []prompt.QA {
	var out []prompt.QA
	for _, rec := range sess.History {
		if rec.AnswerText == "" {
			continue
		}
		out = append(out, prompt.QA{Question: rec.QuestionText, Answer: rec.AnswerText})
	}
	if len(out) > semanticTopK {
		out = out[len(out)-semanticTopK:]
	}
	return out
}

func (s *SemanticIndex) semanticCandidates(ctx context.Context, sess *session.Session, currentAnswer string) []prompt.QA {
	vec, err := s.embedder.Embed(ctx, currentAnswer)
	if err != nil {
		slog.Warn("candidate embedding failed", "session_id", sess.ID, "error", err)
		return nil
	}
	results, err := s.index.SearchSimilar(ctx, sess.ID, vec, semanticTopK)
	if err != nil {
		slog.Warn("candidate search failed", "session_id", sess.ID, "error", err)
		return nil
	}

	questionText := make(map[string]string, len(sess.History))
	for _, rec := range sess.History {
		questionText[rec.QuestionID] = rec.QuestionText
	}

	var out []prompt.QA
	for _, r := range results {
		out = append(out, prompt.QA{
			Question: questionText[r.Answer.QuestionID],
			Answer:   r.Answer.Text,
		})
	}
	return out
}
