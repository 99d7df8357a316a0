// Package evaluate scores candidate answers across the five rubric
// dimensions using round-specific LLM rubrics, with a tolerant parser
// and a canned fallback so evaluation never fails structurally.
package evaluate

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/internai/interviewd/internal/gateway"
	"github.com/internai/interviewd/internal/observe"
	"github.com/internai/interviewd/internal/prompt"
	"github.com/internai/interviewd/internal/session"
)

// Texts injected for dimensions the LLM omitted.
const (
	missingEvidence    = "no evaluation data from LLM"
	missingImprovement = "unable to assess"
)

// Evaluator runs the per-round scoring rubric over the shared LLM
// gateway. Safe for concurrent use.
type Evaluator struct {
	gw      *gateway.Gateway
	metrics *observe.Metrics
}

// New returns an Evaluator. metrics may be nil.
func New(gw *gateway.Gateway, metrics *observe.Metrics) *Evaluator {
	return &Evaluator{gw: gw, metrics: metrics}
}

// Evaluate scores one answer. The result always carries all five
// dimensions and a recomputed overall score. When the LLM backend is
// unavailable the canned degraded evaluation is returned instead of an
// error; only context cancellation propagates.
func (e *Evaluator) Evaluate(ctx context.Context, round session.Round, questionID, question, answer string) (*session.Evaluation, error) {
	start := time.Now()
	raw, err := e.gw.Chat(ctx, prompt.Evaluation(string(round), question, answer))
	if e.metrics != nil {
		e.metrics.EvaluationDuration.Record(ctx, time.Since(start).Seconds())
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, gateway.ErrBackendUnavailable) {
			slog.Warn("evaluation degraded, llm unavailable",
				"question_id", questionID, "round", round)
			return Degraded(questionID, round), nil
		}
		return nil, err
	}
	return Parse(raw, questionID, round), nil
}

// Degraded builds the canned evaluation used when the backend is down:
// all dimensions at the fallback default, marked degraded.
func Degraded(questionID string, round session.Round) *session.Evaluation {
	ev := &session.Evaluation{
		QuestionID:           questionID,
		Round:                round,
		Scores:               make(map[session.Dimension]int, len(session.Dimensions)),
		Strengths:            []string{"No strengths identified"},
		Weaknesses:           []string{"No weaknesses identified"},
		DifficultyAdjustment: session.AdjustMaintain,
		Degraded:             true,
	}
	fillMissingDimensions(ev)
	ev.OverallScore = session.WeightedOverall(ev.Scores)
	return ev
}

// fillMissingDimensions injects the zero-score default for every rubric
// dimension the evaluation does not carry yet.
func fillMissingDimensions(ev *session.Evaluation) {
	for _, dim := range session.Dimensions {
		if _, ok := ev.Scores[dim]; ok {
			continue
		}
		ev.Scores[dim] = 0
		ev.ScoreDetails = append(ev.ScoreDetails, session.ScoreDetail{
			Dimension:   dim,
			Score:       0,
			Evidence:    missingEvidence,
			Improvement: missingImprovement,
		})
	}
}
