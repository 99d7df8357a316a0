// Package followup decides when the interviewer probes deeper into an
// answer and generates the follow-up question, either from the
// evaluator's findings or after a live interruption.
package followup

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/internai/interviewd/internal/gateway"
	"github.com/internai/interviewd/internal/observe"
	"github.com/internai/interviewd/internal/prompt"
	"github.com/internai/interviewd/internal/session"
	"github.com/internai/interviewd/pkg/provider/llm"
)

const (
	// maxPerSession caps follow-ups across the whole interview.
	maxPerSession = 2

	// lowScoreFloor triggers a follow-up on any overall score below it.
	lowScoreFloor = 55

	// shortAnswerWords triggers a follow-up on suspiciously short answers.
	shortAnswerWords = 30
)

// weaknessMarkers are evaluator weakness phrasings that warrant probing.
var weaknessMarkers = []string{
	"vague", "no specific", "missing details",
	"unclear", "contradictory", "no metrics",
}

// ShouldAsk reports whether the just-evaluated answer warrants a
// follow-up, and the trigger name when it does. Call it before the
// exchange is appended to history: the last history record must be the
// previous question so the no-consecutive-follow-ups rule can see it.
func ShouldAsk(sess *session.Session, ev *session.Evaluation, answerText string, isFollowUpAnswer bool, maxQuestions int) (bool, string) {
	// Suppression rules come first and are absolute.
	if sess.ActualQuestionNumber >= maxQuestions-1 {
		return false, ""
	}
	if isFollowUpAnswer {
		return false, ""
	}
	if n := len(sess.History); n > 0 && sess.History[n-1].TriggeredFollowUp {
		return false, ""
	}
	if sess.FollowUpCount >= maxPerSession {
		return false, ""
	}

	if ev.RequiresFollowUp {
		return true, "evaluator_requested"
	}
	if ev.OverallScore < lowScoreFloor {
		return true, "low_score"
	}
	if len(strings.Fields(answerText)) < shortAnswerWords {
		return true, "short_answer"
	}
	if len(ev.RedFlags) > 0 {
		return true, "red_flags"
	}
	for _, w := range ev.Weaknesses {
		lower := strings.ToLower(w)
		for _, marker := range weaknessMarkers {
			if strings.Contains(lower, marker) {
				return true, "critical_weakness"
			}
		}
	}
	return false, ""
}

// Generator produces the follow-up question text. Every path degrades to
// a usable canned question; the LLM is an improvement, not a dependency.
type Generator struct {
	gw      *gateway.Gateway
	metrics *observe.Metrics
}

// NewGenerator returns a Generator. metrics may be nil.
func NewGenerator(gw *gateway.Gateway, metrics *observe.Metrics) *Generator {
	return &Generator{gw: gw, metrics: metrics}
}

// FromEvaluation generates a follow-up for an evaluator-triggered probe.
// The evaluator's own suggestion wins when present.
func (g *Generator) FromEvaluation(ctx context.Context, ev *session.Evaluation, originalQuestion, answerText string) (string, error) {
	if s := prompt.CleanFollowUp(ev.SuggestedFollowUp); s != "" {
		g.record(ctx, "evaluation")
		return s, nil
	}
	q, err := g.generate(ctx, prompt.EvaluationFollowUp(originalQuestion, answerText, ev.Weaknesses))
	if err != nil {
		return "", err
	}
	g.record(ctx, "evaluation")
	return q, nil
}

// AfterInterruption generates the question spoken right after an
// interruption. Off-topic answers get the fixed redirect back to the
// original question; reasons without an LLM strategy get the generic
// probe.
func (g *Generator) AfterInterruption(ctx context.Context, reason, originalQuestion, partialAnswer, evidence string) (string, error) {
	if reason == "COMPLETELY_OFF_TOPIC" {
		g.record(ctx, "interruption")
		return prompt.OffTopicRedirect(originalQuestion), nil
	}

	req, ok := prompt.FollowUp(reason, originalQuestion, partialAnswer, evidence)
	if !ok {
		g.record(ctx, "interruption")
		return prompt.GenericFollowUp, nil
	}
	q, err := g.generate(ctx, req)
	if err != nil {
		return "", err
	}
	g.record(ctx, "interruption")
	return q, nil
}

// generate runs one LLM request and cleans the output. Backend outages
// and empty output both fall back to the generic follow-up.
func (g *Generator) generate(ctx context.Context, req llm.ChatRequest) (string, error) {
	raw, err := g.gw.Chat(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if errors.Is(err, gateway.ErrBackendUnavailable) {
			slog.Warn("follow-up generation degraded, llm unavailable")
			return prompt.GenericFollowUp, nil
		}
		return "", err
	}
	if q := prompt.CleanFollowUp(raw); q != "" {
		return q, nil
	}
	return prompt.GenericFollowUp, nil
}

func (g *Generator) record(ctx context.Context, trigger string) {
	if g.metrics != nil {
		g.metrics.RecordFollowUp(ctx, trigger)
	}
}
