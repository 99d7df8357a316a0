// Package orchestrator drives one interview end to end: it owns the
// phase machine, fans answer processing out to evaluation and claim
// extraction, decides on follow-ups, runs live interruption checks, and
// produces the final report. All session mutation happens under the
// session manager's per-session lock.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/internai/interviewd/internal/claims"
	"github.com/internai/interviewd/internal/config"
	"github.com/internai/interviewd/internal/evaluate"
	"github.com/internai/interviewd/internal/followup"
	"github.com/internai/interviewd/internal/gateway"
	"github.com/internai/interviewd/internal/interrupt"
	"github.com/internai/interviewd/internal/observe"
	"github.com/internai/interviewd/internal/prompt"
	"github.com/internai/interviewd/internal/report"
	"github.com/internai/interviewd/internal/session"
	"github.com/internai/interviewd/internal/transcript"
	"github.com/internai/interviewd/pkg/store"
)

var (
	// ErrInvalidTransition is returned when an answer arrives for a
	// question that is not the session's current one.
	ErrInvalidTransition = errors.New("orchestrator: answer does not match current question")

	// ErrSessionCompleted is returned for operations on a finished session.
	ErrSessionCompleted = errors.New("orchestrator: session already completed")

	// ErrInvalidRound is returned by Start for an unknown round.
	ErrInvalidRound = errors.New("orchestrator: invalid round")
)

// Difficulty ladder bounds. The level moves one step at a time on the
// evaluator's recommendation.
const (
	minDifficulty     = 1
	maxDifficulty     = 10
	defaultDifficulty = 5
)

// Deps are the orchestrator's collaborators. Manager, Evaluator,
// Questions, and FollowUps are required; the rest may be nil and the
// corresponding feature degrades (no claims, no semantic retrieval, no
// interruptions, no audit log, no transcript correction).
type Deps struct {
	Manager    *session.Manager
	Evaluator  *evaluate.Evaluator
	Questions  *evaluate.Generator
	FollowUps  *followup.Generator
	Claims     *claims.Extractor
	Semantic   *claims.SemanticIndex
	Interrupts *interrupt.Engine
	Gateway    *gateway.Gateway
	Corrector  *transcript.Corrector
	Events     store.EventLog
	Metrics    *observe.Metrics
	Config     config.InterviewConfig
	Rules      map[session.Phase]session.PhaseRule
}

// Orchestrator coordinates one interview per session ID. Safe for
// concurrent use; per-session operations are serialised by the manager.
type Orchestrator struct {
	deps  Deps
	rules map[session.Phase]session.PhaseRule
}

// New builds an Orchestrator. When Deps.Rules is nil the phase rules are
// derived from the configured preset.
func New(d Deps) *Orchestrator {
	rules := d.Rules
	if rules == nil {
		rules = session.RulesForPreset(string(d.Config.Preset))
	}
	return &Orchestrator{deps: d, rules: rules}
}

// Started is the result of opening an interview.
type Started struct {
	SessionID    string        `json:"session_id"`
	Round        session.Round `json:"round"`
	Phase        session.Phase `json:"phase"`
	Introduction string        `json:"introduction"`
	QuestionID   string        `json:"question_id"`
	Question     string        `json:"question"`
}

// Start creates a session and generates its opening question.
func (o *Orchestrator) Start(ctx context.Context, sessionID string, round session.Round, resumeContext string) (*Started, error) {
	if !round.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRound, round)
	}

	phase := o.firstPhase()
	qc := prompt.QuestionContext{
		Round:           string(round),
		Phase:           string(phase),
		DifficultyLabel: session.DifficultyLabel(defaultDifficulty),
		ResumeContext:   resumeContext,
	}
	question, err := o.deps.Questions.Next(ctx, round, qc, 0)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sess := &session.Session{
		ID:                  sessionID,
		Round:               round,
		Phase:               phase,
		DifficultyLevel:     defaultDifficulty,
		ResumeContext:       resumeContext,
		CurrentQuestionID:   "q1",
		CurrentQuestionText: question,
		// The question counter moves when a question is issued, not when
		// it is answered, so the hard cap can never be overrun.
		ActualQuestionNumber: 1,
		QuestionsInPhase:     1,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := o.deps.Manager.Create(ctx, sess); err != nil {
		return nil, err
	}
	if o.deps.Metrics != nil {
		o.deps.Metrics.ActiveSessions.Add(ctx, 1)
	}
	slog.Info("interview started", "session_id", sessionID, "round", round, "phase", phase)

	return &Started{
		SessionID:    sessionID,
		Round:        round,
		Phase:        phase,
		Introduction: evaluate.Greeting(round),
		QuestionID:   "q1",
		Question:     question,
	}, nil
}

// firstPhase returns the first enabled phase. Claim verification can
// never open an interview: there are no claims yet.
func (o *Orchestrator) firstPhase() session.Phase {
	for _, p := range session.PhaseOrder {
		rule := o.rules[p]
		if !rule.Enabled() || rule.SkipIfNoClaims {
			continue
		}
		return p
	}
	return session.PhaseCompleted
}

// nextPhase advances past disabled phases and past claim verification
// when nothing needs verifying.
func (o *Orchestrator) nextPhase(sess *session.Session) session.Phase {
	p := sess.Phase
	for {
		p = p.Next()
		if p == session.PhaseCompleted {
			return p
		}
		rule := o.rules[p]
		if !rule.Enabled() {
			continue
		}
		if rule.SkipIfNoClaims && len(sess.UnverifiedClaims()) == 0 {
			continue
		}
		return p
	}
}

// adjustDifficulty applies the evaluator's pacing recommendation one
// step at a time, clamped to the ladder bounds.
func adjustDifficulty(sess *session.Session, ev *session.Evaluation) {
	if ev == nil {
		return
	}
	switch ev.DifficultyAdjustment {
	case session.AdjustIncrease:
		sess.DifficultyLevel = min(sess.DifficultyLevel+1, maxDifficulty)
	case session.AdjustDecrease:
		sess.DifficultyLevel = max(sess.DifficultyLevel-1, minDifficulty)
	}
}

// lastQA converts the tail of the history into prompt exchanges.
func lastQA(sess *session.Session, n int) []prompt.QA {
	start := len(sess.History) - n
	if start < 0 {
		start = 0
	}
	var out []prompt.QA
	for _, rec := range sess.History[start:] {
		out = append(out, prompt.QA{Question: rec.QuestionText, Answer: rec.AnswerText})
	}
	return out
}

// logEvent appends to the audit trail. Failures are logged and
// swallowed: the audit log never blocks the interview.
func (o *Orchestrator) logEvent(ctx context.Context, sessionID, kind string, payload any) {
	if o.deps.Events == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Warn("event payload marshal failed", "kind", kind, "error", err)
		return
	}
	err = o.deps.Events.AppendEvent(ctx, store.Event{
		SessionID: sessionID,
		Kind:      kind,
		Payload:   data,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		slog.Warn("event append failed", "kind", kind, "session_id", sessionID, "error", err)
	}
}

// Session returns a read-only copy of the session state.
func (o *Orchestrator) Session(id string) (*session.Session, error) {
	return o.deps.Manager.Peek(id)
}

// Abort ends a session early and discards its live state together with
// its snapshot. The audit event log is kept.
func (o *Orchestrator) Abort(ctx context.Context, sessionID string) error {
	sess, err := o.deps.Manager.Peek(sessionID)
	if err != nil {
		return err
	}
	if err := o.deps.Manager.Delete(ctx, sessionID); err != nil {
		return err
	}
	if o.deps.Metrics != nil && !sess.Completed {
		o.deps.Metrics.ActiveSessions.Add(ctx, -1)
	}
	slog.Info("interview aborted", "session_id", sessionID)
	return nil
}

// FinalReport builds the report for a session. The session does not have
// to be completed; an aborted interview still gets a report over what
// was answered.
func (o *Orchestrator) FinalReport(ctx context.Context, sessionID string) (*report.Report, error) {
	sess, err := o.deps.Manager.Peek(sessionID)
	if err != nil {
		return nil, err
	}
	r := report.Generate(sess)
	o.logEvent(ctx, sessionID, store.EventReport, r)
	return r, nil
}
