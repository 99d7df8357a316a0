package interrupt

import (
	"context"
	"sort"
	"time"

	"github.com/internai/interviewd/internal/analysis"
	"github.com/internai/interviewd/internal/gateway"
	"github.com/internai/interviewd/internal/observe"
	"github.com/internai/interviewd/internal/prompt"
	"github.com/internai/interviewd/internal/session"
)

const (
	// contentMinChars gates the lexical layer.
	contentMinChars = 50

	// warnCooldown is the minimum gap between two warnings for the same
	// reason, so the overlay does not spam the candidate.
	warnCooldown = 10 * time.Second
)

// Action is the decision outcome.
type Action string

const (
	ActionWarn      Action = "warn"
	ActionInterrupt Action = "interrupt"
)

// Input is everything known about the in-progress answer at check time.
type Input struct {
	// Transcript is the partial transcript so far.
	Transcript string

	// Question is the question currently being answered.
	Question string

	// History is the recent conversation, oldest first.
	History []prompt.QA

	// Audio carries server-side speech metrics when available.
	Audio *analysis.Metrics

	// ClientIssues are delivery problems the capture client reported.
	ClientIssues []ClientIssue

	// ElapsedSeconds is how long the candidate has been answering.
	ElapsedSeconds float64
}

// Decision is a non-nil outcome: either an interruption or a warning.
// A nil *Decision from [Engine.Check] means let the candidate keep
// talking.
type Decision struct {
	Action          Action   `json:"action"`
	Reason          Reason   `json:"reason"`
	Weight          int      `json:"weight"`
	Evidence        string   `json:"evidence"`
	OccurrenceCount int      `json:"occurrence_count"`
	Threshold       int      `json:"threshold"`
	Phrase          string   `json:"interruption_phrase,omitempty"`
	Warning         *Warning `json:"warning,omitempty"`
}

// Engine runs the four detection layers and turns their triggers into
// decisions against the session's interruption state. The caller must
// hold the session lock across Check.
type Engine struct {
	gw               *gateway.Gateway
	metrics          *observe.Metrics
	maxInterruptions int

	now func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the warning-cooldown clock.
func WithClock(fn func() time.Time) Option {
	return func(e *Engine) { e.now = fn }
}

// NewEngine returns an Engine. gw may be nil, which disables the LLM
// layer; metrics may be nil.
func NewEngine(gw *gateway.Gateway, metrics *observe.Metrics, maxInterruptions int, opts ...Option) *Engine {
	e := &Engine{
		gw:               gw,
		metrics:          metrics,
		maxInterruptions: maxInterruptions,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Check analyzes the in-progress answer and decides whether to
// interrupt, warn, or stay silent (nil decision). It mutates the
// session's per-reason counters, warning timestamps, and interruption
// log. Only context cancellation is returned as an error.
func (e *Engine) Check(ctx context.Context, sess *session.Session, in Input) (*Decision, error) {
	triggers := ClientIssueTriggers(in.ClientIssues)
	triggers = append(triggers, AudioTriggers(in.Audio)...)
	if len(in.Transcript) > contentMinChars {
		triggers = append(triggers, ContentTriggers(in.Transcript)...)
	}
	if in.Question != "" {
		triggers = append(triggers, ContextTriggers(in.Transcript, in.Question, in.History)...)
	}
	if e.gw != nil && len(in.Transcript) > semanticMinChars {
		llmTriggers, err := semanticTriggers(ctx, e.gw, in.Transcript, in.Question, in.History)
		if err != nil {
			return nil, err
		}
		triggers = append(triggers, llmTriggers...)
	}

	return e.decide(ctx, sess, triggers, in), nil
}

func (e *Engine) decide(ctx context.Context, sess *session.Session, triggers []Trigger, in Input) *Decision {
	if sess.ReasonCounts == nil {
		sess.ReasonCounts = make(map[string]int)
	}
	if sess.LastWarnAt == nil {
		sess.LastWarnAt = make(map[string]time.Time)
	}

	// Counters track consecutive detections: a clean check resets every
	// reason that did not fire this time.
	fired := make(map[string]struct{}, len(triggers))
	for _, t := range triggers {
		fired[string(t.Reason)] = struct{}{}
	}
	for reason := range sess.ReasonCounts {
		if _, ok := fired[reason]; !ok {
			delete(sess.ReasonCounts, reason)
		}
	}

	if len(triggers) == 0 {
		return nil
	}

	sort.SliceStable(triggers, func(i, j int) bool {
		return triggers[i].Weight > triggers[j].Weight
	})
	top := triggers[0]

	sess.ReasonCounts[string(top.Reason)]++
	occurrence := sess.ReasonCounts[string(top.Reason)]
	threshold := top.Reason.Threshold()

	d := &Decision{
		Reason:          top.Reason,
		Weight:          top.Weight,
		Evidence:        top.Evidence,
		OccurrenceCount: occurrence,
		Threshold:       threshold,
	}

	if occurrence >= threshold && e.mayInterrupt(sess) {
		d.Action = ActionInterrupt
		d.Phrase = top.Reason.Phrase()
		delete(sess.ReasonCounts, string(top.Reason))

		now := e.now()
		sess.Interruptions = append(sess.Interruptions, session.InterruptionEvent{
			Timestamp:          now,
			Reason:             string(top.Reason),
			Weight:             top.Weight,
			Evidence:           top.Evidence,
			PartialTranscript:  in.Transcript,
			TriggeredAtSeconds: in.ElapsedSeconds,
			Threshold:          threshold,
			OccurrenceCount:    occurrence,
		})
		if e.metrics != nil {
			e.metrics.RecordInterruption(ctx, string(top.Reason), string(ActionInterrupt))
		}
		return d
	}

	// Below threshold, or interruption not allowed right now: fall back
	// to a rate-limited warning.
	now := e.now()
	if last, ok := sess.LastWarnAt[string(top.Reason)]; ok && now.Sub(last) < warnCooldown {
		return nil
	}
	sess.LastWarnAt[string(top.Reason)] = now

	d.Action = ActionWarn
	d.Warning = warningFor(top.Reason, top.Evidence, now)
	if e.metrics != nil {
		e.metrics.RecordInterruption(ctx, string(top.Reason), string(ActionWarn))
	}
	return d
}

// mayInterrupt applies the one cross-cutting gate: the per-session cap.
// A detection at threshold with the cap exhausted demotes to a warning.
func (e *Engine) mayInterrupt(sess *session.Session) bool {
	return e.maxInterruptions <= 0 || len(sess.Interruptions) < e.maxInterruptions
}
