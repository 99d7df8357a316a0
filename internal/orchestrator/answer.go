package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/internai/interviewd/internal/analysis"
	"github.com/internai/interviewd/internal/claims"
	"github.com/internai/interviewd/internal/evaluate"
	"github.com/internai/interviewd/internal/followup"
	"github.com/internai/interviewd/internal/interrupt"
	"github.com/internai/interviewd/internal/prompt"
	"github.com/internai/interviewd/internal/report"
	"github.com/internai/interviewd/internal/session"
	"github.com/internai/interviewd/internal/transcript"
	"github.com/internai/interviewd/pkg/provider/stt"
	"github.com/internai/interviewd/pkg/store"
)

// Answer is one completed candidate answer as delivered by the API layer.
type Answer struct {
	// QuestionID must match the session's current question.
	QuestionID string

	// Text is the raw transcript of the answer.
	Text string

	// Segments are the STT timing segments, when audio was transcribed
	// server-side. May be nil for typed answers.
	Segments []stt.Segment

	// RecordingDuration is the answer length in seconds.
	RecordingDuration float64

	// InterruptedAt is how many seconds in the interviewer cut the
	// answer off. Negative when the answer ran to completion.
	InterruptedAt float64
}

// Outcome is everything the candidate sees after an answer: immediate
// feedback, speech metrics, and either the next question or completion.
type Outcome struct {
	Feedback       report.Feedback         `json:"feedback"`
	Speech         analysis.Metrics        `json:"speech_metrics"`
	Corrections    []transcript.Correction `json:"corrections,omitempty"`
	NextQuestionID string                  `json:"next_question_id,omitempty"`
	NextQuestion   string                  `json:"next_question,omitempty"`
	IsFollowUp     bool                    `json:"is_followup"`
	QuestionNumber int                     `json:"question_number"`
	Phase          session.Phase           `json:"phase"`
	PhaseChanged   bool                    `json:"phase_changed"`
	Completed      bool                    `json:"completed"`
}

// ProcessAnswer runs the full post-answer pipeline: transcript
// correction, speech analysis, evaluation and claim extraction in
// parallel, claim-based score adjustment, follow-up decision, phase
// transition, difficulty pacing, and next-question generation.
func (o *Orchestrator) ProcessAnswer(ctx context.Context, sessionID string, ans Answer) (*Outcome, error) {
	var out *Outcome
	err := o.deps.Manager.With(ctx, sessionID, func(sess *session.Session) error {
		if sess.Completed {
			return ErrSessionCompleted
		}
		if ans.QuestionID != sess.CurrentQuestionID {
			return fmt.Errorf("%w: got %q, current is %q",
				ErrInvalidTransition, ans.QuestionID, sess.CurrentQuestionID)
		}

		text := ans.Text
		var corrections []transcript.Correction
		if o.deps.Corrector != nil {
			text, corrections = o.deps.Corrector.Correct(text)
		}
		speech := analysis.Analyze(text, ans.Segments, ans.RecordingDuration, ans.InterruptedAt)

		question := sess.CurrentQuestionText
		questionID := sess.CurrentQuestionID
		history := lastQA(sess, 3)
		isFollowUpAnswer := len(sess.History) > 0 &&
			sess.History[len(sess.History)-1].TriggeredFollowUp

		// Evaluation and the claim pipeline only read the session, so
		// they can run side by side under the held lock.
		var (
			ev        *session.Evaluation
			extracted []session.Claim
			contra    *claims.Contradiction
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			ev, err = o.deps.Evaluator.Evaluate(gctx, sess.Round, questionID, question, text)
			return err
		})
		if o.deps.Claims != nil && !o.skipClaims(sess.ActualQuestionNumber-1) {
			g.Go(func() error {
				cl, err := o.deps.Claims.Extract(gctx, questionID, question, text, history)
				if err != nil {
					return err
				}
				extracted = cl
				if o.deps.Gateway == nil {
					return nil
				}
				candidates := claims.RecentCandidates(sess)
				if o.deps.Semantic != nil {
					candidates = o.deps.Semantic.Candidates(gctx, sess, text)
				}
				contra, err = claims.CheckContradiction(gctx, o.deps.Gateway, text, candidates)
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		if contra != nil {
			claims.MarkContradictory(extracted, contra)
			sess.RedFlags = append(sess.RedFlags, "Contradiction: "+contra.Explanation)
		}
		evaluate.ApplyClaimAdjustments(ev, extracted)
		sess.Claims = append(sess.Claims, extracted...)
		sess.RedFlags = append(sess.RedFlags, ev.RedFlags...)
		o.resolveClaim(sess, ev)

		// The follow-up decision reads history state, so it runs before
		// this exchange is appended.
		askFollowUp, trigger := followup.ShouldAsk(sess, ev, text, isFollowUpAnswer, o.maxQuestions())

		rec := session.QARecord{
			QuestionID:        questionID,
			QuestionText:      question,
			AnswerText:        text,
			Round:             sess.Round,
			Phase:             sess.Phase,
			RecordingDuration: ans.RecordingDuration,
			WasInterrupted:    ans.InterruptedAt >= 0,
			IsFollowUpAnswer:  isFollowUpAnswer,
			Evaluation:        ev,
			Timestamp:         time.Now().UTC(),
		}
		sess.History = append(sess.History, rec)

		if o.deps.Metrics != nil {
			o.deps.Metrics.RecordAnswer(ctx, string(sess.Round), string(sess.Phase))
		}
		if o.deps.Semantic != nil {
			o.deps.Semantic.IndexAnswer(ctx, sess.ID, questionID, text)
		}
		o.logEvent(ctx, sess.ID, store.EventAnswer, rec)
		o.logEvent(ctx, sess.ID, store.EventEvaluation, ev)
		if len(extracted) > 0 {
			o.logEvent(ctx, sess.ID, store.EventClaims, extracted)
		}

		out = &Outcome{
			Feedback:    report.Immediate(ev),
			Speech:      speech,
			Corrections: corrections,
			Phase:       sess.Phase,
		}

		if askFollowUp {
			fq, err := o.deps.FollowUps.FromEvaluation(ctx, ev, question, text)
			if err != nil {
				return err
			}
			sess.History[len(sess.History)-1].TriggeredFollowUp = true
			sess.FollowUpCount++
			id := fmt.Sprintf("%s-f%d", questionID, sess.FollowUpCount)
			sess.CurrentQuestionID = id
			sess.CurrentQuestionText = fq
			out.NextQuestionID = id
			out.NextQuestion = fq
			out.IsFollowUp = true
			out.QuestionNumber = sess.ActualQuestionNumber
			slog.Debug("follow-up issued",
				"session_id", sess.ID, "trigger", trigger, "question_id", id)
			return nil
		}

		// Difficulty moves on the evaluator's recommendation for main
		// questions only; a triggered follow-up returned above without
		// touching the ladder.
		if !isFollowUpAnswer {
			adjustDifficulty(sess, ev)
		}

		rule := o.rules[sess.Phase]
		if rule.ShouldTransition(sess.QuestionsInPhase, sess.PhaseAverage()) {
			next := o.nextPhase(sess)
			if next != sess.Phase {
				sess.Phase = next
				sess.QuestionsInPhase = 0
				out.PhaseChanged = true
				slog.Info("phase transition",
					"session_id", sess.ID, "phase", next)
			}
		}

		if sess.Phase == session.PhaseCompleted || sess.ActualQuestionNumber >= o.maxQuestions() {
			sess.Completed = true
			sess.Phase = session.PhaseCompleted
			sess.CurrentQuestionID = ""
			sess.CurrentQuestionText = ""
			out.Completed = true
			out.Phase = session.PhaseCompleted
			if o.deps.Metrics != nil {
				o.deps.Metrics.ActiveSessions.Add(ctx, -1)
			}
			slog.Info("interview completed",
				"session_id", sess.ID, "questions", sess.ActualQuestionNumber)
			return nil
		}

		sess.ActualQuestionNumber++
		sess.QuestionsInPhase++
		nq, id, err := o.nextQuestion(ctx, sess, ev)
		if err != nil {
			return err
		}
		sess.CurrentQuestionID = id
		sess.CurrentQuestionText = nq
		out.NextQuestionID = id
		out.NextQuestion = nq
		out.Phase = sess.Phase
		out.QuestionNumber = sess.ActualQuestionNumber
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (o *Orchestrator) maxQuestions() int {
	if o.deps.Config.MaxQuestions > 0 {
		return o.deps.Config.MaxQuestions
	}
	return 5
}

// skipClaims reports whether claim extraction is disabled for the given
// zero-based question index (warm-up questions rarely contain claims).
func (o *Orchestrator) skipClaims(questionIndex int) bool {
	for _, idx := range o.deps.Config.SkipClaimExtractionFor {
		if idx == questionIndex {
			return true
		}
	}
	return false
}

// resolveClaim closes out the claim the current question was verifying.
// The evaluation of the verification answer becomes the result; deeper
// judgement lands in the final report.
func (o *Orchestrator) resolveClaim(sess *session.Session, ev *session.Evaluation) {
	if sess.CurrentClaimID == "" {
		return
	}
	for i := range sess.Claims {
		if sess.Claims[i].ID != sess.CurrentClaimID {
			continue
		}
		sess.Claims[i].Verified = true
		sess.Claims[i].VerificationResult = fmt.Sprintf("answered, scored %d/100", ev.OverallScore)
		break
	}
	sess.CurrentClaimID = ""
}

// nextQuestion produces the next main question. In the claim
// verification phase the highest-priority unverified claim supplies the
// question directly; everywhere else the generator is asked.
func (o *Orchestrator) nextQuestion(ctx context.Context, sess *session.Session, ev *session.Evaluation) (question, id string, err error) {
	id = fmt.Sprintf("q%d", sess.ActualQuestionNumber)

	if sess.Phase == session.PhaseClaimVerification {
		if q, claimID := verificationQuestion(sess); q != "" {
			sess.CurrentClaimID = claimID
			return q, id, nil
		}
	}

	qc := prompt.QuestionContext{
		Round:           string(sess.Round),
		Phase:           string(sess.Phase),
		DifficultyLabel: session.DifficultyLabel(sess.DifficultyLevel),
		ResumeContext:   sess.ResumeContext,
		LastQuestions:   sess.LastQuestions(3),
	}
	if answers := sess.LastAnswers(1); len(answers) > 0 {
		qc.LastAnswer = answers[0]
	}
	if ev != nil {
		qc.FocusHint = ev.FollowUpReason
	}
	q, err := o.deps.Questions.Next(ctx, sess.Round, qc, sess.ActualQuestionNumber-1)
	if err != nil {
		return "", "", err
	}
	return q, id, nil
}

// verificationQuestion picks the top unverified claim and its prepared
// verification question. A claim extracted without one gets a direct
// challenge.
func verificationQuestion(sess *session.Session) (question, claimID string) {
	ranked := claims.Prioritize(sess.UnverifiedClaims())
	if len(ranked) == 0 {
		return "", ""
	}
	c := ranked[0]
	if len(c.VerificationQuestions) > 0 {
		return c.VerificationQuestions[0], c.ID
	}
	return fmt.Sprintf("Earlier you said: %q. Walk me through exactly how that worked in practice.", c.Text), c.ID
}

// LiveCheck is a mid-answer snapshot from the live channel.
type LiveCheck struct {
	PartialTranscript string
	ElapsedSeconds    float64
	Speech            *analysis.Metrics
	ClientIssues      []interrupt.ClientIssue
}

// LiveResult is the engine's verdict plus, for actual interruptions, the
// follow-up question the interviewer speaks after the cut-in phrase.
type LiveResult struct {
	Decision *interrupt.Decision `json:"decision"`
	FollowUp string              `json:"followup_question,omitempty"`
}

// CheckInterruption runs the interruption engine against an in-progress
// answer. Returns nil when interruptions are disabled or nothing fired.
func (o *Orchestrator) CheckInterruption(ctx context.Context, sessionID string, in LiveCheck) (*LiveResult, error) {
	if o.deps.Interrupts == nil || !o.deps.Config.EnableInterruptions {
		return nil, nil
	}
	var res *LiveResult
	err := o.deps.Manager.With(ctx, sessionID, func(sess *session.Session) error {
		if sess.Completed {
			return ErrSessionCompleted
		}
		d, err := o.deps.Interrupts.Check(ctx, sess, interrupt.Input{
			Transcript:     in.PartialTranscript,
			Question:       sess.CurrentQuestionText,
			History:        lastQA(sess, 3),
			Audio:          in.Speech,
			ClientIssues:   in.ClientIssues,
			ElapsedSeconds: in.ElapsedSeconds,
		})
		if err != nil || d == nil {
			return err
		}
		res = &LiveResult{Decision: d}
		if d.Action == interrupt.ActionInterrupt {
			fq, err := o.deps.FollowUps.AfterInterruption(ctx,
				string(d.Reason), sess.CurrentQuestionText, in.PartialTranscript, d.Evidence)
			if err != nil {
				return err
			}
			res.FollowUp = fq
			if n := len(sess.Interruptions); n > 0 {
				o.logEvent(ctx, sess.ID, store.EventInterruption, sess.Interruptions[n-1])
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
