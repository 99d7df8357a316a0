package followup

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/internai/interviewd/internal/gateway"
	"github.com/internai/interviewd/internal/session"
	llmmock "github.com/internai/interviewd/pkg/provider/llm/mock"
)

const maxQuestions = 10

func goodEval() *session.Evaluation {
	return &session.Evaluation{
		OverallScore: 80,
		Weaknesses:   []string{"Could structure the answer better"},
	}
}

// longAnswer clears the short-answer trigger.
var longAnswer = strings.Repeat("we shipped the billing migration on time ", 10)

func TestShouldAskSuppressionRules(t *testing.T) {
	lowScore := goodEval()
	lowScore.OverallScore = 40

	tests := []struct {
		name       string
		sess       *session.Session
		ev         *session.Evaluation
		isFollowUp bool
	}{
		{
			name: "near interview end",
			sess: &session.Session{ActualQuestionNumber: maxQuestions - 1},
			ev:   lowScore,
		},
		{
			name:       "answer is itself a follow-up",
			sess:       &session.Session{},
			ev:         lowScore,
			isFollowUp: true,
		},
		{
			name: "previous question already triggered one",
			sess: &session.Session{
				History: []session.QARecord{{TriggeredFollowUp: true}},
			},
			ev: lowScore,
		},
		{
			name: "session budget exhausted",
			sess: &session.Session{FollowUpCount: 2},
			ev:   lowScore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, trigger := ShouldAsk(tt.sess, tt.ev, longAnswer, tt.isFollowUp, maxQuestions)
			if ok {
				t.Errorf("ShouldAsk = true (%s), want suppressed", trigger)
			}
		})
	}
}

func TestShouldAskTriggers(t *testing.T) {
	requested := goodEval()
	requested.RequiresFollowUp = true

	lowScore := goodEval()
	lowScore.OverallScore = 40

	flagged := goodEval()
	flagged.RedFlags = []string{"Claims sole credit for a team project"}

	weak := goodEval()
	weak.Weaknesses = []string{"Answer was vague about the actual implementation"}

	tests := []struct {
		name    string
		ev      *session.Evaluation
		answer  string
		trigger string
	}{
		{"evaluator requested", requested, longAnswer, "evaluator_requested"},
		{"low score", lowScore, longAnswer, "low_score"},
		{"short answer", goodEval(), "we fixed it quickly", "short_answer"},
		{"red flags", flagged, longAnswer, "red_flags"},
		{"critical weakness", weak, longAnswer, "critical_weakness"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, trigger := ShouldAsk(&session.Session{}, tt.ev, tt.answer, false, maxQuestions)
			if !ok || trigger != tt.trigger {
				t.Errorf("ShouldAsk = %v/%q, want true/%q", ok, trigger, tt.trigger)
			}
		})
	}
}

func TestShouldAskCleanAnswer(t *testing.T) {
	if ok, trigger := ShouldAsk(&session.Session{}, goodEval(), longAnswer, false, maxQuestions); ok {
		t.Errorf("clean answer triggered follow-up (%s)", trigger)
	}
}

func TestFromEvaluationPrefersSuggestion(t *testing.T) {
	p := llmmock.New("should not be called")
	g := NewGenerator(gateway.New(p, gateway.Config{}, nil), nil)

	ev := goodEval()
	ev.SuggestedFollowUp = "What caching layer did you use"

	q, err := g.FromEvaluation(context.Background(), ev, "original?", "answer")
	if err != nil {
		t.Fatalf("FromEvaluation: %v", err)
	}
	if q != "What caching layer did you use?" {
		t.Errorf("q = %q", q)
	}
	if p.CallCount() != 0 {
		t.Errorf("LLM called %d times despite suggestion", p.CallCount())
	}
}

func TestFromEvaluationGeneratesWhenNoSuggestion(t *testing.T) {
	p := llmmock.New("Question: How much did latency improve, exactly?")
	g := NewGenerator(gateway.New(p, gateway.Config{}, nil), nil)

	q, err := g.FromEvaluation(context.Background(), goodEval(), "original?", "answer")
	if err != nil {
		t.Fatalf("FromEvaluation: %v", err)
	}
	if q != "How much did latency improve, exactly?" {
		t.Errorf("q = %q", q)
	}
}

func TestAfterInterruptionOffTopicRedirect(t *testing.T) {
	p := llmmock.New("should not be called")
	g := NewGenerator(gateway.New(p, gateway.Config{}, nil), nil)

	q, err := g.AfterInterruption(context.Background(),
		"COMPLETELY_OFF_TOPIC", "What is a B-tree index?", "partial", "")
	if err != nil {
		t.Fatalf("AfterInterruption: %v", err)
	}
	want := "That's not what I asked. Let me be specific: What is a B-tree index?"
	if q != want {
		t.Errorf("q = %q, want %q", q, want)
	}
	if p.CallCount() != 0 {
		t.Error("off-topic redirect used the LLM")
	}
}

func TestAfterInterruptionStrategy(t *testing.T) {
	p := llmmock.New(`"That's too general - what exact metric improved?"`)
	g := NewGenerator(gateway.New(p, gateway.Config{}, nil), nil)

	q, err := g.AfterInterruption(context.Background(),
		"VAGUE_ANSWER", "original?", "we made things better", "no metrics")
	if err != nil {
		t.Fatalf("AfterInterruption: %v", err)
	}
	if q != "That's too general - what exact metric improved?" {
		t.Errorf("q = %q", q)
	}
}

func TestAfterInterruptionUnknownReasonGeneric(t *testing.T) {
	p := llmmock.New("should not be called")
	g := NewGenerator(gateway.New(p, gateway.Config{}, nil), nil)

	q, err := g.AfterInterruption(context.Background(),
		"SOME_NEW_REASON", "original?", "partial", "")
	if err != nil || !strings.Contains(q, "clarify") {
		t.Errorf("q = %q, err = %v", q, err)
	}
}

func TestAfterInterruptionBackendDownGeneric(t *testing.T) {
	p := llmmock.New()
	p.Err = errors.New("down")
	g := NewGenerator(gateway.New(p, gateway.Config{}, nil), nil)

	q, err := g.AfterInterruption(context.Background(),
		"VAGUE_ANSWER", "original?", "partial", "")
	if err != nil {
		t.Fatalf("AfterInterruption: %v", err)
	}
	if q != "Let me stop you there. Can you clarify what you meant by that?" {
		t.Errorf("q = %q", q)
	}
}
