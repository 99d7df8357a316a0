package interrupt

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/internai/interviewd/internal/analysis"
	"github.com/internai/interviewd/internal/gateway"
	"github.com/internai/interviewd/internal/prompt"
	"github.com/internai/interviewd/internal/session"
	llmmock "github.com/internai/interviewd/pkg/provider/llm/mock"
)

const ramblingAnswer = `Um, so like, I think, you know, the database was, um, like, having some
issues, and, uh, basically what happened was, you know, we had, like,
a lot of, um, queries that were, sort of, kind of slow, and, uh, I guess
we, you know, tried to, like, optimize them, and, um, it sort of worked,
I think, maybe, you know, kind of improved things, like, a bit.`

const vagueAnswer = `We worked on the system and made it better. The performance improved and
users were happy. We used some technologies and frameworks to build it.
Everything went smoothly and the project was successful. The team was great
and we delivered on time. We followed good practices and everyone agreed the
outcome was positive overall for the business and for the stakeholders too.`

func hasReason(triggers []Trigger, r Reason) bool {
	for _, t := range triggers {
		if t.Reason == r {
			return true
		}
	}
	return false
}

func TestContentTriggersRambling(t *testing.T) {
	triggers := ContentTriggers(ramblingAnswer)
	if !hasReason(triggers, ReasonExcessiveRambling) {
		t.Errorf("filler-heavy answer did not trigger rambling: %+v", triggers)
	}
}

func TestContentTriggersVagueAnswer(t *testing.T) {
	triggers := ContentTriggers(vagueAnswer)
	if !hasReason(triggers, ReasonVagueAnswer) {
		t.Errorf("long unspecific answer did not trigger vagueness: %+v", triggers)
	}
}

func TestContentTriggersVagueSuppressedBySpecifics(t *testing.T) {
	specific := strings.Replace(vagueAnswer,
		"made it better", "cut p99 latency from 900ms to 120ms", 1)
	if triggers := ContentTriggers(specific); hasReason(triggers, ReasonVagueAnswer) {
		t.Errorf("answer with numbers flagged as vague: %+v", triggers)
	}
}

func TestContentTriggersUncertainty(t *testing.T) {
	answer := "I think it was maybe the cache, I guess it could be, not sure, " +
		"perhaps the index was wrong, I believe possibly the driver"
	triggers := ContentTriggers(answer)
	if !hasReason(triggers, ReasonHighUncertainty) {
		t.Errorf("hedged answer did not trigger uncertainty: %+v", triggers)
	}
}

func TestContentTriggersShortAnswerIgnored(t *testing.T) {
	if triggers := ContentTriggers("um uh um like basically"); triggers != nil {
		t.Errorf("short answer produced triggers: %+v", triggers)
	}
}

func TestContextTriggersDodging(t *testing.T) {
	question := "How did you optimize the database queries for the reporting pipeline?"
	answer := "My weekends revolve around cooking elaborate meals with fresh herbs " +
		"from the garden, then hosting friends who travel in from nearby towns, " +
		"and we spend evenings playing board games until everyone heads home late"

	triggers := ContextTriggers(answer, question, nil)
	if !hasReason(triggers, ReasonDodging) {
		t.Errorf("unrelated answer did not trigger dodging: %+v", triggers)
	}
}

func TestContextTriggersRelevantAnswerClean(t *testing.T) {
	question := "How did you optimize the database queries for the reporting pipeline?"
	answer := "The reporting pipeline ran the same database queries repeatedly, " +
		"so to optimize them we added a covering index, rewrote two joins, and " +
		"cached the aggregate results between pipeline runs for most dashboards"

	if triggers := ContextTriggers(answer, question, nil); hasReason(triggers, ReasonDodging) {
		t.Errorf("on-topic answer flagged as dodging: %+v", triggers)
	}
}

func TestContextTriggersPolarContradiction(t *testing.T) {
	history := []prompt.QA{{
		Question: "Did you run the deployment yourself?",
		Answer:   "Yes, I deployed the kubernetes cluster to production myself and managed the monitoring stack.",
	}}
	answer := "No, I never touched the kubernetes cluster or the monitoring stack in production."

	triggers := ContextTriggers(answer, "", history)
	if !hasReason(triggers, ReasonContradiction) {
		t.Errorf("polar flip on shared topic not flagged: %+v", triggers)
	}
}

func TestContextTriggersPolarFlipDifferentTopic(t *testing.T) {
	history := []prompt.QA{{
		Question: "Did you enjoy the hackathon?",
		Answer:   "Yes, the hackathon weekend was fantastic fun.",
	}}
	answer := "No, I never worked with embedded firmware before."

	if triggers := ContextTriggers(answer, "", history); hasReason(triggers, ReasonContradiction) {
		t.Errorf("unrelated polar flip flagged as contradiction: %+v", triggers)
	}
}

func TestClientIssueTriggers(t *testing.T) {
	issues := []ClientIssue{
		{Type: "EXCESSIVE_PAUSING", Evidence: "3 pauses over 3 seconds"},
		{Type: "HIGH_HESITATION"},
		{Type: "FUTURE_ISSUE_TYPE", Evidence: "ignored"},
	}
	triggers := ClientIssueTriggers(issues)
	if len(triggers) != 2 {
		t.Fatalf("triggers = %d, want 2 (unknown type dropped)", len(triggers))
	}
	if triggers[0].Reason != ReasonExcessivePausing || triggers[1].Reason != ReasonHighUncertainty {
		t.Errorf("mapping wrong: %+v", triggers)
	}
}

func TestAudioTriggersLongPauses(t *testing.T) {
	m := &analysis.Metrics{LongPauses: 3, MaxPauseDuration: 4.2}
	if triggers := AudioTriggers(m); !hasReason(triggers, ReasonExcessivePausing) {
		t.Errorf("long pauses not flagged: %+v", triggers)
	}
	if triggers := AudioTriggers(&analysis.Metrics{LongPauses: 1}); triggers != nil {
		t.Errorf("single long pause flagged: %+v", triggers)
	}
}

// neutralTranscript is long enough for the LLM layer but clean for the
// lexical one: digits, examples, no fillers.
const neutralTranscript = "I reduced query latency from 900 milliseconds to 120 " +
	"milliseconds, for example, by adding a covering index and caching the " +
	"hottest 20 queries in Redis, which specifically cut load during peak hours."

func TestCheckFalseClaimInterruptsImmediately(t *testing.T) {
	p := llmmock.New(`{"contains_false_claim": true, "confidence_level": "high", "explanation": "claims sole authorship of a team project"}`)
	e := NewEngine(gateway.New(p, gateway.Config{}, nil), nil, 5)

	sess := &session.Session{}
	d, err := e.Check(context.Background(), sess, Input{
		Transcript:     neutralTranscript,
		ElapsedSeconds: 5,
	})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if d == nil || d.Action != ActionInterrupt || d.Reason != ReasonFalseClaim {
		t.Fatalf("decision = %+v, want immediate interrupt", d)
	}
	if d.OccurrenceCount != 1 || d.Phrase != ReasonFalseClaim.Phrase() {
		t.Errorf("decision detail = %+v", d)
	}
	if len(sess.Interruptions) != 1 {
		t.Errorf("interruptions = %d, want 1", len(sess.Interruptions))
	}
}

func TestCheckDodgingWarnsThenInterrupts(t *testing.T) {
	now := time.Now()
	e := NewEngine(nil, nil, 5, WithClock(func() time.Time { return now }))

	question := "How did you optimize the database queries for the reporting pipeline?"
	answer := "My favorite recipes involve slow cooking meats for 3 hours with " +
		"fresh herbs from my garden, then I prepare sauces, breads, desserts, and " +
		"salads every weekend for friends who visit from nearby towns regularly"

	sess := &session.Session{}
	in := Input{Transcript: answer, Question: question, ElapsedSeconds: 20}

	d, err := e.Check(context.Background(), sess, in)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if d == nil || d.Action != ActionWarn || d.Reason != ReasonDodging {
		t.Fatalf("first decision = %+v, want warn", d)
	}
	if d.Warning == nil || d.Warning.Message != "Address the question directly" {
		t.Errorf("warning = %+v", d.Warning)
	}

	now = now.Add(11 * time.Second)
	d, err = e.Check(context.Background(), sess, in)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if d == nil || d.Action != ActionInterrupt {
		t.Fatalf("second decision = %+v, want interrupt at threshold", d)
	}
	if d.OccurrenceCount != 2 || len(sess.Interruptions) != 1 {
		t.Errorf("occurrence = %d, interruptions = %d", d.OccurrenceCount, len(sess.Interruptions))
	}
}

func TestCheckWarnCooldown(t *testing.T) {
	now := time.Now()
	e := NewEngine(nil, nil, 5, WithClock(func() time.Time { return now }))

	sess := &session.Session{}
	in := Input{Transcript: vagueAnswer, ElapsedSeconds: 20}

	d, _ := e.Check(context.Background(), sess, in)
	if d == nil || d.Action != ActionWarn || d.Reason != ReasonVagueAnswer {
		t.Fatalf("first decision = %+v, want vague-answer warning", d)
	}

	// Second detection two seconds later is still below the interruption
	// threshold and inside the warning cooldown.
	now = now.Add(2 * time.Second)
	d, _ = e.Check(context.Background(), sess, in)
	if d != nil {
		t.Errorf("decision inside cooldown = %+v, want nil", d)
	}
}

func TestCheckMaxInterruptionsDowngradesToWarn(t *testing.T) {
	now := time.Now()
	e := NewEngine(nil, nil, 2, WithClock(func() time.Time { return now }))

	sess := &session.Session{
		Interruptions: []session.InterruptionEvent{{}, {}},
		ReasonCounts:  map[string]int{string(ReasonDodging): 1},
	}
	question := "How did you optimize the database queries for the reporting pipeline?"
	answer := "My favorite recipes involve slow cooking meats for 3 hours with " +
		"fresh herbs from my garden, then I prepare sauces, breads, desserts, and " +
		"salads every weekend for friends who visit from nearby towns regularly"

	d, _ := e.Check(context.Background(), sess, Input{
		Transcript: answer, Question: question, ElapsedSeconds: 20,
	})
	if d == nil || d.Action != ActionWarn {
		t.Fatalf("decision = %+v, want warn once capped", d)
	}
	if len(sess.Interruptions) != 2 {
		t.Errorf("interruptions grew past the cap: %d", len(sess.Interruptions))
	}
}

// Reaching the consecutive-occurrence threshold interrupts every time;
// there is no randomness in the decision path.
func TestCheckThresholdInterruptsDeterministically(t *testing.T) {
	question := "How did you optimize the database queries for the reporting pipeline?"
	answer := "My favorite recipes involve slow cooking meats for 3 hours with " +
		"fresh herbs from my garden, then I prepare sauces, breads, desserts, and " +
		"salads every weekend for friends who visit from nearby towns regularly"

	for range 20 {
		e := NewEngine(nil, nil, 5)
		sess := &session.Session{
			ReasonCounts: map[string]int{string(ReasonDodging): 1},
		}
		d, _ := e.Check(context.Background(), sess, Input{
			Transcript: answer, Question: question, ElapsedSeconds: 3,
		})
		if d == nil || d.Action != ActionInterrupt {
			t.Fatalf("decision = %+v, want interrupt at threshold", d)
		}
	}
}

func TestCheckCleanAnswerResetsCounters(t *testing.T) {
	e := NewEngine(nil, nil, 5)
	sess := &session.Session{
		ReasonCounts: map[string]int{string(ReasonDodging): 1},
	}

	d, err := e.Check(context.Background(), sess, Input{
		Transcript: "Short clean answer.", ElapsedSeconds: 5,
	})
	if err != nil || d != nil {
		t.Fatalf("decision = %+v, err = %v; want nil, nil", d, err)
	}
	if len(sess.ReasonCounts) != 0 {
		t.Errorf("counters not reset: %v", sess.ReasonCounts)
	}
}

func TestCheckSemanticGarbageIgnored(t *testing.T) {
	p := llmmock.New("this is not json at all")
	e := NewEngine(gateway.New(p, gateway.Config{}, nil), nil, 5)

	d, err := e.Check(context.Background(), &session.Session{}, Input{
		Transcript: neutralTranscript, ElapsedSeconds: 15,
	})
	if err != nil || d != nil {
		t.Errorf("decision = %+v, err = %v; want nil, nil", d, err)
	}
}

func TestCheckBackendDownSkipsSemanticLayer(t *testing.T) {
	p := llmmock.New()
	p.Err = errors.New("down")
	e := NewEngine(gateway.New(p, gateway.Config{}, nil), nil, 5)

	d, err := e.Check(context.Background(), &session.Session{}, Input{
		Transcript: neutralTranscript, ElapsedSeconds: 15,
	})
	if err != nil || d != nil {
		t.Errorf("decision = %+v, err = %v; want nil, nil", d, err)
	}
}
