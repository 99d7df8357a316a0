package claims

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/internai/interviewd/internal/gateway"
	"github.com/internai/interviewd/internal/prompt"
	"github.com/internai/interviewd/internal/session"
	llmmock "github.com/internai/interviewd/pkg/provider/llm/mock"
)

const extractionOutput = `CLAIM: I optimized the database to handle 10 million requests per day
TYPE: project_scale
VERIFIABILITY: verifiable
PRIORITY: 9
VERIFICATION_QUESTION_1: What caching strategy did you implement?
VERIFICATION_QUESTION_2: How did you handle connection pooling at that scale?
RED_FLAG:
---
CLAIM: I used machine learning
TYPE: tool_expertise
VERIFIABILITY: vague
PRIORITY: 7
VERIFICATION_QUESTION_1: What specific ML algorithm did you use?
RED_FLAG: Too vague - no details on what ML technique
---`

func TestParseClaims(t *testing.T) {
	claims := ParseClaims(extractionOutput, "q3")
	if len(claims) != 2 {
		t.Fatalf("claims = %d, want 2", len(claims))
	}

	first := claims[0]
	if first.Type != session.ClaimProjectScale || first.Priority != 9 {
		t.Errorf("first = %+v", first)
	}
	if len(first.VerificationQuestions) != 2 {
		t.Errorf("verification questions = %v", first.VerificationQuestions)
	}
	if first.QuestionID != "q3" || first.ID == "" {
		t.Errorf("identity = %q/%q", first.QuestionID, first.ID)
	}

	second := claims[1]
	if second.Verifiability != session.VerifiabilityVague {
		t.Errorf("second verifiability = %q", second.Verifiability)
	}
	if len(second.RedFlags) != 1 {
		t.Errorf("second red flags = %v", second.RedFlags)
	}
}

func TestParseClaimsNoClaims(t *testing.T) {
	if got := ParseClaims("NO_CLAIMS_FOUND", "q1"); got != nil {
		t.Errorf("claims = %v, want nil", got)
	}
}

func TestParseClaimsDefaults(t *testing.T) {
	raw := "CLAIM: something\nTYPE: nonsense\nVERIFIABILITY: maybe\nPRIORITY: high"
	claims := ParseClaims(raw, "q1")
	if len(claims) != 1 {
		t.Fatalf("claims = %d", len(claims))
	}
	c := claims[0]
	if c.Type != session.ClaimTechnicalAchievement ||
		c.Verifiability != session.VerifiabilityVerifiable || c.Priority != 5 {
		t.Errorf("defaults not applied: %+v", c)
	}
}

func TestExtractMarksVerificationRule(t *testing.T) {
	p := llmmock.New(extractionOutput)
	e := NewExtractor(gateway.New(p, gateway.Config{}, nil), nil)

	claims, err := e.Extract(context.Background(), "q1", "q", "a", nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	// Verifiable but priority 9 >= 7.
	if !claims[0].RequiresVerification {
		t.Error("high-priority claim not marked for verification")
	}
	// Vague.
	if !claims[1].RequiresVerification {
		t.Error("vague claim not marked for verification")
	}
}

func TestExtractBackendDownYieldsNoClaims(t *testing.T) {
	p := llmmock.New()
	p.Err = errors.New("down")
	e := NewExtractor(gateway.New(p, gateway.Config{}, nil), nil)

	claims, err := e.Extract(context.Background(), "q1", "q", "a", nil)
	if err != nil || claims != nil {
		t.Errorf("claims = %v, err = %v; want nil, nil", claims, err)
	}
}

func TestAdjustedPriority(t *testing.T) {
	c := &session.Claim{
		Type:          session.ClaimMetric,
		Verifiability: session.VerifiabilityContradictory,
		Priority:      6,
		RedFlags:      []string{"x"},
	}
	// 6 + 20 (red flag) + 30 (contradictory) + 5 (metric) = 61.
	if got := AdjustedPriority(c); got != 61 {
		t.Errorf("adjusted = %d, want 61", got)
	}
}

func TestPrioritizeTopThree(t *testing.T) {
	mk := func(p int, v session.Verifiability) session.Claim {
		return session.Claim{Priority: p, Verifiability: v, RequiresVerification: true}
	}
	claims := []session.Claim{
		mk(2, session.VerifiabilityVerifiable),
		mk(5, session.VerifiabilityContradictory),
		mk(9, session.VerifiabilityVerifiable),
		mk(3, session.VerifiabilitySuspicious),
		{Priority: 10, RequiresVerification: false},
	}
	top := Prioritize(claims)
	if len(top) != 3 {
		t.Fatalf("top = %d claims, want 3", len(top))
	}
	if top[0].Verifiability != session.VerifiabilityContradictory {
		t.Errorf("top[0] = %+v", top[0])
	}
}

func TestDetectRedFlagsUnrealisticMetric(t *testing.T) {
	c := &session.Claim{
		Text: "We had 100% uptime all year",
		Type: session.ClaimMetric,
	}
	DetectRedFlags(c)
	if len(c.RedFlags) == 0 {
		t.Fatal("perfection claim without redundancy language not flagged")
	}

	explained := &session.Claim{
		Text: "We had 100% uptime thanks to multi-region failover and redundancy",
		Type: session.ClaimMetric,
	}
	DetectRedFlags(explained)
	for _, f := range explained.RedFlags {
		if strings.Contains(f, "Unrealistic") {
			t.Errorf("explained claim flagged: %v", explained.RedFlags)
		}
	}
}

func TestDetectRedFlagsScaleWithoutInfrastructure(t *testing.T) {
	c := &session.Claim{
		Text: "Handled millions of users every day",
		Type: session.ClaimProjectScale,
	}
	DetectRedFlags(c)
	if len(c.RedFlags) == 0 {
		t.Error("scale without infrastructure not flagged")
	}

	ok := &session.Claim{
		Text: "Handled millions of users with a Redis cache in front of a Postgres cluster",
		Type: session.ClaimProjectScale,
	}
	DetectRedFlags(ok)
	for _, f := range ok.RedFlags {
		if strings.Contains(f, "Unrealistic") {
			t.Errorf("infrastructure-backed scale flagged: %v", ok.RedFlags)
		}
	}
}

func TestParseContradiction(t *testing.T) {
	raw := `CONTRADICTION_FOUND: yes
PREVIOUS_STATEMENT: I led a team of five
CURRENT_STATEMENT: I was helping the team lead
SEVERITY: High
EXPLANATION: Role changed from lead to contributor`

	c := ParseContradiction(raw)
	if c == nil {
		t.Fatal("contradiction not detected")
	}
	if c.Severity != "high" || c.PreviousStatement != "I led a team of five" {
		t.Errorf("parsed = %+v", c)
	}

	if got := ParseContradiction("CONTRADICTION_FOUND: no"); got != nil {
		t.Errorf("no-contradiction parsed as %+v", got)
	}
}

func TestMarkContradictory(t *testing.T) {
	claims := ParseClaims(extractionOutput, "q1")
	MarkContradictory(claims, &Contradiction{Explanation: "numbers changed"})
	for _, c := range claims {
		if c.Verifiability != session.VerifiabilityContradictory || !c.RequiresVerification {
			t.Errorf("claim not coerced: %+v", c)
		}
		if !strings.Contains(strings.Join(c.RedFlags, " "), "numbers changed") {
			t.Errorf("explanation missing from red flags: %v", c.RedFlags)
		}
	}
}

func TestCheckContradictionBackendDown(t *testing.T) {
	p := llmmock.New()
	p.Err = errors.New("down")
	gw := gateway.New(p, gateway.Config{}, nil)

	c, err := CheckContradiction(context.Background(), gw, "answer",
		[]prompt.QA{{Question: "q", Answer: "a"}})
	if err != nil || c != nil {
		t.Errorf("got %+v, %v; want nil, nil", c, err)
	}
}

func TestRecentCandidatesLastThree(t *testing.T) {
	sess := &session.Session{}
	for _, a := range []string{"a1", "a2", "a3", "a4"} {
		sess.History = append(sess.History, session.QARecord{
			QuestionText: "q-" + a, AnswerText: a,
		})
	}
	got := RecentCandidates(sess)
	if len(got) != 3 || got[0].Answer != "a2" || got[2].Answer != "a4" {
		t.Errorf("candidates = %v", got)
	}
}
