package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/internai/interviewd/pkg/store/file"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	snaps, err := file.New(t.TempDir())
	if err != nil {
		t.Fatalf("file.New: %v", err)
	}
	return NewManager(snaps)
}

func newTestSession(id string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:              id,
		Round:           RoundTechnical,
		Phase:           PhaseResumeDeepDive,
		DifficultyLevel: 5,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestCreateAndWith(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	if err := m.Create(ctx, newTestSession("s1")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := m.Create(ctx, newTestSession("s1")); !errors.Is(err, ErrSessionExists) {
		t.Fatalf("duplicate Create err = %v, want ErrSessionExists", err)
	}

	err := m.With(ctx, "s1", func(s *Session) error {
		s.ActualQuestionNumber = 3
		return nil
	})
	if err != nil {
		t.Fatalf("With: %v", err)
	}

	got, err := m.Peek("s1")
	if err != nil {
		t.Fatalf("Peek: %v", err)
	}
	if got.ActualQuestionNumber != 3 {
		t.Errorf("ActualQuestionNumber = %d, want 3", got.ActualQuestionNumber)
	}
}

func TestWithUnknownSession(t *testing.T) {
	m := newTestManager(t)
	err := m.With(context.Background(), "missing", func(*Session) error { return nil })
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestWithErrorSkipsSnapshot(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	if err := m.Create(ctx, newTestSession("s1")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	boom := errors.New("boom")
	err := m.With(ctx, "s1", func(s *Session) error {
		s.ActualQuestionNumber = 99
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	snaps, err := file.New(dir)
	if err != nil {
		t.Fatalf("file.New: %v", err)
	}
	m := NewManager(snaps)
	ctx := context.Background()

	sess := newTestSession("s1")
	sess.History = []QARecord{{
		QuestionID:   "q1",
		QuestionText: "Tell me about your last project.",
		AnswerText:   "We built a payment gateway.",
		Round:        RoundTechnical,
		Phase:        PhaseResumeDeepDive,
		Evaluation: &Evaluation{
			QuestionID: "q1",
			Round:      RoundTechnical,
			Scores: map[Dimension]int{
				DimTechnicalDepth:        80,
				DimConceptAccuracy:       70,
				DimStructuredThinking:    60,
				DimCommunicationClarity:  75,
				DimConfidenceConsistency: 65,
			},
			OverallScore:         71,
			Strengths:            []string{"clear ownership"},
			DifficultyAdjustment: AdjustMaintain,
		},
		Timestamp: time.Now().UTC(),
	}}
	sess.Claims = []Claim{{
		ID: "c1", Text: "Handled 1M requests/day", Type: ClaimProjectScale,
		Verifiability: VerifiabilityVague, Priority: 8,
		RequiresVerification: true, QuestionID: "q1",
	}}
	sess.ReasonCounts = map[string]int{"EXCESSIVE_RAMBLING": 1}
	if err := m.Create(ctx, sess); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// A fresh manager over the same directory must restore the session.
	snaps2, err := file.New(dir)
	if err != nil {
		t.Fatalf("file.New: %v", err)
	}
	m2 := NewManager(snaps2)
	if err := m2.Restore(ctx); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	got, err := m2.Peek("s1")
	if err != nil {
		t.Fatalf("Peek after restore: %v", err)
	}
	if len(got.History) != 1 || got.History[0].Evaluation == nil {
		t.Fatal("history or evaluation lost in round trip")
	}
	if got.History[0].Evaluation.Scores[DimTechnicalDepth] != 80 {
		t.Errorf("technical_depth = %d, want 80", got.History[0].Evaluation.Scores[DimTechnicalDepth])
	}
	if len(got.Claims) != 1 || got.Claims[0].Type != ClaimProjectScale {
		t.Error("claims lost in round trip")
	}
	if got.ReasonCounts["EXCESSIVE_RAMBLING"] != 1 {
		t.Error("reason counters lost in round trip")
	}
}

func TestPruneIdle(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	stale := newTestSession("stale")
	stale.UpdatedAt = time.Now().Add(-48 * time.Hour)
	if err := m.Create(ctx, stale); err != nil {
		t.Fatalf("Create: %v", err)
	}
	// Create bumps UpdatedAt only through With; reset it directly.
	m.sessions["stale"].sess.UpdatedAt = time.Now().Add(-48 * time.Hour)

	fresh := newTestSession("fresh")
	if err := m.Create(ctx, fresh); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if n := m.PruneIdle(ctx); n != 1 {
		t.Fatalf("pruned = %d, want 1", n)
	}
	if _, err := m.Peek("stale"); !errors.Is(err, ErrSessionNotFound) {
		t.Error("stale session still in memory")
	}
	if _, err := m.Peek("fresh"); err != nil {
		t.Errorf("fresh session pruned: %v", err)
	}
}
