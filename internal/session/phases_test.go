package session

import "testing"

func TestPhaseOrderMonotonic(t *testing.T) {
	p := PhaseResumeDeepDive
	seen := map[Phase]bool{p: true}
	for i := 0; i < len(PhaseOrder); i++ {
		next := p.Next()
		if next == p && p != PhaseCompleted {
			t.Fatalf("phase %q did not advance", p)
		}
		if next.Index() < p.Index() {
			t.Fatalf("phase order regressed: %q -> %q", p, next)
		}
		if seen[next] && next != PhaseCompleted {
			t.Fatalf("phase %q visited twice", next)
		}
		seen[next] = true
		p = next
	}
	if p != PhaseCompleted {
		t.Fatalf("final phase = %q, want completed", p)
	}
}

func TestShouldTransition(t *testing.T) {
	tests := []struct {
		name      string
		rule      PhaseRule
		questions int
		avg       float64
		want      bool
	}{
		{"below min", PhaseRule{MinQuestions: 2, ForceAfter: 4, TransitionScore: 65}, 1, 90, false},
		{"min met zero score", PhaseRule{MinQuestions: 2, ForceAfter: 4}, 2, 0, true},
		{"min met score too low", PhaseRule{MinQuestions: 2, ForceAfter: 4, TransitionScore: 65}, 2, 50, false},
		{"min met score good", PhaseRule{MinQuestions: 2, ForceAfter: 4, TransitionScore: 65}, 2, 70, true},
		{"force after wins", PhaseRule{MinQuestions: 2, ForceAfter: 4, TransitionScore: 65}, 4, 10, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.rule.ShouldTransition(tc.questions, tc.avg)
			if got != tc.want {
				t.Errorf("ShouldTransition(%d, %.0f) = %v, want %v", tc.questions, tc.avg, got, tc.want)
			}
		})
	}
}

func TestDemoRulesShape(t *testing.T) {
	rules := DemoRules()
	if r := rules[PhaseResumeDeepDive]; r.MaxQuestions != 2 {
		t.Errorf("resume max = %d, want 2", r.MaxQuestions)
	}
	if r := rules[PhaseCoreSkillAssessment]; r.MaxQuestions != 3 {
		t.Errorf("core max = %d, want 3", r.MaxQuestions)
	}
	for _, p := range []Phase{PhaseScenarioSolving, PhaseStressTesting, PhaseClaimVerification, PhaseWrapUp} {
		if rules[p].Enabled() {
			t.Errorf("phase %q should be disabled in demo preset", p)
		}
	}
}

func TestWeightedOverall(t *testing.T) {
	scores := map[Dimension]int{
		DimTechnicalDepth:        80,
		DimConceptAccuracy:       70,
		DimStructuredThinking:    60,
		DimCommunicationClarity:  50,
		DimConfidenceConsistency: 40,
	}
	// .30*80 + .25*70 + .20*60 + .15*50 + .10*40 = 24+17.5+12+7.5+4 = 65
	if got := WeightedOverall(scores); got != 65 {
		t.Errorf("WeightedOverall = %d, want 65", got)
	}

	// Missing dimensions contribute zero.
	partial := map[Dimension]int{DimTechnicalDepth: 80}
	if got := WeightedOverall(partial); got != 24 {
		t.Errorf("WeightedOverall(partial) = %d, want 24", got)
	}
}

func TestDifficultyLabel(t *testing.T) {
	cases := map[int]string{1: "easy", 3: "easy", 4: "medium", 6: "medium", 7: "hard", 8: "hard", 9: "expert", 10: "expert"}
	for level, want := range cases {
		if got := DifficultyLabel(level); got != want {
			t.Errorf("DifficultyLabel(%d) = %q, want %q", level, got, want)
		}
	}
}
