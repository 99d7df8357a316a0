package session

// Phase is a coarse stage within a round. Phases advance monotonically
// along [PhaseOrder]; a session never moves backwards.
type Phase string

const (
	PhaseResumeDeepDive      Phase = "resume_deep_dive"
	PhaseCoreSkillAssessment Phase = "core_skill_assessment"
	PhaseScenarioSolving     Phase = "scenario_solving"
	PhaseStressTesting       Phase = "stress_testing"
	PhaseClaimVerification   Phase = "claim_verification"
	PhaseWrapUp              Phase = "wrap_up"
	PhaseCompleted           Phase = "completed"
)

// PhaseOrder is the fixed phase sequence.
var PhaseOrder = []Phase{
	PhaseResumeDeepDive,
	PhaseCoreSkillAssessment,
	PhaseScenarioSolving,
	PhaseStressTesting,
	PhaseClaimVerification,
	PhaseWrapUp,
	PhaseCompleted,
}

// IsValid reports whether p is a recognised phase.
func (p Phase) IsValid() bool {
	for _, phase := range PhaseOrder {
		if p == phase {
			return true
		}
	}
	return false
}

// Index returns p's position in [PhaseOrder], or -1 if unknown.
func (p Phase) Index() int {
	for i, phase := range PhaseOrder {
		if p == phase {
			return i
		}
	}
	return -1
}

// Next returns the phase following p. Completed is terminal.
func (p Phase) Next() Phase {
	i := p.Index()
	if i < 0 || i >= len(PhaseOrder)-1 {
		return PhaseCompleted
	}
	return PhaseOrder[i+1]
}

// PhaseRule governs pacing within one phase.
type PhaseRule struct {
	// MinQuestions must be asked before a transition is considered.
	MinQuestions int

	// MaxQuestions is the soft quota for the phase. Zero disables the
	// phase entirely (it is skipped on entry).
	MaxQuestions int

	// ForceAfter forces a transition once this many questions were asked,
	// regardless of score.
	ForceAfter int

	// TransitionScore is the phase-average overall score that allows an
	// early transition once MinQuestions is met. Zero means "transition
	// as soon as MinQuestions is reached".
	TransitionScore float64

	// SkipIfNoClaims skips the phase when the session has no unverified
	// claims (used by claim verification).
	SkipIfNoClaims bool
}

// Enabled reports whether the phase asks any questions at all.
func (r PhaseRule) Enabled() bool {
	return r.MaxQuestions > 0
}

// ShouldTransition reports whether the phase is over given the questions
// asked so far and the phase-average score. ForceAfter always wins.
func (r PhaseRule) ShouldTransition(questionsInPhase int, avgScore float64) bool {
	if r.ForceAfter > 0 && questionsInPhase >= r.ForceAfter {
		return true
	}
	if questionsInPhase < r.MinQuestions {
		return false
	}
	if r.TransitionScore == 0 {
		return true
	}
	return avgScore >= r.TransitionScore
}

// DemoRules is the short-interview preset: two resume questions then
// three core-skill questions, remaining phases disabled.
func DemoRules() map[Phase]PhaseRule {
	return map[Phase]PhaseRule{
		PhaseResumeDeepDive:      {MinQuestions: 2, MaxQuestions: 2, ForceAfter: 2},
		PhaseCoreSkillAssessment: {MinQuestions: 3, MaxQuestions: 3, ForceAfter: 3},
		PhaseClaimVerification:   {SkipIfNoClaims: true},
	}
}

// ProductionRules is the full-length preset with score-gated transitions.
func ProductionRules() map[Phase]PhaseRule {
	return map[Phase]PhaseRule{
		PhaseResumeDeepDive: {
			MinQuestions: 4, MaxQuestions: 6, ForceAfter: 6,
			TransitionScore: 65,
		},
		PhaseCoreSkillAssessment: {
			MinQuestions: 5, MaxQuestions: 8, ForceAfter: 8,
			TransitionScore: 70,
		},
		PhaseScenarioSolving: {
			MinQuestions: 2, MaxQuestions: 5, ForceAfter: 5,
			TransitionScore: 70,
		},
		PhaseStressTesting: {
			MinQuestions: 1, MaxQuestions: 3, ForceAfter: 3,
			TransitionScore: 65,
		},
		PhaseClaimVerification: {
			MinQuestions: 0, MaxQuestions: 2, ForceAfter: 2,
			SkipIfNoClaims: true,
		},
		PhaseWrapUp: {
			MinQuestions: 1, MaxQuestions: 1, ForceAfter: 1,
		},
	}
}

// RulesForPreset maps a preset name to its phase rule table. Unknown
// names fall back to the demo preset.
func RulesForPreset(preset string) map[Phase]PhaseRule {
	if preset == "production" {
		return ProductionRules()
	}
	return DemoRules()
}
