package evaluate

import "github.com/internai/interviewd/internal/session"

// Penalty caps for claim-quality adjustments.
const (
	vaguePenaltyPer   = 5
	vaguePenaltyCap   = 15
	contraPenaltyPer  = 10
	contraPenaltyCap  = 20
	minVagueForAdjust = 2
)

// ApplyClaimAdjustments folds claim analysis back into an evaluation:
// two or more vague claims dent concept accuracy, any contradictory
// claim dents confidence, and claim red flags join the evaluation's.
// Contradictory and suspicious claims each raise a flag of their own,
// so the follow-up trigger sees them even when the extractor reported
// no explicit red flags. The overall score is recomputed afterwards.
func ApplyClaimAdjustments(ev *session.Evaluation, claims []session.Claim) {
	if ev == nil || len(claims) == 0 {
		return
	}

	var vague, contradictory int
	for _, c := range claims {
		switch c.Verifiability {
		case session.VerifiabilityVague:
			vague++
		case session.VerifiabilityContradictory:
			contradictory++
			addFlag(ev, "Contradiction detected: "+c.Text)
		case session.VerifiabilitySuspicious:
			addFlag(ev, "Suspicious claim: "+c.Text)
		}
		for _, rf := range c.RedFlags {
			addFlag(ev, rf)
		}
	}

	if vague >= minVagueForAdjust {
		penalty := min(vaguePenaltyCap, vaguePenaltyPer*vague)
		ev.Scores[session.DimConceptAccuracy] =
			max(0, ev.Scores[session.DimConceptAccuracy]-penalty)
	}
	if contradictory > 0 {
		penalty := min(contraPenaltyCap, contraPenaltyPer*contradictory)
		ev.Scores[session.DimConfidenceConsistency] =
			max(0, ev.Scores[session.DimConfidenceConsistency]-penalty)
	}

	ev.OverallScore = session.WeightedOverall(ev.Scores)
}

func addFlag(ev *session.Evaluation, flag string) {
	if !contains(ev.RedFlags, flag) {
		ev.RedFlags = append(ev.RedFlags, flag)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
