package claims

import (
	"sort"
	"strings"

	"github.com/internai/interviewd/internal/session"
)

// maxVerificationClaims caps how many claims a claim-verification phase
// pursues.
const maxVerificationClaims = 3

// typeBonus weights claim categories by how often candidates exaggerate
// them.
var typeBonus = map[session.ClaimType]int{
	session.ClaimMetric:               5,
	session.ClaimProjectScale:         5,
	session.ClaimArchitectureDecision: 4,
	session.ClaimTechnicalAchievement: 3,
	session.ClaimToolExpertise:        2,
	session.ClaimRoleResponsibility:   2,
	session.ClaimProblemSolved:        1,
}

// AdjustedPriority computes the verification ordering score: the base
// priority plus fixed bonuses for verifiability grade, red flags, and
// claim type.
func AdjustedPriority(c *session.Claim) int {
	score := c.Priority
	if len(c.RedFlags) > 0 {
		score += 20
	}
	switch c.Verifiability {
	case session.VerifiabilityContradictory:
		score += 30
	case session.VerifiabilitySuspicious:
		score += 15
	case session.VerifiabilityVague:
		score += 10
	}
	return score + typeBonus[c.Type]
}

// Prioritize returns the top unverified claims by adjusted priority,
// capped at maxVerificationClaims. Ties keep extraction order.
func Prioritize(claims []session.Claim) []session.Claim {
	var pending []session.Claim
	for _, c := range claims {
		if c.RequiresVerification && !c.Verified {
			pending = append(pending, c)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return AdjustedPriority(&pending[i]) > AdjustedPriority(&pending[j])
	})
	if len(pending) > maxVerificationClaims {
		pending = pending[:maxVerificationClaims]
	}
	return pending
}

// DetectRedFlags appends deterministic red-flag findings to a claim:
// unrealistic metrics, vague optimization language, responsibility
// inflation, and buzzwords without depth. It complements whatever the
// extraction LLM already flagged.
func DetectRedFlags(c *session.Claim) {
	text := strings.ToLower(c.Text)

	if c.Type == session.ClaimMetric || c.Type == session.ClaimProjectScale {
		if isUnrealisticMetric(text) {
			c.RedFlags = append(c.RedFlags,
				"Unrealistic metric without supporting details: "+c.Text)
		}
	}

	if containsAny(text, "optimized", "improved", "enhanced", "better", "faster") &&
		!containsAny(text, "by", "%", "from", "to", "seconds", "milliseconds",
			"requests", "users", "bytes", "mb", "gb") {
		c.RedFlags = append(c.RedFlags,
			"Vague optimization claim without specific metrics or techniques")
	}

	if c.Type == session.ClaimRoleResponsibility {
		if containsAny(text, "intern", "junior") &&
			containsAny(text, "led", "owned", "architected", "made all decisions") {
			c.RedFlags = append(c.RedFlags,
				"Possible responsibility inflation for the stated seniority")
		}
	}

	if c.Type == session.ClaimToolExpertise &&
		(containsWord(text, "ai") || containsWord(text, "ml") ||
			containsAny(text, "machine learning", "blockchain", "quantum")) &&
		!containsAny(text, "algorithm", "model", "trained", "dataset", "accuracy",
			"precision", "recall", "implementation", "framework") {
		c.RedFlags = append(c.RedFlags,
			"Technology buzzword mentioned without technical depth")
	}
}

// isUnrealisticMetric flags perfection claims without redundancy
// language and extreme scale without any infrastructure mention.
func isUnrealisticMetric(text string) bool {
	if containsAny(text, "100%", "perfect", "zero bugs", "no downtime", "flawless") &&
		!containsAny(text, "redundancy", "failover", "distributed", "replicated",
			"load balanced", "multiple", "backup") {
		return true
	}
	if containsAny(text, "million", "billion", "thousands", "enterprise") &&
		!containsAny(text, "server", "cache", "distributed", "cluster", "node",
			"instance", "kubernetes", "docker", "cloud", "aws", "gcp") {
		return true
	}
	return false
}

func containsAny(text string, subs ...string) bool {
	for _, s := range subs {
		if strings.Contains(text, s) {
			return true
		}
	}
	return false
}

// containsWord matches whole words only, so "ai" does not match
// "maintained".
func containsWord(text, word string) bool {
	for _, f := range strings.FieldsFunc(text, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}) {
		if f == word {
			return true
		}
	}
	return false
}
