// Package report turns a finished (or in-flight) session into candidate
// facing output: the per-answer immediate feedback and the final
// interview report. Everything here is deterministic; the narrative was
// already produced by the evaluators.
package report

import (
	"github.com/internai/interviewd/internal/session"
)

// Feedback is the short summary flashed right after each answer.
type Feedback struct {
	OverallScore     int      `json:"overall_score"`
	PerformanceLevel string   `json:"performance_level"`
	Emoji            string   `json:"emoji"`
	KeyStrength      string   `json:"key_strength"`
	KeyWeakness      string   `json:"key_weakness,omitempty"`
	RedFlags         []string `json:"red_flags,omitempty"`
}

// Immediate builds the post-answer feedback from one evaluation. At most
// one red flag is surfaced live; the rest wait for the final report.
func Immediate(ev *session.Evaluation) Feedback {
	fb := Feedback{
		OverallScore:     ev.OverallScore,
		PerformanceLevel: performanceLevel(ev.OverallScore),
		Emoji:            scoreEmoji(ev.OverallScore),
		KeyStrength:      "Good effort",
	}
	if len(ev.Strengths) > 0 {
		fb.KeyStrength = ev.Strengths[0]
	}
	if len(ev.Weaknesses) > 0 {
		fb.KeyWeakness = ev.Weaknesses[0]
	}
	if len(ev.RedFlags) > 0 {
		fb.RedFlags = ev.RedFlags[:1]
	}
	return fb
}

func performanceLevel(score int) string {
	switch {
	case score >= 85:
		return "excellent"
	case score >= 70:
		return "good"
	case score >= 50:
		return "average"
	default:
		return "needs_improvement"
	}
}

func scoreEmoji(score int) string {
	switch {
	case score >= 85:
		return "🌟"
	case score >= 70:
		return "👍"
	case score >= 50:
		return "🤔"
	default:
		return "📚"
	}
}
