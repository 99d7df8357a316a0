package evaluate

import (
	"strings"

	"github.com/internai/interviewd/internal/prompt"
	"github.com/internai/interviewd/internal/session"
)

// dimKeys maps the rubric dimensions to their output-format keys, in
// the order the prompt asks for them.
var dimKeys = []struct {
	key string
	dim session.Dimension
}{
	{"TECHNICAL_DEPTH", session.DimTechnicalDepth},
	{"CONCEPT_ACCURACY", session.DimConceptAccuracy},
	{"STRUCTURED_THINKING", session.DimStructuredThinking},
	{"COMMUNICATION_CLARITY", session.DimCommunicationClarity},
	{"CONFIDENCE_CONSISTENCY", session.DimConfidenceConsistency},
}

// Parse turns the LLM's line-oriented evaluation output into a complete
// [session.Evaluation]. It is tolerant of stray markdown, missing keys,
// and reordered keys: dimensions the model omitted are injected with a
// zero score, and the overall score is always recomputed from the
// dimension scores rather than trusted from the model.
func Parse(raw string, questionID string, round session.Round) *session.Evaluation {
	ev := &session.Evaluation{
		QuestionID:           questionID,
		Round:                round,
		Scores:               make(map[session.Dimension]int, len(session.Dimensions)),
		DifficultyAdjustment: session.AdjustMaintain,
	}

	evidence := make(map[session.Dimension]string)
	improvement := make(map[session.Dimension]string)

	for _, line := range strings.Split(prompt.StripMarkdown(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "```") {
			continue
		}

		if parseDimensionLine(line, ev, evidence, improvement) {
			continue
		}

		switch {
		case fieldInto(line, "STRENGTHS", &ev.Strengths):
		case fieldInto(line, "WEAKNESSES", &ev.Weaknesses):
		case fieldInto(line, "RED_FLAGS", &ev.RedFlags):
		default:
			if v, ok := prompt.Field(line, "REQUIRES_FOLLOWUP"); ok {
				ev.RequiresFollowUp = prompt.YesNo(v)
			} else if v, ok := prompt.Field(line, "FOLLOWUP_REASON"); ok && !prompt.IsNone(v) {
				ev.FollowUpReason = v
			} else if v, ok := prompt.Field(line, "SUGGESTED_FOLLOWUP"); ok && !prompt.IsNone(v) {
				ev.SuggestedFollowUp = v
			} else if v, ok := prompt.Field(line, "DIFFICULTY_ADJUSTMENT"); ok {
				ev.DifficultyAdjustment = parseAdjustment(v)
			}
		}
	}

	// Details for the dimensions the model did return.
	for _, dk := range dimKeys {
		score, ok := ev.Scores[dk.dim]
		if !ok {
			continue
		}
		detail := session.ScoreDetail{
			Dimension: dk.dim,
			Score:     score,
			Evidence:  evidence[dk.dim],
		}
		if detail.Evidence == "" {
			detail.Evidence = "No evidence provided"
		}
		if imp := improvement[dk.dim]; !prompt.IsNone(imp) {
			detail.Improvement = imp
		}
		ev.ScoreDetails = append(ev.ScoreDetails, detail)
	}

	fillMissingDimensions(ev)
	ev.OverallScore = session.WeightedOverall(ev.Scores)

	if len(ev.Strengths) == 0 {
		ev.Strengths = []string{"No strengths identified"}
	}
	if len(ev.Weaknesses) == 0 {
		ev.Weaknesses = []string{"No weaknesses identified"}
	}
	return ev
}

// parseDimensionLine handles the three per-dimension keys. The longer
// suffixed keys must be tested before the bare score key.
func parseDimensionLine(line string, ev *session.Evaluation, evidence, improvement map[session.Dimension]string) bool {
	for _, dk := range dimKeys {
		if v, ok := prompt.Field(line, dk.key+"_EVIDENCE"); ok {
			evidence[dk.dim] = v
			return true
		}
		if v, ok := prompt.Field(line, dk.key+"_IMPROVEMENT"); ok {
			improvement[dk.dim] = v
			return true
		}
		if v, ok := prompt.Field(line, dk.key); ok {
			ev.Scores[dk.dim] = prompt.IntInRange(v, 0, 100, 0)
			return true
		}
	}
	return false
}

// fieldInto parses a pipe-separated list field into dst.
func fieldInto(line, key string, dst *[]string) bool {
	v, ok := prompt.Field(line, key)
	if !ok {
		return false
	}
	*dst = prompt.SplitPipes(v)
	return true
}

// parseAdjustment normalizes the difficulty recommendation, defaulting
// to maintain on anything unrecognized.
func parseAdjustment(v string) session.DifficultyAdjustment {
	switch session.DifficultyAdjustment(strings.ToLower(strings.TrimSpace(v))) {
	case session.AdjustDecrease:
		return session.AdjustDecrease
	case session.AdjustIncrease:
		return session.AdjustIncrease
	default:
		return session.AdjustMaintain
	}
}
