package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/internai/interviewd/internal/session"
)

// Thresholds for area classification and proficiency bands.
const (
	strongAreaFloor      = 75
	improvementCeiling   = 60
	lowScoreMistake      = 50
	maxMistakes          = 5
	maxEvidencePerSkill  = 3
	maxFeedbackPerBucket = 5
	maxNextSteps         = 5
	maxRecommendations   = 5
)

// SkillAssessment is one heatmap cell: a dimension with its proficiency
// band and supporting evidence quotes.
type SkillAssessment struct {
	Skill       string   `json:"skill_name"`
	Proficiency string   `json:"proficiency_level"`
	Score       int      `json:"score"`
	Evidence    []string `json:"evidence"`
}

// Mistake is one concrete error surfaced with its impact.
type Mistake struct {
	Mistake  string `json:"mistake"`
	Question string `json:"question,omitempty"`
	Impact   string `json:"impact"`
}

// RoundBreakdown summarises performance within one interview round.
type RoundBreakdown struct {
	Score          int      `json:"score"`
	QuestionsAsked int      `json:"questions_asked"`
	Strengths      []string `json:"strengths"`
	Weaknesses     []string `json:"weaknesses"`
}

// InterruptionSummary aggregates the session's interruption history.
type InterruptionSummary struct {
	Total            int            `json:"total_interruptions"`
	PrimaryTrigger   string         `json:"primary_trigger"`
	RecoveryQuality  string         `json:"recovery_quality"`
	TriggerBreakdown map[string]int `json:"trigger_breakdown,omitempty"`
	Notes            string         `json:"notes"`
}

// ClaimReport aggregates claim verification results.
type ClaimReport struct {
	TotalClaims int             `json:"total_claims"`
	Verified    int             `json:"verified"`
	Unverified  []session.Claim `json:"unverified"`
	RedFlags    []string        `json:"red_flags"`
}

// Report is the full end-of-interview report.
type Report struct {
	SessionID         string                    `json:"session_id"`
	OverallScore      int                       `json:"overall_score"`
	OverallAssessment string                    `json:"overall_assessment"`
	DimensionScores   map[session.Dimension]int `json:"dimension_scores"`
	SkillAssessments  []SkillAssessment         `json:"skill_assessments"`
	StrongAreas       []string                  `json:"strong_areas"`
	ImprovementAreas  []string                  `json:"improvement_areas"`
	CriticalMistakes  []Mistake                 `json:"critical_mistakes"`
	DetailedFeedback  map[string][]string       `json:"detailed_feedback"`
	RoundBreakdown    map[session.Round]RoundBreakdown `json:"round_breakdown"`
	RecommendedTopics []string                  `json:"recommended_topics"`
	Interruptions     InterruptionSummary       `json:"interruption_summary"`
	Claims            ClaimReport               `json:"claim_report"`
	NextSteps         []string                  `json:"next_steps"`
	DurationSeconds   float64                   `json:"interview_duration"`
	QuestionsAsked    int                       `json:"questions_asked"`
	DifficultyReached string                    `json:"difficulty_reached"`
}

// Generate builds the final report from the session state. The overall
// score is the unweighted mean of the per-dimension averages, so a
// candidate who coasted on high-weight dimensions still sees their weak
// ones pull the headline number down.
func Generate(sess *session.Session) *Report {
	dimScores := dimensionAverages(sess)
	overall := overallFrom(dimScores)

	strong, improve := identifyAreas(sess, dimScores)

	r := &Report{
		SessionID:         sess.ID,
		OverallScore:      overall,
		OverallAssessment: assessment(dimScores, overall),
		DimensionScores:   dimScores,
		SkillAssessments:  skillAssessments(sess, dimScores),
		StrongAreas:       strong,
		ImprovementAreas:  improve,
		CriticalMistakes:  criticalMistakes(sess),
		DetailedFeedback:  detailedFeedback(sess),
		RoundBreakdown:    roundBreakdown(sess),
		Interruptions:     interruptionSummary(sess),
		Claims:            claimReport(sess),
		QuestionsAsked:    len(sess.History),
		DifficultyReached: session.DifficultyLabel(sess.DifficultyLevel),
	}
	r.RecommendedTopics = recommendations(sess, improve)
	r.NextSteps = nextSteps(improve, r.CriticalMistakes)
	if !sess.UpdatedAt.IsZero() && !sess.CreatedAt.IsZero() {
		r.DurationSeconds = sess.UpdatedAt.Sub(sess.CreatedAt).Seconds()
	}
	return r
}

// dimensionAverages averages every dimension over all evaluated answers.
func dimensionAverages(sess *session.Session) map[session.Dimension]int {
	sums := make(map[session.Dimension]int)
	counts := make(map[session.Dimension]int)
	for _, rec := range sess.History {
		if rec.Evaluation == nil {
			continue
		}
		for dim, score := range rec.Evaluation.Scores {
			sums[dim] += score
			counts[dim]++
		}
	}

	out := make(map[session.Dimension]int, len(session.Dimensions))
	for _, dim := range session.Dimensions {
		if counts[dim] > 0 {
			out[dim] = sums[dim] / counts[dim]
		} else {
			out[dim] = 0
		}
	}
	return out
}

func overallFrom(dimScores map[session.Dimension]int) int {
	if len(dimScores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range dimScores {
		sum += s
	}
	return sum / len(dimScores)
}

// assessment is the one-sentence headline, built from the best and worst
// dimensions.
func assessment(dimScores map[session.Dimension]int, overall int) string {
	top, weak := extremeDimensions(dimScores)
	topName, weakName := dimensionTitle(top), dimensionTitle(weak)

	switch {
	case overall >= 85:
		return fmt.Sprintf("Excellent performance overall. Strong %s, minor improvements needed in %s.", topName, weakName)
	case overall >= 70:
		return fmt.Sprintf("Good performance with strong %s, but needs work on %s.", topName, weakName)
	case overall >= 50:
		return fmt.Sprintf("Average performance. Focus on improving %s while maintaining %s.", weakName, topName)
	default:
		return fmt.Sprintf("Needs significant improvement, especially in %s. %s shows some potential.", weakName, topName)
	}
}

// extremeDimensions returns the best and worst dimensions, using the
// fixed dimension order as the tiebreak so output stays stable.
func extremeDimensions(dimScores map[session.Dimension]int) (top, weak session.Dimension) {
	top, weak = session.Dimensions[0], session.Dimensions[0]
	for _, dim := range session.Dimensions {
		if dimScores[dim] > dimScores[top] {
			top = dim
		}
		if dimScores[dim] < dimScores[weak] {
			weak = dim
		}
	}
	return top, weak
}

func skillAssessments(sess *session.Session, dimScores map[session.Dimension]int) []SkillAssessment {
	out := make([]SkillAssessment, 0, len(session.Dimensions))
	for _, dim := range session.Dimensions {
		out = append(out, SkillAssessment{
			Skill:       dimensionTitle(dim),
			Proficiency: proficiency(dimScores[dim]),
			Score:       dimScores[dim],
			Evidence:    evidenceFor(sess, dim),
		})
	}
	return out
}

func proficiency(score int) string {
	switch {
	case score >= 85:
		return "expert"
	case score >= 70:
		return "advanced"
	case score >= 50:
		return "intermediate"
	default:
		return "beginner"
	}
}

// evidenceFor collects up to three distinct evidence quotes for one
// dimension, in conversation order.
func evidenceFor(sess *session.Session, dim session.Dimension) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, rec := range sess.History {
		if rec.Evaluation == nil {
			continue
		}
		for _, d := range rec.Evaluation.ScoreDetails {
			if d.Dimension != dim || d.Evidence == "" {
				continue
			}
			if _, dup := seen[d.Evidence]; dup {
				continue
			}
			seen[d.Evidence] = struct{}{}
			out = append(out, d.Evidence)
			if len(out) == maxEvidencePerSkill {
				return out
			}
		}
	}
	return out
}

// identifyAreas classifies dimensions and phases into strong and
// improvement areas.
func identifyAreas(sess *session.Session, dimScores map[session.Dimension]int) (strong, improve []string) {
	for _, dim := range session.Dimensions {
		switch score := dimScores[dim]; {
		case score >= strongAreaFloor:
			strong = append(strong, dimensionTitle(dim))
		case score < improvementCeiling:
			improve = append(improve, dimensionTitle(dim))
		}
	}

	for _, phase := range session.PhaseOrder {
		avg, n := phaseAverage(sess, phase)
		if n == 0 {
			continue
		}
		name := titleWords(string(phase)) + " Phase"
		switch {
		case avg >= strongAreaFloor:
			strong = append(strong, name)
		case avg < improvementCeiling:
			improve = append(improve, name)
		}
	}
	return strong, improve
}

func phaseAverage(sess *session.Session, phase session.Phase) (float64, int) {
	var sum, n int
	for _, rec := range sess.History {
		if rec.Phase != phase || rec.Evaluation == nil {
			continue
		}
		sum += rec.Evaluation.OverallScore
		n++
	}
	if n == 0 {
		return 0, 0
	}
	return float64(sum) / float64(n), n
}

// criticalMistakes pulls the worst findings: session-level red flags
// first, then the primary weakness of each low-scoring answer.
func criticalMistakes(sess *session.Session) []Mistake {
	var out []Mistake
	for _, flag := range sess.RedFlags {
		out = append(out, Mistake{
			Mistake: flag,
			Impact:  "Critical accuracy issue",
		})
	}
	for _, rec := range sess.History {
		ev := rec.Evaluation
		if ev == nil || ev.OverallScore >= lowScoreMistake || len(ev.Weaknesses) == 0 {
			continue
		}
		out = append(out, Mistake{
			Mistake:  ev.Weaknesses[0],
			Question: rec.QuestionID,
			Impact:   fmt.Sprintf("Low score: %d/100", ev.OverallScore),
		})
	}
	if len(out) > maxMistakes {
		out = out[:maxMistakes]
	}
	return out
}

// feedbackBuckets are the detailed-feedback categories, in display order.
var feedbackBuckets = []string{
	"technical_depth", "concept_accuracy", "structured_thinking",
	"communication", "confidence",
}

var feedbackKeywords = map[string][]string{
	"technical_depth":     {"technical", "depth", "detail", "architecture", "system"},
	"concept_accuracy":    {"accurate", "correct", "wrong", "error", "mistake"},
	"structured_thinking": {"structure", "star", "organized", "logical"},
	"communication":       {"clear", "filler", "rambling", "concise", "explain"},
}

func categorize(text string) string {
	lower := strings.ToLower(text)
	for _, bucket := range feedbackBuckets[:4] {
		for _, kw := range feedbackKeywords[bucket] {
			if strings.Contains(lower, kw) {
				return bucket
			}
		}
	}
	return "confidence"
}

// detailedFeedback buckets every evaluation's top strengths and
// weaknesses by dimension keyword, deduplicated, five per bucket.
func detailedFeedback(sess *session.Session) map[string][]string {
	fb := make(map[string][]string, len(feedbackBuckets))
	for _, b := range feedbackBuckets {
		fb[b] = []string{}
	}
	seen := make(map[string]struct{})

	add := func(text, mark string) {
		bucket := categorize(text)
		entry := mark + " " + text
		if _, dup := seen[entry]; dup || len(fb[bucket]) >= maxFeedbackPerBucket {
			return
		}
		seen[entry] = struct{}{}
		fb[bucket] = append(fb[bucket], entry)
	}

	for _, rec := range sess.History {
		if rec.Evaluation == nil {
			continue
		}
		for _, s := range firstN(rec.Evaluation.Strengths, 2) {
			add(s, "✅")
		}
		for _, w := range firstN(rec.Evaluation.Weaknesses, 2) {
			add(w, "❌")
		}
	}
	return fb
}

func roundBreakdown(sess *session.Session) map[session.Round]RoundBreakdown {
	type acc struct {
		sum, n                 int
		strengths, weaknesses  []string
	}
	byRound := make(map[session.Round]*acc)
	for _, rec := range sess.History {
		if rec.Evaluation == nil {
			continue
		}
		a := byRound[rec.Round]
		if a == nil {
			a = &acc{}
			byRound[rec.Round] = a
		}
		a.sum += rec.Evaluation.OverallScore
		a.n++
		a.strengths = append(a.strengths, rec.Evaluation.Strengths...)
		a.weaknesses = append(a.weaknesses, rec.Evaluation.Weaknesses...)
	}

	out := make(map[session.Round]RoundBreakdown, len(byRound))
	for round, a := range byRound {
		out[round] = RoundBreakdown{
			Score:          a.sum / a.n,
			QuestionsAsked: a.n,
			Strengths:      dedupeN(a.strengths, 3),
			Weaknesses:     dedupeN(a.weaknesses, 3),
		}
	}
	return out
}

var recommendationByArea = map[string]string{
	"Technical Depth":        "Study system design patterns and practice explaining technical concepts in detail",
	"Concept Accuracy":       "Review fundamental CS concepts and verify your understanding with practice problems",
	"Structured Thinking":    "Practice the STAR method with specific examples and measurable outcomes",
	"Communication Clarity":  "Record yourself answering and work on reducing filler words",
	"Confidence Consistency": "Practice mock interviews to build confidence and maintain consistency",
}

func recommendations(sess *session.Session, improvementAreas []string) []string {
	var out []string
	for _, area := range improvementAreas {
		if rec, ok := recommendationByArea[area]; ok {
			out = append(out, rec)
		}
	}
	if len(sess.RedFlags) > 0 {
		out = append(out, "Verify all claims before interviews - inconsistencies were detected")
	}
	if len(sess.Interruptions) > 2 {
		out = append(out, "Work on staying concise and on-topic to avoid interruptions")
	}
	if len(out) > maxRecommendations {
		out = out[:maxRecommendations]
	}
	return out
}

func interruptionSummary(sess *session.Session) InterruptionSummary {
	if len(sess.Interruptions) == 0 {
		return InterruptionSummary{
			PrimaryTrigger:  "none",
			RecoveryQuality: "n/a",
			Notes:           "No interruptions during interview",
		}
	}

	triggers := make(map[string]int)
	for _, ev := range sess.Interruptions {
		triggers[ev.Reason]++
	}
	primary := ""
	for reason, n := range triggers {
		if primary == "" || n > triggers[primary] ||
			(n == triggers[primary] && reason < primary) {
			primary = reason
		}
	}

	quality := "good"
	if len(sess.Interruptions) > 2 {
		quality = "needs_work"
	}
	return InterruptionSummary{
		Total:            len(sess.Interruptions),
		PrimaryTrigger:   primary,
		RecoveryQuality:  quality,
		TriggerBreakdown: triggers,
		Notes:            fmt.Sprintf("Most common trigger: %s. Focus on staying concise and accurate.", primary),
	}
}

func claimReport(sess *session.Session) ClaimReport {
	cr := ClaimReport{TotalClaims: len(sess.Claims)}
	for _, c := range sess.Claims {
		if c.Verified {
			cr.Verified++
		}
		for _, f := range c.RedFlags {
			if len(cr.RedFlags) < 3 {
				cr.RedFlags = append(cr.RedFlags, f)
			}
		}
	}
	unverified := sess.UnverifiedClaims()
	sort.SliceStable(unverified, func(i, j int) bool {
		return unverified[i].Priority > unverified[j].Priority
	})
	if len(unverified) > 3 {
		unverified = unverified[:3]
	}
	cr.Unverified = unverified
	return cr
}

func nextSteps(improvementAreas []string, mistakes []Mistake) []string {
	var steps []string
	has := func(area string) bool {
		for _, a := range improvementAreas {
			if a == area {
				return true
			}
		}
		return false
	}

	if has("Communication Clarity") {
		steps = append(steps, "Record 3 practice answers and count filler words - aim for <2 per minute")
	}
	if has("Structured Thinking") {
		steps = append(steps, "Prepare 5 STAR stories with specific metrics before your next interview")
	}
	if has("Technical Depth") {
		steps = append(steps, "Practice explaining 3 complex technical concepts to a non-technical friend")
	}
	if len(mistakes) > 0 {
		steps = append(steps, "Review and verify all claims from your resume before interviews")
	}
	steps = append(steps,
		"Take at least 2 more mock interviews focusing on your weak areas",
		"Join interview practice communities for peer feedback",
	)
	if len(steps) > maxNextSteps {
		steps = steps[:maxNextSteps]
	}
	return steps
}

// dimensionTitle renders "technical_depth" as "Technical Depth".
func dimensionTitle(dim session.Dimension) string {
	return titleWords(string(dim))
}

func titleWords(s string) string {
	words := strings.Split(s, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func dedupeN(s []string, n int) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, v := range s {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
		if len(out) == n {
			break
		}
	}
	return out
}
