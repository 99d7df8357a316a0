// Package session defines the interview session state: rounds, phases,
// per-answer records, evaluations, claims and interruption events, plus
// the [Manager] that owns live sessions and their durable snapshots.
package session

import (
	"math"
	"time"
)

// Round selects the evaluator emphasis and prompt set for an interview.
type Round string

const (
	RoundHR           Round = "hr"
	RoundTechnical    Round = "technical"
	RoundSystemDesign Round = "system_design"
)

// IsValid reports whether r is a recognised round.
func (r Round) IsValid() bool {
	switch r {
	case RoundHR, RoundTechnical, RoundSystemDesign:
		return true
	}
	return false
}

// Dimension is one of the five fixed rubric axes scored for every answer.
type Dimension string

const (
	DimTechnicalDepth        Dimension = "technical_depth"
	DimConceptAccuracy       Dimension = "concept_accuracy"
	DimStructuredThinking    Dimension = "structured_thinking"
	DimCommunicationClarity  Dimension = "communication_clarity"
	DimConfidenceConsistency Dimension = "confidence_consistency"
)

// Dimensions lists all five rubric dimensions in weight order.
var Dimensions = []Dimension{
	DimTechnicalDepth,
	DimConceptAccuracy,
	DimStructuredThinking,
	DimCommunicationClarity,
	DimConfidenceConsistency,
}

// DimensionWeights are the fixed scoring weights. They sum to 1.0.
var DimensionWeights = map[Dimension]float64{
	DimTechnicalDepth:        0.30,
	DimConceptAccuracy:       0.25,
	DimStructuredThinking:    0.20,
	DimCommunicationClarity:  0.15,
	DimConfidenceConsistency: 0.10,
}

// WeightedOverall computes the overall score as the weighted sum of the
// dimension scores, rounded down. Missing dimensions contribute 0.
func WeightedOverall(scores map[Dimension]int) int {
	var sum float64
	for dim, weight := range DimensionWeights {
		sum += weight * float64(scores[dim])
	}
	return int(math.Floor(sum))
}

// DifficultyAdjustment is the evaluator's pacing recommendation.
type DifficultyAdjustment string

const (
	AdjustDecrease DifficultyAdjustment = "decrease"
	AdjustMaintain DifficultyAdjustment = "maintain"
	AdjustIncrease DifficultyAdjustment = "increase"
)

// DifficultyLabel maps a numeric level 1-10 to its coarse label.
func DifficultyLabel(level int) string {
	switch {
	case level <= 3:
		return "easy"
	case level <= 6:
		return "medium"
	case level <= 8:
		return "hard"
	default:
		return "expert"
	}
}

// ScoreDetail carries the narrative behind one dimension score.
type ScoreDetail struct {
	Dimension   Dimension `json:"dimension"`
	Score       int       `json:"score"`
	Evidence    string    `json:"evidence"`
	Improvement string    `json:"improvement,omitempty"`
}

// Evaluation is the structured per-answer output. Scores always contains
// all five dimensions (the parser injects zero-score defaults for any the
// LLM omits) and OverallScore is always the deterministic weighted sum.
type Evaluation struct {
	QuestionID           string               `json:"question_id"`
	Round                Round                `json:"round"`
	Scores               map[Dimension]int    `json:"scores"`
	ScoreDetails         []ScoreDetail        `json:"score_details"`
	OverallScore         int                  `json:"overall_score"`
	Strengths            []string             `json:"strengths"`
	Weaknesses           []string             `json:"weaknesses"`
	RedFlags             []string             `json:"red_flags"`
	RequiresFollowUp     bool                 `json:"requires_followup"`
	FollowUpReason       string               `json:"followup_reason,omitempty"`
	SuggestedFollowUp    string               `json:"suggested_followup,omitempty"`
	DifficultyAdjustment DifficultyAdjustment `json:"difficulty_adjustment"`

	// Degraded marks evaluations produced by the canned fallback after
	// the LLM backend was unavailable.
	Degraded bool `json:"degraded,omitempty"`
}

// QARecord is one question/answer exchange in the conversation history.
//
// TriggeredFollowUp is set on the parent answer after a follow-up is
// issued; IsFollowUpAnswer is set on the child. These two flags are the
// sole basis for follow-up suppression.
type QARecord struct {
	QuestionID        string      `json:"question_id"`
	QuestionText      string      `json:"question_text"`
	AnswerText        string      `json:"answer_text"`
	Round             Round       `json:"round"`
	Phase             Phase       `json:"phase"`
	RecordingDuration float64     `json:"recording_duration"`
	WasInterrupted    bool        `json:"was_interrupted"`
	IsFollowUpAnswer  bool        `json:"is_followup_answer"`
	TriggeredFollowUp bool        `json:"triggered_followup"`
	Evaluation        *Evaluation `json:"evaluation,omitempty"`
	Timestamp         time.Time   `json:"timestamp"`
}

// ClaimType classifies an extracted claim.
type ClaimType string

const (
	ClaimTechnicalAchievement ClaimType = "technical_achievement"
	ClaimMetric               ClaimType = "metric"
	ClaimToolExpertise        ClaimType = "tool_expertise"
	ClaimRoleResponsibility   ClaimType = "role_responsibility"
	ClaimProjectScale         ClaimType = "project_scale"
	ClaimProblemSolved        ClaimType = "problem_solved"
	ClaimArchitectureDecision ClaimType = "architecture_decision"
)

// IsValid reports whether t is a recognised claim type.
func (t ClaimType) IsValid() bool {
	switch t {
	case ClaimTechnicalAchievement, ClaimMetric, ClaimToolExpertise,
		ClaimRoleResponsibility, ClaimProjectScale, ClaimProblemSolved,
		ClaimArchitectureDecision:
		return true
	}
	return false
}

// Verifiability grades how checkable a claim is.
type Verifiability string

const (
	VerifiabilityVerifiable    Verifiability = "verifiable"
	VerifiabilityVague         Verifiability = "vague"
	VerifiabilitySuspicious    Verifiability = "suspicious"
	VerifiabilityContradictory Verifiability = "contradictory"
)

// IsValid reports whether v is a recognised verifiability grade.
func (v Verifiability) IsValid() bool {
	switch v {
	case VerifiabilityVerifiable, VerifiabilityVague,
		VerifiabilitySuspicious, VerifiabilityContradictory:
		return true
	}
	return false
}

// Claim is a verifiable statement extracted from an answer.
type Claim struct {
	ID                    string        `json:"id"`
	Text                  string        `json:"text"`
	Type                  ClaimType     `json:"type"`
	Verifiability         Verifiability `json:"verifiability"`
	Priority              int           `json:"priority"`
	VerificationQuestions []string      `json:"verification_questions"`
	RedFlags              []string      `json:"red_flags"`
	QuestionID            string        `json:"question_id"`
	RequiresVerification  bool          `json:"requires_verification"`
	Verified              bool          `json:"verified"`
	VerificationResult    string        `json:"verification_result,omitempty"`
}

// InterruptionEvent records one actual interruption (not warnings).
type InterruptionEvent struct {
	Timestamp          time.Time `json:"timestamp"`
	Reason             string    `json:"reason"`
	Weight             int       `json:"weight"`
	Evidence           string    `json:"evidence"`
	PartialTranscript  string    `json:"partial_transcript"`
	TriggeredAtSeconds float64   `json:"triggered_at_seconds"`
	Threshold          int       `json:"threshold"`
	OccurrenceCount    int       `json:"occurrence_count"`
}

// Session is the full per-interview state. The [Manager] exclusively owns
// Session values; callers receive a borrowed handle under the session
// lock for the duration of one operation.
type Session struct {
	ID    string `json:"id"`
	Round Round  `json:"round"`
	Phase Phase  `json:"phase"`

	CurrentQuestionID   string `json:"current_question_id"`
	CurrentQuestionText string `json:"current_question_text"`

	// CurrentClaimID is set while the current question verifies a
	// specific claim; the claim is resolved when the answer arrives.
	CurrentClaimID string `json:"current_claim_id,omitempty"`

	// QuestionsInPhase counts questions asked in the current phase.
	QuestionsInPhase int `json:"questions_in_phase"`

	// ActualQuestionNumber counts only non-follow-up questions and is
	// hard-capped at the configured maximum.
	ActualQuestionNumber int `json:"actual_question_number"`

	// FollowUpCount is the source of truth for the follow-up budget;
	// the Q/A flags are derived from it.
	FollowUpCount int `json:"followup_count"`

	DifficultyLevel int `json:"difficulty_level"`

	History       []QARecord          `json:"history"`
	Claims        []Claim             `json:"claims"`
	Interruptions []InterruptionEvent `json:"interruptions"`
	RedFlags      []string            `json:"red_flags"`

	ResumeContext string `json:"resume_context,omitempty"`

	// ReasonCounts tracks consecutive detections per interruption reason.
	ReasonCounts map[string]int `json:"reason_counts,omitempty"`

	// LastWarnAt holds the per-reason warning rate-limit timestamps.
	LastWarnAt map[string]time.Time `json:"last_warn_at,omitempty"`

	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PhaseAverage returns the mean overall score of evaluated, non-follow-up
// answers in the current phase, or 0 when none exist.
func (s *Session) PhaseAverage() float64 {
	var sum, n int
	for _, rec := range s.History {
		if rec.Phase != s.Phase || rec.Evaluation == nil || rec.IsFollowUpAnswer {
			continue
		}
		sum += rec.Evaluation.OverallScore
		n++
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

// UnverifiedClaims returns claims still requiring verification.
func (s *Session) UnverifiedClaims() []Claim {
	var out []Claim
	for _, c := range s.Claims {
		if c.RequiresVerification && !c.Verified {
			out = append(out, c)
		}
	}
	return out
}

// LastAnswers returns up to n most recent answer texts, oldest first.
func (s *Session) LastAnswers(n int) []string {
	start := len(s.History) - n
	if start < 0 {
		start = 0
	}
	var out []string
	for _, rec := range s.History[start:] {
		if rec.AnswerText != "" {
			out = append(out, rec.AnswerText)
		}
	}
	return out
}

// LastQuestions returns up to n most recent question texts, oldest first.
func (s *Session) LastQuestions(n int) []string {
	start := len(s.History) - n
	if start < 0 {
		start = 0
	}
	var out []string
	for _, rec := range s.History[start:] {
		out = append(out, rec.QuestionText)
	}
	return out
}
