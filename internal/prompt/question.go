package prompt

import (
	"strings"

	"github.com/internai/interviewd/pkg/provider/llm"
)

// interviewerSystem defines the interviewer persona for question
// generation. The output rules matter more than the persona: the engine
// expects the raw question text with no preamble, which CleanQuestion
// then enforces.
const interviewerSystem = `You are a professional interviewer conducting a mock interview for a software engineering position.

Your role:
- Ask ONE question at a time
- Ask follow-up questions based on the candidate's previous answers
- Be professional but conversational
- Keep questions clear and concise (1-2 sentences max)
- DO NOT give feedback or praise during the interview
- DO NOT ask multiple questions at once

Important rules:
- Output ONLY the question text, nothing else
- No preambles like "Here's my question:" or "Let me ask you:"
- No labels, bullet points, or formatting
- Just the raw question text
- Maximum 2 sentences per question

Example good outputs:
"Tell me about a time when you had to debug a complex issue under a tight deadline. How did you approach it?"
"I see you worked on a mobile app project. What was the biggest technical challenge you faced during development?"

Example bad outputs:
"Question: Tell me about..." (don't include "Question:")
"1. Tell me about..." (don't use numbering)
"Great! Now let me ask..." (no preambles)`

// phaseGuidance tells the model what kind of question each phase wants.
var phaseGuidance = map[string]string{
	"resume_deep_dive":      "Ask about a SPECIFIC item from the candidate's resume: a company, project, or technology they listed. Make it personal to their background.",
	"core_skill_assessment": "Ask a question that tests fundamental knowledge of a skill the candidate claims. Probe understanding, not trivia.",
	"scenario_solving":      "Present a realistic scenario or problem and ask how the candidate would approach it.",
	"stress_testing":        "Ask a hard, probing question about limits, failure modes, or the weakest area seen so far. Push on it.",
	"claim_verification":    "Ask a sharp question that verifies a specific claim the candidate made earlier. Demand details that only someone who actually did it would know.",
	"wrap_up":               "Ask a closing question: what they learned, what they would do differently, or their questions for you.",
}

// difficultyGuidance maps a difficulty label to what the question should
// demand of the candidate.
var difficultyGuidance = map[string]string{
	"easy":   "Keep it basic: one concept, no traps.",
	"medium": "Applied level: a concrete scenario that requires connecting concepts.",
	"hard":   "Deep level: probe internals, trade-offs, and WHY, not just WHAT.",
	"expert": "Expert level: edge cases, failure modes, and limits at scale.",
}

// QuestionContext carries everything the next-question prompt can use.
// Zero-value fields are simply omitted from the prompt.
type QuestionContext struct {
	// Round is hr, technical, or system_design.
	Round string

	// Phase is the current interview phase name.
	Phase string

	// DifficultyLabel is easy, medium, hard, or expert.
	DifficultyLabel string

	// ResumeContext is the summarized resume, when one was uploaded.
	ResumeContext string

	// LastQuestions holds recent questions so the model avoids repeats.
	LastQuestions []string

	// LastAnswer is the candidate's most recent answer.
	LastAnswer string

	// FocusHint is an optional topic the evaluation suggested probing.
	FocusHint string
}

// FirstQuestion builds the opening request of an interview.
func FirstQuestion(qc QuestionContext) llm.ChatRequest {
	system := interviewerSystem
	if qc.ResumeContext != "" {
		system += "\n\nCANDIDATE'S RESUME SUMMARY:\n" + qc.ResumeContext +
			"\n\nReference SPECIFIC details from this resume. Do not ask generic questions."
	}
	return llm.ChatRequest{
		System: system,
		Messages: []llm.Message{{
			Role:    llm.RoleUser,
			Content: "Start the interview with an opening question that asks the candidate to introduce themselves and their background.",
		}},
		Temperature: TemperatureGeneration,
	}
}

// NextQuestion builds the request for the next non-follow-up question.
func NextQuestion(qc QuestionContext) llm.ChatRequest {
	system := interviewerSystem
	if qc.ResumeContext != "" {
		system += "\n\nCANDIDATE'S RESUME SUMMARY:\n" + qc.ResumeContext +
			"\n\nReference SPECIFIC details from this resume where relevant."
	}

	var sb strings.Builder
	if g, ok := phaseGuidance[qc.Phase]; ok {
		sb.WriteString(g)
		sb.WriteString("\n\n")
	}
	if g, ok := difficultyGuidance[qc.DifficultyLabel]; ok {
		sb.WriteString(g)
		sb.WriteString("\n\n")
	}
	if qc.LastAnswer != "" {
		sb.WriteString("The candidate's last answer:\n\"")
		sb.WriteString(qc.LastAnswer)
		sb.WriteString("\"\n\n")
	}
	if qc.FocusHint != "" {
		sb.WriteString("Worth probing: ")
		sb.WriteString(qc.FocusHint)
		sb.WriteString("\n\n")
	}
	if len(qc.LastQuestions) > 0 {
		sb.WriteString("Questions already asked (do NOT repeat these topics):\n")
		for _, q := range qc.LastQuestions {
			sb.WriteString("- ")
			sb.WriteString(q)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("Generate the next question. Output ONLY the question text.")

	return llm.ChatRequest{
		System:      system,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: sb.String()}},
		Temperature: TemperatureGeneration,
	}
}
