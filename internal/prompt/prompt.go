// Package prompt holds every prompt the engine sends to an LLM, plus the
// cleaning and tolerant parsing helpers for the replies.
//
// All prompts request plain-text line formats (KEY: value blocks) rather
// than JSON so that small local models without a JSON mode can run the
// engine. The parse helpers never fail hard: missing fields fall back to
// documented defaults and the caller decides whether the degraded result
// is usable.
package prompt

import (
	"strconv"
	"strings"

	"github.com/internai/interviewd/pkg/provider/llm"
)

// Sampling temperatures. Evaluation and extraction want determinism;
// question generation wants variety.
const (
	TemperatureEvaluation = 0.3
	TemperatureGeneration = 0.7
)

// QA is one question/answer pair of conversation history.
type QA struct {
	Question string
	Answer   string
}

// scoreOutputFormat is the shared line format every round evaluator asks
// for. The parser in internal/evaluate consumes exactly these keys.
const scoreOutputFormat = `OUTPUT FORMAT (plain text, parseable):
` + "```" + `
TECHNICAL_DEPTH: [0-100]
TECHNICAL_DEPTH_EVIDENCE: [one sentence]
TECHNICAL_DEPTH_IMPROVEMENT: [one sentence or NONE]

CONCEPT_ACCURACY: [0-100]
CONCEPT_ACCURACY_EVIDENCE: [one sentence]
CONCEPT_ACCURACY_IMPROVEMENT: [one sentence or NONE]

STRUCTURED_THINKING: [0-100]
STRUCTURED_THINKING_EVIDENCE: [one sentence]
STRUCTURED_THINKING_IMPROVEMENT: [one sentence or NONE]

COMMUNICATION_CLARITY: [0-100]
COMMUNICATION_CLARITY_EVIDENCE: [one sentence]
COMMUNICATION_CLARITY_IMPROVEMENT: [one sentence or NONE]

CONFIDENCE_CONSISTENCY: [0-100]
CONFIDENCE_CONSISTENCY_EVIDENCE: [one sentence]
CONFIDENCE_CONSISTENCY_IMPROVEMENT: [one sentence or NONE]

STRENGTHS: [2-3 specific strengths, separated by |]
WEAKNESSES: [2-3 specific weaknesses, separated by |]
RED_FLAGS: [any critical issues, separated by | or NONE]

REQUIRES_FOLLOWUP: [YES or NO]
FOLLOWUP_REASON: [reason or NONE]
SUGGESTED_FOLLOWUP: [question or NONE]

DIFFICULTY_ADJUSTMENT: [decrease, maintain, or increase]
` + "```"

const hrEvaluationSystem = `You are an expert HR interviewer evaluating a behavioral interview answer.

Your task: Evaluate the answer across 5 dimensions and provide specific feedback.

EVALUATION CRITERIA:

1. Technical Depth (0-100):
   - For a behavioral round this measures depth of understanding about their role and project
   - Did they explain what they actually did?
   - Do they understand the technical context?

2. Concept Accuracy (0-100):
   - Are their claims accurate and verifiable?
   - No false claims or exaggerations?
   - Consistent with previous answers?

3. Structured Thinking (0-100) - MOST IMPORTANT FOR THIS ROUND:
   - STAR method: Situation, Task, Action, Result
   - Did they set context, explain the task, describe specific actions, and share measurable outcomes?
   - Logical flow and organization

4. Communication Clarity (0-100):
   - Concise and to the point?
   - Minimal filler words ("um", "like", "you know")
   - Easy to follow?

5. Confidence & Consistency (0-100):
   - Confident delivery without excessive hesitation
   - Consistent with previous statements
   - Ownership vs deflection

RED FLAGS TO DETECT:
- Blaming others instead of taking ownership
- No specific examples (all vague generalizations)
- No measurable results ("we improved things" without numbers)
- Inconsistent with previous answers
- Taking credit for team work without acknowledging the team

` + scoreOutputFormat + `

Be harsh but fair. This is training, not encouragement.`

const technicalEvaluationSystem = `You are an expert senior engineer evaluating a technical interview answer.

Your task: Evaluate the answer across 5 dimensions with TECHNICAL FOCUS.

EVALUATION CRITERIA:

1. Technical Depth (0-100) - MOST IMPORTANT FOR THIS ROUND:
   - Deep understanding of concepts, not surface level
   - Explains WHY things work, not just WHAT
   - Discusses internals and implementation details
   - Shows hands-on experience

2. Concept Accuracy (0-100) - CRITICAL:
   - Are technical statements correct?
   - No fundamental misunderstandings?
   - Uses terminology correctly?
   - No false claims about how things work?

3. Structured Thinking (0-100):
   - Organized explanation, not scattered
   - Logical problem-solving approach
   - Breaks down complex problems systematically

4. Communication Clarity (0-100):
   - Explains complex topics clearly
   - Minimal jargon without explanation
   - Concise technical communication

5. Confidence & Consistency (0-100):
   - Confident in technical knowledge
   - Consistent with previous answers
   - Admits when unsure instead of making things up

TECHNICAL RED FLAGS:
- Fundamental concept errors (e.g. "hash maps are O(n) lookup")
- Buzzword dropping without understanding
- No mention of trade-offs (everything is "best practice")
- No edge case consideration
- Unrealistic claims ("this solution works for everything")
- Vague optimizations ("I made it faster" without specifics)

WHAT TO LOOK FOR:
- Discusses time/space complexity
- Mentions trade-offs and alternatives
- Considers edge cases
- Explains with examples
- Shows debugging and troubleshooting thinking
- Admits limitations of the approach

` + scoreOutputFormat + `

Be technically rigorous. Flag incorrect concepts immediately.`

const sysdesignEvaluationSystem = `You are an expert system architect evaluating a system design interview answer.

Your task: Evaluate the answer across 5 dimensions with ARCHITECTURE FOCUS.

EVALUATION CRITERIA:

1. Technical Depth (0-100) - MOST IMPORTANT FOR THIS ROUND:
   - Scalability thinking (horizontal vs vertical)
   - Component architecture: load balancers, caching, databases, queues
   - Data flow understanding
   - Infrastructure awareness (CDN, distributed systems)
   - Thinks in terms of millions or billions of users

2. Concept Accuracy (0-100):
   - Correct understanding of distributed systems concepts
   - Accurate capacity estimations
   - Realistic architecture choices
   - No fundamental misunderstandings about how systems scale

3. Structured Thinking (0-100) - CRITICAL:
   - Systematic approach: requirements, then architecture, then deep dive
   - Breaks the problem into components with clear boundaries
   - Identifies bottlenecks methodically
   - Considers failure scenarios

4. Communication Clarity (0-100):
   - Explains the architecture clearly
   - Uses visual thinking (boxes, arrows, flows)
   - Makes trade-offs explicit

5. Confidence & Consistency (0-100):
   - Confident in design decisions
   - Justifies choices with reasoning
   - Consistent architecture throughout

ARCHITECTURE RED FLAGS:
- No capacity estimation at all
- Single points of failure nobody addresses
- "Just add more servers" without understanding why
- Ignoring data consistency entirely
- No trade-off discussion between chosen components

` + scoreOutputFormat + `

Be architecturally rigorous. This is a senior-level evaluation.`

// Evaluation builds the chat request for scoring an answer. Unknown
// round names evaluate with the technical rubric.
func Evaluation(round, question, answer string) llm.ChatRequest {
	var system, focus string
	switch round {
	case "hr":
		system = hrEvaluationSystem
		focus = "Evaluate this HR/behavioral answer. Focus on STAR method adherence and specific examples."
	case "system_design":
		system = sysdesignEvaluationSystem
		focus = "Evaluate this system design answer."
	default:
		system = technicalEvaluationSystem
		focus = "Evaluate this technical answer."
	}

	var sb strings.Builder
	sb.WriteString("Question: \"")
	sb.WriteString(question)
	sb.WriteString("\"\n\nAnswer: \"")
	sb.WriteString(answer)
	sb.WriteString("\"\n\n")
	sb.WriteString(focus)

	return llm.ChatRequest{
		System:      system,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: sb.String()}},
		Temperature: TemperatureEvaluation,
	}
}

// historySnippet renders the last limit Q/A pairs as numbered lines.
// Returns the empty string when there is no history.
func historySnippet(history []QA, limit int) string {
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	if len(history) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, qa := range history {
		n := strconv.Itoa(i + 1)
		sb.WriteString("Q" + n + ": " + qa.Question + "\n")
		sb.WriteString("A" + n + ": " + qa.Answer + "\n\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
