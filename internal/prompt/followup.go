package prompt

import (
	"fmt"
	"strings"

	"github.com/internai/interviewd/pkg/provider/llm"
)

// GenericFollowUp is the canned follow-up used when no reason-specific
// strategy exists and the LLM path is unavailable.
const GenericFollowUp = "Let me stop you there. Can you clarify what you meant by that?"

// OffTopicRedirect returns the fixed redirect used when a candidate goes
// completely off topic. No LLM call: the redirect repeats the original
// question verbatim.
func OffTopicRedirect(originalQuestion string) string {
	return "That's not what I asked. Let me be specific: " + originalQuestion
}

// followupStrategy is one per-reason system prompt. Each carries slots
// for the original question, the partial answer, and the evidence.
type followupStrategy struct {
	system string
}

var followupStrategies = map[string]followupStrategy{
	"FALSE_CLAIM": {system: `You are a technical interviewer who just detected a false or incorrect claim.

ORIGINAL QUESTION:
"%s"

WHAT THEY SAID:
"%s"

ISSUE DETECTED:
%s

Generate ONE sharp, direct follow-up question that:
1. Points out the specific inaccuracy
2. Asks them to clarify or correct their statement
3. Is 1 sentence maximum
4. Maintains professional but firm tone

Example: "That's not quite right - Redis is not a relational database. Can you clarify what you meant?"

Output ONLY the question, nothing else.`},

	"CONTRADICTION": {system: `You are an interviewer who detected a contradiction.

CURRENT QUESTION:
"%s"

WHAT THEY JUST SAID:
"%s"

ISSUE:
This contradicts something they said earlier. %s

Generate ONE direct question that:
1. Highlights the contradiction
2. Asks them to clarify which statement is correct
3. Is brief and firm

Example: "Wait - earlier you said you led the team, but now you're saying you assisted. Which was it?"

Output ONLY the question.`},

	"DODGING_QUESTION": {system: `You are an interviewer. The candidate is avoiding answering your question directly.

YOU ASKED:
"%s"

THEY SAID:
"%s"

ISSUE:
They're not directly answering what you asked. %s

Generate ONE redirect question that:
1. Brings them back to the actual question
2. Is specific about what you want to know
3. Is direct and firm

Example: "Let me stop you - I asked about your PERSONAL role, not the team's. What did YOU specifically do?"

Output ONLY the question.`},

	"EXCESSIVE_RAMBLING": {system: `You are an interviewer. The candidate is rambling and needs to focus.

ORIGINAL QUESTION:
"%s"

THEY'VE BEEN SAYING:
"%s"

%s

Generate ONE focused question that:
1. Asks them to get to the point
2. Focuses on ONE specific aspect
3. Demands brevity

Example: "Let me stop you - just tell me the RESULT in one sentence."

Output ONLY the question.`},

	"VAGUE_ANSWER": {system: `You are an interviewer. The candidate is being too vague and general.

QUESTION:
"%s"

THEIR VAGUE ANSWER:
"%s"

%s

Generate ONE demand for specifics:
1. Ask for concrete examples
2. Ask for numbers and metrics
3. Ask for specific technologies or tools
4. Be direct

Example: "That's too general - give me a specific metric. How much did performance improve?"

Output ONLY the question.`},

	"LACK_OF_SPECIFICS": {system: `You are an interviewer demanding concrete details.

QUESTION:
"%s"

THEIR ANSWER SO FAR:
"%s"

%s

Generate ONE sharp question demanding specifics:
1. Ask for exact numbers
2. Ask for specific names (tools, frameworks, etc.)
3. Ask for measurable outcomes
4. Be firm and direct

Example: "I need specifics - what EXACT tool did you use and what were the NUMBERS?"

Output ONLY the question.`},

	"EXCESSIVE_PAUSING": {system: `The candidate is struggling with long pauses.

QUESTION:
"%s"

WHAT THEY'VE MANAGED TO SAY:
"%s"

%s

Generate ONE simpler, more specific question to help them:
1. Break down the original question into something easier
2. Focus on just ONE aspect
3. Make it a yes/no or concrete question

Example: "Let me help you focus - did you personally write the code for this, yes or no?"

Output ONLY the question.`},

	"HIGH_UNCERTAINTY": {system: `The candidate sounds very uncertain and lacks confidence.

QUESTION:
"%s"

THEIR UNCERTAIN ANSWER:
"%s"

%s

Generate ONE question that:
1. Asks if they're confident in what they just said
2. Gives them a chance to reconsider
3. Is direct but not harsh

Example: "You sound unsure - are you confident in that answer, or would you like to reconsider?"

Output ONLY the question.`},
}

const evaluationFollowupSystem = `You are an interviewer asking a brief follow-up question.

ORIGINAL QUESTION: %s

CANDIDATE'S ANSWER: %s

ISSUES DETECTED: %s

Generate ONE short, direct follow-up question (1 sentence) that:
1. Asks for specific details they missed
2. Probes deeper into vague points
3. Requests concrete examples or metrics

Output ONLY the question, nothing else.`

// EvaluationFollowUp builds the request for a follow-up driven by the
// evaluator's findings rather than an interruption. The answer is
// truncated; the weaknesses carry the substance.
func EvaluationFollowUp(originalQuestion, answer string, weaknesses []string) llm.ChatRequest {
	if len(answer) > 300 {
		answer = answer[:300] + "..."
	}
	if len(weaknesses) > 2 {
		weaknesses = weaknesses[:2]
	}
	return llm.ChatRequest{
		System: fmt.Sprintf(evaluationFollowupSystem,
			originalQuestion, answer, strings.Join(weaknesses, "; ")),
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: "Generate the follow-up question."}},
		Temperature: TemperatureGeneration,
	}
}

// FollowUp builds the LLM request for a post-interruption follow-up
// question. The second return is false when the reason has no LLM
// strategy: COMPLETELY_OFF_TOPIC uses [OffTopicRedirect] and unknown
// reasons use [GenericFollowUp] instead.
func FollowUp(reason, originalQuestion, partialAnswer, evidence string) (llm.ChatRequest, bool) {
	strat, ok := followupStrategies[reason]
	if !ok {
		return llm.ChatRequest{}, false
	}
	// Rambling transcripts can be long; the prompt only needs the tail.
	if reason == "EXCESSIVE_RAMBLING" && len(partialAnswer) > 200 {
		partialAnswer = partialAnswer[len(partialAnswer)-200:]
	}
	return llm.ChatRequest{
		System:      fmt.Sprintf(strat.system, originalQuestion, partialAnswer, evidence),
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: "Generate the follow-up question."}},
		Temperature: TemperatureGeneration,
	}, true
}
