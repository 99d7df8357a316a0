package prompt

import (
	"strings"

	"github.com/internai/interviewd/pkg/provider/llm"
)

// NoClaimsMarker is the sentinel the extraction prompt asks the model to
// emit when an answer contains nothing verifiable.
const NoClaimsMarker = "NO_CLAIMS_FOUND"

// ClaimSeparator delimits claim blocks in the extraction output.
const ClaimSeparator = "---"

const claimExtractionSystem = `You are an expert interview analyst specializing in identifying and categorizing claims made by candidates.

Your task: Extract ALL verifiable claims from the candidate's answer and categorize them.

TYPES OF CLAIMS TO EXTRACT:

1. TECHNICAL_ACHIEVEMENT
   - "I built a system that..."
   - "I implemented X using Y..."
   - "I optimized Z to achieve..."

2. METRIC
   - "10 million requests per day"
   - "99.9% uptime"
   - "50% performance improvement"

3. TOOL_EXPERTISE
   - "I'm proficient in Python"
   - "Deep knowledge of Kubernetes"

4. ROLE_RESPONSIBILITY
   - "I led a team of 5 engineers"
   - "I owned the architecture decisions"

5. PROJECT_SCALE
   - "Handled millions of users"
   - "Distributed across 10 regions"

6. PROBLEM_SOLVED
   - "Fixed a critical production bug"
   - "Debugged a race condition"

7. ARCHITECTURE_DECISION
   - "Chose microservices over monolith"
   - "Used Redis for caching"

IMPORTANT RULES:
- Extract EVERY claim, even small ones
- Do NOT add claims that weren't said
- Mark claims as VAGUE if they lack specifics
- Mark claims as SUSPICIOUS if they seem unrealistic
- Mark claims as CONTRADICTORY if they contradict conversation history

OUTPUT FORMAT (CRITICAL - FOLLOW EXACTLY):
For each claim, output in this exact format:

CLAIM: [the exact text of the claim]
TYPE: [one of: technical_achievement, metric, tool_expertise, role_responsibility, project_scale, problem_solved, architecture_decision]
VERIFIABILITY: [one of: verifiable, vague, suspicious, contradictory]
PRIORITY: [number 1-10, where 10 is most critical to verify]
VERIFICATION_QUESTION_1: [specific follow-up question]
VERIFICATION_QUESTION_2: [another specific follow-up question]
RED_FLAG: [optional - only if suspicious or contradictory, explain why]
---

Example:

CLAIM: I optimized the database to handle 10 million requests per day
TYPE: project_scale
VERIFIABILITY: verifiable
PRIORITY: 9
VERIFICATION_QUESTION_1: What specific caching strategy did you implement?
VERIFICATION_QUESTION_2: How did you handle database connection pooling at that scale?
RED_FLAG:
---

Now extract claims from the candidate's answer.`

// ClaimExtraction builds the request that pulls structured claims out of
// an answer. The last three Q/A pairs are appended to the system prompt
// so the model can flag contradictions against recent history.
func ClaimExtraction(question, answer string, history []QA) llm.ChatRequest {
	system := claimExtractionSystem
	if snippet := historySnippet(history, 3); snippet != "" {
		system += "\n\nPREVIOUS CONVERSATION (for contradiction detection):\n\n" + snippet
	}

	var sb strings.Builder
	sb.WriteString("QUESTION ASKED:\n\"")
	sb.WriteString(question)
	sb.WriteString("\"\n\nCANDIDATE'S ANSWER:\n\"")
	sb.WriteString(answer)
	sb.WriteString("\"\n\nExtract ALL claims from this answer using the exact format specified above.\n")
	sb.WriteString("If there are NO claims to extract, output: \"" + NoClaimsMarker + "\"")

	return llm.ChatRequest{
		System:      system,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: sb.String()}},
		Temperature: TemperatureEvaluation,
	}
}

const contradictionSystem = `You are an expert at detecting contradictions in interview answers.

Your task: Check if the current answer contradicts ANY previous statements.

WHAT COUNTS AS A CONTRADICTION:
- Changed numbers (said 5 team members before, now says 10)
- Changed role (said "team member" before, now says "team lead")
- Changed technology (said used React before, now says used Vue)
- Changed timeline (said 2 years experience before, now says 6 months)
- Changed responsibility (said "contributed to" before, now says "owned")

WHAT DOES NOT COUNT:
- Providing more details (not a contradiction, just elaboration)
- Using different words for the same concept (e.g. "database" vs "DB")

OUTPUT FORMAT:
If contradiction found:
CONTRADICTION_FOUND: yes
PREVIOUS_STATEMENT: [quote from earlier answer]
CURRENT_STATEMENT: [quote from current answer]
SEVERITY: [high/medium/low]
EXPLANATION: [why this is contradictory]

If NO contradiction:
CONTRADICTION_FOUND: no`

// ContradictionCheck builds the request that compares the current answer
// against prior statements. history should already be narrowed to the
// most relevant candidates (semantic neighbors when an index exists,
// otherwise the last few answers).
func ContradictionCheck(currentAnswer string, history []QA) llm.ChatRequest {
	var sb strings.Builder
	sb.WriteString("PREVIOUS CONVERSATION:\n\n")
	sb.WriteString(historySnippet(history, len(history)))
	sb.WriteString("\n\nCURRENT ANSWER TO CHECK:\n\"")
	sb.WriteString(currentAnswer)
	sb.WriteString("\"\n\nCheck if this current answer contradicts ANY previous statements.")

	return llm.ChatRequest{
		System:      contradictionSystem,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: sb.String()}},
		Temperature: TemperatureEvaluation,
	}
}

const verificationQuestionSystem = `You are an expert interviewer who asks sharp follow-up questions to verify claims.

Your task: Generate 2-3 specific follow-up questions to verify a candidate's claim.

GOOD VERIFICATION QUESTIONS:
- Ask for specific details (not yes/no)
- Ask about trade-offs considered
- Ask about challenges faced
- Ask for measurable outcomes

BAD VERIFICATION QUESTIONS:
- Generic questions
- Yes/no questions
- Questions not related to the claim

OUTPUT FORMAT:
QUESTION_1: [first verification question]
QUESTION_2: [second verification question]
QUESTION_3: [optional third question]`

// VerificationQuestions builds the request for claim-verification
// follow-up questions.
func VerificationQuestions(claimText, claimType string) llm.ChatRequest {
	var sb strings.Builder
	sb.WriteString("CLAIM TO VERIFY:\n\"")
	sb.WriteString(claimText)
	sb.WriteString("\"\n\nCLAIM TYPE: ")
	sb.WriteString(claimType)
	sb.WriteString("\n\nGenerate 2-3 sharp follow-up questions to verify this claim.\n")
	sb.WriteString("Focus on getting specific technical details and measurable outcomes.")

	return llm.ChatRequest{
		System:      verificationQuestionSystem,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: sb.String()}},
		Temperature: TemperatureGeneration,
	}
}
