package prompt

import (
	"strings"

	"github.com/internai/interviewd/pkg/provider/llm"
)

// SemanticAnalysis builds the request for the LLM interruption layer. It
// asks for a small JSON object of booleans; internal/interrupt parses it
// tolerantly and treats any parse failure as "no issues".
func SemanticAnalysis(question, transcript string, history []QA) llm.ChatRequest {
	historyContext := historySnippet(history, 3)
	if historyContext == "" {
		historyContext = "No previous context"
	}

	var sb strings.Builder
	sb.WriteString("You are analyzing a candidate's answer in a job interview to detect issues.\n\n")
	sb.WriteString("QUESTION ASKED:\n\"")
	sb.WriteString(question)
	sb.WriteString("\"\n\nRECENT HISTORY:\n")
	sb.WriteString(historyContext)
	sb.WriteString("\n\nCANDIDATE'S CURRENT ANSWER:\n\"")
	sb.WriteString(transcript)
	sb.WriteString("\"\n\n")
	sb.WriteString(`Analyze the answer for the following issues. Respond in JSON format:

{
  "is_off_topic": true/false,
  "is_dodging": true/false,
  "is_rambling": true/false,
  "is_vague": true/false,
  "contains_false_claim": true/false,
  "contradicts_history": true/false,
  "confidence_level": "high/medium/low",
  "explanation": "brief explanation of main issue if any"
}

Be strict but fair. Only flag serious issues.`)

	return llm.ChatRequest{
		System:      sb.String(),
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: "Analyze the answer."}},
		Temperature: TemperatureEvaluation,
	}
}
