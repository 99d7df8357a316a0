package prompt

import "strings"

// unwantedPrefixes are preambles models emit despite the output rules.
var unwantedPrefixes = []string{
	"Question:",
	"Q:",
	"Here's my question:",
	"Here is my question:",
	"Let me ask:",
	"Let me ask you:",
	"Great!",
	"Excellent.",
	"Sure.",
	"Okay.",
}

// CleanQuestion normalizes LLM question output: strips code fences,
// bold markers, known preambles, list numbering, and surrounding quotes,
// and ensures the result ends with a question mark. An empty input stays
// empty.
func CleanQuestion(raw string) string {
	s := StripMarkdown(raw)
	s = strings.ReplaceAll(s, "**", "")
	s = strings.TrimSpace(s)

	// Prefixes can stack ("Great! Question: ..."), so loop to fixpoint.
	for {
		trimmed := s
		for _, p := range unwantedPrefixes {
			if rest, ok := cutPrefixFold(trimmed, p); ok {
				trimmed = strings.TrimSpace(rest)
			}
		}
		if trimmed == s {
			break
		}
		s = trimmed
	}

	// "1. Tell me..." style numbering.
	if i := strings.Index(s, ". "); i > 0 && i <= 3 && isDigits(s[:i]) {
		s = s[i+2:]
	}

	s = strings.Trim(s, "\"'“”")
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if !strings.HasSuffix(s, "?") {
		s = strings.TrimRight(s, ".!") + "?"
	}
	return s
}

// CleanFollowUp reduces LLM follow-up output to a single question
// sentence: everything after the first question mark is dropped.
func CleanFollowUp(raw string) string {
	s := CleanQuestion(raw)
	if i := strings.Index(s, "?"); i >= 0 {
		return s[:i+1]
	}
	return s
}

// cutPrefixFold is strings.CutPrefix with ASCII case folding.
func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return s[len(prefix):], true
	}
	return s, false
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
