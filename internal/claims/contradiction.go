package claims

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/internai/interviewd/internal/gateway"
	"github.com/internai/interviewd/internal/prompt"
	"github.com/internai/interviewd/internal/session"
)

// Contradiction is a detected conflict between the current answer and
// an earlier statement.
type Contradiction struct {
	PreviousStatement string `json:"previous_statement"`
	CurrentStatement  string `json:"current_statement"`
	Severity          string `json:"severity"`
	Explanation       string `json:"explanation"`
}

// CheckContradiction asks the LLM whether the current answer conflicts
// with the supplied prior statements. A down backend reports no
// contradiction: like extraction, this path is advisory.
func CheckContradiction(ctx context.Context, gw *gateway.Gateway, currentAnswer string, history []prompt.QA) (*Contradiction, error) {
	if len(history) == 0 || currentAnswer == "" {
		return nil, nil
	}

	raw, err := gw.Chat(ctx, prompt.ContradictionCheck(currentAnswer, history))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, gateway.ErrBackendUnavailable) {
			slog.Warn("contradiction check skipped, llm unavailable")
			return nil, nil
		}
		return nil, err
	}
	return ParseContradiction(raw), nil
}

// ParseContradiction parses the detection output. Nil means no
// contradiction was found (or the output was unusable).
func ParseContradiction(raw string) *Contradiction {
	var found bool
	var c Contradiction

	for _, line := range strings.Split(prompt.StripMarkdown(raw), "\n") {
		line = strings.TrimSpace(line)
		if v, ok := prompt.Field(line, "CONTRADICTION_FOUND"); ok {
			found = strings.EqualFold(strings.TrimSpace(v), "yes")
		} else if v, ok := prompt.Field(line, "PREVIOUS_STATEMENT"); ok {
			c.PreviousStatement = v
		} else if v, ok := prompt.Field(line, "CURRENT_STATEMENT"); ok {
			c.CurrentStatement = v
		} else if v, ok := prompt.Field(line, "SEVERITY"); ok {
			c.Severity = strings.ToLower(v)
		} else if v, ok := prompt.Field(line, "EXPLANATION"); ok {
			c.Explanation = v
		}
	}

	if !found {
		return nil
	}
	return &c
}

// MarkContradictory downgrades every claim extracted from the current
// answer after a contradiction was confirmed: verifiability flips to
// contradictory and the explanation joins each claim's red flags.
func MarkContradictory(claims []session.Claim, contra *Contradiction) {
	if contra == nil {
		return
	}
	flag := "Contradicts earlier statement"
	if contra.Explanation != "" {
		flag += ": " + contra.Explanation
	}
	for i := range claims {
		claims[i].Verifiability = session.VerifiabilityContradictory
		claims[i].RedFlags = append(claims[i].RedFlags, flag)
		claims[i].RequiresVerification = true
	}
}
