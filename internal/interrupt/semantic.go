package interrupt

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/internai/interviewd/internal/gateway"
	"github.com/internai/interviewd/internal/prompt"
)

// semanticMinChars gates the LLM layer: it is the expensive layer, so it
// only runs once the transcript is long enough to judge.
const semanticMinChars = 100

type semanticFindings struct {
	IsOffTopic         bool   `json:"is_off_topic"`
	IsDodging          bool   `json:"is_dodging"`
	IsRambling         bool   `json:"is_rambling"`
	IsVague            bool   `json:"is_vague"`
	ContainsFalseClaim bool   `json:"contains_false_claim"`
	ContradictsHistory bool   `json:"contradicts_history"`
	ConfidenceLevel    string `json:"confidence_level"`
	Explanation        string `json:"explanation"`
}

// semanticTriggers runs the LLM layer. An unavailable backend or
// unparseable output yields no triggers; only context cancellation is an
// error. The layer never blocks the cheaper ones.
func semanticTriggers(ctx context.Context, gw *gateway.Gateway, transcript, question string, history []prompt.QA) ([]Trigger, error) {
	raw, err := gw.Chat(ctx, prompt.SemanticAnalysis(question, transcript, history))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, gateway.ErrBackendUnavailable) {
			slog.Warn("semantic interruption layer skipped, llm unavailable")
			return nil, nil
		}
		return nil, err
	}

	var f semanticFindings
	if err := json.Unmarshal([]byte(strings.TrimSpace(prompt.StripMarkdown(raw))), &f); err != nil {
		slog.Warn("semantic interruption output unparseable", "error", err)
		return nil, nil
	}

	var triggers []Trigger
	if f.ContainsFalseClaim {
		triggers = append(triggers, trigger(ReasonFalseClaim, "llm",
			"LLM detected false claim: "+f.Explanation))
	}
	if f.ContradictsHistory {
		triggers = append(triggers, trigger(ReasonContradiction, "llm",
			"LLM detected contradiction: "+f.Explanation))
	}
	if f.IsDodging {
		triggers = append(triggers, trigger(ReasonDodging, "llm",
			"LLM detected question dodging: "+f.Explanation))
	}
	if f.IsOffTopic {
		triggers = append(triggers, trigger(ReasonOffTopic, "llm",
			"LLM detected off-topic response: "+f.Explanation))
	}
	if f.IsRambling {
		triggers = append(triggers, trigger(ReasonExcessiveRambling, "llm",
			"LLM detected rambling: "+f.Explanation))
	}
	if f.IsVague {
		triggers = append(triggers, trigger(ReasonLackOfSpecifics, "llm",
			"LLM detected vagueness: "+f.Explanation))
	}
	return triggers, nil
}
