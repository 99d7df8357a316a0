package interrupt

import (
	"fmt"

	"github.com/internai/interviewd/internal/analysis"
)

// audioLongPauseCount is how many long pauses in one answer count as
// excessive on the server-side metrics path.
const audioLongPauseCount = 2

// ClientIssue is one delivery problem the capture client detected
// locally while recording (it sees raw audio the server never gets).
type ClientIssue struct {
	Type     string `json:"type"`
	Severity string `json:"severity,omitempty"`
	Evidence string `json:"evidence,omitempty"`

	// Priority is the client's own ranking. Accepted for wire
	// compatibility; the server ranks by its reason weights instead.
	Priority int `json:"priority,omitempty"`
}

// clientIssueReasons maps client issue types onto reasons. Unknown types
// are dropped: clients ship ahead of the server and may report issue
// types this build does not know.
var clientIssueReasons = map[string]Reason{
	"EXCESSIVE_PAUSING": ReasonExcessivePausing,
	"HIGH_HESITATION":   ReasonHighUncertainty,
	"SPEAKING_TOO_LONG": ReasonSpeakingTooLong,
}

// ClientIssueTriggers converts client-reported issues into triggers.
func ClientIssueTriggers(issues []ClientIssue) []Trigger {
	var triggers []Trigger
	for _, issue := range issues {
		reason, ok := clientIssueReasons[issue.Type]
		if !ok {
			continue
		}
		evidence := issue.Evidence
		if evidence == "" {
			evidence = "Reported by capture client"
		}
		triggers = append(triggers, trigger(reason, "audio", evidence))
	}
	return triggers
}

// AudioTriggers derives delivery triggers from server-side speech
// metrics, for callers that analyzed the audio themselves instead of
// trusting the client.
func AudioTriggers(m *analysis.Metrics) []Trigger {
	if m == nil {
		return nil
	}
	var triggers []Trigger
	if m.LongPauses >= audioLongPauseCount {
		triggers = append(triggers, trigger(ReasonExcessivePausing, "audio",
			fmt.Sprintf("%d pauses over 2 seconds (longest %.1fs)",
				m.LongPauses, m.MaxPauseDuration)))
	}
	return triggers
}
