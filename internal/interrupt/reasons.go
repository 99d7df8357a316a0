// Package interrupt decides, while the candidate is still speaking,
// whether the interviewer should cut in, show a silent warning, or do
// nothing. Four detection layers feed the decision: audio delivery
// metrics, lexical content analysis, conversational context, and an
// optional LLM pass for semantic issues.
package interrupt

import (
	"time"
)

// Reason identifies one detectable answer problem. The names travel over
// the live channel, so they stay in wire form.
type Reason string

const (
	// Critical: interrupt on first detection.
	ReasonFalseClaim    Reason = "FALSE_CLAIM"
	ReasonContradiction Reason = "CONTRADICTION"
	ReasonOffTopic      Reason = "COMPLETELY_OFF_TOPIC"

	// High severity: warn once, interrupt on the second occurrence.
	ReasonDodging           Reason = "DODGING_QUESTION"
	ReasonExcessiveRambling Reason = "EXCESSIVE_RAMBLING"
	ReasonExcessivePausing  Reason = "EXCESSIVE_PAUSING"

	// Medium severity: warn twice, interrupt on the third.
	ReasonVagueAnswer     Reason = "VAGUE_ANSWER"
	ReasonLackOfSpecifics Reason = "LACK_OF_SPECIFICS"
	ReasonHighUncertainty Reason = "HIGH_UNCERTAINTY"

	// Low severity: warning only, never interrupt.
	ReasonMinorRambling        Reason = "MINOR_RAMBLING"
	ReasonSpeakingTooLong      Reason = "SPEAKING_TOO_LONG"
	ReasonInconsistentDelivery Reason = "INCONSISTENT_DELIVERY"
)

// warnOnlyThreshold is an occurrence count no counter reaches, used for
// reasons that never escalate past a warning.
const warnOnlyThreshold = 999

type severityRule struct {
	weight    int
	threshold int
	phrase    string
}

var severityTable = map[Reason]severityRule{
	ReasonFalseClaim:    {100, 1, "Hold on - I need to stop you there."},
	ReasonContradiction: {95, 1, "Wait - that contradicts what you said earlier."},
	ReasonOffTopic:      {90, 1, "Let me stop you - we're completely off track."},

	ReasonDodging:           {85, 2, "I need to interrupt - you're not answering the question."},
	ReasonExcessiveRambling: {80, 2, "I'm going to stop you there - please get to the point."},
	ReasonExcessivePausing:  {75, 2, "Let me help you focus - you seem to be struggling."},

	ReasonVagueAnswer:     {70, 3, "Hold on - I need specific details, not generalizations."},
	ReasonLackOfSpecifics: {65, 3, "Let me interrupt - give me concrete examples."},
	ReasonHighUncertainty: {60, 3, "Stop for a moment - are you confident in this answer?"},

	ReasonMinorRambling:        {30, warnOnlyThreshold, ""},
	ReasonSpeakingTooLong:      {25, warnOnlyThreshold, ""},
	ReasonInconsistentDelivery: {20, warnOnlyThreshold, ""},
}

// Weight returns the reason's severity weight. Unknown reasons weigh 0.
func (r Reason) Weight() int {
	return severityTable[r].weight
}

// Threshold is the consecutive-occurrence count at which the reason
// escalates from warning to interruption.
func (r Reason) Threshold() int {
	if rule, ok := severityTable[r]; ok {
		return rule.threshold
	}
	return warnOnlyThreshold
}

// Phrase is the spoken line the interviewer opens the interruption with.
func (r Reason) Phrase() string {
	if p := severityTable[r].phrase; p != "" {
		return p
	}
	return "Let me stop you for a moment."
}

// SeverityLabel buckets the weight into the coarse labels the live
// channel displays.
func (r Reason) SeverityLabel() string {
	switch w := r.Weight(); {
	case w >= 90:
		return "critical"
	case w >= 75:
		return "high"
	case w >= 60:
		return "medium"
	default:
		return "low"
	}
}

// Warning is the non-interrupting overlay shown to the candidate while
// they keep speaking.
type Warning struct {
	Type      string    `json:"type"`
	IssueType Reason    `json:"issue_type"`
	Message   string    `json:"message"`
	Icon      string    `json:"icon"`
	Color     string    `json:"color"`
	Severity  string    `json:"severity"`
	Evidence  string    `json:"evidence,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

var warningMessages = map[Reason]string{
	ReasonExcessivePausing:     "You're taking long pauses",
	ReasonHighUncertainty:      "Speak with more confidence",
	ReasonInconsistentDelivery: "Maintain steady pace",
	ReasonSpeakingTooLong:      "Wrap up your point",
	ReasonExcessiveRambling:    "Reduce filler words",
	ReasonMinorRambling:        "Reduce filler words",
	ReasonOffTopic:             "Stay focused on the question",
	ReasonDodging:              "Address the question directly",
	ReasonVagueAnswer:          "Be more specific",
	ReasonLackOfSpecifics:      "Give concrete examples",
}

var warningIcons = map[Reason]string{
	ReasonExcessivePausing:     "⏸️",
	ReasonHighUncertainty:      "🤔",
	ReasonInconsistentDelivery: "📊",
	ReasonSpeakingTooLong:      "⏱️",
	ReasonExcessiveRambling:    "💬",
	ReasonMinorRambling:        "💬",
	ReasonOffTopic:             "🎯",
	ReasonDodging:              "❓",
	ReasonVagueAnswer:          "🔍",
	ReasonLackOfSpecifics:      "📝",
}

var severityColors = map[string]string{
	"critical": "#ff4444",
	"high":     "#ff9800",
	"medium":   "#ffc107",
	"low":      "#4caf50",
}

func warningFor(reason Reason, evidence string, now time.Time) *Warning {
	msg, ok := warningMessages[reason]
	if !ok {
		msg = "Consider adjusting your approach"
	}
	icon, ok := warningIcons[reason]
	if !ok {
		icon = "⚠️"
	}
	sev := reason.SeverityLabel()
	color, ok := severityColors[sev]
	if !ok {
		color = "#ffc107"
	}
	return &Warning{
		Type:      "live_warning",
		IssueType: reason,
		Message:   msg,
		Icon:      icon,
		Color:     color,
		Severity:  sev,
		Evidence:  evidence,
		Timestamp: now,
	}
}

// Trigger is one detection emitted by a layer before the decision step.
type Trigger struct {
	Reason   Reason
	Weight   int
	Evidence string
	Source   string
}

func trigger(reason Reason, source, evidence string) Trigger {
	return Trigger{Reason: reason, Weight: reason.Weight(), Evidence: evidence, Source: source}
}
