package prompt

import (
	"strings"
	"testing"
)

func TestCleanQuestion(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "What is a goroutine?", "What is a goroutine?"},
		{"question prefix", "Question: What is a goroutine?", "What is a goroutine?"},
		{"q prefix", "Q: What is a goroutine?", "What is a goroutine?"},
		{"stacked preamble", "Great! Question: What is a goroutine?", "What is a goroutine?"},
		{"numbering", "1. Tell me about your last project?", "Tell me about your last project?"},
		{"quotes", `"What is a goroutine?"`, "What is a goroutine?"},
		{"bold", "**What is a goroutine?**", "What is a goroutine?"},
		{"fenced", "```\nWhat is a goroutine?\n```", "What is a goroutine?"},
		{"missing mark", "Tell me about your last project.", "Tell me about your last project?"},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanQuestion(tt.in); got != tt.want {
				t.Errorf("CleanQuestion(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanFollowUpSingleSentence(t *testing.T) {
	in := "Which was it? Please think carefully before answering."
	if got := CleanFollowUp(in); got != "Which was it?" {
		t.Errorf("CleanFollowUp = %q", got)
	}
}

func TestField(t *testing.T) {
	v, ok := Field("  TECHNICAL_DEPTH: 85 ", "TECHNICAL_DEPTH")
	if !ok || v != "85" {
		t.Errorf("Field = %q, %v", v, ok)
	}
	if _, ok := Field("TECHNICAL_DEPTH_EVIDENCE: x", "TECHNICAL_DEPTH"); ok {
		t.Error("matched the wrong key")
	}
}

func TestSplitPipes(t *testing.T) {
	got := SplitPipes("clear structure | good metrics | NONE | ")
	if len(got) != 2 || got[0] != "clear structure" || got[1] != "good metrics" {
		t.Errorf("SplitPipes = %v", got)
	}
	if got := SplitPipes("NONE"); got != nil {
		t.Errorf("SplitPipes(NONE) = %v, want nil", got)
	}
}

func TestIntInRange(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"85", 85},
		{"85/100", 85},
		{"150", 100},
		{"-5", 0},
		{"garbage", 50},
		{"", 50},
	}
	for _, tt := range tests {
		if got := IntInRange(tt.in, 0, 100, 50); got != tt.want {
			t.Errorf("IntInRange(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestYesNo(t *testing.T) {
	if !YesNo("YES") || !YesNo("yes - needs probing") || YesNo("NO") || YesNo("") {
		t.Error("YesNo misclassified")
	}
}

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"fenced json", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bold key", "**TECHNICAL_DEPTH**: 80", "TECHNICAL_DEPTH: 80"},
		{"italic key", "*STRENGTHS*: clear structure", "STRENGTHS: clear structure"},
		{"bold value", "RED_FLAGS: **NONE**", "RED_FLAGS: NONE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripMarkdown(tt.in); got != tt.want {
				t.Errorf("StripMarkdown(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEvaluationRoundSelection(t *testing.T) {
	req := Evaluation("hr", "q", "a")
	if !strings.Contains(req.System, "STAR method") {
		t.Error("hr evaluation missing STAR rubric")
	}
	req = Evaluation("system_design", "q", "a")
	if !strings.Contains(req.System, "system architect") {
		t.Error("system_design evaluation missing architect rubric")
	}
	// Unknown rounds fall back to the technical rubric.
	req = Evaluation("unknown", "q", "a")
	if !strings.Contains(req.System, "senior engineer") {
		t.Error("unknown round did not fall back to technical")
	}
	if req.Temperature != TemperatureEvaluation {
		t.Errorf("temperature = %v", req.Temperature)
	}
}

func TestClaimExtractionIncludesHistory(t *testing.T) {
	req := ClaimExtraction("q", "a", []QA{
		{Question: "first q", Answer: "first a"},
	})
	if !strings.Contains(req.System, "first a") {
		t.Error("history missing from system prompt")
	}
	if !strings.Contains(req.Messages[0].Content, NoClaimsMarker) {
		t.Error("user prompt missing the no-claims instruction")
	}
}

func TestNextQuestionContext(t *testing.T) {
	req := NextQuestion(QuestionContext{
		Phase:           "stress_testing",
		DifficultyLabel: "expert",
		LastQuestions:   []string{"Tell me about caching?"},
	})
	body := req.Messages[0].Content
	if !strings.Contains(body, "failure modes") {
		t.Error("missing phase or difficulty guidance")
	}
	if !strings.Contains(body, "Tell me about caching?") {
		t.Error("missing already-asked questions")
	}
}

func TestFollowUpStrategies(t *testing.T) {
	req, ok := FollowUp("CONTRADICTION", "orig?", "partial", "changed team size")
	if !ok {
		t.Fatal("CONTRADICTION should have an LLM strategy")
	}
	if !strings.Contains(req.System, "changed team size") {
		t.Error("evidence missing from prompt")
	}
	if _, ok := FollowUp("COMPLETELY_OFF_TOPIC", "orig?", "p", ""); ok {
		t.Error("off-topic must not use an LLM strategy")
	}
}

func TestOffTopicRedirect(t *testing.T) {
	got := OffTopicRedirect("What database did you use?")
	want := "That's not what I asked. Let me be specific: What database did you use?"
	if got != want {
		t.Errorf("redirect = %q", got)
	}
}
