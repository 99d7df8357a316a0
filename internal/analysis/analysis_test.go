package analysis

import (
	"testing"

	"github.com/internai/interviewd/pkg/provider/stt"
)

var testSegments = []stt.Segment{
	{Start: 0.0, End: 2.5, Text: "Hello, my name is John"},
	{Start: 5.0, End: 7.2, Text: "I work as a developer"}, // 2.5s pause
	{Start: 7.5, End: 10.0, Text: "in a tech company"},    // 0.3s gap, ignored
	{Start: 13.0, End: 15.5, Text: "for five years"},      // 3.0s pause
}

func TestAnalyzePauses(t *testing.T) {
	pauses := AnalyzePauses(testSegments)
	if len(pauses) != 2 {
		t.Fatalf("pauses = %d, want 2", len(pauses))
	}
	if pauses[0].Duration != 2.5 || pauses[1].Duration != 3.0 {
		t.Errorf("durations = %v, %v", pauses[0].Duration, pauses[1].Duration)
	}
}

func TestAnalyzePausesShortInput(t *testing.T) {
	if got := AnalyzePauses(nil); got != nil {
		t.Errorf("nil segments: %v", got)
	}
	if got := AnalyzePauses(testSegments[:1]); got != nil {
		t.Errorf("single segment: %v", got)
	}
}

func TestCountFillers(t *testing.T) {
	text := "Um, so like, I was basically working on, you know, this project and, uh, it was actually quite challenging."
	count, found := CountFillers(text)
	if count < 6 {
		t.Errorf("count = %d, want at least 6 (%v)", count, found)
	}
	has := func(w string) bool {
		for _, f := range found {
			if f == w {
				return true
			}
		}
		return false
	}
	for _, w := range []string{"um", "uh", "like", "basically", "you know"} {
		if !has(w) {
			t.Errorf("missing filler %q in %v", w, found)
		}
	}
}

func TestHesitationScore(t *testing.T) {
	tests := []struct {
		name                  string
		fillers, pauses, word int
		want                  float64
	}{
		{"no words", 0, 0, 0, 0},
		{"fillers capped at 50", 100, 0, 10, 50},
		{"pauses capped at 50", 0, 10, 100, 50},
		{"combined", 8, 2, 20, 60}, // min(40,50) + 20
		{"total capped at 100", 100, 10, 10, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HesitationScore(tt.fillers, tt.pauses, tt.word); got != tt.want {
				t.Errorf("HesitationScore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecoveryTime(t *testing.T) {
	if got := RecoveryTime(10.0, testSegments); got != 3.0 {
		t.Errorf("recovery = %v, want 3.0", got)
	}
	if got := RecoveryTime(20.0, testSegments); got != -1 {
		t.Errorf("no resume: %v, want -1", got)
	}
}

func TestAnalyze(t *testing.T) {
	m := Analyze("um so this is a short test answer", testSegments, 15.5, -1)
	if m.TotalPauses != 2 || m.LongPauses != 2 {
		t.Errorf("pauses = %d/%d", m.TotalPauses, m.LongPauses)
	}
	if m.TotalWords != 8 {
		t.Errorf("words = %d, want 8", m.TotalWords)
	}
	if m.WordsPerMinute < 30 || m.WordsPerMinute > 32 {
		t.Errorf("wpm = %v", m.WordsPerMinute)
	}
	if m.RecoveryTime != -1 {
		t.Errorf("uninterrupted answer has recovery %v", m.RecoveryTime)
	}
	if m.HesitationScore <= 0 {
		t.Error("expected nonzero hesitation")
	}
}
