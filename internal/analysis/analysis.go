// Package analysis derives behavioral speech metrics from transcripts
// and their time-aligned segments: pauses, filler words, speaking rate,
// a combined hesitation score, and post-interruption recovery time.
//
// The metrics serve two consumers. The interruption engine uses them as
// its audio layer when the client sends no metrics of its own, and the
// final report surfaces them as delivery feedback.
package analysis

import (
	"math"
	"strings"

	"github.com/internai/interviewd/pkg/provider/stt"
)

const (
	// minPauseGap is the smallest inter-segment gap counted as a pause.
	minPauseGap = 0.3

	// longPauseThreshold marks a pause as long.
	longPauseThreshold = 2.0
)

// fillerWords are counted case-insensitively. Multi-word fillers are
// matched as substrings of the lowercased transcript.
var fillerWords = []string{
	"um", "uh", "like", "you know", "basically", "actually",
	"literally", "kind of", "sort of", "i mean", "you see",
	"so", "well", "right", "okay",
}

// Pause is one detected gap between speech segments.
type Pause struct {
	// AfterSegment is the index of the segment the pause follows.
	AfterSegment int

	// Duration is the gap length in seconds.
	Duration float64
}

// Metrics is the complete behavioral analysis of one answer.
type Metrics struct {
	TotalPauses      int     `json:"total_pauses"`
	LongPauses       int     `json:"long_pauses"`
	AvgPauseDuration float64 `json:"avg_pause_duration"`
	MaxPauseDuration float64 `json:"max_pause_duration"`

	FillerWordCount int      `json:"filler_word_count"`
	FillerWords     []string `json:"filler_words,omitempty"`
	FillerWordRate  float64  `json:"filler_word_rate"`

	TotalWords     int     `json:"total_words"`
	WordsPerMinute float64 `json:"words_per_minute"`

	// HesitationScore combines filler rate and long pauses into 0-100.
	// Higher means more hesitation.
	HesitationScore float64 `json:"hesitation_score"`

	// RecoveryTime is the seconds between an interruption and the next
	// speech segment. Negative means the candidate never resumed, or the
	// answer was not interrupted.
	RecoveryTime float64 `json:"recovery_time,omitempty"`
}

// AnalyzePauses finds gaps over minPauseGap between consecutive
// segments.
func AnalyzePauses(segments []stt.Segment) []Pause {
	var pauses []Pause
	for i := 1; i < len(segments); i++ {
		gap := segments[i].Start - segments[i-1].End
		if gap > minPauseGap {
			pauses = append(pauses, Pause{AfterSegment: i - 1, Duration: gap})
		}
	}
	return pauses
}

// CountFillers counts filler words in text, case-insensitively. Single
// words match on token boundaries; multi-word fillers match as phrases.
func CountFillers(text string) (count int, found []string) {
	lower := strings.ToLower(text)
	words := Words(lower)

	single := make(map[string]bool)
	for _, f := range fillerWords {
		if !strings.Contains(f, " ") {
			single[f] = true
		}
	}
	for _, w := range words {
		if single[w] {
			count++
			found = append(found, w)
		}
	}
	for _, f := range fillerWords {
		if !strings.Contains(f, " ") {
			continue
		}
		n := strings.Count(lower, f)
		count += n
		for range n {
			found = append(found, f)
		}
	}
	return count, found
}

// Words tokenizes text into lowercase word tokens, dropping punctuation.
func Words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '\'')
	})
}

// HesitationScore combines the filler rate and long-pause count into a
// 0-100 score. Fillers contribute up to 50 points (rate x 100, capped),
// long pauses 10 points each up to 50.
func HesitationScore(fillerCount, longPauses, totalWords int) float64 {
	if totalWords == 0 {
		return 0
	}
	fillerScore := math.Min(float64(fillerCount)/float64(totalWords)*100, 50)
	pauseScore := math.Min(float64(longPauses)*10, 50)
	return math.Min(fillerScore+pauseScore, 100)
}

// RecoveryTime returns the seconds between interruptedAt and the start
// of the next segment, or -1 when the candidate never resumed speaking.
func RecoveryTime(interruptedAt float64, segments []stt.Segment) float64 {
	for _, s := range segments {
		if s.Start > interruptedAt {
			return s.Start - interruptedAt
		}
	}
	return -1
}

// Analyze computes the full metric set for one answer. duration is the
// recording length in seconds; interruptedAt is the offset of an
// interruption, or a negative value when the answer ran uninterrupted.
func Analyze(text string, segments []stt.Segment, duration, interruptedAt float64) Metrics {
	m := Metrics{RecoveryTime: -1}

	pauses := AnalyzePauses(segments)
	m.TotalPauses = len(pauses)
	var sum float64
	for _, p := range pauses {
		sum += p.Duration
		if p.Duration >= longPauseThreshold {
			m.LongPauses++
		}
		if p.Duration > m.MaxPauseDuration {
			m.MaxPauseDuration = p.Duration
		}
	}
	if len(pauses) > 0 {
		m.AvgPauseDuration = sum / float64(len(pauses))
	}

	m.FillerWordCount, m.FillerWords = CountFillers(text)
	m.TotalWords = len(Words(text))
	if m.TotalWords > 0 {
		m.FillerWordRate = float64(m.FillerWordCount) / float64(m.TotalWords)
	}
	if duration > 0 {
		m.WordsPerMinute = float64(m.TotalWords) / duration * 60
	}

	m.HesitationScore = HesitationScore(m.FillerWordCount, m.LongPauses, m.TotalWords)

	if interruptedAt >= 0 {
		m.RecoveryTime = RecoveryTime(interruptedAt, segments)
	}
	return m
}
