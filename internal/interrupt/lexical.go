package interrupt

import (
	"fmt"
	"strings"
)

// Lexical-layer thresholds, all ratios over the word count.
const (
	minContentWords = 10

	excessiveFillerRatio = 0.15
	minorFillerRatio     = 0.08
	uncertaintyRatio     = 0.10

	vagueMinWords = 50

	minRepetitionSentences = 3
	repetitionUniqueness   = 0.6
)

var fillerTokens = []string{
	"um", "uh", "er", "ah",
	"like", "basically", "actually", "literally",
	"well", "so", "anyway",
}

var fillerPhrases = []string{
	"you know", "sort of", "kind of", "i mean", "i guess",
}

var uncertaintyTokens = []string{
	"maybe", "perhaps", "possibly", "probably", "might",
}

var uncertaintyPhrases = []string{
	"i think", "i believe", "i guess", "i suppose",
	"not sure", "could be", "seems like",
}

var hedgingPhrases = []string{
	"to be honest", "in my opinion", "from what i recall",
	"if i remember correctly", "i'm not entirely sure",
	"correct me if i'm wrong",
}

var specificityMarkers = []string{
	"specifically", "for example", "such as",
}

// ContentTriggers runs the lexical layer over the partial transcript:
// filler density, uncertainty markers, vagueness, and phrase repetition.
// Transcripts under ten words produce no triggers.
func ContentTriggers(transcript string) []Trigger {
	lower := strings.ToLower(transcript)
	words := strings.Fields(lower)
	wordCount := len(words)
	if wordCount < minContentWords {
		return nil
	}

	var triggers []Trigger

	fillerCount := countTokens(words, fillerTokens) + countPhrases(lower, fillerPhrases)
	fillerRatio := float64(fillerCount) / float64(wordCount)
	switch {
	case fillerRatio > excessiveFillerRatio:
		triggers = append(triggers, trigger(ReasonExcessiveRambling, "content",
			fmt.Sprintf("%d filler words in %d words (%.1f%%)",
				fillerCount, wordCount, fillerRatio*100)))
	case fillerRatio > minorFillerRatio:
		triggers = append(triggers, trigger(ReasonMinorRambling, "content",
			fmt.Sprintf("Moderate use of filler words (%.1f%%)", fillerRatio*100)))
	}

	uncertainCount := countTokens(words, uncertaintyTokens) +
		countPhrases(lower, uncertaintyPhrases) +
		countPhrases(lower, hedgingPhrases)
	if float64(uncertainCount)/float64(wordCount) > uncertaintyRatio {
		triggers = append(triggers, trigger(ReasonHighUncertainty, "content",
			fmt.Sprintf("%d uncertainty markers - sounds very unsure", uncertainCount)))
	}

	if wordCount > vagueMinWords && !hasSpecifics(transcript, lower) {
		triggers = append(triggers, trigger(ReasonVagueAnswer, "content",
			fmt.Sprintf("%d words but no concrete examples, numbers, or metrics", wordCount)))
	}

	if ratio, ok := trigramUniqueness(words, lower); ok && ratio < repetitionUniqueness {
		triggers = append(triggers, trigger(ReasonExcessiveRambling, "content",
			fmt.Sprintf("Repetitive phrasing - only %.0f%% unique content", ratio*100)))
	}

	return triggers
}

// hasSpecifics reports whether the answer contains any concrete anchor:
// a number or an explicit example marker.
func hasSpecifics(transcript, lower string) bool {
	if strings.ContainsAny(transcript, "0123456789") {
		return true
	}
	for _, m := range specificityMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// trigramUniqueness measures phrase repetition as the share of unique
// three-word sequences. It only applies once the transcript spans at
// least three sentences.
func trigramUniqueness(words []string, lower string) (float64, bool) {
	sentences := 0
	for _, s := range strings.FieldsFunc(lower, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	}) {
		if strings.TrimSpace(s) != "" {
			sentences++
		}
	}
	if sentences < minRepetitionSentences || len(words) < 3 {
		return 0, false
	}

	total := len(words) - 2
	seen := make(map[string]struct{}, total)
	for i := 0; i < total; i++ {
		seen[words[i]+" "+words[i+1]+" "+words[i+2]] = struct{}{}
	}
	return float64(len(seen)) / float64(total), true
}

func countTokens(words, targets []string) int {
	n := 0
	for _, w := range words {
		w = strings.Trim(w, ".,!?;:\"'()")
		for _, t := range targets {
			if w == t {
				n++
				break
			}
		}
	}
	return n
}

func countPhrases(lower string, phrases []string) int {
	n := 0
	for _, p := range phrases {
		n += strings.Count(lower, p)
	}
	return n
}
