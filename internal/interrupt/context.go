package interrupt

import (
	"strings"
	"unicode"

	"github.com/internai/interviewd/internal/prompt"
)

// Context-layer thresholds.
const (
	dodgingMinWords  = 30
	relevanceFloor   = 0.3
	maxKeywords      = 10
	minKeywordLen    = 4
	contraMinOverlap = 2
	contraLookback   = 3
)

var stopWords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(
		"the a an and or but in on at to for of with by from as is was are " +
			"were been be have has had do does did will would could should may " +
			"might can this that these those i you he she it we they me him her " +
			"us them my your his its our their what which who when where why how " +
			"about tell") {
		stopWords[w] = struct{}{}
	}
}

// Keywords extracts up to ten topical keywords: lowercase words of at
// least four characters that are not stop words.
func Keywords(text string) []string {
	var out []string
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len(w) < minKeywordLen {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		out = append(out, w)
		if len(out) == maxKeywords {
			break
		}
	}
	return out
}

// polarPairs are direct yes/no style opposites. A pair match between the
// current answer and a recent one only counts as a contradiction when
// both answers share enough keywords to be about the same topic.
var polarPairs = [][2]string{
	{"yes", "no"},
	{"did", "didn't"},
	{"can", "can't"},
	{"will", "won't"},
}

// ContextTriggers analyzes the answer against the asked question and the
// recent conversation: topical relevance and shallow polar
// contradictions. The LLM layer does the deeper semantic version.
func ContextTriggers(answer, question string, history []prompt.QA) []Trigger {
	var triggers []Trigger

	questionKeywords := Keywords(question)
	answerLower := strings.ToLower(answer)
	if len(questionKeywords) > 0 && len(strings.Fields(answer)) > dodgingMinWords {
		found := 0
		for _, kw := range questionKeywords {
			if strings.Contains(answerLower, kw) {
				found++
			}
		}
		if float64(found)/float64(len(questionKeywords)) < relevanceFloor {
			triggers = append(triggers, trigger(ReasonDodging, "context",
				"Answer doesn't address key topics from question"))
		}
	}

	if contradictsRecent(answer, history) {
		triggers = append(triggers, trigger(ReasonContradiction, "context",
			"Contradicts previous answer about similar topic"))
	}

	return triggers
}

func contradictsRecent(answer string, history []prompt.QA) bool {
	if len(history) > contraLookback {
		history = history[len(history)-contraLookback:]
	}
	currentKeywords := keywordSet(answer)

	for _, qa := range history {
		prev := strings.ToLower(qa.Answer)
		curr := strings.ToLower(answer)

		polar := false
		for _, pair := range polarPairs {
			if (hasWord(prev, pair[0]) && hasWord(curr, pair[1])) ||
				(hasWord(prev, pair[1]) && hasWord(curr, pair[0])) {
				polar = true
				break
			}
		}
		if !polar {
			continue
		}

		overlap := 0
		for _, kw := range Keywords(qa.Answer) {
			if _, ok := currentKeywords[kw]; ok {
				overlap++
			}
		}
		if overlap >= contraMinOverlap {
			return true
		}
	}
	return false
}

func keywordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, kw := range Keywords(text) {
		set[kw] = struct{}{}
	}
	return set
}

// hasWord matches whole words, keeping apostrophes inside tokens so
// "didn't" does not match "did".
func hasWord(lower, word string) bool {
	for _, t := range strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	}) {
		if strings.Trim(t, "'") == word {
			return true
		}
	}
	return false
}
