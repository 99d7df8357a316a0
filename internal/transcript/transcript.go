// Package transcript repairs mis-transcribed technical terms in STT
// output before any analysis runs.
//
// Speech models routinely mangle domain vocabulary ("cooper netties" for
// Kubernetes, "post gress" for PostgreSQL). The [Corrector] walks the
// transcript word by word, computes Double Metaphone codes for each word
// and each vocabulary term, and replaces a word with a term when the
// codes overlap and Jaro-Winkler similarity clears a threshold. Words
// without phonetic overlap fall back to a stricter pure-similarity
// check, so close literal misspellings still correct.
//
// The corrector is deterministic and cheap enough to run on every
// answer. It never touches ordinary words: only tokens of four or more
// letters that clear the thresholds are replaced.
package transcript

import (
	"strings"

	"github.com/antzucaro/matchr"
)

const (
	defaultPhoneticThreshold = 0.70
	defaultFuzzyThreshold    = 0.88

	// minWordLen is the shortest token the corrector considers.
	// Shorter tokens collide with too many English words.
	minWordLen = 4
)

// DefaultVocabulary covers terms candidates say in software interviews.
// Config can extend or replace it.
var DefaultVocabulary = []string{
	"Kubernetes", "PostgreSQL", "Redis", "Kafka", "Docker",
	"Elasticsearch", "RabbitMQ", "MongoDB", "Cassandra", "Nginx",
	"Prometheus", "Grafana", "Terraform", "Ansible", "Jenkins",
	"GraphQL", "gRPC", "OAuth", "WebSocket", "microservices",
	"Django", "Flask", "React", "Angular", "TypeScript",
	"JavaScript", "Python", "Golang", "Rust", "Scala",
}

// Correction records one replaced word.
type Correction struct {
	// Original is the token as transcribed.
	Original string

	// Corrected is the canonical vocabulary term that replaced it.
	Corrected string

	// Confidence is the Jaro-Winkler similarity of the match (0-1).
	Confidence float64
}

// Option configures a [Corrector].
type Option func(*Corrector)

// WithPhoneticThreshold sets the minimum similarity for a phonetically
// matched term. Default: 0.70.
func WithPhoneticThreshold(t float64) Option {
	return func(c *Corrector) { c.phoneticThreshold = t }
}

// WithFuzzyThreshold sets the minimum similarity for the non-phonetic
// fallback. Default: 0.88.
func WithFuzzyThreshold(t float64) Option {
	return func(c *Corrector) { c.fuzzyThreshold = t }
}

// vocabEntry caches the phonetic codes of one vocabulary term.
type vocabEntry struct {
	canonical string
	lower     string
	primary   string
	secondary string
}

// Corrector replaces phonetically mangled vocabulary terms in
// transcripts. Read-only after construction, safe for concurrent use.
type Corrector struct {
	vocab             []vocabEntry
	canonical         map[string]string
	phoneticThreshold float64
	fuzzyThreshold    float64
}

// New builds a Corrector over the given vocabulary. An empty vocabulary
// uses [DefaultVocabulary].
func New(vocabulary []string, opts ...Option) *Corrector {
	if len(vocabulary) == 0 {
		vocabulary = DefaultVocabulary
	}
	c := &Corrector{
		canonical:         make(map[string]string, len(vocabulary)),
		phoneticThreshold: defaultPhoneticThreshold,
		fuzzyThreshold:    defaultFuzzyThreshold,
	}
	for _, term := range vocabulary {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		lower := strings.ToLower(term)
		p, s := matchr.DoubleMetaphone(lower)
		c.vocab = append(c.vocab, vocabEntry{
			canonical: term,
			lower:     lower,
			primary:   p,
			secondary: s,
		})
		c.canonical[lower] = term
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Correct returns text with vocabulary terms repaired, plus the list of
// substitutions made. Punctuation attached to a token survives the
// replacement.
func (c *Corrector) Correct(text string) (string, []Correction) {
	if text == "" || len(c.vocab) == 0 {
		return text, nil
	}

	fields := strings.Fields(text)
	var corrections []Correction
	changed := false

	for i, field := range fields {
		core, leading, trailing := trimPunct(field)
		if len(core) < minWordLen {
			continue
		}
		lower := strings.ToLower(core)
		if canon, ok := c.canonical[lower]; ok {
			// Right term, wrong casing: restore the canonical spelling.
			if core != canon {
				fields[i] = leading + canon + trailing
				corrections = append(corrections, Correction{
					Original: core, Corrected: canon, Confidence: 1,
				})
				changed = true
			}
			continue
		}

		term, score, ok := c.match(lower)
		if !ok {
			continue
		}
		fields[i] = leading + term + trailing
		corrections = append(corrections, Correction{
			Original:   core,
			Corrected:  term,
			Confidence: score,
		})
		changed = true
	}

	if !changed {
		return text, nil
	}
	return strings.Join(fields, " "), corrections
}

// match finds the best vocabulary term for one lowercased word.
func (c *Corrector) match(word string) (term string, score float64, ok bool) {
	p, s := matchr.DoubleMetaphone(word)

	var bestScore float64
	var bestTerm string
	bestPhonetic := false

	for _, v := range c.vocab {
		phonetic := codesOverlap(p, s, v.primary, v.secondary)
		jw := matchr.JaroWinkler(word, v.lower, false)

		switch {
		case phonetic && jw >= c.phoneticThreshold:
			if !bestPhonetic || jw > bestScore {
				bestTerm, bestScore, bestPhonetic = v.canonical, jw, true
			}
		case !phonetic && !bestPhonetic && jw >= c.fuzzyThreshold && jw > bestScore:
			bestTerm, bestScore = v.canonical, jw
		}
	}

	if bestTerm == "" {
		return "", 0, false
	}
	return bestTerm, bestScore, true
}

// codesOverlap reports whether any nonempty metaphone code is shared.
func codesOverlap(p1, s1, p2, s2 string) bool {
	for _, a := range []string{p1, s1} {
		if a == "" {
			continue
		}
		if a == p2 || (s2 != "" && a == s2) {
			return true
		}
	}
	return false
}

// trimPunct splits a token into leading punctuation, the word core, and
// trailing punctuation.
func trimPunct(token string) (core, leading, trailing string) {
	start := 0
	for start < len(token) && !isWordByte(token[start]) {
		start++
	}
	end := len(token)
	for end > start && !isWordByte(token[end-1]) {
		end--
	}
	return token[start:end], token[:start], token[end:]
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
