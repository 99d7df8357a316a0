package prompt

import (
	"strconv"
	"strings"
)

// StripMarkdown removes the markdown decoration some models wrap around
// structured output: code fences (```json ... ```) and bold/italic
// emphasis markers, so "**KEY**: value" lines parse like "KEY: value".
func StripMarkdown(s string) string {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"```json", "```"} {
		if after, ok := strings.CutPrefix(s, prefix); ok {
			s = after
			break
		}
	}
	if before, ok := strings.CutSuffix(s, "```"); ok {
		s = before
	}
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "*", "")
	return strings.TrimSpace(s)
}

// Field returns the value of a "KEY: value" line when the line carries
// the given key. The key match is exact; the value is trimmed.
func Field(line, key string) (string, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(line), key+":")
	if !ok {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

// SplitPipes splits a pipe-separated list, trimming items and dropping
// empties and the NONE marker.
func SplitPipes(s string) []string {
	var out []string
	for _, part := range strings.Split(s, "|") {
		part = strings.TrimSpace(part)
		if part == "" || strings.EqualFold(part, "NONE") {
			continue
		}
		out = append(out, part)
	}
	return out
}

// YesNo reports whether a value means yes. Anything that does not
// contain YES counts as no.
func YesNo(s string) bool {
	return strings.Contains(strings.ToUpper(s), "YES")
}

// IntInRange parses an integer and clamps it to [lo, hi]. Unparseable
// input returns def. Values like "85/100" or "85 out of 100" parse their
// leading integer.
func IntInRange(s string, lo, hi, def int) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || (end == 0 && s[end] == '-')) {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return def
	}
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// IsNone reports whether a field value is empty or the NONE marker.
func IsNone(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, "NONE")
}
