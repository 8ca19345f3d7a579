package extract

import (
	"regexp"
	"strings"

	"faredrop/internal/patterns"
)

// nameLabelWordRe decides whether a line is a name line at all.
var nameLabelWordRe = regexp.MustCompile(`(?i)\b(?:passenger|traveler|traveller|name)\b`)

// PassengerName scans lines for a labelled passenger name. Two formats are
// recognised on label lines: "Label: First Last" and airline "LAST/FIRST".
// When no label line exists it falls back to the first run of all-caps
// tokens anywhere in the text, treating the first two as LAST then FIRST
// (or a single token as last name only).
//
// The fallback is deliberately low precision: it can mis-split multi-word
// surnames and can pick up unrelated all-caps strings. That is an accepted
// heuristic limitation, covered by tests, not a bug to patch with more
// speculative rules.
func PassengerName(lines []string) (first, last string, ok bool) {
	for _, line := range lines {
		if !nameLabelWordRe.MatchString(line) {
			continue
		}

		// Slash format first: "Passenger: SMITH/JOHN" would otherwise be
		// truncated by the colon capture at the slash.
		if m := patterns.NameSlashPattern.FindStringSubmatch(line); len(m) > 2 {
			return m[2], m[1], true
		}
		if m := patterns.NameLabelPattern.FindStringSubmatch(line); len(m) > 1 {
			if f, l, ok := splitCapitalized(m[1]); ok {
				return f, l, true
			}
		}
	}

	// Last resort: all-caps token runs anywhere in the text.
	var toks []string
	for _, line := range lines {
		toks = append(toks, patterns.CapsTokenPattern.FindAllString(line, -1)...)
		if len(toks) >= 2 {
			break
		}
	}
	switch {
	case len(toks) >= 2:
		return toks[1], toks[0], true
	case len(toks) == 1:
		return "", toks[0], true
	}

	return "", "", false
}

// splitCapitalized takes "John Smith" style captures and splits them into
// first and last, requiring consecutive capitalized words.
func splitCapitalized(s string) (first, last string, ok bool) {
	var words []string
	for _, w := range strings.Fields(strings.TrimSpace(s)) {
		if w[0] < 'A' || w[0] > 'Z' {
			break
		}
		words = append(words, w)
	}
	switch {
	case len(words) >= 2:
		return words[0], strings.Join(words[1:], " "), true
	case len(words) == 1:
		return "", words[0], true
	}
	return "", "", false
}
