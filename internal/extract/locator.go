// Package extract provides the per-field extractors. Each extractor is a
// pure function over normalized text plus an optional airline hint, and
// each treats absence as an expected outcome, never an error.
package extract

import (
	"regexp"

	"faredrop/internal/patterns"
)

// ticketRunRe matches a full 13-digit ticket-number run. A candidate whose
// context window holds one is a ticket fragment, whatever the label says.
var ticketRunRe = regexp.MustCompile(`\b\d{13}\b`)

// RecordLocator scans text for a 6-character record locator. Candidates
// are inspected with a ±20 character context window; anything sitting in
// ticket-number context (TICKET/ETKT/TKT followed by digits) is rejected,
// as are all-digit runs and blocklisted itinerary words. The first
// surviving candidate in document order wins.
func RecordLocator(text string) (string, bool) {
	// A labelled locator is trusted directly.
	if m := patterns.PNRLabeledPattern.FindStringSubmatch(text); len(m) > 1 {
		if !allDigits(m[1]) {
			return m[1], true
		}
	}

	for _, loc := range patterns.PNRPattern.FindAllStringIndex(text, -1) {
		cand := text[loc[0]:loc[1]]
		if allDigits(cand) {
			// Bare digit runs are prices, times, or ticket fragments.
			continue
		}
		if patterns.PNRWordBlocklist[cand] {
			continue
		}
		ctx := patterns.ContextWindow(text, loc[0], loc[1], 20)
		if patterns.TicketContextPattern.MatchString(ctx) || ticketRunRe.MatchString(ctx) {
			continue
		}
		return cand, true
	}

	return "", false
}

func allDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}
