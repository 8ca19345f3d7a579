// Package patterns provides shared regex patterns and helper functions for
// itinerary extraction.
package patterns

import (
	"regexp"
	"strings"
)

// Core patterns used across multiple extractors.
var (
	// PNRPattern matches record locator candidates: 6 uppercase alphanumerics.
	PNRPattern = regexp.MustCompile(`\b[A-Z0-9]{6}\b`)

	// PNRLabeledPattern matches record locators behind an explicit label,
	// e.g. "CONFIRMATION CODE: GO7RLB", "RECORD LOCATOR GO7RLB".
	PNRLabeledPattern = regexp.MustCompile(`(?i:CONFIRMATION|RECORD\s+LOCATOR|BOOKING\s+REF(?:ERENCE)?|PNR|CONF)\s*(?i:CODE|NO|NUMBER|#)?\s*[:.]?\s*([A-Z0-9]{6})\b`)

	// TicketContextPattern flags ticket-number context near a PNR candidate.
	// 13-digit ticket numbers shed plausible 6-character substrings; any
	// candidate whose surrounding text carries a ticket label is rejected.
	TicketContextPattern = regexp.MustCompile(`(?:TICKET|E-?TKT|ETKT|TKT)\s*(?:NO|NUM|NUMBER|#)?\s*[:.]?\s*\d`)

	// IATAPattern matches 3-letter IATA airport code candidates.
	IATAPattern = regexp.MustCompile(`\b[A-Z]{3}\b`)

	// RoutePairPattern matches IATA-IATA route text with dash or arrow
	// separators, e.g. "JFK-LAX", "LGA → TQO".
	RoutePairPattern = regexp.MustCompile(`\b([A-Z]{3})\s*[-–>→]+\s*([A-Z]{3})\b`)

	// FlightNumPattern matches a carrier code plus flight number,
	// e.g. "DL342", "AA 1234", "UA2021A".
	FlightNumPattern = regexp.MustCompile(`\b([A-Z]{2})\s?(\d{1,4}[A-Z]?)\b`)

	// LegLinePattern matches a flight number with an adjoining airport pair
	// on the same line, e.g. "AA 1234 JFK-LAX".
	LegLinePattern = regexp.MustCompile(`\b([A-Z]{2})\s?(\d{1,4}[A-Z]?)\b.*?\b([A-Z]{3})\s*[-–>→]+\s*([A-Z]{3})\b`)

	// NameLabelPattern matches "Passenger: John Smith" style lines.
	NameLabelPattern = regexp.MustCompile(`(?i)\b(?:passenger|traveler|traveller|name)\s*(?:name)?\s*:\s*([A-Za-z][A-Za-z .'-]+)`)

	// NameSlashPattern matches airline "LAST/FIRST" name formats.
	NameSlashPattern = regexp.MustCompile(`\b([A-Z]{2,})/([A-Z]{2,})\b`)

	// CapsTokenPattern matches all-caps tokens for the last-resort name scan.
	CapsTokenPattern = regexp.MustCompile(`\b[A-Z]{2,}\b`)
)

// IATABlocklist contains tokens that look like IATA airport codes but show
// up in itinerary text as ordinary words, currencies, or calendar
// abbreviations. Deliberately over-blocks a few minor real codes; a wrong
// route is worse than a missing one when the output feeds fare decisions.
var IATABlocklist = map[string]bool{
	// Common words.
	"AND": true, "THE": true, "FOR": true, "YOU": true, "ALL": true,
	"NOT": true, "NEW": true, "ONE": true, "TWO": true, "SIX": true,
	"TEN": true, "PER": true, "VIA": true, "ANY": true, "GET": true,
	"NOW": true, "OUR": true, "SEE": true, "USE": true, "WAY": true,
	"BAG": true, "FEE": true, "TAX": true, "WEB": true, "APP": true,
	"FAQ": true, "AIR": true, "JET": true, "ROW": true, "OFF": true,
	// Booking shorthand.
	"ETA": true, "ETD": true, "PNR": true, "TSA": true, "FAA": true,
	"STD": true, "STA": true, "REF": true, "DEP": true, "ARR": true,
	// Time zones and calendar abbreviations.
	"GMT": true, "UTC": true, "EST": true, "CST": true, "MST": true,
	"PST": true, "EDT": true, "CDT": true, "MDT": true, "PDT": true,
	"JAN": true, "FEB": true, "MAR": true, "APR": true, "MAY": true,
	"JUN": true, "JUL": true, "AUG": true, "SEP": true, "OCT": true,
	"NOV": true, "DEC": true,
	"MON": true, "TUE": true, "WED": true, "THU": true, "FRI": true,
	"SAT": true,
	// Currencies.
	"USD": true, "CAD": true, "EUR": true, "GBP": true, "AUD": true,
}

// IsLikelyIATA checks whether a candidate is a plausible IATA airport code:
// exactly 3 uppercase letters and not blocklisted. Non-conforming
// candidates are discarded, never coerced.
func IsLikelyIATA(code string) bool {
	if len(code) != 3 || !IATAPattern.MatchString(code) {
		return false
	}
	return !IATABlocklist[code]
}

// FareBrandVocabulary is the closed, ordered fare-brand vocabulary. Scan
// order is significant: the first entry present in the text wins, except
// that an occurrence embedded in a longer vocabulary entry (the "Economy"
// inside "Premium Economy") does not count as a match.
var FareBrandVocabulary = []string{
	"Basic Economy",
	"Main Cabin",
	"Economy",
	"Premium Economy",
	"Business",
	"First Class",
	"Saver",
	"Main",
	"First",
}

// MatchFareBrand returns the first vocabulary entry present in text,
// case-insensitive, or "" when none matches.
func MatchFareBrand(text string) string {
	upper := strings.ToUpper(text)

	type span struct{ start, end int }
	occurrences := make([][]span, len(FareBrandVocabulary))
	for i, entry := range FareBrandVocabulary {
		needle := strings.ToUpper(entry)
		from := 0
		for {
			idx := strings.Index(upper[from:], needle)
			if idx < 0 {
				break
			}
			start := from + idx
			occurrences[i] = append(occurrences[i], span{start, start + len(needle)})
			from = start + 1
		}
	}

	for i, entry := range FareBrandVocabulary {
		for _, s := range occurrences[i] {
			contained := false
			for j, other := range FareBrandVocabulary {
				if j == i || len(other) <= len(entry) {
					continue
				}
				for _, o := range occurrences[j] {
					if s.start >= o.start && s.end <= o.end {
						contained = true
						break
					}
				}
				if contained {
					break
				}
			}
			if !contained {
				return entry
			}
		}
	}
	return ""
}

// PNRWordBlocklist contains all-letter 6-character tokens that pass the
// record locator pattern but are ordinary itinerary words.
var PNRWordBlocklist = map[string]bool{
	"TRAVEL": true, "FLIGHT": true, "PLEASE": true, "CHANGE": true,
	"REFUND": true, "POLICY": true, "DETAIL": true, "REVIEW": true,
	"STATUS": true, "ONLINE": true, "MOBILE": true, "SELECT": true,
	"CREDIT": true, "TICKET": true, "RECORD": true, "NUMBER": true,
	"CANCEL": true, "RESEND": true, "UPDATE": true, "AMOUNT": true,
	"DOLLAR": true, "COUPON": true, "NOTICE": true, "THANKS": true,
}

// ContextWindow returns the ±n character window around [start,end) in text,
// clamped to the text bounds.
func ContextWindow(text string, start, end, n int) string {
	lo := start - n
	if lo < 0 {
		lo = 0
	}
	hi := end + n
	if hi > len(text) {
		hi = len(text)
	}
	return text[lo:hi]
}
