package extract

import (
	"regexp"

	"faredrop/internal/airlines"
	"faredrop/internal/patterns"
)

// FareBrand matches text against the closed fare-brand vocabulary.
func FareBrand(text string) (string, bool) {
	brand := patterns.MatchFareBrand(text)
	return brand, brand != ""
}

// thirteenDigitRe matches candidate ticket-number runs.
var thirteenDigitRe = regexp.MustCompile(`\b\d{13}\b`)

// TicketNumber finds a 13-digit ticket number whose 3-digit prefix matches
// the hinted airline's ticket stock. Unknown airlines yield absent; ticket
// numbers are airline-specific and a prefix cannot be validated without one.
func TicketNumber(text, airlineHint string) (string, bool) {
	cfg, ok := airlines.Lookup(airlineHint)
	if !ok || cfg.TicketPrefix == "" {
		return "", false
	}

	for _, cand := range thirteenDigitRe.FindAllString(text, -1) {
		if cand[:3] == cfg.TicketPrefix {
			return cand, true
		}
	}
	return "", false
}

// RoutePair finds an explicit IATA-IATA route in visible text. Both codes
// must pass IATA validation or the match is discarded.
func RoutePair(text string) (origin, destination string, ok bool) {
	for _, m := range patterns.RoutePairPattern.FindAllStringSubmatch(text, -1) {
		if patterns.IsLikelyIATA(m[1]) && patterns.IsLikelyIATA(m[2]) {
			return m[1], m[2], true
		}
	}
	return "", "", false
}
