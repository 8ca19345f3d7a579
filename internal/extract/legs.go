package extract

import (
	"strings"

	"faredrop/internal/airlines"
	"faredrop/internal/patterns"
)

// LegMatch is one flight-number plus airport-pair hit on a single line,
// before timestamps are attached. LineIndex points back into the scanned
// lines so the segment assembler can search its forward window.
type LegMatch struct {
	LineIndex     int
	Carrier       string
	FlightNumber  string
	DepartAirport string
	ArriveAirport string
}

// Legs scans lines for flight legs. With a known airline hint the
// airline's own leg-line format is tried first; the generic pattern is the
// fallback so an unsupported carrier still degrades to best-effort
// matching instead of returning nothing.
func Legs(lines []string, airlineHint string) []LegMatch {
	if comp := airlines.LegCompiler(airlineHint); comp != nil {
		if legs := legsFromCompiler(lines, comp); len(legs) > 0 {
			return legs
		}
	}
	return legsGeneric(lines)
}

func legsFromCompiler(lines []string, comp *patterns.Compiler) []LegMatch {
	var legs []LegMatch
	for i, line := range lines {
		for _, m := range comp.FindAllMatches(line, "leg") {
			if !patterns.IsLikelyIATA(m["dep"]) || !patterns.IsLikelyIATA(m["arr"]) {
				continue
			}
			legs = append(legs, LegMatch{
				LineIndex:     i,
				Carrier:       m["carrier"],
				FlightNumber:  m["num"],
				DepartAirport: m["dep"],
				ArriveAirport: m["arr"],
			})
		}
	}
	return legs
}

// FlightNumber scans visible text for a bare carrier-plus-number flight
// reference, e.g. "DL342" in a sentence with no airport pair nearby. Two
// capitals before digits are common in prose, so a match counts only when
// the carrier is the document's airline hint or a supported carrier.
func FlightNumber(text, airlineHint string) (string, bool) {
	upper := strings.ToUpper(text)
	hint := strings.ToUpper(airlineHint)
	for _, m := range patterns.FlightNumPattern.FindAllStringSubmatch(upper, -1) {
		carrier := m[1]
		if carrier != hint {
			if _, ok := airlines.Lookup(carrier); !ok {
				continue
			}
		}
		return carrier + m[2], true
	}
	return "", false
}

func legsGeneric(lines []string) []LegMatch {
	var legs []LegMatch
	for i, line := range lines {
		upper := strings.ToUpper(line)
		for _, m := range patterns.LegLinePattern.FindAllStringSubmatch(upper, -1) {
			if !patterns.IsLikelyIATA(m[3]) || !patterns.IsLikelyIATA(m[4]) {
				continue
			}
			legs = append(legs, LegMatch{
				LineIndex:     i,
				Carrier:       m[1],
				FlightNumber:  m[2],
				DepartAirport: m[3],
				ArriveAirport: m[4],
			})
		}
	}
	return legs
}
