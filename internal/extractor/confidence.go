package extractor

import (
	"strings"

	"faredrop/internal/trip"
)

// classify assigns the confidence tier. The two document kinds use
// different vocabularies: markup documents grade how precisely the booked
// flight was identified, pastes grade how complete the scraped identity is.
func classify(record *trip.Record, kind trip.Kind, state *merged) {
	switch kind {
	case trip.KindHTML:
		classifyHTML(record, state)
	case trip.KindText:
		classifyText(record)
	}
}

func classifyHTML(record *trip.Record, state *merged) {
	switch {
	case state.hasVisibleLegs && len(record.Segments) > 0:
		// Flight-number-level match: fares can be compared against the
		// exact booked flight.
		record.Confidence = trip.ConfidenceExactFlight
	case state.hasFlightNumber:
		// A bare flight number in visible text pins the booking to a
		// specific flight even without a full leg line.
		record.Confidence = trip.ConfidenceExactFlight
	case record.HasRoute() && record.DepartureDate != "":
		// Route and date only, typically beacon-sourced. Good enough for
		// a route-level fare estimate.
		record.Confidence = trip.ConfidenceRouteEstimate
	default:
		record.Confidence = trip.ConfidenceUnknown
	}
}

func classifyText(record *trip.Record) {
	hasLocator := record.RecordLocator != ""
	hasSurname := record.LastName != ""
	hasSegment := len(record.Segments) > 0

	switch {
	case hasLocator && hasSurname && hasSegment:
		record.Confidence = trip.ConfidenceHigh
	case hasLocator && hasSurname:
		record.Confidence = trip.ConfidenceMedium
	default:
		record.Confidence = trip.ConfidenceLow
		record.Note = lowNote(hasLocator, hasSurname, hasSegment, record.HasRoute())
	}
}

// lowNote names what kept a paste below medium confidence. Low-confidence
// records always carry a non-empty note.
func lowNote(hasLocator, hasSurname, hasSegment, hasRoute bool) string {
	var missing []string
	if !hasLocator {
		missing = append(missing, "record locator")
	}
	if !hasSurname {
		missing = append(missing, "passenger surname")
	}
	if !hasSegment {
		missing = append(missing, "flight segment")
	}

	note := "missing " + strings.Join(missing, ", ")
	if hasRoute {
		note += "; route matched from text"
	}
	return note
}
