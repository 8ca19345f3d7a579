// Package extractor turns a captured document into a trip record by
// dispatching it through the parser registry and merging the results.
// This package is database-agnostic and can be used with any storage backend.
package extractor

import (
	"encoding/json"
	"errors"
	"strings"

	"faredrop/internal/patterns"
	"faredrop/internal/registry"
	"faredrop/internal/trip"
)

var (
	// ErrNoDocument is returned for a nil document. Caller misuse, not an
	// extraction failure.
	ErrNoDocument = errors.New("extractor: no document")
	// ErrUnknownKind is returned for a document kind the extractor does
	// not know. Caller misuse, not an extraction failure.
	ErrUnknownKind = errors.New("extractor: unknown document kind")
)

// Route source ranks, ascending trust. A field set by a higher-ranked
// source is never overwritten by a lower-ranked one. The beacon is a
// structured side channel and outranks any pair scanned out of body text,
// where codeshare and marketing copy produce stray matches.
const (
	rankNone = iota
	rankFullRoute // explicit IATA-IATA pair scanned from body text
	rankBeacon    // beacon query variables
	rankSegments  // endpoints of the assembled segment chain
	rankDisplay   // the page's own route summary block
)

// merged tracks which source supplied each contested field.
type merged struct {
	originRank int
	destRank   int

	hasVisibleLegs  bool
	hasBeacon       bool
	hasFlightNumber bool
}

// Extract runs a document through the registered parsers and builds the
// trip record. It is pure and synchronous: same document in, same record
// out, no retained state. The only errors are caller misuse; a document
// that yields nothing produces a record with unknown (or low) confidence,
// not an error.
func Extract(doc *trip.Document) (*trip.Record, error) {
	return ExtractWith(registry.Default(), doc)
}

// ExtractWith is Extract against an explicit registry, for tests that
// need an isolated parser set.
func ExtractWith(reg *registry.Registry, doc *trip.Document) (*trip.Record, error) {
	if doc == nil {
		return nil, ErrNoDocument
	}
	if doc.Kind != trip.KindHTML && doc.Kind != trip.KindText {
		return nil, ErrUnknownKind
	}

	reg.Sort()
	results := reg.Dispatch(doc)

	record := &trip.Record{
		TripID:  doc.TripID,
		Airline: doc.Airline,
	}

	state := &merged{}
	for _, result := range results {
		extractFromResult(record, state, result)
	}

	deriveFromSegments(record, state)
	classify(record, doc.Kind, state)

	return record, nil
}

// extractFromResult merges one parse result into the record. Results are
// visited in parser priority order, so for uncontested fields the first
// non-empty value wins; route endpoints additionally honour source rank.
func extractFromResult(record *trip.Record, state *merged, result registry.Result) {
	// Convert result to a map for generic field access.
	b, err := json.Marshal(result)
	if err != nil {
		return
	}

	var m map[string]interface{}
	if json.Unmarshal(b, &m) != nil {
		return
	}

	if v, ok := m["airline"].(string); ok && v != "" && record.Airline == "" {
		record.Airline = strings.ToUpper(v)
	}
	if v, ok := m["record_locator"].(string); ok && v != "" && record.RecordLocator == "" {
		record.RecordLocator = strings.ToUpper(v)
	}
	if v, ok := m["first_name"].(string); ok && v != "" && record.FirstName == "" {
		record.FirstName = v
	}
	if v, ok := m["last_name"].(string); ok && v != "" && record.LastName == "" {
		record.LastName = v
	}
	if v, ok := m["fare_brand"].(string); ok && v != "" && record.FareBrand == "" {
		record.FareBrand = v
	}
	if v, ok := m["ticket_number"].(string); ok && v != "" && record.TicketNumber == "" {
		record.TicketNumber = v
	}

	// Route summary block: the page's own statement of the trip.
	if v, ok := m["route_origin"].(string); ok && v != "" && state.originRank < rankDisplay {
		record.OriginIATA = v
		state.originRank = rankDisplay
	}
	if v, ok := m["route_destination"].(string); ok && v != "" && state.destRank < rankDisplay {
		record.DestinationIATA = v
		state.destRank = rankDisplay
	}

	// Explicit IATA-IATA pair in body text.
	if v, ok := m["full_route"].(string); ok && v != "" {
		if o, d, ok := splitRoute(v); ok {
			if state.originRank < rankFullRoute {
				record.OriginIATA = o
				state.originRank = rankFullRoute
			}
			if state.destRank < rankFullRoute {
				record.DestinationIATA = d
				state.destRank = rankFullRoute
			}
		}
	}

	// Beacon variables.
	if v, ok := m["origin"].(string); ok && v != "" && state.originRank < rankBeacon {
		record.OriginIATA = v
		state.originRank = rankBeacon
	}
	if v, ok := m["destination"].(string); ok && v != "" && state.destRank < rankBeacon {
		record.DestinationIATA = v
		state.destRank = rankBeacon
	}

	if v, ok := m["departure_date"].(string); ok && v != "" && record.DepartureDate == "" {
		record.DepartureDate = v
	}
	if v, ok := m["return_date"].(string); ok && v != "" && record.ReturnDate == "" {
		record.ReturnDate = v
	}

	if segs := decodeSegments(m["segments"]); len(segs) > 0 && len(record.Segments) == 0 {
		record.Segments = segs
	}

	if v, ok := m["visible_legs"].(bool); ok && v {
		state.hasVisibleLegs = true
	}
	if v, ok := m["beacon_matched"].(bool); ok && v {
		state.hasBeacon = true
	}
	if v, ok := m["flight_number"].(string); ok && v != "" {
		state.hasFlightNumber = true
	}
}

// deriveFromSegments fills route endpoints and dates from the assembled
// segment chain when no stronger source supplied them.
func deriveFromSegments(record *trip.Record, state *merged) {
	if len(record.Segments) == 0 {
		return
	}

	first := record.Segments[0]
	last := record.Segments[len(record.Segments)-1]

	if state.originRank < rankSegments && first.DepartAirport != "" {
		record.OriginIATA = first.DepartAirport
		state.originRank = rankSegments
	}

	dest := last.ArriveAirport
	if len(record.Segments) > 1 && first.DepartAirport == last.ArriveAirport {
		// A chain ending where it started is a round trip; the
		// destination is the turnaround point, not the final arrival.
		dest = turnaround(record.Segments)
	}
	if state.destRank < rankSegments && dest != "" {
		record.DestinationIATA = dest
		state.destRank = rankSegments
	}

	if record.DepartureDate == "" && first.DepartureTime != nil {
		record.DepartureDate = patterns.ISODate(*first.DepartureTime)
	}
	if record.ReturnDate == "" && last.DepartureTime != nil && len(record.Segments) > 1 {
		d := patterns.ISODate(*last.DepartureTime)
		if d != record.DepartureDate {
			record.ReturnDate = d
		}
	}
}

// turnaround picks the round trip's destination: the arrival before the
// longest ground gap in the chain, falling back to the midpoint arrival
// when timestamps are missing.
func turnaround(segs []trip.Segment) string {
	best := len(segs)/2 - 1
	if best < 0 {
		best = 0
	}

	var bestGap float64
	for i := 0; i < len(segs)-1; i++ {
		if segs[i].ArrivalTime == nil || segs[i+1].DepartureTime == nil {
			continue
		}
		gap := segs[i+1].DepartureTime.Sub(*segs[i].ArrivalTime).Hours()
		if gap > bestGap {
			bestGap = gap
			best = i
		}
	}
	return segs[best].ArriveAirport
}

// splitRoute parses "LGA-TQO" style route strings.
func splitRoute(s string) (origin, destination string, ok bool) {
	parts := strings.SplitN(strings.ToUpper(s), "-", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	o, d := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if !patterns.IsLikelyIATA(o) || !patterns.IsLikelyIATA(d) {
		return "", "", false
	}
	return o, d, true
}

// decodeSegments rebuilds typed segments from the JSON map projection.
func decodeSegments(v interface{}) []trip.Segment {
	raw, ok := v.([]interface{})
	if !ok || len(raw) == 0 {
		return nil
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil
	}
	var segs []trip.Segment
	if json.Unmarshal(b, &segs) != nil {
		return nil
	}
	return segs
}
