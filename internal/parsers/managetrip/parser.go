// Package managetrip parses airline "manage my trip" pages, where the
// analytics beacon carries the trip fields and the visible markup carries
// the flight legs.
package managetrip

import (
	"strings"
	"time"

	"faredrop/internal/airlines"
	"faredrop/internal/assemble"
	"faredrop/internal/beacon"
	"faredrop/internal/extract"
	"faredrop/internal/htmldoc"
	"faredrop/internal/registry"
	"faredrop/internal/trip"
)

// Result represents trip data parsed from a manage-trip page.
type Result struct {
	ID            string         `json:"trip_id,omitempty"`
	Airline       string         `json:"airline,omitempty"`
	RecordLocator string         `json:"record_locator,omitempty"`
	Origin        string         `json:"origin,omitempty"`
	Destination   string         `json:"destination,omitempty"`
	DepartureDate string         `json:"departure_date,omitempty"`
	ReturnDate    string         `json:"return_date,omitempty"`
	FlightNumber  string         `json:"flight_number,omitempty"` // bare flight reference in visible text
	Segments      []trip.Segment `json:"segments,omitempty"`
	BeaconMatched bool           `json:"beacon_matched"`
	VisibleLegs   bool           `json:"visible_legs"`
}

func (r *Result) Type() string   { return "managetrip" }
func (r *Result) TripID() string { return r.ID }

// Parser parses manage-trip pages.
type Parser struct{}

func init() {
	registry.Register(&Parser{})
}

func (p *Parser) Name() string      { return "managetrip" }
func (p *Parser) Kinds() []trip.Kind { return []trip.Kind{trip.KindHTML} }
func (p *Parser) Priority() int     { return 10 }

// QuickCheck looks for a known tracking host before any markup work.
func (p *Parser) QuickCheck(text string) bool {
	for _, cfg := range airlines.All() {
		if strings.Contains(text, cfg.BeaconHost) {
			return true
		}
	}
	return false
}

func (p *Parser) Parse(doc *trip.Document) registry.Result {
	if doc.Body == "" {
		return nil
	}

	params, hasBeacon := beacon.Read(doc.Body, doc.Airline)

	result := &Result{
		ID:            doc.TripID,
		Airline:       doc.Airline,
		BeaconMatched: hasBeacon,
	}
	if hasBeacon {
		result.Airline = params.Airline
		result.RecordLocator = params.RecordLocator
		result.Origin = params.Origin
		result.Destination = params.Destination
		result.DepartureDate = params.DepartDate
		result.ReturnDate = params.ReturnDate
	}

	// Visible legs back the beacon route with concrete flights.
	lines := htmldoc.Lines(doc.Body)
	legs := extract.Legs(lines, result.Airline)
	if len(legs) > 0 {
		result.VisibleLegs = true
		result.Segments = assemble.Segments(lines, legs, dateContext(result.DepartureDate))
	}

	// A flight number in running text, without an airport pair, still pins
	// the booking to a specific flight.
	if fn, ok := extract.FlightNumber(htmldoc.Normalize(doc.Body), result.Airline); ok {
		result.FlightNumber = fn
	}

	if !hasBeacon && len(legs) == 0 {
		return nil
	}
	return result
}

// dateContext turns the beacon departure date into a year source for
// timestamps printed without one.
func dateContext(isoDate string) time.Time {
	if isoDate == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", isoDate)
	if err != nil {
		return time.Time{}
	}
	return t
}
