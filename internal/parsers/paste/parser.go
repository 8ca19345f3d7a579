// Package paste parses freeform pasted itinerary text: forwarded emails,
// copied app screens, chat snippets. It is registered both for text
// documents and as the catch-all for markup nothing else could read.
package paste

import (
	"time"

	"faredrop/internal/assemble"
	"faredrop/internal/extract"
	"faredrop/internal/htmldoc"
	"faredrop/internal/patterns"
	"faredrop/internal/registry"
	"faredrop/internal/trip"
)

// Result represents trip data scraped from freeform text.
type Result struct {
	ID            string         `json:"trip_id,omitempty"`
	Airline       string         `json:"airline,omitempty"`
	RecordLocator string         `json:"record_locator,omitempty"`
	FirstName     string         `json:"first_name,omitempty"`
	LastName      string         `json:"last_name,omitempty"`
	FareBrand     string         `json:"fare_brand,omitempty"`
	TicketNumber  string         `json:"ticket_number,omitempty"`
	FullRoute     string         `json:"full_route,omitempty"`
	DepartureDate string         `json:"departure_date,omitempty"`
	Segments      []trip.Segment `json:"segments,omitempty"`
	VisibleLegs   bool           `json:"visible_legs"`
}

func (r *Result) Type() string   { return "paste" }
func (r *Result) TripID() string { return r.ID }

// Parser parses freeform pasted text.
type Parser struct{}

func init() {
	registry.Register(&Parser{})
	registry.RegisterCatchAll(&Parser{})
}

func (p *Parser) Name() string       { return "paste" }
func (p *Parser) Kinds() []trip.Kind { return []trip.Kind{trip.KindText} }
func (p *Parser) Priority() int      { return 30 }

// QuickCheck always passes: pasted text has no reliable marker, and the
// extractors themselves are the check.
func (p *Parser) QuickCheck(text string) bool { return text != "" }

func (p *Parser) Parse(doc *trip.Document) registry.Result {
	if doc.Body == "" {
		return nil
	}

	// Pastes are usually plain text already; running them through the
	// normalizer is a no-op then, and strips tags when this parser runs
	// as the catch-all for unrecognised markup.
	text := htmldoc.Normalize(doc.Body)
	lines := htmldoc.Lines(doc.Body)

	result := &Result{
		ID:      doc.TripID,
		Airline: doc.Airline,
	}

	if loc, ok := extract.RecordLocator(text); ok {
		result.RecordLocator = loc
	}
	if first, last, ok := extract.PassengerName(lines); ok {
		result.FirstName = first
		result.LastName = last
	}
	if brand, ok := extract.FareBrand(text); ok {
		result.FareBrand = brand
	}
	if tkt, ok := extract.TicketNumber(text, doc.Airline); ok {
		result.TicketNumber = tkt
	}
	if o, d, ok := extract.RoutePair(text); ok {
		result.FullRoute = o + "-" + d
	}

	if dates := patterns.FindISODates(text); len(dates) > 0 {
		result.DepartureDate = dates[0]
	}

	legs := extract.Legs(lines, doc.Airline)
	if len(legs) > 0 {
		result.VisibleLegs = true
		result.Segments = assemble.Segments(lines, legs, dateContext(result.DepartureDate))
	}

	// A paste with nothing recognisable is not a parse.
	if result.RecordLocator == "" && result.LastName == "" && len(result.Segments) == 0 &&
		result.FullRoute == "" {
		return nil
	}

	return result
}

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
