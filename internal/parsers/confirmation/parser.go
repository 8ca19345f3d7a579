// Package confirmation parses booking confirmation pages and e-ticket
// receipt emails rendered as HTML. Unlike manage-trip pages these carry
// the passenger and fare details in the visible markup, with no beacon.
package confirmation

import (
	"strings"
	"time"

	"faredrop/internal/assemble"
	"faredrop/internal/extract"
	"faredrop/internal/htmldoc"
	"faredrop/internal/patterns"
	"faredrop/internal/registry"
	"faredrop/internal/trip"
)

// routeSelectors are the markup classes airlines use for the route summary
// block, in the order they are tried.
var routeSelectors = []string{".route-display", ".trip-route", ".itinerary-route"}

// quickCheckWords gate the parser; one of these appears on every
// confirmation page we have seen.
var quickCheckWords = []string{"confirmation", "itinerary", "e-ticket", "eticket", "receipt"}

// Result represents trip data parsed from a confirmation page.
type Result struct {
	ID            string         `json:"trip_id,omitempty"`
	Airline       string         `json:"airline,omitempty"`
	RecordLocator string         `json:"record_locator,omitempty"`
	FirstName     string         `json:"first_name,omitempty"`
	LastName      string         `json:"last_name,omitempty"`
	FareBrand     string         `json:"fare_brand,omitempty"`
	TicketNumber  string         `json:"ticket_number,omitempty"`
	RouteOrigin   string         `json:"route_origin,omitempty"`      // from the route summary block
	RouteDest     string         `json:"route_destination,omitempty"` // from the route summary block
	FullRoute     string         `json:"full_route,omitempty"`        // first route pair in body text
	DepartureDate string         `json:"departure_date,omitempty"`
	ReturnDate    string         `json:"return_date,omitempty"`
	FlightNumber  string         `json:"flight_number,omitempty"` // bare flight reference in visible text
	Segments      []trip.Segment `json:"segments,omitempty"`
	VisibleLegs   bool           `json:"visible_legs"`
}

func (r *Result) Type() string   { return "confirmation" }
func (r *Result) TripID() string { return r.ID }

// Parser parses confirmation pages.
type Parser struct{}

func init() {
	registry.Register(&Parser{})
}

func (p *Parser) Name() string       { return "confirmation" }
func (p *Parser) Kinds() []trip.Kind { return []trip.Kind{trip.KindHTML} }
func (p *Parser) Priority() int      { return 20 }

func (p *Parser) QuickCheck(text string) bool {
	lower := strings.ToLower(text)
	for _, w := range quickCheckWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func (p *Parser) Parse(doc *trip.Document) registry.Result {
	if doc.Body == "" {
		return nil
	}

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

	// The route summary block is the page's own statement of the trip
	// and outranks anything inferred from the leg lines.
	for _, sel := range routeSelectors {
		for _, blk := range htmldoc.Active().SelectText(doc.Body, sel) {
			if m := patterns.RoutePairPattern.FindStringSubmatch(strings.ToUpper(blk)); len(m) > 2 &&
				patterns.IsLikelyIATA(m[1]) && patterns.IsLikelyIATA(m[2]) {
				result.RouteOrigin = m[1]
				result.RouteDest = m[2]
				break
			}
		}
		if result.RouteOrigin != "" {
			break
		}
	}

	if o, d, ok := extract.RoutePair(text); ok {
		result.FullRoute = o + "-" + d
	}

	// Discrete dates: first ISO date is the departure, a later distinct
	// one is the return.
	for _, d := range patterns.FindISODates(text) {
		if result.DepartureDate == "" {
			result.DepartureDate = d
		} else if d != result.DepartureDate {
			result.ReturnDate = d
			break
		}
	}

	legs := extract.Legs(lines, doc.Airline)
	if len(legs) > 0 {
		result.VisibleLegs = true
		result.Segments = assemble.Segments(lines, legs, dateContext(result.DepartureDate))
	}
	if fn, ok := extract.FlightNumber(text, doc.Airline); ok {
		result.FlightNumber = fn
	}

	// Must have some data beyond the trip identity.
	if result.RecordLocator == "" && result.LastName == "" && len(result.Segments) == 0 &&
		result.RouteOrigin == "" && result.FullRoute == "" && result.FlightNumber == "" {
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
