// Package trip provides the document and trip record types shared by all
// extraction stages.
package trip

import (
	"time"
)

// Kind identifies the flavour of a captured document.
type Kind string

const (
	// KindHTML is an airline "manage trip" results page or confirmation
	// page captured as raw markup.
	KindHTML Kind = "html"
	// KindText is a freeform pasted confirmation (email body, plain text).
	KindText Kind = "text"
)

// Confidence labels the quality of an extraction result.
//
// HTML/beacon documents use the exact-flight / route-estimate / unknown
// vocabulary; freeform pastes use high / medium / low. Both are carried by
// the same type so callers can store them in one column.
type Confidence string

const (
	// ConfidenceExactFlight means a flight-number-level match was found in
	// visible text, so the fare comparison can be made against the exact
	// booked flight.
	ConfidenceExactFlight Confidence = "exact-flight"
	// ConfidenceRouteEstimate means only origin/destination/date were
	// recovered (typically beacon-sourced); the fare comparison is an
	// estimate for the route, not the booked flight.
	ConfidenceRouteEstimate Confidence = "route-estimate"
	// ConfidenceUnknown means neither route nor flight data was recovered.
	ConfidenceUnknown Confidence = "unknown"

	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Document is the opaque extraction input: captured markup or pasted text
// plus an optional airline hint. It is consumed once per extraction call
// and never mutated.
//
// Documents arrive either directly (CLI, library callers) or wrapped in a
// capture feed envelope; see Envelope.
type Document struct {
	TripID  string `json:"trip_id,omitempty"`
	Airline string `json:"airline,omitempty"` // 2-letter IATA carrier hint, "" = unknown.
	Kind    Kind   `json:"kind"`
	Body    string `json:"body"`
}

// Envelope is the capture feed message format where the document is nested
// under "document" with capture metadata at the top level.
type Envelope struct {
	Source     *Source   `json:"source,omitempty"`
	CapturedAt string    `json:"captured_at,omitempty"`
	Document   *Document `json:"document,omitempty"`
}

// Source identifies the capture agent that produced a document.
type Source struct {
	Name        string `json:"name,omitempty"`
	Application string `json:"application,omitempty"`
}

// ToDocument unwraps an envelope into a plain Document.
func (e *Envelope) ToDocument() *Document {
	if e.Document == nil {
		return nil
	}
	return e.Document
}

// Segment is one flight leg in travel order.
//
// Segments are emitted in document order and are not deduplicated here;
// the persistence layer deletes-and-reinserts per trip, so duplicate
// handling belongs to the caller.
type Segment struct {
	Index         int        `json:"index"`
	Carrier       string     `json:"carrier"`                  // 2-letter IATA code.
	FlightNumber  string     `json:"flight_number"`            // digits, optional trailing letter.
	DepartAirport string     `json:"depart_airport"`           // 3-letter IATA.
	ArriveAirport string     `json:"arrive_airport"`           // 3-letter IATA.
	DepartureTime *time.Time `json:"departure_time,omitempty"` // nil when undiscoverable.
	ArrivalTime   *time.Time `json:"arrival_time,omitempty"`   // nil when undiscoverable.
}

// Record is the sole extraction output. Every field except Confidence is
// optional; absence of a field is an expected outcome, not an error.
// A Record is built in full inside one extraction call and is immutable
// once handed to the caller.
type Record struct {
	TripID          string     `json:"trip_id,omitempty"`
	RecordLocator   string     `json:"record_locator,omitempty"` // 6 alphanumeric, uppercase.
	Airline         string     `json:"airline,omitempty"`
	FirstName       string     `json:"first_name,omitempty"`
	LastName        string     `json:"last_name,omitempty"`
	FareBrand       string     `json:"fare_brand,omitempty"`
	TicketNumber    string     `json:"ticket_number,omitempty"` // 13 digits, airline-prefix validated.
	Segments        []Segment  `json:"segments,omitempty"`
	OriginIATA      string     `json:"origin_iata,omitempty"`
	DestinationIATA string     `json:"destination_iata,omitempty"`
	DepartureDate   string     `json:"departure_date,omitempty"` // YYYY-MM-DD.
	ReturnDate      string     `json:"return_date,omitempty"`    // YYYY-MM-DD.
	Confidence      Confidence `json:"confidence"`
	Note            string     `json:"note,omitempty"` // populated when confidence is low.
}

// HasRoute reports whether both endpoints of the trip are known.
func (r *Record) HasRoute() bool {
	return r.OriginIATA != "" && r.DestinationIATA != ""
}

// MaskedLocator returns the record locator with all but the first two
// characters masked, for log output.
func (r *Record) MaskedLocator() string {
	if len(r.RecordLocator) < 6 {
		return ""
	}
	return r.RecordLocator[:2] + "****"
}
