package paste

import (
	"testing"

	"faredrop/internal/trip"
)

func TestParser_Parse(t *testing.T) {
	parser := &Parser{}

	text := `Fwd: Your flight is booked!
Confirmation code: GO7RLB
Passenger: SMITH/JOHN
Basic Economy
DL 342 LGA - TQO
Mar 31, 2026 7:15 AM - Mar 31, 2026 11:40 AM
Ticket: 0062345678901`

	doc := &trip.Document{TripID: "trip-1", Airline: "DL", Kind: trip.KindText, Body: text}
	result := parser.Parse(doc)
	if result == nil {
		t.Fatal("expected result, got nil")
	}

	pr, ok := result.(*Result)
	if !ok {
		t.Fatalf("expected *Result, got %T", result)
	}

	if pr.RecordLocator != "GO7RLB" {
		t.Errorf("RecordLocator = %q, want %q", pr.RecordLocator, "GO7RLB")
	}
	if pr.FirstName != "JOHN" || pr.LastName != "SMITH" {
		t.Errorf("name = %q %q, want JOHN SMITH", pr.FirstName, pr.LastName)
	}
	if pr.FareBrand != "Basic Economy" {
		t.Errorf("FareBrand = %q", pr.FareBrand)
	}
	if pr.TicketNumber != "0062345678901" {
		t.Errorf("TicketNumber = %q", pr.TicketNumber)
	}
	if !pr.VisibleLegs || len(pr.Segments) != 1 {
		t.Fatalf("segments = %+v", pr.Segments)
	}
	if pr.Segments[0].DepartAirport != "LGA" || pr.Segments[0].ArriveAirport != "TQO" {
		t.Errorf("segment = %+v", pr.Segments[0])
	}
	if pr.Segments[0].DepartureTime == nil || pr.Segments[0].ArrivalTime == nil {
		t.Errorf("segment missing times: %+v", pr.Segments[0])
	}
}

func TestParser_Parse_SparsePaste(t *testing.T) {
	parser := &Parser{}

	text := `Flying out to see family next month, booking ref GO7RLB under SMITH`
	doc := &trip.Document{TripID: "trip-2", Kind: trip.KindText, Body: text}

	pr := parser.Parse(doc).(*Result)
	if pr.RecordLocator != "GO7RLB" {
		t.Errorf("RecordLocator = %q", pr.RecordLocator)
	}
	if pr.LastName != "SMITH" || pr.FirstName != "" {
		t.Errorf("name = %q %q, want surname only", pr.FirstName, pr.LastName)
	}
	if pr.VisibleLegs || len(pr.Segments) != 0 {
		t.Errorf("no segments expected: %+v", pr.Segments)
	}
}

func TestParser_Parse_RouteOnly(t *testing.T) {
	parser := &Parser{}

	text := `Can you price JFK -> LAX for me? Leaving 2026-05-02.`
	doc := &trip.Document{TripID: "trip-3", Kind: trip.KindText, Body: text}

	pr := parser.Parse(doc).(*Result)
	if pr.FullRoute != "JFK-LAX" {
		t.Errorf("FullRoute = %q, want JFK-LAX", pr.FullRoute)
	}
	if pr.DepartureDate != "2026-05-02" {
		t.Errorf("DepartureDate = %q", pr.DepartureDate)
	}
}

func TestParser_Parse_NothingRecognised(t *testing.T) {
	parser := &Parser{}

	doc := &trip.Document{TripID: "trip-4", Kind: trip.KindText, Body: "see you at dinner tomorrow"}
	if result := parser.Parse(doc); result != nil {
		t.Errorf("expected nil, got %+v", result)
	}
}

func TestParser_Parse_StripsLeftoverMarkup(t *testing.T) {
	parser := &Parser{}

	// As the catch-all the parser sees raw markup from pages no
	// kind-specific parser recognised.
	body := `<html><body><p>Ref: XK93PQ</p><p>Passenger name: Jane Doe</p></body></html>`
	doc := &trip.Document{TripID: "trip-5", Kind: trip.KindHTML, Body: body}

	pr := parser.Parse(doc).(*Result)
	if pr.RecordLocator != "XK93PQ" {
		t.Errorf("RecordLocator = %q", pr.RecordLocator)
	}
	if pr.FirstName != "Jane" || pr.LastName != "Doe" {
		t.Errorf("name = %q %q", pr.FirstName, pr.LastName)
	}
}
