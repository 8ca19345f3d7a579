package managetrip

import (
	"testing"

	"faredrop/internal/trip"
)

const deltaManagePage = `<html><head>
<script src="https://smetrics.delta.com/b/ss/dlprod/1/H.27/s91?v20=LGA&amp;v21=TQO&amp;v22=03/31/2026&amp;v23=04/07/2026&amp;v24=GO7RLB"></script>
</head><body>
<h1>Manage my trip</h1>
<div>DL 342 LGA - TQO</div>
<div>Departs Mar 31, 2026 7:15 AM</div>
<div>Arrives Mar 31, 2026 11:40 AM</div>
<div>DL 89 TQO - LGA</div>
<div>Departs Apr 7, 2026 1:30 PM</div>
</body></html>`

func TestParser_Parse(t *testing.T) {
	parser := &Parser{}

	doc := &trip.Document{TripID: "trip-1", Airline: "DL", Kind: trip.KindHTML, Body: deltaManagePage}
	result := parser.Parse(doc)
	if result == nil {
		t.Fatal("expected result, got nil")
	}

	pr, ok := result.(*Result)
	if !ok {
		t.Fatalf("expected *Result, got %T", result)
	}

	if !pr.BeaconMatched {
		t.Error("BeaconMatched should be true")
	}
	if pr.RecordLocator != "GO7RLB" {
		t.Errorf("RecordLocator = %q, want %q", pr.RecordLocator, "GO7RLB")
	}
	if pr.Origin != "LGA" || pr.Destination != "TQO" {
		t.Errorf("route = %s-%s, want LGA-TQO", pr.Origin, pr.Destination)
	}
	if pr.DepartureDate != "2026-03-31" {
		t.Errorf("DepartureDate = %q", pr.DepartureDate)
	}
	if pr.ReturnDate != "2026-04-07" {
		t.Errorf("ReturnDate = %q", pr.ReturnDate)
	}
	if !pr.VisibleLegs {
		t.Error("VisibleLegs should be true")
	}
	if len(pr.Segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(pr.Segments))
	}
	if pr.Segments[0].FlightNumber != "342" || pr.Segments[0].DepartAirport != "LGA" {
		t.Errorf("segment 0 = %+v", pr.Segments[0])
	}
	if pr.Segments[0].DepartureTime == nil || pr.Segments[0].ArrivalTime == nil {
		t.Errorf("segment 0 missing times: %+v", pr.Segments[0])
	}
	if pr.Segments[1].FlightNumber != "89" || pr.Segments[1].ArriveAirport != "LGA" {
		t.Errorf("segment 1 = %+v", pr.Segments[1])
	}
}

func TestParser_Parse_FlightNumberInText(t *testing.T) {
	parser := &Parser{}

	page := `<html><head>
<script src="https://smetrics.delta.com/b/ss/dlprod/1/H.27/s91?v20=LGA&amp;v21=TQO&amp;v22=03/31/2026&amp;v24=GO7RLB"></script>
</head><body>
<p>Your flight DL342 is confirmed.</p>
</body></html>`
	result := parser.Parse(&trip.Document{TripID: "trip-6", Airline: "DL", Kind: trip.KindHTML, Body: page})
	if result == nil {
		t.Fatal("expected result, got nil")
	}
	pr := result.(*Result)
	if pr.FlightNumber != "DL342" {
		t.Errorf("FlightNumber = %q, want DL342", pr.FlightNumber)
	}
	// Running text carries no airport pair, so there are no legs to
	// assemble; the flight reference stands on its own.
	if pr.VisibleLegs || len(pr.Segments) != 0 {
		t.Errorf("unexpected legs: %+v", pr.Segments)
	}
}

func TestParser_Parse_BeaconOnly(t *testing.T) {
	parser := &Parser{}

	page := `<script src="https://smetrics.united.com/b/ss/u1?v20=SFO&amp;v21=ORD&amp;v22=05/02/2026"></script>`
	doc := &trip.Document{TripID: "trip-2", Kind: trip.KindHTML, Body: page}

	pr := parser.Parse(doc).(*Result)
	if pr.Airline != "UA" {
		t.Errorf("Airline = %q, want UA (inferred from host)", pr.Airline)
	}
	if pr.Origin != "SFO" || pr.Destination != "ORD" {
		t.Errorf("route = %s-%s", pr.Origin, pr.Destination)
	}
	if pr.VisibleLegs || len(pr.Segments) != 0 {
		t.Errorf("no visible legs expected: %+v", pr)
	}
}

func TestParser_Parse_NothingRecognised(t *testing.T) {
	parser := &Parser{}

	doc := &trip.Document{TripID: "trip-3", Kind: trip.KindHTML, Body: "<html><body>Hotel booking</body></html>"}
	if result := parser.Parse(doc); result != nil {
		t.Errorf("expected nil, got %+v", result)
	}
}

func TestParser_QuickCheck(t *testing.T) {
	parser := &Parser{}

	if !parser.QuickCheck(deltaManagePage) {
		t.Error("QuickCheck should pass on a page with a known tracking host")
	}
	if parser.QuickCheck("<html><body>no beacons here</body></html>") {
		t.Error("QuickCheck should fail without a tracking host")
	}
}
