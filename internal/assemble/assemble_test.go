package assemble

import (
	"testing"
	"time"

	"faredrop/internal/extract"
)

func mustTime(t *testing.T, iso string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04", iso)
	if err != nil {
		t.Fatal(err)
	}
	return ts
}

func TestSegments_PairsDepartureAndArrival(t *testing.T) {
	lines := []string{
		"Your upcoming trip",
		"DL 342 LGA - TQO",
		"Departs Mar 31, 2026 7:15 AM",
		"Arrives Mar 31, 2026 11:40 AM",
		"Seat 14C",
	}
	legs := []extract.LegMatch{{
		LineIndex:     1,
		Carrier:       "DL",
		FlightNumber:  "342",
		DepartAirport: "LGA",
		ArriveAirport: "TQO",
	}}

	segs := Segments(lines, legs, time.Time{})
	if len(segs) != 1 {
		t.Fatalf("got %d segments", len(segs))
	}
	s := segs[0]
	if s.Index != 0 || s.Carrier != "DL" || s.FlightNumber != "342" {
		t.Errorf("segment identity = %+v", s)
	}
	if s.DepartureTime == nil || !s.DepartureTime.Equal(mustTime(t, "2026-03-31 07:15")) {
		t.Errorf("DepartureTime = %v", s.DepartureTime)
	}
	if s.ArrivalTime == nil || !s.ArrivalTime.Equal(mustTime(t, "2026-03-31 11:40")) {
		t.Errorf("ArrivalTime = %v", s.ArrivalTime)
	}
}

func TestSegments_OvernightRollover(t *testing.T) {
	lines := []string{
		"UA 1424 SFO - BOS",
		"Mar 31, 2026 11:50 PM",
		"Mar 31, 2026 1:10 AM",
	}
	legs := []extract.LegMatch{{
		LineIndex:     0,
		Carrier:       "UA",
		FlightNumber:  "1424",
		DepartAirport: "SFO",
		ArriveAirport: "BOS",
	}}

	segs := Segments(lines, legs, time.Time{})
	if len(segs) != 1 || segs[0].ArrivalTime == nil {
		t.Fatalf("got %+v", segs)
	}
	// A red-eye arriving "before" it departs crossed midnight; the arrival
	// date advances one calendar day.
	want := mustTime(t, "2026-04-01 01:10")
	if !segs[0].ArrivalTime.Equal(want) {
		t.Errorf("ArrivalTime = %v, want %v", segs[0].ArrivalTime, want)
	}
}

func TestSegments_TimestampOutsideWindow(t *testing.T) {
	lines := []string{
		"AA 100 JFK - LAX",
		"Operated by American Airlines",
		"Seat assignments available at check-in",
		"Baggage allowance: 1 carry-on",
		"Apr 2, 2026 9:00 AM", // four lines down, past the window
	}
	legs := []extract.LegMatch{{LineIndex: 0, Carrier: "AA", FlightNumber: "100", DepartAirport: "JFK", ArriveAirport: "LAX"}}

	segs := Segments(lines, legs, time.Time{})
	if len(segs) != 1 {
		t.Fatalf("got %d segments", len(segs))
	}
	if segs[0].DepartureTime != nil || segs[0].ArrivalTime != nil {
		t.Errorf("times beyond the window must not attach: %+v", segs[0])
	}
}

func TestSegments_YearFromDateContext(t *testing.T) {
	lines := []string{
		"WN 2210 DAL - HOU",
		"Mar 31 6:00 PM - Mar 31 7:05 PM",
	}
	legs := []extract.LegMatch{{LineIndex: 0, Carrier: "WN", FlightNumber: "2210", DepartAirport: "DAL", ArriveAirport: "HOU"}}

	ctx := mustTime(t, "2026-03-31 00:00")
	segs := Segments(lines, legs, ctx)
	if segs[0].DepartureTime == nil || segs[0].DepartureTime.Year() != 2026 {
		t.Errorf("DepartureTime = %v, want year from context", segs[0].DepartureTime)
	}

	// Without context, yearless timestamps stay undiscoverable.
	segs = Segments(lines, legs, time.Time{})
	if segs[0].DepartureTime != nil {
		t.Errorf("yearless timestamp without context attached: %v", segs[0].DepartureTime)
	}
}

func TestSegments_LegsSharingALine(t *testing.T) {
	lines := []string{
		"DL 342 LGA - TQO DL 89 TQO - LGA departing Mar 31, 2026 7:15 AM",
	}
	legs := []extract.LegMatch{
		{LineIndex: 0, Carrier: "DL", FlightNumber: "342", DepartAirport: "LGA", ArriveAirport: "TQO"},
		{LineIndex: 0, Carrier: "DL", FlightNumber: "89", DepartAirport: "TQO", ArriveAirport: "LGA"},
	}

	segs := Segments(lines, legs, time.Time{})
	if len(segs) != 2 {
		t.Fatalf("got %d segments", len(segs))
	}
	// Both legs share the line, so both scan it for timestamps; the first
	// leg must not end up with an empty window.
	want := mustTime(t, "2026-03-31 07:15")
	if segs[0].DepartureTime == nil || !segs[0].DepartureTime.Equal(want) {
		t.Errorf("segment 0 DepartureTime = %v, want %v", segs[0].DepartureTime, want)
	}
	if segs[1].DepartureTime == nil || !segs[1].DepartureTime.Equal(want) {
		t.Errorf("segment 1 DepartureTime = %v, want %v", segs[1].DepartureTime, want)
	}
}

func TestSegments_DocumentOrder(t *testing.T) {
	lines := []string{
		"DL 342 LGA - TQO",
		"Mar 31, 2026 7:15 AM",
		"DL 89 TQO - LGA",
		"Apr 7, 2026 1:30 PM",
	}
	legs := []extract.LegMatch{
		{LineIndex: 0, Carrier: "DL", FlightNumber: "342", DepartAirport: "LGA", ArriveAirport: "TQO"},
		{LineIndex: 2, Carrier: "DL", FlightNumber: "89", DepartAirport: "TQO", ArriveAirport: "LGA"},
	}

	segs := Segments(lines, legs, time.Time{})
	if len(segs) != 2 {
		t.Fatalf("got %d segments", len(segs))
	}
	if segs[0].Index != 0 || segs[0].FlightNumber != "342" {
		t.Errorf("segment 0 = %+v", segs[0])
	}
	// The return leg's timestamp must not leak back as the outbound
	// arrival.
	if segs[0].ArrivalTime != nil {
		t.Errorf("outbound arrival leaked from next leg: %v", segs[0].ArrivalTime)
	}
	if segs[1].Index != 1 || segs[1].FlightNumber != "89" {
		t.Errorf("segment 1 = %+v", segs[1])
	}
}
