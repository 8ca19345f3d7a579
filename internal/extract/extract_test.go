package extract

import (
	"testing"
)

func TestRecordLocator(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{"labelled", "Confirmation code: GO7RLB for your trip", "GO7RLB", true},
		{"bare", "Your reference GO7RLB is ready", "GO7RLB", true},
		{"none", "no locator in here", "", false},
		{"all digits rejected", "total 123456 charged", "", false},
		{"blocklisted word", "PLEASE review your TRAVEL details", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := RecordLocator(tt.text)
			if got != tt.want || ok != tt.ok {
				t.Errorf("RecordLocator(%q) = %q, %v, want %q, %v", tt.text, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestRecordLocator_TicketContext(t *testing.T) {
	// A 6-character substring near a ticket label must not be taken as
	// the record locator.
	text := "TICKET NO: 0062345678901 ABC12D unrelated GO7RLB"
	got, ok := RecordLocator(text)
	if !ok {
		t.Fatal("expected a locator")
	}
	if got != "GO7RLB" {
		t.Errorf("RecordLocator = %q, want GO7RLB", got)
	}
}

func TestPassengerName_Labelled(t *testing.T) {
	first, last, ok := PassengerName([]string{"Itinerary", "Name: John Smith", "DL342"})
	if !ok || first != "John" || last != "Smith" {
		t.Errorf("got %q %q %v", first, last, ok)
	}

	first, last, ok = PassengerName([]string{"Passenger: SMITH/JOHN"})
	if !ok || first != "JOHN" || last != "SMITH" {
		t.Errorf("slash format: got %q %q %v", first, last, ok)
	}
}

func TestPassengerName_Fallback(t *testing.T) {
	// No label line: the first two all-caps tokens are taken as LAST then
	// FIRST. This is the documented low-precision path; the "wrong" answer
	// on adversarial input is expected behaviour.
	first, last, ok := PassengerName([]string{"thanks for flying", "SMITH JOHN enjoy"})
	if !ok || last != "SMITH" || first != "JOHN" {
		t.Errorf("got first=%q last=%q ok=%v", first, last, ok)
	}

	// A lone all-caps token becomes a last name only.
	_, last, ok = PassengerName([]string{"traveling as GARCIA"})
	if !ok || last != "GARCIA" {
		t.Errorf("got last=%q ok=%v", last, ok)
	}

	// Adversarial: unrelated all-caps strings win when no label exists.
	first, last, ok = PassengerName([]string{"NEW YORK departure"})
	if !ok || last != "NEW" || first != "YORK" {
		t.Errorf("adversarial case: got first=%q last=%q ok=%v", first, last, ok)
	}

	if _, _, ok := PassengerName([]string{"no caps here"}); ok {
		t.Error("expected absent name")
	}
}

func TestFareBrand(t *testing.T) {
	if brand, ok := FareBrand("Your Basic Economy fare"); !ok || brand != "Basic Economy" {
		t.Errorf("got %q %v", brand, ok)
	}
	if _, ok := FareBrand("no brand words"); ok {
		t.Error("expected absent brand")
	}
}

func TestTicketNumber(t *testing.T) {
	text := "ETKT 0062345678901 issued"

	if num, ok := TicketNumber(text, "DL"); !ok || num != "0062345678901" {
		t.Errorf("got %q %v", num, ok)
	}
	// Prefix belongs to Delta, not American.
	if _, ok := TicketNumber(text, "AA"); ok {
		t.Error("AA prefix should not match a 006 ticket")
	}
	// Unknown airline: extractor does not apply.
	if _, ok := TicketNumber(text, "ZZ"); ok {
		t.Error("unknown airline should yield absent")
	}
	if _, ok := TicketNumber(text, ""); ok {
		t.Error("missing hint should yield absent")
	}
}

func TestRoutePair(t *testing.T) {
	if o, d, ok := RoutePair("Route: LGA → TQO nonstop"); !ok || o != "LGA" || d != "TQO" {
		t.Errorf("got %q %q %v", o, d, ok)
	}
	// Blocklisted token is discarded, not coerced.
	if _, _, ok := RoutePair("THE-JFK"); ok {
		t.Error("blocklisted origin should not produce a route")
	}
	if _, _, ok := RoutePair("nothing here"); ok {
		t.Error("expected absent route")
	}
}

func TestFlightNumber(t *testing.T) {
	if fn, ok := FlightNumber("Your flight DL342 is confirmed.", ""); !ok || fn != "DL342" {
		t.Errorf("got %q %v", fn, ok)
	}
	// The hint vouches for a carrier outside the table.
	if fn, ok := FlightNumber("Flight ZZ 17 departs soon", "ZZ"); !ok || fn != "ZZ17" {
		t.Errorf("got %q %v", fn, ok)
	}
	// Capitals before digits in plain prose are not a flight.
	if _, ok := FlightNumber("Boarding in 22 minutes", ""); ok {
		t.Error("prose should not yield a flight number")
	}
	if _, ok := FlightNumber("Route: JFK - LAX", "DL"); ok {
		t.Error("expected absent flight number")
	}
}

func TestLegs_Generic(t *testing.T) {
	lines := []string{
		"Outbound",
		"AA 1234 JFK-LAX",
		"Return",
		"AA 4321 LAX-JFK",
	}
	legs := Legs(lines, "")
	if len(legs) != 2 {
		t.Fatalf("expected 2 legs, got %d", len(legs))
	}
	if legs[0].Carrier != "AA" || legs[0].FlightNumber != "1234" ||
		legs[0].DepartAirport != "JFK" || legs[0].ArriveAirport != "LAX" {
		t.Errorf("leg 0 = %+v", legs[0])
	}
	if legs[0].LineIndex != 1 || legs[1].LineIndex != 3 {
		t.Errorf("line indexes = %d, %d", legs[0].LineIndex, legs[1].LineIndex)
	}
}

func TestLegs_AirlineHint(t *testing.T) {
	lines := []string{"DL342 LGA-TQO"}

	legs := Legs(lines, "DL")
	if len(legs) != 1 {
		t.Fatalf("expected 1 leg, got %d", len(legs))
	}
	if legs[0].Carrier != "DL" || legs[0].FlightNumber != "342" {
		t.Errorf("leg = %+v", legs[0])
	}

	// Hinted carrier absent from the text: fall back to the generic scan.
	legs = Legs([]string{"AA 1234 JFK-LAX"}, "DL")
	if len(legs) != 1 || legs[0].Carrier != "AA" {
		t.Fatalf("generic fallback legs = %+v", legs)
	}
}
